package workspace

import (
	"context"
	"log"

	"github.com/pgdeck/pgdeck/internal/models"
)

// SchemaNode is one schema in a connection's tree. Tables is nil until
// the first successful expansion.
type SchemaNode struct {
	Name   string
	Tables []string
	IsOpen bool
}

// ConnectionNode pairs a saved connection with its per-process live
// state: at most one live handle, the cached schema tree, and the UI
// expansion flags.
type ConnectionNode struct {
	Conn      models.SavedConnection
	IsOpen    bool
	Handle    string
	Schemas   []*SchemaNode
	IsLoading bool
}

func (w *Workspace) findNodeLocked(savedID string) *ConnectionNode {
	for _, n := range w.nodes {
		if n.Conn.ID == savedID {
			return n
		}
	}
	return nil
}

// LoadConnections fetches the durable connection list and merges it into
// the existing nodes: ids that already exist keep their open/handle/
// schema state, new ids start closed and disconnected, ids that
// disappeared are dropped.
func (w *Workspace) LoadConnections(ctx context.Context) error {
	conns, err := w.gw.LoadConnections(ctx)
	if err != nil {
		return err
	}

	w.mu.Lock()
	existing := make(map[string]*ConnectionNode, len(w.nodes))
	for _, n := range w.nodes {
		existing[n.Conn.ID] = n
	}

	nodes := make([]*ConnectionNode, 0, len(conns))
	for _, conn := range conns {
		if node, ok := existing[conn.ID]; ok {
			node.Conn = conn
			nodes = append(nodes, node)
			continue
		}
		nodes = append(nodes, &ConnectionNode{Conn: conn})
	}
	w.nodes = nodes
	w.mu.Unlock()

	w.emit(StateChangedEvent{})
	return nil
}

// Connect returns the node's live handle, opening a fresh connection
// only when none exists. On success the handle also becomes the
// globally selected connection. On failure the node is left closed and
// disconnected and the error propagates.
func (w *Workspace) Connect(ctx context.Context, savedID string) (string, error) {
	w.mu.Lock()
	node := w.findNodeLocked(savedID)
	if node == nil {
		w.mu.Unlock()
		return "", ErrUnknownConnection
	}
	if node.Handle != "" {
		handle := node.Handle
		w.activeConnection = handle
		w.activeSavedID = savedID
		w.mu.Unlock()
		w.schedulePersist()
		return handle, nil
	}
	if node.IsLoading {
		w.mu.Unlock()
		return "", ErrConnectInFlight
	}
	node.IsLoading = true
	dbConfig := node.Conn.Config
	w.mu.Unlock()
	w.emit(StateChangedEvent{})

	handle, err := w.gw.ConnectDB(ctx, dbConfig)
	if err != nil {
		w.mu.Lock()
		if node := w.findNodeLocked(savedID); node != nil {
			node.IsLoading = false
			node.IsOpen = false
			node.Handle = ""
		}
		w.mu.Unlock()
		w.emit(StateChangedEvent{})
		return "", err
	}

	// Seed the schema tree. A failure here degrades to an empty tree
	// rather than failing the connect.
	var schemaNodes []*SchemaNode
	if schemas, serr := w.gw.GetSchemas(ctx, handle); serr != nil {
		log.Printf("failed to list schemas for %s: %v", node.Conn.Name, serr)
	} else {
		schemaNodes = make([]*SchemaNode, len(schemas))
		for i, name := range schemas {
			schemaNodes[i] = &SchemaNode{Name: name}
		}
	}

	w.mu.Lock()
	node = w.findNodeLocked(savedID)
	if node == nil {
		// The connection was deleted while we were connecting.
		w.mu.Unlock()
		_ = w.gw.Disconnect(ctx, handle)
		return "", ErrUnknownConnection
	}
	node.IsLoading = false
	node.Handle = handle
	if node.Schemas == nil {
		node.Schemas = schemaNodes
	}
	w.activeConnection = handle
	w.activeSavedID = savedID
	w.mu.Unlock()

	w.schedulePersist()
	w.emit(StateChangedEvent{})
	return handle, nil
}

// Toggle opens or closes a connection node in the tree. Opening a
// disconnected node connects it first; opening a connected one is a
// pure UI toggle.
func (w *Workspace) Toggle(ctx context.Context, savedID string) error {
	w.mu.Lock()
	node := w.findNodeLocked(savedID)
	if node == nil {
		w.mu.Unlock()
		return ErrUnknownConnection
	}
	if node.IsOpen {
		node.IsOpen = false
		w.mu.Unlock()
		w.emit(StateChangedEvent{})
		return nil
	}
	if node.Handle != "" {
		node.IsOpen = true
		w.activeConnection = node.Handle
		w.activeSavedID = savedID
		w.mu.Unlock()
		w.schedulePersist()
		w.emit(StateChangedEvent{})
		return nil
	}
	w.mu.Unlock()

	if _, err := w.Connect(ctx, savedID); err != nil {
		return err
	}

	w.mu.Lock()
	if node := w.findNodeLocked(savedID); node != nil {
		node.IsOpen = true
	}
	w.mu.Unlock()
	w.emit(StateChangedEvent{})
	return nil
}

// ToggleSchema opens or closes one schema. The first open lazily loads
// the schema's table names; a failed load leaves the schema closed with
// Tables still nil, so the next toggle retries.
func (w *Workspace) ToggleSchema(ctx context.Context, savedID, schemaName string) error {
	w.mu.Lock()
	node := w.findNodeLocked(savedID)
	if node == nil {
		w.mu.Unlock()
		return ErrUnknownConnection
	}
	var schema *SchemaNode
	for _, sn := range node.Schemas {
		if sn.Name == schemaName {
			schema = sn
			break
		}
	}
	if schema == nil {
		w.mu.Unlock()
		return nil
	}
	if schema.IsOpen {
		schema.IsOpen = false
		w.mu.Unlock()
		w.emit(StateChangedEvent{})
		return nil
	}
	if schema.Tables != nil {
		schema.IsOpen = true
		w.mu.Unlock()
		w.emit(StateChangedEvent{})
		return nil
	}
	handle := node.Handle
	w.mu.Unlock()

	if handle == "" {
		return ErrNotConnected
	}

	tables, err := w.gw.GetTables(ctx, handle, schemaName)
	if err != nil {
		log.Printf("failed to list tables for %s.%s: %v", savedID, schemaName, err)
		return nil
	}
	if tables == nil {
		tables = []string{}
	}

	w.mu.Lock()
	if node := w.findNodeLocked(savedID); node != nil {
		for _, sn := range node.Schemas {
			if sn.Name == schemaName {
				sn.Tables = tables
				sn.IsOpen = true
				break
			}
		}
	}
	w.mu.Unlock()
	w.emit(StateChangedEvent{})
	return nil
}

// DeleteConnection removes a saved connection durably, disconnects its
// live handle if any, and drops its node.
func (w *Workspace) DeleteConnection(ctx context.Context, savedID string) error {
	if err := w.gw.DeleteConnection(ctx, savedID); err != nil {
		return err
	}

	w.mu.Lock()
	var handle string
	kept := w.nodes[:0]
	for _, n := range w.nodes {
		if n.Conn.ID == savedID {
			handle = n.Handle
			continue
		}
		kept = append(kept, n)
	}
	w.nodes = kept
	if w.activeSavedID == savedID {
		w.activeSavedID = ""
		w.activeConnection = ""
	}
	w.mu.Unlock()

	if handle != "" {
		_ = w.gw.Disconnect(ctx, handle)
	}
	w.schedulePersist()
	w.emit(StateChangedEvent{})
	return nil
}

// SaveConnection persists a new or edited connection profile and merges
// the refreshed list.
func (w *Workspace) SaveConnection(ctx context.Context, conn models.SavedConnection) error {
	if err := w.gw.SaveConnection(ctx, conn); err != nil {
		return err
	}
	return w.LoadConnections(ctx)
}

// Nodes returns a snapshot of the connection tree for rendering.
func (w *Workspace) Nodes() []ConnectionNode {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]ConnectionNode, len(w.nodes))
	for i, n := range w.nodes {
		copied := *n
		copied.Schemas = make([]*SchemaNode, len(n.Schemas))
		for j, sn := range n.Schemas {
			s := *sn
			copied.Schemas[j] = &s
		}
		out[i] = copied
	}
	return out
}
