package gateway

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pgdeck/pgdeck/internal/models"
)

const (
	connectionsFile = "connections.json"
	sessionFile     = "session.json"
)

// Storage persists the saved-connection list and the session snapshot as
// JSON files in the application data directory.
type Storage struct {
	dir string
}

// NewStorage creates a Storage rooted at dir, creating it if needed.
func NewStorage(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Storage{dir: dir}, nil
}

// LoadConnections reads the saved-connection list. A missing file is an
// empty list, not an error.
func (s *Storage) LoadConnections() ([]models.SavedConnection, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, connectionsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []models.SavedConnection{}, nil
		}
		return nil, fmt.Errorf("failed to read connections file: %w", err)
	}

	var conns []models.SavedConnection
	if err := json.Unmarshal(data, &conns); err != nil {
		return nil, fmt.Errorf("failed to parse connections file: %w", err)
	}
	return conns, nil
}

// SaveConnection adds a connection or replaces the existing one with the
// same id.
func (s *Storage) SaveConnection(conn models.SavedConnection) error {
	conns, err := s.LoadConnections()
	if err != nil {
		return err
	}

	replaced := false
	for i, c := range conns {
		if c.ID == conn.ID {
			conns[i] = conn
			replaced = true
			break
		}
	}
	if !replaced {
		conns = append(conns, conn)
	}
	return s.writeConnections(conns)
}

// DeleteConnection removes a connection by id. Deleting an unknown id is
// a no-op.
func (s *Storage) DeleteConnection(id string) error {
	conns, err := s.LoadConnections()
	if err != nil {
		return err
	}

	kept := conns[:0]
	for _, c := range conns {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	return s.writeConnections(kept)
}

func (s *Storage) writeConnections(conns []models.SavedConnection) error {
	data, err := json.MarshalIndent(conns, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal connections: %w", err)
	}
	// 0600: the file may carry passwords.
	if err := os.WriteFile(filepath.Join(s.dir, connectionsFile), data, 0600); err != nil {
		return fmt.Errorf("failed to write connections file: %w", err)
	}
	return nil
}

// LoadSession reads the persisted session snapshot. Both a missing and a
// corrupt file yield a zero session; restoration starts fresh rather
// than failing over unreadable leftovers.
func (s *Storage) LoadSession() (models.Session, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, sessionFile))
	if err != nil {
		if os.IsNotExist(err) {
			return models.Session{}, nil
		}
		return models.Session{}, fmt.Errorf("failed to read session file: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return models.Session{}, nil
	}
	return session, nil
}

// SaveSession writes the session snapshot.
func (s *Storage) SaveSession(session models.Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, sessionFile), data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// DefaultDataDir returns the per-user data directory for pgdeck.
func DefaultDataDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "pgdeck"), nil
}
