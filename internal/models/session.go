package models

// TabState is the durable slice of a workspace tab. ConnectionID is the
// live handle that was current when the session was written; after a
// restart it is dead by construction and only SavedConnectionID can be
// used to reconnect.
type TabState struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	SQL               string `json:"sql"`
	ConnectionID      string `json:"connection_id,omitempty"`
	SavedConnectionID string `json:"saved_connection_id,omitempty"`
	DBName            string `json:"db_name,omitempty"`
}

// Session is the persisted snapshot of the workspace. Tabs is nil for
// sessions written before the multi-tab format; LastQuery then carries
// the single editor's text.
type Session struct {
	LastConnectionID      string     `json:"last_connection_id,omitempty"`
	LastSavedConnectionID string     `json:"last_saved_connection_id,omitempty"`
	LastTable             string     `json:"last_table,omitempty"`
	LastQuery             string     `json:"last_query,omitempty"`
	Tabs                  []TabState `json:"tabs,omitempty"`
	ActiveTabID           string     `json:"active_tab_id,omitempty"`
}
