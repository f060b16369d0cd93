package workspace

// Event is a notification pushed to the UI layer.
type Event interface{ event() }

// StateChangedEvent signals that some visible workspace state mutated
// and the UI should re-read its views.
type StateChangedEvent struct{}

// QueryFailedEvent carries a failed execution together with the literal
// SQL that failed, for the error modal.
type QueryFailedEvent struct {
	TabID string
	SQL   string
	Err   error
}

// EditFailedEvent carries a failed inline update or delete with the
// generated statement so the user can diagnose it.
type EditFailedEvent struct {
	TabID string
	SQL   string
	Err   error
}

func (StateChangedEvent) event() {}
func (QueryFailedEvent) event()  {}
func (EditFailedEvent) event()   {}
