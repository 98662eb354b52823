package event

type Type string

const (
	TypeCartUpdated      Type = "cart.updated"
	TypeCartRolledBack   Type = "cart.rolled_back"
	TypeCartMerged       Type = "cart.merged"
	TypeMergeLineSkipped Type = "cart.merge_line_skipped"
	TypeLoggedIn         Type = "auth.logged_in"
	TypeLoggedOut        Type = "auth.logged_out"
	TypeSessionExpired   Type = "auth.session_expired"
)

type Event struct {
	ID        string      `json:"id"`
	Type      Type        `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp string      `json:"timestamp"`
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func()) // Returns channel and unsubscribe function
}
