package audit

import "time"

// Event is an immutable, append-only record of a session lifecycle change.
//
// Invariants:
// - Events are never updated or deleted.
// - session_id is required; actor fields are best-effort.
type Event struct {
	ID        string    `json:"id" db:"id"`
	SessionID string    `json:"session_id" db:"session_id"`
	Type      EventType `json:"type" db:"type"`

	// Actor fields come from the decoded token and are empty for anonymous callers.
	Username  string `json:"username,omitempty" db:"username"`
	ActorRole string `json:"actor_role,omitempty" db:"actor_role"`
	UserID    int64  `json:"user_id,omitempty" db:"user_id"`

	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// Route is set for access_denied.
	Route string `json:"route,omitempty" db:"route"`

	Message   string    `json:"message,omitempty" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventLogin          EventType = "login"
	EventLoginFailed    EventType = "login_failed"
	EventLogout         EventType = "logout"
	EventSessionExpired EventType = "session_expired"
	EventAccessDenied   EventType = "access_denied"
)
