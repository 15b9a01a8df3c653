package staging

import "time"

// Entry is one invoice parked in a session's cart. Entries reference orders
// by id only; the order row stays owned by the order store. At most one
// entry exists per order across all sessions, which keeps two operators
// from trucking the same invoice.
type Entry struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	OrderID   int64     `json:"order_id"`
	AddedAt   time.Time `json:"added_at"`
}
