package domain

import (
	"encoding/json"
	"time"
)

// HistoryEntry is one solved request as persisted by a session history store.
// Payload holds the API response verbatim so that stores stay agnostic of its shape.
type HistoryEntry struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	CreatedAt time.Time       `json:"created_at"`
	Function  string          `json:"function"`
	A         float64         `json:"a"`
	B         float64         `json:"b"`
	Tolerance float64         `json:"tol"`
	Mode      Mode            `json:"mode"`
	Status    Status          `json:"status"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}
