// Package notification provides the notification model, repositories, and
// the broadcast fan-out that turns one staff announcement into per-resident
// notifications gated by each resident's settings and relevance threshold.
package notification

import "time"

// Type categorizes a notification.
type Type string

// Notification types.
const (
	TypeEventUpdate    Type = "event_update"
	TypeNewEvent       Type = "new_event"
	TypeEventCancelled Type = "event_cancelled"
	TypeScheduleChange Type = "schedule_change"
)

// Valid reports whether the type is one of the known notification types.
func (t Type) Valid() bool {
	switch t {
	case TypeEventUpdate, TypeNewEvent, TypeEventCancelled, TypeScheduleChange:
		return true
	}
	return false
}

// Notification is a per-user message about an event.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      Type      `json:"type"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
