package models

import (
	"slices"
	"time"
)

type NotificationKind string

const (
	KindNewEvent     NotificationKind = "new_event"
	KindRegistration NotificationKind = "registration"
	KindReminder     NotificationKind = "reminder"
	KindPush         NotificationKind = "push"
	KindGeneral      NotificationKind = "general"
)

// Notification is stored in the persistent notification log as JSON.
// A nil UserID makes it a broadcast; broadcasts track readers in ReadBy
// instead of the shared Read flag.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
	Read      bool             `json:"read"`
	ReadBy    []string         `json:"read_by,omitempty"`
	UserID    *string          `json:"user_id,omitempty"`
	EventID   *string          `json:"event_id,omitempty"`
}

func (n *Notification) IsBroadcast() bool { return n.UserID == nil }

// VisibleTo reports whether userID's feed contains n.
func (n *Notification) VisibleTo(userID string) bool {
	return n.UserID == nil || *n.UserID == userID
}

// ReadFor reports the read state as seen by userID.
func (n *Notification) ReadFor(userID string) bool {
	if n.IsBroadcast() {
		return slices.Contains(n.ReadBy, userID)
	}
	return n.Read
}

// MarkReadFor flips the read state for userID only.
func (n *Notification) MarkReadFor(userID string) {
	if !n.IsBroadcast() {
		n.Read = true
		return
	}
	if !slices.Contains(n.ReadBy, userID) {
		n.ReadBy = append(n.ReadBy, userID)
	}
}
