package models

import "time"

// NotificationType classifies an inbound realtime event.
type NotificationType string

const (
	NotificationMatchUpdate     NotificationType = "match_update"
	NotificationTournamentStart NotificationType = "tournament_start"
	NotificationTournamentEnd   NotificationType = "tournament_end"
	NotificationScheduleChange  NotificationType = "schedule_change"
	NotificationRefereeAssigned NotificationType = "referee_assigned"
	NotificationReminder        NotificationType = "reminder"
	NotificationAnnouncement    NotificationType = "announcement"
)

// ParseNotificationType reports whether s names one of the supported types.
func ParseNotificationType(s string) (NotificationType, bool) {
	t := NotificationType(s)
	switch t {
	case NotificationMatchUpdate, NotificationTournamentStart, NotificationTournamentEnd,
		NotificationScheduleChange, NotificationRefereeAssigned, NotificationReminder,
		NotificationAnnouncement:
		return t, true
	default:
		return "", false
	}
}

// Notification is a single entry in the append-only notification log.
// Entries are never mutated in place; the log is emptied only by an
// explicit clear.
type Notification struct {
	// ID is a client-assigned identifier, unique within this process.
	ID string `json:"id"`

	Type    NotificationType `json:"type"`
	Title   string           `json:"title"`
	Message string           `json:"message"`

	// Timestamp is the server-side creation time carried on the wire.
	Timestamp time.Time `json:"timestamp"`

	// ReceivedAt is when this process observed the event (arrival order).
	ReceivedAt time.Time `json:"receivedAt"`
}
