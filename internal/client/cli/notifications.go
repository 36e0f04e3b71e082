package cli

import (
	"context"
	"fmt"
)

// Notifications prints the log in arrival order and marks it as read, the
// terminal equivalent of opening the notification panel.
func (a *App) Notifications(ctx context.Context) error {
	entries := a.channel.Notifications()
	if len(entries) == 0 {
		fmt.Println("No notifications.")
		return nil
	}

	unread := a.channel.UnreadCount()
	for i, n := range entries {
		marker := " "
		if i >= len(entries)-unread {
			marker = "*"
		}
		fmt.Printf("%s [%s] %s: %s\n", marker, n.Type, n.Title, n.Message)
	}
	a.channel.MarkAsRead()
	return nil
}

// MarkRead resets the unread counter without printing the log.
func (a *App) MarkRead(ctx context.Context) error {
	a.channel.MarkAsRead()
	fmt.Println("Marked as read.")
	return nil
}

// Clear empties the local notification log.
func (a *App) Clear(ctx context.Context) error {
	a.channel.ClearNotifications()
	fmt.Println("Notifications cleared.")
	return nil
}

// Status prints connectivity and channel state.
func (a *App) Status(ctx context.Context) error {
	fmt.Println("API:", a.getMode())
	fmt.Println("Channel:", a.channel.State())
	if id := a.channel.BoundUserID(); id != "" {
		fmt.Println("Bound to:", id)
	}
	fmt.Printf("Unread: %d\n", a.channel.UnreadCount())
	return nil
}
