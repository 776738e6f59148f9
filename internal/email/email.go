// Package email delivers lead notification emails to property managers.
package email

import "context"

// LeadNotificationData carries the fields the notification email renders.
// LeadScore is nil when the conversation has not been scored yet; the
// email omits the score line in that case.
type LeadNotificationData struct {
	ManagerFirstName string
	PropertyName     string
	NotificationType string
	LeadScore        *int
	DashboardURL     string
}

// Sender delivers notification emails. Implementations must be safe for
// concurrent use; the worker calls them from multiple goroutines.
type Sender interface {
	SendLeadNotification(ctx context.Context, toEmail string, data LeadNotificationData) error
}

// NoopSender drops emails. Used when EMAIL_ENABLED is false so the rest of
// the delivery pipeline still runs in development.
type NoopSender struct{}

func (NoopSender) SendLeadNotification(context.Context, string, LeadNotificationData) error {
	return nil
}
