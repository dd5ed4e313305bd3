package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// ConferenceConfirmationEmailData holds data for the conference-created
// confirmation email sent to the organizer.
type ConferenceConfirmationEmailData struct {
	Email          string
	OrganizerName  string
	ConferenceName string
	City           string
	StartDate      *time.Time
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendConferenceConfirmation(ctx context.Context, data *ConferenceConfirmationEmailData) error
}
