package services

import (
	"context"
	"fmt"
	"log/slog"

	"conferencecentral/internal/domain"
)

type emailService struct {
	mailer domain.Mailer
	logger *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer.
func NewEmailService(mailer domain.Mailer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, logger: logger}
}

// SendConferenceConfirmation emails the organizer that their conference was created.
func (s *emailService) SendConferenceConfirmation(ctx context.Context, data *domain.ConferenceConfirmationEmailData) error {
	if data == nil || data.Email == "" {
		return fmt.Errorf("confirmation email data is missing a recipient")
	}

	subject := fmt.Sprintf("Your conference %q has been created", data.ConferenceName)
	greeting := "Hi"
	if data.OrganizerName != "" {
		greeting = "Hi " + data.OrganizerName
	}
	when := ""
	if data.StartDate != nil {
		when = fmt.Sprintf(" starting %s", data.StartDate.Format("January 2, 2006"))
	}
	text := fmt.Sprintf("%s,\n\nYour conference %q in %s%s has been created.\n\nSee you there!",
		greeting, data.ConferenceName, data.City, when)
	html := fmt.Sprintf("<p>%s,</p><p>Your conference <strong>%s</strong> in %s%s has been created.</p><p>See you there!</p>",
		greeting, data.ConferenceName, data.City, when)

	if err := s.mailer.Send(data.Email, subject, html, text); err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}
	s.logger.Info("confirmation email sent", "to", data.Email, "conference", data.ConferenceName)
	return nil
}
