package services

import (
	"context"
	"fmt"
	"log/slog"

	"blueelephant/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendSubmissionNotice tells the board that something is waiting for review.
func (s *emailService) SendSubmissionNotice(ctx context.Context, data *domain.SubmissionEmailData) error {
	if data == nil {
		return fmt.Errorf("submission email data is nil")
	}
	return s.send(ctx, "submission", data.To, data)
}

// SendApprovalNotice tells a submitter that their item was approved.
func (s *emailService) SendApprovalNotice(ctx context.Context, data *domain.ApprovalEmailData) error {
	if data == nil {
		return fmt.Errorf("approval email data is nil")
	}
	return s.send(ctx, "approval", data.To, data)
}

func (s *emailService) send(ctx context.Context, template, to string, data any) error {
	subject, htmlBody, textBody, err := s.renderer.Render(template, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", template, err)
	}
	if err := s.mailer.Send(ctx, to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", template, err)
	}
	s.logger.InfoContext(ctx, "email sent", "template", template, "to", to)
	return nil
}
