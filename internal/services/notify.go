package services

import (
	"context"
	"log/slog"

	"blueelephant/internal/domain"
)

// notifier sends board and submitter emails in the background. Send failures
// never affect the mutation that triggered them.
type notifier struct {
	emails   domain.EmailService
	notifyTo string
	logger   *slog.Logger
}

func newNotifier(emails domain.EmailService, notifyTo string, logger *slog.Logger) *notifier {
	return &notifier{emails: emails, notifyTo: notifyTo, logger: logger}
}

func (n *notifier) submitted(ctx context.Context, data domain.SubmissionEmailData) {
	if n.emails == nil || n.notifyTo == "" {
		return
	}
	data.To = n.notifyTo
	go func() {
		if err := n.emails.SendSubmissionNotice(context.WithoutCancel(ctx), &data); err != nil {
			n.logger.Error("send submission notice", "kind", data.Kind, "error", err)
		}
	}()
}

func (n *notifier) approved(ctx context.Context, data domain.ApprovalEmailData) {
	if n.emails == nil || data.To == "" {
		return
	}
	go func() {
		if err := n.emails.SendApprovalNotice(context.WithoutCancel(ctx), &data); err != nil {
			n.logger.Error("send approval notice", "kind", data.Kind, "error", err)
		}
	}()
}
