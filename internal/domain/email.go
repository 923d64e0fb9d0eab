package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// SubmissionEmailData describes a new item waiting for board review.
type SubmissionEmailData struct {
	To      string
	Kind    string // "testimonial", "volunteer application", "event registration"
	From    string
	Email   string
	Summary string
}

// ApprovalEmailData describes an approval sent back to the submitter.
type ApprovalEmailData struct {
	To      string
	Name    string
	Kind    string
	Summary string
}

// EmailService sends the site's notification emails.
type EmailService interface {
	SendSubmissionNotice(ctx context.Context, data *SubmissionEmailData) error
	SendApprovalNotice(ctx context.Context, data *ApprovalEmailData) error
}
