package notify

import (
	"context"
	"fmt"
	"html"

	"github.com/studymate/backend/services/course-service/internal/models"
	"gopkg.in/mail.v2"
)

// Sender delivers one message
type Sender interface {
	DialAndSend(m ...*mail.Message) error
}

// MailNotifier sends course lifecycle emails over SMTP
type MailNotifier struct {
	sender Sender
	from   string
}

// NewMailNotifier creates a notifier using an SMTP dialer
func NewMailNotifier(host string, port int, username, password, from string) *MailNotifier {
	return NewMailNotifierWithSender(mail.NewDialer(host, port, username, password), from)
}

// NewMailNotifierWithSender creates a notifier with a custom sender
func NewMailNotifierWithSender(sender Sender, from string) *MailNotifier {
	return &MailNotifier{sender: sender, from: from}
}

// CourseReady tells the course creator that all chapter notes are available
func (n *MailNotifier) CourseReady(ctx context.Context, course *models.Course) error {
	if course.CreatedBy == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	title := course.Layout.CourseTitle
	if title == "" {
		title = course.Topic
	}

	m := mail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", course.CreatedBy)
	m.SetHeader("Subject", fmt.Sprintf("Your course %q is ready", title))
	m.SetBody("text/html", fmt.Sprintf(
		"<p>All %d chapters of <strong>%s</strong>\nnow have study notes.</p>\n<p>Course ID: %s</p>\n",
		len(course.Layout.Chapters), html.EscapeString(title), html.EscapeString(course.CourseID),
	))

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// NopNotifier discards notifications
type NopNotifier struct{}

// CourseReady implements the notifier contract without sending anything
func (NopNotifier) CourseReady(ctx context.Context, course *models.Course) error {
	return nil
}
