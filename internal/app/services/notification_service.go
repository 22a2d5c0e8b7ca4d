package services

import (
	"context"
	"fmt"
	"html"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/unigate/admissions/internal/app/models"
	"github.com/unigate/admissions/internal/pkg/email"
	"github.com/unigate/admissions/internal/pkg/realtime"
)

// Notifier sends the messages students receive about their account and applications.
// Delivery is best effort: failures are logged and never reach the caller.
type Notifier interface {
	Welcome(ctx context.Context, to, firstName string)
	SubmissionReceived(ctx context.Context, student *models.Student, app *models.ApplicationSummary)
	StatusChanged(ctx context.Context, student *models.Student, app *models.ApplicationSummary)
}

// EventPublisher pushes realtime events to the sessions of a user
type EventPublisher interface {
	Publish(userID uuid.UUID, eventType string, data interface{})
}

// StatusChangedEvent is the payload of application.status_changed
type StatusChangedEvent struct {
	ApplicationID uuid.UUID  `json:"applicationId"`
	StatusID      *uuid.UUID `json:"statusId,omitempty"`
	StatusCode    *string    `json:"statusCode,omitempty"`
	StatusName    *string    `json:"statusName,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

// EmailNotifier emails students and mirrors status changes to their realtime sessions
type EmailNotifier struct {
	sender    email.Sender
	publisher EventPublisher
	logger    zerolog.Logger
	timeout   time.Duration
	wg        sync.WaitGroup
}

// NewNotifier creates a Notifier. publisher may be nil.
func NewNotifier(sender email.Sender, publisher EventPublisher, logger zerolog.Logger) *EmailNotifier {
	return &EmailNotifier{
		sender:    sender,
		publisher: publisher,
		logger:    logger,
		timeout:   30 * time.Second,
	}
}

// Wait blocks until every queued email has been handed to the sender
func (n *EmailNotifier) Wait() {
	n.wg.Wait()
}

// send delivers msg in the background, detached from the request context
func (n *EmailNotifier) send(msg email.Message) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.sender.Send(ctx, msg); err != nil {
			n.logger.Error().
				Err(err).
				Str("to", msg.To).
				Str("subject", msg.Subject).
				Msg("Failed to send email")
			return
		}
		n.logger.Debug().Str("to", msg.To).Str("subject", msg.Subject).Msg("Email sent")
	}()
}

func (n *EmailNotifier) Welcome(_ context.Context, to, firstName string) {
	n.send(email.Message{
		To:       to,
		ToName:   firstName,
		Subject:  "Welcome to the admissions portal",
		HTMLBody: fmt.Sprintf(welcomeTemplate, html.EscapeString(firstName)),
		TextBody: fmt.Sprintf("Hello %s,\n\nYour account has been created. You can now start your application.", firstName),
	})
}

func (n *EmailNotifier) SubmissionReceived(_ context.Context, student *models.Student, app *models.ApplicationSummary) {
	if student == nil || app == nil {
		return
	}
	period := applicationPeriod(app)
	n.send(email.Message{
		To:       student.Email,
		ToName:   student.FirstName,
		Subject:  "We received your application",
		HTMLBody: fmt.Sprintf(submittedTemplate, html.EscapeString(student.FirstName), html.EscapeString(period)),
		TextBody: fmt.Sprintf("Hello %s,\n\nYour application for %s has been submitted.", student.FirstName, period),
	})
}

func (n *EmailNotifier) StatusChanged(_ context.Context, student *models.Student, app *models.ApplicationSummary) {
	if student == nil || app == nil {
		return
	}

	if n.publisher != nil {
		n.publisher.Publish(student.UserID, realtime.EventApplicationStatusChanged, StatusChangedEvent{
			ApplicationID: app.ID,
			StatusID:      app.StatusID,
			StatusCode:    app.StatusCode,
			StatusName:    app.StatusName,
			Notes:         app.Notes,
		})
	}

	status := deref(app.StatusName)
	period := applicationPeriod(app)
	n.send(email.Message{
		To:      student.Email,
		ToName:  student.FirstName,
		Subject: "Your application status has changed",
		HTMLBody: fmt.Sprintf(statusTemplate,
			html.EscapeString(student.FirstName), html.EscapeString(period), html.EscapeString(status)),
		TextBody: fmt.Sprintf("Hello %s,\n\nThe status of your application for %s is now: %s.",
			student.FirstName, period, status),
	})
}

func applicationPeriod(app *models.ApplicationSummary) string {
	term, year := deref(app.TermName), deref(app.AcademicYearName)
	switch {
	case term != "" && year != "":
		return term + " " + year
	case term != "":
		return term
	case year != "":
		return year
	}
	return "the upcoming intake"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

const welcomeTemplate = `<html><body>
<h2>Welcome, %s</h2>
<p>Your admissions account has been created. Sign in to start your application.</p>
</body></html>`

const submittedTemplate = `<html><body>
<h2>Hello %s,</h2>
<p>Your application for <strong>%s</strong> has been submitted. We will let you know when its status changes.</p>
</body></html>`

const statusTemplate = `<html><body>
<h2>Hello %s,</h2>
<p>The status of your application for <strong>%s</strong> is now <strong>%s</strong>.</p>
</body></html>`
