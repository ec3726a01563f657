// Package contact handles contact form submissions: validate, store,
// notify the site owner.
package contact

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aTrapDeer/portfolio-site/internal/groq"
	"github.com/aTrapDeer/portfolio-site/internal/mail"
	"github.com/aTrapDeer/portfolio-site/internal/models"
	"github.com/aTrapDeer/portfolio-site/internal/store"
)

const (
	DefaultFrom      = "Portfolio Contact <onboarding@resend.dev>"
	DefaultRecipient = "syifarpratama@gmail.com"
)

var recipientQuery = groq.Query{
	Type:   models.TypeProfile,
	First:  true,
	Fields: groq.F("email"),
}

// Pipeline processes one submission at a time; it keeps no state between
// calls. Store must be the uncached write-mode client.
type Pipeline struct {
	Store             store.Client
	Mailer            mail.Sender
	From              string
	FallbackRecipient string
	Now               func() time.Time
	Logger            *slog.Logger
}

// Submit validates body, stores it as a new contact message and emails the
// site owner. It returns the stored message id. Steps run strictly in
// order and a failed step stops the ones after it, except that a message
// already stored is never removed.
func (p *Pipeline) Submit(ctx context.Context, body []byte) (string, error) {
	sub, err := Decode(body)
	if err != nil {
		return "", err
	}

	sentAt := FormatSentAt(p.now())
	msg := models.ContactMessage{
		Type:    models.TypeContact,
		Name:    sub.Name,
		Email:   sub.Email,
		Message: sub.Message,
		SentAt:  sentAt,
		Status:  models.StatusNew,
	}
	id, err := p.Store.Create(ctx, msg)
	if err != nil {
		return "", &PersistenceError{Err: err}
	}
	p.logger().Info("Contact message stored", "id", id, "sentAt", sentAt)

	to, err := p.recipient(ctx)
	if err != nil {
		return id, &NotificationError{MessageID: id, Err: err}
	}

	html, err := renderNotification(notificationData{Name: sub.Name, Email: sub.Email, Message: sub.Message, SentAt: sentAt})
	if err != nil {
		return id, &NotificationError{MessageID: id, Err: err}
	}
	if _, err := p.Mailer.Send(ctx, mail.Message{
		From:    p.from(),
		To:      []string{to},
		ReplyTo: sub.Email,
		Subject: subject(sub.Name),
		HTML:    html,
	}); err != nil {
		return id, &NotificationError{MessageID: id, Err: err}
	}
	return id, nil
}

// recipient reads the owner's address from the profile, falling back to the
// configured address when the profile has none.
func (p *Pipeline) recipient(ctx context.Context) (string, error) {
	var profile *struct {
		Email string `json:"email"`
	}
	if err := store.FetchInto(ctx, p.Store, recipientQuery, nil, &profile, store.NoCache()); err != nil {
		return "", fmt.Errorf("look up recipient: %w", err)
	}
	if profile != nil && profile.Email != "" {
		return profile.Email, nil
	}
	if p.FallbackRecipient != "" {
		return p.FallbackRecipient, nil
	}
	return DefaultRecipient, nil
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Pipeline) from() string {
	if p.From != "" {
		return p.From
	}
	return DefaultFrom
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
