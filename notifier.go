package passwordless

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"net/smtp"
	"strings"
	texttemplate "text/template"

	"github.com/goliatone/go-errors"
)

// Message is one challenge email ready for delivery.
type Message struct {
	To       string
	From     string
	Subject  string
	TextBody string
	HTMLBody string
}

// Notifier delivers challenge codes out-of-band. Implementations send
// exactly one message per call. The challenge flow treats delivery failure
// as non-fatal: the round stays open with its code bound either way.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// NotifierFunc adapts a function into a Notifier.
type NotifierFunc func(ctx context.Context, msg Message) error

// Send satisfies the Notifier interface.
func (f NotifierFunc) Send(ctx context.Context, msg Message) error {
	if f == nil {
		return nil
	}
	return f(ctx, msg)
}

// DefaultSubject is the subject line of challenge emails.
const DefaultSubject = "Din innloggingskode"

// DefaultTextTemplate is the plaintext body, Norwegian first like the
// product it ships with, with an English paragraph below.
const DefaultTextTemplate = `Din innloggingskode er: {{.Code}}

Denne koden er gyldig i 15 minutter.

Hvis du ikke har bedt om denne koden, kan du ignorere denne e-posten.

---

Your login code is: {{.Code}}

The code is valid for 15 minutes. If you did not request a code, you can
ignore this email.
`

// DefaultHTMLTemplate is the rich-text body.
const DefaultHTMLTemplate = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Velkommen til {{.SiteName}}</h2>
  <p>Din innloggingskode er:</p>
  <div style="background-color: #f4f4f4; padding: 20px; text-align: center; margin: 20px 0;">
    <h1 style="font-size: 36px; letter-spacing: 8px; margin: 0;">{{.Code}}</h1>
  </div>
  <p>Denne koden er gyldig i 15 minutter.</p>
  <p>Hvis du ikke har bedt om denne koden, kan du ignorere denne e-posten.</p>
  <hr style="border: none; border-top: 1px solid #ddd; margin: 30px 0;">
  <p style="font-size: 12px; color: #666;">Dette er en automatisk generert e-post. Vennligst ikke svar p&aring; denne meldingen.</p>
</div>
`

// MessageParams is passed as data when executing the email templates.
type MessageParams struct {
	Code     string
	SiteName string
}

var (
	textTmpl = texttemplate.Must(texttemplate.New("challenge-text").Parse(DefaultTextTemplate))
	htmlTmpl = htmltemplate.Must(htmltemplate.New("challenge-html").Parse(DefaultHTMLTemplate))
)

// RenderMessage builds the challenge email for a destination and code.
func RenderMessage(cfg Config, to, code string) (Message, error) {
	cfg = cfg.WithDefaults()
	params := MessageParams{Code: code, SiteName: cfg.SiteName}

	var text bytes.Buffer
	if err := textTmpl.Execute(&text, params); err != nil {
		return Message{}, errors.Wrap(err, errors.CategoryInternal, "failed to render text body")
	}

	var html bytes.Buffer
	if err := htmlTmpl.Execute(&html, params); err != nil {
		return Message{}, errors.Wrap(err, errors.CategoryInternal, "failed to render html body")
	}

	return Message{
		To:       to,
		From:     cfg.SenderAddress,
		Subject:  DefaultSubject,
		TextBody: text.String(),
		HTMLBody: html.String(),
	}, nil
}

// SMTPNotifier delivers messages through a plain SMTP relay.
type SMTPNotifier struct {
	Addr string
	Auth smtp.Auth
}

// Send implements Notifier. It sends a multipart/alternative message so
// clients without HTML still show the code.
func (n *SMTPNotifier) Send(ctx context.Context, msg Message) error {
	if n.Addr == "" {
		return errors.New("smtp address is required", errors.CategoryBadInput)
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "context cancelled before delivery")
	}

	body := encodeMessage(msg)
	if err := smtp.SendMail(n.Addr, n.Auth, msg.From, []string{msg.To}, body); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "smtp delivery failed")
	}
	return nil
}

const mimeBoundary = "=_passwordless_alt"

func encodeMessage(msg Message) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", msg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mimeBoundary)

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(msg.TextBody)
	b.WriteString("\r\n")

	if msg.HTMLBody != "" {
		fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		b.WriteString(msg.HTMLBody)
		b.WriteString("\r\n")
	}

	fmt.Fprintf(&b, "--%s--\r\n", mimeBoundary)
	return []byte(b.String())
}
