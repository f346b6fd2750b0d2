package notify

import (
	"context"
	"fmt"
	"mime"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESAPI is the slice of the SES client the mailer uses.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

// SESMailer dispatches composed messages through Amazon SES. Messages with
// an attachment go out as hand-built MIME via SendRawEmail; plain messages
// use the structured SendEmail API.
type SESMailer struct {
	client SESAPI
}

func NewSESMailer(client SESAPI) *SESMailer {
	return &SESMailer{client: client}
}

func (m *SESMailer) Send(ctx context.Context, msg *Message) (string, error) {
	if msg.Attachment != nil {
		return m.sendRaw(ctx, msg)
	}

	out, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(m.source(msg)),
		Destination: &sestypes.Destination{
			ToAddresses: []string{msg.To},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(msg.Subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(msg.Body)},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("ses send email: %w", err)
	}

	return aws.ToString(out.MessageId), nil
}

func (m *SESMailer) sendRaw(ctx context.Context, msg *Message) (string, error) {
	raw := buildMIMEMessage(msg)

	out, err := m.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		RawMessage: &sestypes.RawMessage{Data: []byte(raw)},
	})
	if err != nil {
		return "", fmt.Errorf("ses send raw email: %w", err)
	}

	return aws.ToString(out.MessageId), nil
}

func (m *SESMailer) source(msg *Message) string {
	if msg.FromName == "" {
		return msg.FromEmail
	}
	return fmt.Sprintf("%q <%s>", msg.FromName, msg.FromEmail)
}

const mimeBoundary = "pinnaclepm-mixed-boundary"

// buildMIMEMessage assembles a multipart/mixed message: a text body part
// followed by the receipt attachment, base64 wire-wrapped. The attachment
// content is already base64 on the wire, so it passes through untouched
// apart from line wrapping.
func buildMIMEMessage(msg *Message) string {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %q <%s>\r\n", msg.FromName, msg.FromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/mixed; boundary=%q\r\n", mimeBoundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	b.WriteString("\r\n")

	att := msg.Attachment
	contentType := att.Type
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	fmt.Fprintf(&b, "Content-Type: %s\r\n", contentType)
	b.WriteString("Content-Transfer-Encoding: base64\r\n")
	fmt.Fprintf(&b, "Content-Disposition: attachment; filename=%s\r\n",
		mime.QEncoding.Encode("utf-8", att.Name))
	b.WriteString("\r\n")
	b.WriteString(wrap76(att.Content))
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", mimeBoundary)

	return b.String()
}

func wrap76(s string) string {
	var b strings.Builder
	for len(s) > 76 {
		b.WriteString(s[:76])
		b.WriteString("\r\n")
		s = s[76:]
	}
	b.WriteString(s)
	return b.String()
}
