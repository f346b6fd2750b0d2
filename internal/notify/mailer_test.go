package notify

import (
	"context"
	"testing"

	"pinnaclepm/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	emailIn *ses.SendEmailInput
	rawIn   *ses.SendRawEmailInput
}

func (f *fakeSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.emailIn = params
	return &ses.SendEmailOutput{MessageId: aws.String("plain-1")}, nil
}

func (f *fakeSES) SendRawEmail(_ context.Context, params *ses.SendRawEmailInput, _ ...func(*ses.Options)) (*ses.SendRawEmailOutput, error) {
	f.rawIn = params
	return &ses.SendRawEmailOutput{MessageId: aws.String("raw-1")}, nil
}

func TestSESMailer_PlainMessage(t *testing.T) {
	client := &fakeSES{}
	mailer := NewSESMailer(client)

	id, err := mailer.Send(context.Background(), &Message{
		FromName:  "Pinnacle Property Management",
		FromEmail: "no-reply@example.com",
		To:        "jane@example.com",
		Subject:   "Application Confirmation and Access Code",
		Body:      "Dear Jane,",
	})
	require.NoError(t, err)
	assert.Equal(t, "plain-1", id)

	require.NotNil(t, client.emailIn)
	assert.Nil(t, client.rawIn)
	assert.Equal(t, `"Pinnacle Property Management" <no-reply@example.com>`, aws.ToString(client.emailIn.Source))
	assert.Equal(t, []string{"jane@example.com"}, client.emailIn.Destination.ToAddresses)
}

func TestSESMailer_AttachmentGoesRaw(t *testing.T) {
	client := &fakeSES{}
	mailer := NewSESMailer(client)

	id, err := mailer.Send(context.Background(), &Message{
		FromName:  "Pinnacle Property Management",
		FromEmail: "no-reply@example.com",
		To:        "operator@example.com",
		Subject:   "New Rental Application Received",
		Body:      "A new application has been received.",
		Attachment: &types.Receipt{
			Name:    "receipt.png",
			Type:    "image/png",
			Content: "aGVsbG8=",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "raw-1", id)

	require.NotNil(t, client.rawIn)
	assert.Nil(t, client.emailIn)

	raw := string(client.rawIn.RawMessage.Data)
	assert.Contains(t, raw, "Content-Type: multipart/mixed")
	assert.Contains(t, raw, "Content-Type: image/png")
	assert.Contains(t, raw, "Content-Disposition: attachment; filename=receipt.png")
	assert.Contains(t, raw, "aGVsbG8=")
}
