package notify

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"regexp"
	"sync"
	"testing"

	"pinnaclepm/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu        sync.Mutex
	sent      []*Message
	failWhen  func(*Message) error
	messageID string
}

func (f *fakeSender) Send(_ context.Context, msg *Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWhen != nil {
		if err := f.failWhen(msg); err != nil {
			return "", err
		}
	}
	f.sent = append(f.sent, msg)
	if f.messageID == "" {
		return "msg-" + msg.Subject, nil
	}
	return f.messageID, nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeSender) bySubject(subject string) *Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.sent {
		if m.Subject == subject {
			return m
		}
	}
	return nil
}

type fakeRecorder struct {
	app *types.Application
	err error
}

func (f *fakeRecorder) CreateApplication(_ context.Context, app *types.Application) error {
	f.app = app
	return f.err
}

type fakeReceiptStore struct {
	code string
	err  error
}

func (f *fakeReceiptStore) UploadReceipt(_ context.Context, code string, _ *types.Receipt) (string, error) {
	f.code = code
	if f.err != nil {
		return "", f.err
	}
	return "receipts/" + code + ".png", nil
}

func testComposer() *Composer {
	return &Composer{
		FromName:       "Pinnacle Property Management",
		FromEmail:      "no-reply@example.com",
		OperatorEmail:  "operator@example.com",
		DocumentsEmail: "rental@pprmgt.com",
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testDraft() *types.Draft {
	return &types.Draft{
		ID:                  "draft-1",
		CurrentStep:         5,
		FullName:            "Jane Applicant",
		Email:               "jane@example.com",
		PhoneNumber:         "555-0100",
		CurrentAddress:      "12 Elm Street, Springfield",
		MonthlyIncome:       "4200",
		AnnualIncome:        "50400",
		OutstandingDebts:    "0",
		MissedRentPayments:  types.No,
		HasEvictionHistory:  types.No,
		HasBankruptcy:       types.No,
		NumberOfOccupants:   "2",
		HasChildren:         types.No,
		HasPets:             types.No,
		HasSmoking:          types.No,
		PlannedStayDuration: "2 years",
		MoveInDate:          "2025-10-01",
		NeedsFlexibility:    types.No,
		HasConsent:          types.Yes,
		TourDate:            "2025-09-20",
		TourTime:            "10:00 AM",
		PaymentMethod:       types.PaymentMethodZelle,
		PaymentReceipt: &types.Receipt{
			Name:    "receipt.png",
			Type:    "image/png",
			Content: base64.StdEncoding.EncodeToString([]byte("fake image bytes")),
		},
	}
}

var codeRe = regexp.MustCompile(`^\d{8}$`)

func TestSubmit_SendsBothNotifications(t *testing.T) {
	sender := &fakeSender{}
	p := NewPipeline(testLogger(), sender, testComposer())

	res, err := p.Submit(context.Background(), testDraft(), types.DefaultSettings())
	require.NoError(t, err)

	assert.Equal(t, 2, sender.count())
	assert.Regexp(t, codeRe, res.ConfirmationCode)
	assert.NotEmpty(t, res.OperatorMessageID)
	assert.NotEmpty(t, res.ApplicantMessageID)

	operator := sender.bySubject("New Rental Application Received")
	require.NotNil(t, operator)
	assert.Equal(t, "operator@example.com", operator.To)
	require.NotNil(t, operator.Attachment)
	assert.Equal(t, "receipt.png", operator.Attachment.Name)

	applicant := sender.bySubject("Application Confirmation and Access Code")
	require.NotNil(t, applicant)
	assert.Equal(t, "jane@example.com", applicant.To)
	assert.Nil(t, applicant.Attachment)
	assert.Contains(t, applicant.Body, res.ConfirmationCode)
}

func TestSubmit_ConfirmationCodeRange(t *testing.T) {
	sender := &fakeSender{}
	p := NewPipeline(testLogger(), sender, testComposer())

	p.intn = func(int) int { return 0 }
	res, err := p.Submit(context.Background(), testDraft(), types.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, "10000000", res.ConfirmationCode)

	p.intn = func(n int) int { return n - 1 }
	res, err = p.Submit(context.Background(), testDraft(), types.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, "99999999", res.ConfirmationCode)
}

func TestSubmit_OneDispatchFailureFailsSubmission(t *testing.T) {
	sender := &fakeSender{
		failWhen: func(m *Message) error {
			if m.Subject == "Application Confirmation and Access Code" {
				return errors.New("mailbox over quota")
			}
			return nil
		},
	}
	p := NewPipeline(testLogger(), sender, testComposer())

	res, err := p.Submit(context.Background(), testDraft(), types.DefaultSettings())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrDispatchFailed)
}

type senderFunc func(ctx context.Context, m *Message) (string, error)

func (f senderFunc) Send(ctx context.Context, m *Message) (string, error) { return f(ctx, m) }

// A sender that returns no message ID counts as a failed dispatch even
// when it reports no error.
func TestSubmit_EmptyProviderMessageIDFailsSubmission(t *testing.T) {
	blank := senderFunc(func(context.Context, *Message) (string, error) { return "", nil })
	p := NewPipeline(testLogger(), blank, testComposer())

	res, err := p.Submit(context.Background(), testDraft(), types.DefaultSettings())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrDispatchFailed)
}

func TestSubmit_IncompleteDraftRejectedBeforeDispatch(t *testing.T) {
	sender := &fakeSender{}
	p := NewPipeline(testLogger(), sender, testComposer())

	d := testDraft()
	d.PaymentReceipt = nil

	res, err := p.Submit(context.Background(), d, types.DefaultSettings())
	assert.Nil(t, res)

	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, 5, subErr.Step)
	assert.Contains(t, subErr.Fields, "paymentReceipt")
	assert.Zero(t, sender.count(), "nothing goes out for an incomplete application")
}

func TestSubmit_DisabledChannelRejected(t *testing.T) {
	sender := &fakeSender{}
	p := NewPipeline(testLogger(), sender, testComposer())

	settings := types.DefaultSettings()
	settings.ZelleEnabled = false

	res, err := p.Submit(context.Background(), testDraft(), settings)
	assert.Nil(t, res)

	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Contains(t, subErr.Fields, "paymentMethod")
	assert.Zero(t, sender.count())
}

func TestSubmit_RecordsApplicationAndReceipt(t *testing.T) {
	sender := &fakeSender{}
	recorder := &fakeRecorder{}
	receipts := &fakeReceiptStore{}
	p := NewPipeline(testLogger(), sender, testComposer()).
		WithRecorder(recorder).
		WithReceiptStore(receipts)

	res, err := p.Submit(context.Background(), testDraft(), types.DefaultSettings())
	require.NoError(t, err)

	require.NotNil(t, recorder.app)
	assert.Equal(t, res.ConfirmationCode, recorder.app.ConfirmationCode)
	assert.Equal(t, "Jane Applicant", recorder.app.FullName)
	assert.Equal(t, res.ConfirmationCode, receipts.code)
	require.NotNil(t, recorder.app.ReceiptKey)
	assert.Equal(t, "receipts/"+res.ConfirmationCode+".png", *recorder.app.ReceiptKey)
	assert.False(t, recorder.app.SubmittedAt.IsZero())
}

func TestSubmit_RecordFailuresDoNotFailSubmission(t *testing.T) {
	sender := &fakeSender{}
	recorder := &fakeRecorder{err: errors.New("database down")}
	receipts := &fakeReceiptStore{err: errors.New("bucket gone")}
	p := NewPipeline(testLogger(), sender, testComposer()).
		WithRecorder(recorder).
		WithReceiptStore(receipts)

	res, err := p.Submit(context.Background(), testDraft(), types.DefaultSettings())
	require.NoError(t, err, "the emails are already out; archival is best effort")
	require.NotNil(t, res)
	require.NotNil(t, recorder.app)
	assert.Nil(t, recorder.app.ReceiptKey)
}
