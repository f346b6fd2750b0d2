package notify

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"pinnaclepm/internal/wizard"
	"pinnaclepm/pkg/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var ErrDispatchFailed = errors.New("notification dispatch failed")

// SubmissionError carries the field-level problems that rejected a draft
// before any notification went out.
type SubmissionError struct {
	Step   int
	Fields map[string]string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("application incomplete at step %d", e.Step)
}

// Sender dispatches one message and returns the provider's message ID.
type Sender interface {
	Send(ctx context.Context, msg *Message) (string, error)
}

// ApplicationRecorder keeps the submitted-application record.
type ApplicationRecorder interface {
	CreateApplication(ctx context.Context, app *types.Application) error
}

// ReceiptStore archives receipt binaries, returning the object key.
type ReceiptStore interface {
	UploadReceipt(ctx context.Context, confirmationCode string, receipt *types.Receipt) (string, error)
}

type Result struct {
	ConfirmationCode   string
	OperatorMessageID  string
	ApplicantMessageID string
}

// Pipeline turns a complete draft into exactly two outbound notifications
// and a confirmation code. Both dispatches must succeed, and both must
// report a provider message ID, for the submission to count as sent.
type Pipeline struct {
	logger   *logrus.Logger
	sender   Sender
	composer *Composer

	applications ApplicationRecorder // optional
	receipts     ReceiptStore        // optional

	intn func(n int) int
}

func NewPipeline(logger *logrus.Logger, sender Sender, composer *Composer) *Pipeline {
	return &Pipeline{
		logger:   logger,
		sender:   sender,
		composer: composer,
		intn:     rand.IntN,
	}
}

// WithRecorder keeps a submitted-application record after a successful
// dispatch.
func (p *Pipeline) WithRecorder(r ApplicationRecorder) *Pipeline {
	p.applications = r
	return p
}

// WithReceiptStore archives the receipt binary after a successful dispatch.
func (p *Pipeline) WithReceiptStore(s ReceiptStore) *Pipeline {
	p.receipts = s
	return p
}

func (p *Pipeline) Submit(ctx context.Context, d *types.Draft, settings types.Settings) (*Result, error) {
	// The tour date was validated against the notice at step time and is
	// not re-checked here; channel availability is.
	rules := wizard.Rules{PaymentMethods: settings.EnabledPaymentMethods()}
	if step, errs := wizard.Validate(d, rules); errs != nil {
		return nil, &SubmissionError{Step: step, Fields: errs}
	}

	code := p.confirmationCode()

	operatorMsg := p.composer.Compose(RoleOperator, d, code)
	applicantMsg := p.composer.Compose(RoleApplicant, d, code)

	var operatorID, applicantID string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		id, err := p.dispatch(gctx, operatorMsg)
		operatorID = id
		return err
	})
	g.Go(func() error {
		id, err := p.dispatch(gctx, applicantMsg)
		applicantID = id
		return err
	})

	if err := g.Wait(); err != nil {
		p.logger.WithError(err).Error("application dispatch failed")
		return nil, fmt.Errorf("%w: %s", ErrDispatchFailed, err)
	}

	p.record(ctx, d, code)

	return &Result{
		ConfirmationCode:   code,
		OperatorMessageID:  operatorID,
		ApplicantMessageID: applicantID,
	}, nil
}

func (p *Pipeline) dispatch(ctx context.Context, msg *Message) (string, error) {
	id, err := p.sender.Send(ctx, msg)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("provider returned no message id for %q", msg.Subject)
	}
	return id, nil
}

// record archives the receipt and the application row. The emails are
// already out at this point, so failures here are logged rather than
// surfaced as a submission failure.
func (p *Pipeline) record(ctx context.Context, d *types.Draft, code string) {
	var receiptKey *string
	if p.receipts != nil && d.PaymentReceipt != nil {
		key, err := p.receipts.UploadReceipt(ctx, code, d.PaymentReceipt)
		if err != nil {
			p.logger.WithError(err).Warn("failed to archive payment receipt")
		} else {
			receiptKey = &key
		}
	}

	if p.applications != nil {
		app := &types.Application{
			ConfirmationCode: code,
			FullName:         d.FullName,
			Email:            d.Email,
			PhoneNumber:      d.PhoneNumber,
			TourDate:         d.TourDate,
			TourTime:         d.TourTime,
			PaymentMethod:    d.PaymentMethod,
			ReceiptKey:       receiptKey,
			SubmittedAt:      time.Now().UTC(),
		}
		if err := p.applications.CreateApplication(ctx, app); err != nil {
			p.logger.WithError(err).Warn("failed to record submitted application")
		}
	}
}

// confirmationCode draws an 8-digit code uniformly from
// [10000000, 99999999].
func (p *Pipeline) confirmationCode() string {
	return fmt.Sprintf("%08d", 10000000+p.intn(90000000))
}
