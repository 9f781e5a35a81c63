// Package payment captures the card form for a checkout. No money moves: a
// well-formed form is always accepted.
package payment

import (
	"context"
	"time"

	"empower/internal/enrollment"
	"empower/pkg/utils"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrEmptySelection = errors.New("no courses selected")

// Card is the payment form.
type Card struct {
	Number string `json:"cardNumber" validate:"required,numeric,min=12,max=19"`
	Expiry string `json:"expiryDate" validate:"required,expiry"`
	CVV    string `json:"cvv" validate:"required,numeric,min=3,max=4"`
}

// FormError lists the card fields that failed validation.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string { return "invalid payment details" }

type Receipt struct {
	ID          string    `json:"id"`
	CourseIDs   []string  `json:"courseIds"`
	Total       string    `json:"total"`
	ProcessedAt time.Time `json:"processedAt"`
}

type Processor struct {
	validate *utils.Validator
	logger   *zap.Logger
}

func NewProcessor(validate *utils.Validator, logger *zap.Logger) *Processor {
	return &Processor{validate: validate, logger: logger}
}

func (p *Processor) Submit(ctx context.Context, h enrollment.Handoff, card Card) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	if len(h.CourseIDs) == 0 {
		return Receipt{}, ErrEmptySelection
	}
	if fields := p.validate.Struct(card); fields != nil {
		return Receipt{}, &FormError{Fields: fields}
	}

	r := Receipt{
		ID:          uuid.New().String(),
		CourseIDs:   h.CourseIDs,
		Total:       h.Quote.TotalString(),
		ProcessedAt: time.Now().UTC(),
	}
	p.logger.Info("Payment processed",
		zap.String("receiptID", r.ID),
		zap.Strings("courseIDs", r.CourseIDs),
		zap.String("total", r.Total))
	return r, nil
}
