package menu

import (
	"context"
	"strings"
	"time"

	"empower/pkg/models"
	"empower/pkg/utils"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrUnknownDish is returned when the chosen dish is not on the menu for the
// chosen category.
var ErrUnknownDish = errors.New("dish not on the menu")

// CustomDish is the customize-your-dish form.
type CustomDish struct {
	Category    models.DishCategory `json:"category" validate:"required,oneof=starter main dessert"`
	Dish        string              `json:"dish" validate:"required"`
	CookingTime string              `json:"cookingTime" validate:"max=64"`
	ChefNotes   string              `json:"chefNotes" validate:"max=1000"`
	Description string              `json:"description" validate:"max=1000"`
	PhotoURI    string              `json:"photoUri" validate:"omitempty,url"`
}

// FormError lists the form fields that failed validation.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string { return "invalid dish details" }

// Ack acknowledges a submitted dish.
type Ack struct {
	ID          string    `json:"id"`
	Dish        string    `json:"dish"`
	Price       int64     `json:"price"`
	Description string    `json:"description"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Kitchen accepts custom dish submissions. Nothing is stored.
type Kitchen struct {
	validate *utils.Validator
	logger   *zap.Logger
}

func NewKitchen(validate *utils.Validator, logger *zap.Logger) *Kitchen {
	return &Kitchen{validate: validate, logger: logger}
}

func (k *Kitchen) Submit(ctx context.Context, form CustomDish) (Ack, error) {
	if err := ctx.Err(); err != nil {
		return Ack{}, err
	}
	if fields := k.validate.Struct(form); fields != nil {
		return Ack{}, &FormError{Fields: fields}
	}

	dish, ok := Find(form.Dish)
	if !ok || dish.Category != form.Category {
		return Ack{}, errors.Wrap(ErrUnknownDish, form.Dish)
	}

	// A blank description keeps the menu's one.
	description := strings.TrimSpace(form.Description)
	if description == "" {
		description = dish.Description
	}

	ack := Ack{
		ID:          uuid.New().String(),
		Dish:        dish.Name,
		Price:       dish.Price,
		Description: description,
		SubmittedAt: time.Now().UTC(),
	}
	k.logger.Info("Dish submitted",
		zap.String("ackID", ack.ID),
		zap.String("dish", ack.Dish),
		zap.String("cookingTime", form.CookingTime),
		zap.Bool("photo", form.PhotoURI != ""))
	return ack, nil
}
