// Package account keeps the single registered user of the app.
package account

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"empower/internal/storage"
	"empower/pkg/models"
	"empower/pkg/utils"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// ValidationError lists the fields of a NewUser that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "invalid registration"
}

// NewUser is the registration form.
type NewUser struct {
	Username        string `json:"username" validate:"required,min=3,alphanum_"`
	Email           string `json:"email" validate:"omitempty,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

type Service struct {
	store    storage.Store
	validate *utils.Validator
	logger   *zap.Logger
}

func NewService(store storage.Store, validate *utils.Validator, logger *zap.Logger) *Service {
	return &Service{store: store, validate: validate, logger: logger}
}

// Register stores nu as the app's user, replacing any previous one.
func (s *Service) Register(ctx context.Context, nu NewUser) (models.User, error) {
	nu.Username = strings.ToLower(strings.TrimSpace(nu.Username))
	nu.Email = strings.ToLower(strings.TrimSpace(nu.Email))
	if fields := s.validate.Struct(nu); fields != nil {
		return models.User{}, &ValidationError{Fields: fields}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, errors.Wrap(err, "account.Register: hash password")
	}
	usr := models.User{
		Username:     nu.Username,
		Email:        nu.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	data, err := json.Marshal(usr)
	if err != nil {
		return models.User{}, errors.Wrap(err, "account.Register: marshal")
	}
	if err := s.store.Set(ctx, storage.UserKey, string(data)); err != nil {
		return models.User{}, errors.Wrap(err, "account.Register: store")
	}

	s.logger.Info("Registered user", zap.String("username", usr.Username))
	return usr, nil
}

// Login checks username and password against the stored user.
func (s *Service) Login(ctx context.Context, username, password string) (models.User, error) {
	raw, err := s.store.Get(ctx, storage.UserKey)
	if err == storage.ErrNotFound {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, errors.Wrap(err, "account.Login: read user")
	}

	var usr models.User
	if err := json.Unmarshal([]byte(raw), &usr); err != nil {
		s.logger.Warn("Stored user is corrupt", zap.Error(err))
		return models.User{}, ErrInvalidCredentials
	}

	if usr.Username != strings.ToLower(strings.TrimSpace(username)) {
		return models.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(usr.PasswordHash, []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return usr, nil
}
