package account

import (
	"context"
	"testing"

	"empower/internal/storage"
	"empower/pkg/utils"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

func newService() (*Service, *storage.MemoryStore) {
	st := storage.NewMemoryStore()
	return NewService(st, utils.NewValidator(), zap.NewNop()), st
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newService()
	tests := []struct {
		name       string
		nu         NewUser
		wantFields []string
	}{
		{name: "empty", nu: NewUser{}, wantFields: []string{"password", "passwordConfirm", "username"}},
		{name: "short username", nu: NewUser{Username: "ab", Password: "pw", PasswordConfirm: "pw"}, wantFields: []string{"username"}},
		{name: "bad email", nu: NewUser{Username: "thandi", Email: "nope", Password: "pw", PasswordConfirm: "pw"}, wantFields: []string{"email"}},
		{name: "mismatch", nu: NewUser{Username: "thandi", Password: "pw", PasswordConfirm: "wp"}, wantFields: []string{"passwordConfirm"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.nu)
			verr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("Register() error = %v, want *ValidationError", err)
			}
			var got []string
			for _, f := range []string{"email", "password", "passwordConfirm", "username"} {
				if _, ok := verr.Fields[f]; ok {
					got = append(got, f)
				}
			}
			if diff := cmp.Diff(tt.wantFields, got); diff != "" {
				t.Errorf("invalid fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRegisterLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	if _, err := svc.Login(ctx, "thandi", "secret"); err != ErrInvalidCredentials {
		t.Fatalf("Login() before Register error = %v, want ErrInvalidCredentials", err)
	}

	usr, err := svc.Register(ctx, NewUser{Username: " Thandi ", Email: "T@Example.com", Password: "secret", PasswordConfirm: "secret"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if usr.Username != "thandi" || usr.Email != "t@example.com" {
		t.Errorf("Register() = %+v, want cleaned username and email", usr)
	}
	if string(usr.PasswordHash) == "secret" {
		t.Error("password stored in clear")
	}

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{name: "ok", username: "thandi", password: "secret"},
		{name: "case insensitive username", username: "THANDI", password: "secret"},
		{name: "wrong password", username: "thandi", password: "Secret", wantErr: ErrInvalidCredentials},
		{name: "wrong user", username: "sipho", password: "secret", wantErr: ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Login(ctx, tt.username, tt.password); err != tt.wantErr {
				t.Errorf("Login() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogin_CorruptRecord(t *testing.T) {
	ctx := context.Background()
	svc, st := newService()
	_ = st.Set(ctx, storage.UserKey, "{")
	if _, err := svc.Login(ctx, "thandi", "secret"); err != ErrInvalidCredentials {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}
