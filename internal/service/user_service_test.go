package service

import (
	"context"
	"errors"
	"testing"

	"bankoffice/internal/auth"
	"bankoffice/internal/config"
	"bankoffice/internal/model"
	"bankoffice/internal/testutil"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newUserService(t *testing.T) *UserService {
	t.Helper()
	return newUserServiceOn(t, testutil.NewDB(t))
}

func newUserServiceOn(t *testing.T, db *gorm.DB) *UserService {
	t.Helper()
	return NewUserService(db, auth.NewPasswordManager(bcrypt.MinCost))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, &RegisterRequest{FirstName: "Luis", LastName: "Mora", Username: "lmora", Password: "Cajero#01", Role: model.RoleEmployee}, 1)
	if err != nil {
		t.Fatalf("Register err=%v", err)
	}
	if user.PasswordHash == "Cajero#01" {
		t.Fatal("password stored in clear")
	}

	if _, err := svc.Register(ctx, &RegisterRequest{FirstName: "x", LastName: "y", Username: "lmora", Password: "Cajero#01", Role: model.RoleEmployee}, 1); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("want ErrDuplicate, got %v", err)
	}
	if _, err := svc.Register(ctx, &RegisterRequest{Username: "weak", Password: "password", Role: model.RoleClient}, 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput for weak password, got %v", err)
	}
	if _, err := svc.Register(ctx, &RegisterRequest{Username: "who", Password: "Cajero#01", Role: "ROOT"}, 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput for role, got %v", err)
	}

	logged, err := svc.Login(ctx, "lmora", "Cajero#01")
	if err != nil || logged.LastLoginAt == nil {
		t.Fatalf("Login user=%+v err=%v", logged, err)
	}
	if _, err := svc.Login(ctx, "lmora", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "ghost", "Cajero#01"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials for unknown user, got %v", err)
	}

	inactive := false
	if _, err := svc.UpdateUser(ctx, user.ID, model.UserUpdate{Active: &inactive}); err != nil {
		t.Fatalf("UpdateUser err=%v", err)
	}
	if _, err := svc.Authenticate(ctx, "lmora", "Cajero#01"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("inactive user must not authenticate, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()
	user, err := svc.Register(ctx, &RegisterRequest{FirstName: "a", LastName: "b", Username: "ana", Password: "Cliente#1", Role: model.RoleClient}, 1)
	if err != nil {
		t.Fatalf("Register err=%v", err)
	}

	if err := svc.ChangePassword(ctx, user.ID, "bad", "Nueva#2024"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
	if err := svc.ChangePassword(ctx, user.ID, "Cliente#1", "short"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
	if err := svc.ChangePassword(ctx, user.ID, "Cliente#1", "Nueva#2024"); err != nil {
		t.Fatalf("ChangePassword err=%v", err)
	}
	if _, err := svc.Authenticate(ctx, "ana", "Nueva#2024"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()
	cfg := config.BootstrapAdminConfig{Username: "admin", Password: "Admin#2024", FirstName: "System", LastName: "Admin"}

	created, err := svc.EnsureBootstrapAdmin(ctx, cfg)
	if err != nil || !created {
		t.Fatalf("first call created=%v err=%v", created, err)
	}
	created, err = svc.EnsureBootstrapAdmin(ctx, cfg)
	if err != nil || created {
		t.Fatalf("second call created=%v err=%v", created, err)
	}

	admin, err := svc.Authenticate(ctx, "admin", "Admin#2024")
	if err != nil || admin.Role != model.RoleAdmin {
		t.Fatalf("admin=%+v err=%v", admin, err)
	}
	if err := svc.DeleteUser(ctx, admin.ID, admin.ID); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("self delete should be rejected, got %v", err)
	}
}
