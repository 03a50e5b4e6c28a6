package services

import (
	"context"
	"testing"
	"time"

	"transferportal/internal/domain"
	"transferportal/internal/domain/models"

	"golang.org/x/crypto/bcrypt"
)

func newAuth(users *fakeUsers) AuthService {
	return AuthService{
		Users:    users,
		Tokens:   TokenIssuer{Secret: []byte("test-secret"), TTL: time.Hour},
		HashCost: bcrypt.MinCost,
	}
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	svc := newAuth(newFakeUsers())

	u, err := svc.Register(ctx, RegisterInput{Name: "  Asha  Rao ", Company: "Acme", Email: "Asha@Example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if u.Name != "Asha Rao" || u.Email != "asha@example.com" || u.Role != domain.RoleUser || u.Status != domain.UserActive {
		t.Fatalf("unexpected user: %+v", u)
	}

	res, err := svc.Login(ctx, "ASHA@example.com ", "secret1")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.Token == "" || res.User.ID != u.ID {
		t.Fatalf("unexpected login result: %+v", res)
	}
	claims, err := svc.Tokens.Parse(res.Token)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if claims.UserID != u.ID || claims.Role != domain.RoleUser {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newAuth(newFakeUsers(models.User{Email: "taken@example.com", Status: domain.UserActive}))

	cases := []struct {
		name  string
		in    RegisterInput
		check func(error) bool
	}{
		{"bad email", RegisterInput{Name: "A", Email: "nope", Password: "secret1"}, domain.IsValidation},
		{"short password", RegisterInput{Name: "A", Email: "a@b.c", Password: "123"}, domain.IsValidation},
		{"missing name", RegisterInput{Name: " ", Email: "a@b.c", Password: "secret1"}, domain.IsValidation},
		{"duplicate email", RegisterInput{Name: "A", Email: "Taken@example.com", Password: "secret1"}, domain.IsConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.in)
			if !tc.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	users := newFakeUsers(
		models.User{Email: "on@example.com", PasswordHash: string(hash), Role: domain.RoleUser, Status: domain.UserActive},
		models.User{Email: "off@example.com", PasswordHash: string(hash), Role: domain.RoleUser, Status: domain.UserDisabled},
	)
	svc := newAuth(users)

	if _, err := svc.Login(ctx, "on@example.com", "wrong-pass"); !domain.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized for bad password, got %v", err)
	}
	if _, err := svc.Login(ctx, "ghost@example.com", "secret1"); !domain.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized for unknown email, got %v", err)
	}
	if _, err := svc.Login(ctx, "off@example.com", "secret1"); !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden for disabled account, got %v", err)
	}
	if _, err := svc.Login(ctx, "", ""); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateProfileAndChangePassword(t *testing.T) {
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	users := newFakeUsers(models.User{Name: "Old", Email: "me@example.com", PasswordHash: string(hash), Role: domain.RoleUser, Status: domain.UserActive})
	svc := newAuth(users)

	name, phone := "New Name", "+91 98 765"
	u, err := svc.UpdateProfile(ctx, 1, models.ProfileUpdate{Name: &name, Phone: &phone})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if u.Name != "New Name" || u.Phone != "+9198765" || u.Email != "me@example.com" {
		t.Fatalf("unexpected profile: %+v", u)
	}

	empty := "  "
	if _, err := svc.UpdateProfile(ctx, 1, models.ProfileUpdate{Name: &empty}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for empty name, got %v", err)
	}

	if err := svc.ChangePassword(ctx, 1, "wrong", "another1"); !domain.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized for wrong old password, got %v", err)
	}
	if err := svc.ChangePassword(ctx, 1, "secret1", "another1"); err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}
	if _, err := svc.Login(ctx, "me@example.com", "another1"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestTokenExpiry(t *testing.T) {
	now := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	issuer := TokenIssuer{Secret: []byte("k"), TTL: time.Hour, Now: func() time.Time { return now }}

	tok, exp, err := issuer.Issue(models.User{ID: 7, Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if !exp.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected expiry %v", exp)
	}
	if c, err := issuer.Parse(tok); err != nil || c.UserID != 7 || c.Role != domain.RoleAdmin {
		t.Fatalf("unexpected parse result %+v, %v", c, err)
	}

	later := issuer
	later.Now = func() time.Time { return now.Add(2 * time.Hour) }
	if _, err := later.Parse(tok); !domain.IsUnauthorized(err) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}

	other := TokenIssuer{Secret: []byte("other"), Now: issuer.Now}
	if _, err := other.Parse(tok); !domain.IsUnauthorized(err) {
		t.Fatalf("expected wrong secret to be rejected, got %v", err)
	}
}
