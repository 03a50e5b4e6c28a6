package services

import (
	"context"
	"testing"

	"transferportal/internal/domain"
	"transferportal/internal/domain/models"

	"golang.org/x/crypto/bcrypt"
)

func seededUsers() *fakeUsers {
	return newFakeUsers(
		models.User{Name: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin, Status: domain.UserActive},
		models.User{Name: "Agent", Email: "agent@example.com", Role: domain.RoleUser, Status: domain.UserActive},
	)
}

func TestCreateAccountDefaultsToUserRole(t *testing.T) {
	svc := UserService{Users: seededUsers(), HashCost: bcrypt.MinCost}
	u, err := svc.CreateAccount(context.Background(), CreateAccountInput{Name: "New", Email: "new@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("CreateAccount returned error: %v", err)
	}
	if u.Role != domain.RoleUser || u.ID == 0 {
		t.Fatalf("unexpected account: %+v", u)
	}

	if _, err := svc.CreateAccount(context.Background(), CreateAccountInput{Name: "X", Email: "x@example.com", Password: "secret1", Role: "root"}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for bad role, got %v", err)
	}
}

func TestUpdateCredentials(t *testing.T) {
	ctx := context.Background()
	users := seededUsers()
	svc := UserService{Users: users, HashCost: bcrypt.MinCost}

	if _, err := svc.UpdateCredentials(ctx, 2, models.CredentialsUpdate{}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error with no fields, got %v", err)
	}
	taken := "admin@example.com"
	if _, err := svc.UpdateCredentials(ctx, 2, models.CredentialsUpdate{Email: &taken}); !domain.IsConflict(err) {
		t.Fatalf("expected conflict for taken email, got %v", err)
	}

	email, password := " Agent2@Example.com", "newpass1"
	u, err := svc.UpdateCredentials(ctx, 2, models.CredentialsUpdate{Email: &email, Password: &password})
	if err != nil {
		t.Fatalf("UpdateCredentials returned error: %v", err)
	}
	if u.Email != "agent2@example.com" {
		t.Fatalf("email not updated: %+v", u)
	}
	stored, _ := users.GetByID(ctx, 2)
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(password)) != nil {
		t.Fatalf("password hash not updated")
	}

	if _, err := svc.UpdateCredentials(ctx, 99, models.CredentialsUpdate{Password: &password}); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSetStatusAndDeleteGuardSelf(t *testing.T) {
	ctx := context.Background()
	svc := UserService{Users: seededUsers()}

	if _, err := svc.SetStatus(ctx, 1, 1, domain.UserDisabled); !domain.IsConflict(err) {
		t.Fatalf("expected conflict disabling self, got %v", err)
	}
	if _, err := svc.SetStatus(ctx, 1, 2, "paused"); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	u, err := svc.SetStatus(ctx, 1, 2, domain.UserDisabled)
	if err != nil || u.Status != domain.UserDisabled {
		t.Fatalf("SetStatus: %+v, %v", u, err)
	}

	if err := svc.Delete(ctx, 1, 1); !domain.IsConflict(err) {
		t.Fatalf("expected conflict deleting self, got %v", err)
	}
	if err := svc.Delete(ctx, 1, 2); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := svc.Delete(ctx, 1, 2); !domain.IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestListUsersFilters(t *testing.T) {
	svc := UserService{Users: seededUsers()}
	list, page, err := svc.List(context.Background(), models.UserFilter{Role: domain.RoleAdmin}, domain.Pagination{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 1 || list[0].Email != "admin@example.com" || page.Total != 1 || page.PageSize != domain.DefaultPageSize {
		t.Fatalf("unexpected list %+v page %+v", list, page)
	}
	if _, _, err := svc.List(context.Background(), models.UserFilter{Status: "gone"}, domain.Pagination{}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	users := seededUsers()
	svc := UserService{Users: users, HashCost: bcrypt.MinCost}

	created, err := svc.EnsureAdmin(ctx, "admin@example.com", "whatever")
	if err != nil || created {
		t.Fatalf("existing admin should be kept, created=%v err=%v", created, err)
	}

	created, err = svc.EnsureAdmin(ctx, " Ops@Example.com ", "secret1")
	if err != nil || !created {
		t.Fatalf("expected bootstrap admin, created=%v err=%v", created, err)
	}
	u, err := users.GetByEmail(ctx, "ops@example.com")
	if err != nil {
		t.Fatalf("bootstrap admin not stored: %v", err)
	}
	if u.Role != domain.RoleAdmin {
		t.Fatalf("role = %q, want admin", u.Role)
	}

	if created, err := svc.EnsureAdmin(ctx, "", ""); err != nil || created {
		t.Fatalf("empty email should be a no-op, created=%v err=%v", created, err)
	}
	if _, err := svc.EnsureAdmin(ctx, "weak@example.com", "123"); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for short password, got %v", err)
	}
}
