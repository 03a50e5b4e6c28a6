package services

import (
	"context"
	"fmt"

	"transferportal/internal/domain"
	"transferportal/internal/domain/models"
	"transferportal/internal/repositories"
	"transferportal/internal/utils"
)

// UserService backs the admin users tab and the privileged account endpoints.
type UserService struct {
	Users     UserStore
	HashCost  int
	RequestID string
}

type CreateAccountInput struct {
	Name     string `json:"name" binding:"required"`
	Company  string `json:"company"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

func (s UserService) users() UserStore {
	if s.Users != nil {
		return s.Users
	}
	return repositories.UserRepository{}
}

func (s UserService) List(ctx context.Context, f models.UserFilter, page domain.Pagination) ([]models.PublicUser, domain.Pagination, error) {
	if f.Role != "" && f.Role != domain.RoleUser && f.Role != domain.RoleAdmin {
		return nil, page, domain.ValidationError{Field: "role", Msg: "must be user or admin"}
	}
	if f.Status != "" && f.Status != domain.UserActive && f.Status != domain.UserDisabled {
		return nil, page, domain.ValidationError{Field: "status", Msg: "must be active or disabled"}
	}
	page = page.Normalize()
	list, total, err := s.users().List(ctx, f, page)
	if err != nil {
		return nil, page, domain.InternalError{Err: err}
	}
	page.Total = total
	out := make([]models.PublicUser, 0, len(list))
	for i := range list {
		out = append(out, list[i].ToPublic())
	}
	return out, page, nil
}

func (s UserService) Get(ctx context.Context, id int64) (models.PublicUser, error) {
	u, err := s.users().GetByID(ctx, id)
	if err != nil {
		return models.PublicUser{}, err
	}
	return u.ToPublic(), nil
}

// CreateAccount creates an auth account on behalf of a customer.
func (s UserService) CreateAccount(ctx context.Context, in CreateAccountInput) (models.PublicUser, error) {
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	u, err := newAccount(ctx, s.users(), s.HashCost, accountInput{
		Name:     in.Name,
		Company:  in.Company,
		Email:    in.Email,
		Phone:    in.Phone,
		Password: in.Password,
		Role:     role,
	})
	if err != nil {
		return models.PublicUser{}, err
	}
	utils.LogEvent(s.RequestID, "users", "create_account", "account created", "user_id", u.ID, "role", u.Role)
	return u.ToPublic(), nil
}

// UpdateCredentials changes email and/or password of any account.
func (s UserService) UpdateCredentials(ctx context.Context, id int64, in models.CredentialsUpdate) (models.PublicUser, error) {
	if in.Email == nil && in.Password == nil {
		return models.PublicUser{}, domain.ValidationError{Msg: "email or password is required"}
	}
	u, err := s.users().GetByID(ctx, id)
	if err != nil {
		return models.PublicUser{}, err
	}

	if in.Email != nil {
		email := utils.NormalizeEmail(*in.Email)
		if err := validateEmail(email); err != nil {
			return models.PublicUser{}, err
		}
		if email != u.Email {
			taken, err := s.users().EmailTaken(ctx, email, id)
			if err != nil {
				return models.PublicUser{}, domain.InternalError{Err: err}
			}
			if taken {
				return models.PublicUser{}, domain.ConflictError{Resource: "user", Msg: "email already registered"}
			}
			if err := s.users().UpdateEmail(ctx, id, email); err != nil {
				if domain.IsConflict(err) {
					return models.PublicUser{}, err
				}
				return models.PublicUser{}, domain.InternalError{Err: err}
			}
			u.Email = email
		}
	}

	if in.Password != nil {
		hash, err := hashPassword(*in.Password, s.HashCost)
		if err != nil {
			return models.PublicUser{}, err
		}
		if err := s.users().UpdatePasswordHash(ctx, id, hash); err != nil {
			return models.PublicUser{}, domain.InternalError{Err: err}
		}
	}

	utils.LogEvent(s.RequestID, "users", "update_credentials", "ok",
		"user_id", id, "email_changed", in.Email != nil, "password_changed", in.Password != nil)
	return u.ToPublic(), nil
}

func (s UserService) SetStatus(ctx context.Context, actorID, id int64, status string) (models.PublicUser, error) {
	if status != domain.UserActive && status != domain.UserDisabled {
		return models.PublicUser{}, domain.ValidationError{Field: "status", Msg: "must be active or disabled"}
	}
	if actorID == id && status == domain.UserDisabled {
		return models.PublicUser{}, domain.ConflictError{Resource: "user", Msg: "cannot disable your own account"}
	}
	u, err := s.users().GetByID(ctx, id)
	if err != nil {
		return models.PublicUser{}, err
	}
	if err := s.users().UpdateStatus(ctx, id, status); err != nil {
		return models.PublicUser{}, domain.InternalError{Err: err}
	}
	u.Status = status
	utils.LogEvent(s.RequestID, "users", "set_status", status, "user_id", id)
	return u.ToPublic(), nil
}

func (s UserService) Delete(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return domain.ConflictError{Resource: "user", Msg: "cannot delete your own account"}
	}
	if err := s.users().Delete(ctx, id); err != nil {
		if domain.IsNotFound(err) {
			return err
		}
		return domain.InternalError{Err: fmt.Errorf("delete user %d: %w", id, err)}
	}
	utils.LogEvent(s.RequestID, "users", "delete", "ok", "user_id", id)
	return nil
}

// EnsureAdmin creates the bootstrap admin account when no user owns email yet.
// An existing account is left as is.
func (s UserService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = utils.NormalizeEmail(email)
	if email == "" {
		return false, nil
	}
	_, err := s.users().GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !domain.IsNotFound(err) {
		return false, domain.InternalError{Err: err}
	}
	if _, err := s.CreateAccount(ctx, CreateAccountInput{
		Name:     "Administrator",
		Email:    email,
		Password: password,
		Role:     domain.RoleAdmin,
	}); err != nil {
		return false, err
	}
	return true, nil
}
