package services

import (
	"context"
	"strings"
	"time"

	"transferportal/internal/domain"
	"transferportal/internal/domain/models"
	"transferportal/internal/metrics"
	"transferportal/internal/repositories"
	"transferportal/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

// AuthService handles self-service account flows: register, login, profile.
type AuthService struct {
	Users     UserStore
	Tokens    TokenIssuer
	HashCost  int
	RequestID string
}

type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Company  string `json:"company"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      models.PublicUser `json:"user"`
}

func (s AuthService) users() UserStore {
	if s.Users != nil {
		return s.Users
	}
	return repositories.UserRepository{}
}

func (s AuthService) Register(ctx context.Context, in RegisterInput) (models.PublicUser, error) {
	u, err := newAccount(ctx, s.users(), s.HashCost, accountInput{
		Name:     in.Name,
		Company:  in.Company,
		Email:    in.Email,
		Phone:    in.Phone,
		Password: in.Password,
		Role:     domain.RoleUser,
	})
	if err != nil {
		return models.PublicUser{}, err
	}
	utils.LogEvent(s.RequestID, "auth", "register", "account created", "user_id", u.ID)
	return u.ToPublic(), nil
}

func (s AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return LoginResult{}, domain.ValidationError{Msg: "email and password are required"}
	}

	badCredentials := domain.UnauthorizedError{Msg: "invalid email or password"}
	u, err := s.users().GetByEmail(ctx, email)
	if domain.IsNotFound(err) {
		metrics.IncAuthFailure("unknown_email")
		return LoginResult{}, badCredentials
	}
	if err != nil {
		return LoginResult{}, domain.InternalError{Err: err}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		metrics.IncAuthFailure("bad_password")
		return LoginResult{}, badCredentials
	}
	if u.Status != domain.UserActive {
		metrics.IncAuthFailure("disabled")
		return LoginResult{}, domain.ForbiddenError{Msg: "account is disabled"}
	}

	token, exp, err := s.Tokens.Issue(u)
	if err != nil {
		return LoginResult{}, domain.InternalError{Msg: "failed to issue token", Err: err}
	}
	utils.LogEvent(s.RequestID, "auth", "login", "ok", "user_id", u.ID)
	return LoginResult{Token: token, ExpiresAt: exp, User: u.ToPublic()}, nil
}

func (s AuthService) Me(ctx context.Context, userID int64) (models.PublicUser, error) {
	u, err := s.users().GetByID(ctx, userID)
	if err != nil {
		return models.PublicUser{}, err
	}
	return u.ToPublic(), nil
}

// UpdateProfile changes name, company and phone only.
func (s AuthService) UpdateProfile(ctx context.Context, userID int64, in models.ProfileUpdate) (models.PublicUser, error) {
	u, err := s.users().GetByID(ctx, userID)
	if err != nil {
		return models.PublicUser{}, err
	}
	if in.Name != nil {
		name := utils.NormalizeSpace(*in.Name)
		if name == "" {
			return models.PublicUser{}, domain.ValidationError{Field: "name", Msg: "must not be empty"}
		}
		u.Name = name
	}
	if in.Company != nil {
		u.Company = utils.NormalizeSpace(*in.Company)
	}
	if in.Phone != nil {
		u.Phone = utils.NormalizePhone(*in.Phone)
	}
	if err := s.users().UpdateProfile(ctx, u.ID, u.Name, u.Company, u.Phone); err != nil {
		return models.PublicUser{}, domain.InternalError{Err: err}
	}
	return u.ToPublic(), nil
}

func (s AuthService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	u, err := s.users().GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)); err != nil {
		return domain.UnauthorizedError{Msg: "current password is incorrect"}
	}
	hash, err := hashPassword(newPassword, s.HashCost)
	if err != nil {
		return err
	}
	if err := s.users().UpdatePasswordHash(ctx, userID, hash); err != nil {
		return domain.InternalError{Err: err}
	}
	utils.LogEvent(s.RequestID, "auth", "change_password", "ok", "user_id", userID)
	return nil
}

type accountInput struct {
	Name, Company, Email, Phone, Password, Role string
}

// newAccount validates, hashes and stores a new user. Shared by self-registration
// and admin account creation.
func newAccount(ctx context.Context, users UserStore, cost int, in accountInput) (models.User, error) {
	u := models.User{
		Name:    utils.NormalizeSpace(in.Name),
		Company: utils.NormalizeSpace(in.Company),
		Email:   utils.NormalizeEmail(in.Email),
		Phone:   utils.NormalizePhone(in.Phone),
		Role:    in.Role,
		Status:  domain.UserActive,
	}
	if u.Name == "" {
		return u, domain.ValidationError{Field: "name", Msg: "is required"}
	}
	if err := validateEmail(u.Email); err != nil {
		return u, err
	}
	if u.Role != domain.RoleUser && u.Role != domain.RoleAdmin {
		return u, domain.ValidationError{Field: "role", Msg: "must be user or admin"}
	}

	taken, err := users.EmailTaken(ctx, u.Email, 0)
	if err != nil {
		return u, domain.InternalError{Err: err}
	}
	if taken {
		return u, domain.ConflictError{Resource: "user", Msg: "email already registered"}
	}

	hash, err := hashPassword(in.Password, cost)
	if err != nil {
		return u, err
	}
	u.PasswordHash = hash

	id, err := users.Create(ctx, u)
	if err != nil {
		if domain.IsConflict(err) {
			return u, err
		}
		return u, domain.InternalError{Err: err}
	}
	u.ID = id
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	return u, nil
}

func validateEmail(email string) error {
	at := strings.IndexByte(email, '@')
	if email == "" || at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return domain.ValidationError{Field: "email", Msg: "is not a valid address"}
	}
	return nil
}

func hashPassword(password string, cost int) (string, error) {
	if len(password) < minPasswordLen {
		return "", domain.ValidationError{Field: "password", Msg: "must be at least 6 characters"}
	}
	if len(password) > 72 {
		return "", domain.ValidationError{Field: "password", Msg: "must be at most 72 bytes"}
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", domain.InternalError{Msg: "failed to hash password", Err: err}
	}
	return string(hash), nil
}
