package services

import (
	"context"

	"transferportal/internal/domain"
	"transferportal/internal/domain/models"
	"transferportal/internal/repositories"
)

// UserStore is the user persistence used by auth and the admin users tab.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	Create(ctx context.Context, u models.User) (int64, error)
	List(ctx context.Context, f models.UserFilter, page domain.Pagination) ([]models.User, int, error)
	UpdateProfile(ctx context.Context, id int64, name, company, phone string) error
	UpdateEmail(ctx context.Context, id int64, email string) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
	Counts(ctx context.Context) (total, active int, err error)
}

// PricingStore is the pricing document persistence.
type PricingStore interface {
	List(ctx context.Context) ([]models.PricingDocument, error)
	Get(ctx context.Context, country string) (models.PricingDocument, error)
	Put(ctx context.Context, doc models.PricingDocument) error
	Delete(ctx context.Context, country string) error
	WithTx(ctx context.Context, fn func(repositories.PricingWriter) error) error
}

type BookingStore interface {
	Create(ctx context.Context, b models.Booking) (int64, error)
	GetByID(ctx context.Context, id int64) (models.Booking, error)
	List(ctx context.Context, f models.BookingFilter, page domain.Pagination) ([]models.Booking, int, error)
	// UpdateStatus and UpdatePayment fail with a ConflictError when the row no longer holds from.
	UpdateStatus(ctx context.Context, id int64, from models.BookingState, status, paymentStatus string) error
	UpdatePayment(ctx context.Context, id int64, from models.BookingState, paymentStatus, method string) error
	Delete(ctx context.Context, id int64) error
	StatusCounts(ctx context.Context) ([]models.BookingStatusCount, error)
	Revenue(ctx context.Context) (paid, unpaid int64, err error)
}

type CityImageStore interface {
	List(ctx context.Context, country string) ([]models.CityImage, error)
	GetByID(ctx context.Context, id int64) (models.CityImage, error)
	Create(ctx context.Context, ci models.CityImage) (int64, error)
	Update(ctx context.Context, ci models.CityImage) error
	Delete(ctx context.Context, id int64) error
}

var (
	_ UserStore      = repositories.UserRepository{}
	_ PricingStore   = repositories.PricingRepository{}
	_ BookingStore   = repositories.BookingRepository{}
	_ CityImageStore = repositories.CityImageRepository{}
)
