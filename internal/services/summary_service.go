package services

import (
	"context"

	"transferportal/internal/domain"
	"transferportal/internal/domain/models"
	"transferportal/internal/repositories"
)

// SummaryService feeds the admin dashboard header.
type SummaryService struct {
	Users    UserStore
	Bookings BookingStore
}

func (s SummaryService) Summary(ctx context.Context) (models.AdminSummary, error) {
	users := s.Users
	if users == nil {
		users = repositories.UserRepository{}
	}
	bookings := s.Bookings
	if bookings == nil {
		bookings = repositories.BookingRepository{}
	}

	var out models.AdminSummary
	var err error
	if out.Users, out.ActiveUsers, err = users.Counts(ctx); err != nil {
		return out, domain.InternalError{Err: err}
	}
	if out.Bookings, err = bookings.StatusCounts(ctx); err != nil {
		return out, domain.InternalError{Err: err}
	}
	for _, c := range out.Bookings {
		out.TotalBookings += c.Count
	}
	if out.PaidRevenue, out.UnpaidTotal, err = bookings.Revenue(ctx); err != nil {
		return out, domain.InternalError{Err: err}
	}
	return out, nil
}
