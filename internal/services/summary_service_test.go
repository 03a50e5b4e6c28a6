package services

import (
	"context"
	"testing"

	"transferportal/internal/domain"
	"transferportal/internal/domain/models"
	"transferportal/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestSummaryFromRepositories(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\)").
		WillReturnRows(sqlmock.NewRows([]string{"total", "active"}).AddRow(5, 4))
	mock.ExpectQuery("GROUP BY status").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("confirmed", 2).AddRow("pending", 3))
	mock.ExpectQuery("SUM\\(CASE").
		WillReturnRows(sqlmock.NewRows([]string{"paid", "unpaid"}).AddRow(7000, 2500))

	svc := SummaryService{
		Users:    repositories.UserRepository{DB: db},
		Bookings: repositories.BookingRepository{DB: db},
	}
	sum, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary returned error: %v", err)
	}
	if sum.Users != 5 || sum.ActiveUsers != 4 || sum.TotalBookings != 5 || len(sum.Bookings) != 2 || sum.PaidRevenue != 7000 || sum.UnpaidTotal != 2500 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSummaryWithFakes(t *testing.T) {
	users := newFakeUsers(
		models.User{Status: domain.UserActive},
		models.User{Status: domain.UserDisabled},
	)
	bookings := newFakeBookings(
		models.Booking{Reference: "a", Status: models.BookingConfirmed, PaymentStatus: models.PaymentPaid, Total: 100},
		models.Booking{Reference: "b", Status: models.BookingCancelled, PaymentStatus: models.PaymentUnpaid, Total: 50},
	)
	sum, err := SummaryService{Users: users, Bookings: bookings}.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary returned error: %v", err)
	}
	if sum.Users != 2 || sum.ActiveUsers != 1 || sum.PaidRevenue != 100 || sum.UnpaidTotal != 0 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}
