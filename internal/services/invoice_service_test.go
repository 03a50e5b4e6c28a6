package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"transferportal/internal/domain"
	"transferportal/internal/domain/models"
)

func invoiceBookings() *fakeBookings {
	base := models.Booking{
		UserID: 7, Country: "India", State: "Maharashtra", City: "Mumbai", Airport: "BOM",
		CabModel: "Sedan", TripType: models.TripRoundTrip, PickupAt: fixedNow,
		PassengerName: "Ravi", PassengerPhone: "+91900", Fare: 2900, PackagesTotal: 500, Total: 3400,
		Currency: "INR", Status: models.BookingConfirmed,
		Packages: []models.Package{{Code: "meet_greet", Name: "Meet & Greet", Price: 500}},
	}
	paid := base
	paid.Reference, paid.PaymentStatus, paid.PaymentMethod = "TRF-ABCDEF12", models.PaymentPaid, "cash"
	unpaid := base
	unpaid.Reference, unpaid.PaymentStatus = "TRF-00000000", models.PaymentUnpaid
	return newFakeBookings(paid, unpaid)
}

func TestInvoiceGenerate(t *testing.T) {
	svc := InvoiceService{Bookings: invoiceBookings(), Now: func() time.Time { return fixedNow }}

	pdf, name, err := svc.Generate(context.Background(), domain.RequestContext{UserID: 7, Role: domain.RoleUser}, 1)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) || name != "INVOICE_TRF-ABCDEF12.pdf" {
		t.Fatalf("unexpected invoice %q (%d bytes)", name, len(pdf))
	}
	if _, _, err := svc.Generate(context.Background(), domain.RequestContext{UserID: 1, Role: domain.RoleAdmin}, 1); err != nil {
		t.Fatalf("admin should get any invoice: %v", err)
	}
}

func TestInvoiceRules(t *testing.T) {
	svc := InvoiceService{Bookings: invoiceBookings()}
	ctx := context.Background()

	if _, _, err := svc.Generate(ctx, domain.RequestContext{UserID: 7, Role: domain.RoleUser}, 2); !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden for unpaid booking, got %v", err)
	}
	if _, _, err := svc.Generate(ctx, domain.RequestContext{UserID: 8, Role: domain.RoleUser}, 1); !domain.IsNotFound(err) {
		t.Fatalf("expected not found for another user, got %v", err)
	}
	if _, _, err := svc.Generate(ctx, domain.RequestContext{UserID: 1, Role: domain.RoleAdmin}, 99); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestInvoiceNumber(t *testing.T) {
	if got := InvoiceNumber(models.Booking{Reference: "TRF-ABCDEF12"}); got != "INV-ABCDEF12" {
		t.Fatalf("unexpected invoice number %q", got)
	}
}
