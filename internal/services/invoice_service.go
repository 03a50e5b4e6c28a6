package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"transferportal/internal/domain"
	"transferportal/internal/domain/models"
	"transferportal/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// InvoiceService renders PDF invoices for paid bookings.
type InvoiceService struct {
	Bookings  BookingStore
	Company   string
	Now       func() time.Time
	RequestID string
}

func (s InvoiceService) bookings() BookingService {
	return BookingService{Bookings: s.Bookings, RequestID: s.RequestID}
}

// Generate returns the invoice bytes and a download filename. Non-admin callers only
// see their own bookings.
func (s InvoiceService) Generate(ctx context.Context, rc domain.RequestContext, bookingID int64) ([]byte, string, error) {
	var (
		b   models.Booking
		err error
	)
	if rc.IsAdmin() {
		b, err = s.bookings().Get(ctx, bookingID)
	} else {
		b, err = s.bookings().GetMine(ctx, rc.UserID, bookingID)
	}
	if err != nil {
		return nil, "", err
	}
	if b.PaymentStatus != models.PaymentPaid {
		return nil, "", domain.ForbiddenError{Msg: "invoice is available only for paid bookings"}
	}

	issued := time.Now()
	if s.Now != nil {
		issued = s.Now()
	}
	data, err := buildInvoicePDF(b, utils.FirstNonEmpty(s.Company, "Airport Transfers"), issued)
	if err != nil {
		return nil, "", domain.InternalError{Msg: "failed to render invoice", Err: err}
	}
	utils.LogEvent(s.RequestID, "docs", "generate_invoice", "ok", "booking_id", b.ID, "bytes", len(data))
	return data, fmt.Sprintf("INVOICE_%s.pdf", utils.SafeFilenamePart(b.Reference)), nil
}

// InvoiceNumber is derived from the booking reference.
func InvoiceNumber(b models.Booking) string {
	return "INV-" + strings.TrimPrefix(b.Reference, "TRF-")
}

func buildInvoicePDF(b models.Booking, company string, issued time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+InvoiceNumber(b), false)
	pdf.SetAuthor(company, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, company)
	pdf.Ln(8)
	pdf.Cell(0, 6, "Invoice no : "+InvoiceNumber(b))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Booking    : "+b.Reference)
	pdf.Ln(6)
	pdf.Cell(0, 6, "Issued     : "+utils.FormatDate(issued))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Billed to")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Passenger : "+safe(b.PassengerName, "-"))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Phone     : "+safe(b.PassengerPhone, "-"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Transfer")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 11)
	trip := strings.ReplaceAll(b.TripType, "_", " ")
	pdf.MultiCell(0, 6, fmt.Sprintf("%s %s, %s, %s (%s)", b.CabModel, trip, b.City, b.State, b.Country), "", "", false)
	pdf.Cell(0, 6, "Airport   : "+safe(b.Airport, "-"))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Pickup at : "+utils.FormatDateTime(b.PickupAt))
	pdf.Ln(6)
	if b.FlightNumber != "" {
		pdf.Cell(0, 6, "Flight    : "+b.FlightNumber)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(130, 7, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, "Amount", "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(130, 7, capitalize(safe(trip, "transfer"))+" fare", "", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, utils.FormatAmount(b.Currency, b.Fare), "", 1, "R", false, 0, "")
	for _, p := range b.Packages {
		pdf.CellFormat(130, 7, p.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, utils.FormatAmount(b.Currency, p.Price), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(130, 8, "Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(50, 8, utils.FormatAmount(b.Currency, b.Total), "T", 1, "R", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "I", 10)
	method := safe(b.PaymentMethod, "manual")
	pdf.MultiCell(0, 6, "Paid via "+method+". Thank you for travelling with us.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
