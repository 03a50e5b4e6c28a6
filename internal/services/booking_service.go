package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"transferportal/internal/domain"
	"transferportal/internal/domain/models"
	"transferportal/internal/events"
	"transferportal/internal/metrics"
	"transferportal/internal/repositories"
	"transferportal/internal/utils"

	"github.com/google/uuid"
)

const referenceAttempts = 3

// BookingService owns the booking flow, the user dashboard and the admin bookings tab.
type BookingService struct {
	Bookings     BookingStore
	Pricing      PricingService
	Bus          events.Bus
	Now          func() time.Time
	NewReference func() string
	RequestID    string
}

// allowed status transitions; anything else is a conflict
var bookingTransitions = map[string][]string{
	models.BookingPending:   {models.BookingConfirmed, models.BookingCancelled},
	models.BookingConfirmed: {models.BookingCompleted, models.BookingCancelled},
}

func (s BookingService) bookings() BookingStore {
	if s.Bookings != nil {
		return s.Bookings
	}
	return repositories.BookingRepository{}
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s BookingService) reference() string {
	if s.NewReference != nil {
		return s.NewReference()
	}
	return NewBookingReference()
}

// NewBookingReference returns "TRF-" followed by 8 upper-case hex digits.
func NewBookingReference() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "TRF-" + strings.ToUpper(id[:8])
}

func (s BookingService) Create(ctx context.Context, userID int64, in models.BookingInput) (models.Booking, error) {
	if userID <= 0 {
		return models.Booking{}, domain.UnauthorizedError{}
	}
	b := models.Booking{
		UserID:         userID,
		Country:        utils.NormalizeSpace(in.Country),
		State:          utils.NormalizeSpace(in.State),
		City:           utils.NormalizeSpace(in.City),
		CabModel:       utils.NormalizeSpace(in.CabModel),
		TripType:       strings.ToLower(strings.TrimSpace(in.TripType)),
		FlightNumber:   strings.ToUpper(utils.NormalizeSpace(in.FlightNumber)),
		PickupAddress:  utils.NormalizeSpace(in.PickupAddress),
		DropAddress:    utils.NormalizeSpace(in.DropAddress),
		PickupAt:       in.PickupAt,
		Passengers:     in.Passengers,
		Luggage:        in.Luggage,
		PassengerName:  utils.NormalizeSpace(in.PassengerName),
		PassengerPhone: utils.NormalizePhone(in.PassengerPhone),
		Notes:          strings.TrimSpace(in.Notes),
		Status:         models.BookingPending,
		PaymentStatus:  models.PaymentUnpaid,
	}
	if err := s.validateInput(b); err != nil {
		return models.Booking{}, err
	}

	q, err := s.Pricing.Quote(ctx, models.QuoteRequest{
		Country:  b.Country,
		State:    b.State,
		City:     b.City,
		CabModel: b.CabModel,
		TripType: b.TripType,
		Packages: in.Packages,
	})
	if err != nil {
		return models.Booking{}, err
	}
	if q.Seats > 0 && b.Passengers > q.Seats {
		return models.Booking{}, domain.ValidationError{Field: "passengers", Msg: "exceeds the seats of " + b.CabModel}
	}
	b.Airport = q.Airport
	b.Packages = q.Packages
	b.Fare = q.Fare
	b.PackagesTotal = q.PackagesTotal
	b.Total = q.Total
	b.Currency = q.Currency

	for attempt := 1; ; attempt++ {
		b.Reference = s.reference()
		id, err := s.bookings().Create(ctx, b)
		if err == nil {
			b.ID = id
			break
		}
		if domain.IsConflict(err) && attempt < referenceAttempts {
			continue
		}
		utils.LogError(s.RequestID, "bookings", "create", err, "user_id", userID)
		return models.Booking{}, domain.InternalError{Msg: "failed to save booking", Err: err}
	}
	b.CreatedAt = s.now()
	b.UpdatedAt = b.CreatedAt

	metrics.IncBookingCreated(b.TripType)
	utils.LogEvent(s.RequestID, "bookings", "create", "booking created",
		"booking_id", b.ID, "reference", b.Reference, "total", utils.FormatAmount(b.Currency, b.Total))
	s.publish(ctx, events.BookingCreated, b)
	return b, nil
}

func (s BookingService) validateInput(b models.Booking) error {
	switch {
	case b.Country == "":
		return domain.ValidationError{Field: "country", Msg: "is required"}
	case b.State == "":
		return domain.ValidationError{Field: "state", Msg: "is required"}
	case b.City == "":
		return domain.ValidationError{Field: "city", Msg: "is required"}
	case b.CabModel == "":
		return domain.ValidationError{Field: "cab_model", Msg: "is required"}
	case b.PassengerName == "":
		return domain.ValidationError{Field: "passenger_name", Msg: "is required"}
	case b.PassengerPhone == "":
		return domain.ValidationError{Field: "passenger_phone", Msg: "is required"}
	case b.PickupAt.IsZero() || !b.PickupAt.After(s.now()):
		return domain.ValidationError{Field: "pickup_at", Msg: "must be in the future"}
	case b.Passengers < 1:
		return domain.ValidationError{Field: "passengers", Msg: "must be at least 1"}
	case b.Luggage < 0:
		return domain.ValidationError{Field: "luggage", Msg: "must not be negative"}
	}
	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"country", b.Country, 120},
		{"state", b.State, 120},
		{"city", b.City, 120},
		{"cab_model", b.CabModel, 120},
		{"trip_type", b.TripType, 20},
		{"flight_number", b.FlightNumber, 20},
		{"pickup_address", b.PickupAddress, 500},
		{"drop_address", b.DropAddress, 500},
		{"passenger_name", b.PassengerName, 255},
		{"passenger_phone", b.PassengerPhone, 100},
		{"notes", b.Notes, 2000},
	} {
		if utf8.RuneCountInString(f.value) > f.max {
			return domain.ValidationError{Field: f.name, Msg: fmt.Sprintf("must be at most %d characters", f.max)}
		}
	}
	return nil
}

// ListMine returns the caller's own bookings, newest pickup first.
func (s BookingService) ListMine(ctx context.Context, userID int64, status string, page domain.Pagination) ([]models.Booking, domain.Pagination, error) {
	return s.List(ctx, models.BookingFilter{UserID: userID, Status: status}, page)
}

// GetMine hides bookings of other users behind NotFound.
func (s BookingService) GetMine(ctx context.Context, userID, id int64) (models.Booking, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return b, err
	}
	if b.UserID != userID {
		return models.Booking{}, domain.NotFoundError{Resource: "booking"}
	}
	return b, nil
}

func (s BookingService) CancelMine(ctx context.Context, userID, id int64) (models.Booking, error) {
	b, err := s.GetMine(ctx, userID, id)
	if err != nil {
		return b, err
	}
	return s.transition(ctx, b, models.BookingCancelled)
}

func (s BookingService) List(ctx context.Context, f models.BookingFilter, page domain.Pagination) ([]models.Booking, domain.Pagination, error) {
	if f.Status != "" && !validBookingStatus(f.Status) {
		return nil, page, domain.ValidationError{Field: "status", Msg: "unknown booking status"}
	}
	if f.PaymentStatus != "" && !validPaymentStatus(f.PaymentStatus) {
		return nil, page, domain.ValidationError{Field: "payment_status", Msg: "unknown payment status"}
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, page, domain.ValidationError{Field: "to", Msg: "must not be before from"}
	}
	page = page.Normalize()
	list, total, err := s.bookings().List(ctx, f, page)
	if err != nil {
		return nil, page, domain.InternalError{Err: err}
	}
	page.Total = total
	if list == nil {
		list = []models.Booking{}
	}
	return list, page, nil
}

func (s BookingService) Get(ctx context.Context, id int64) (models.Booking, error) {
	b, err := s.bookings().GetByID(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return b, err
		}
		return b, domain.InternalError{Err: err}
	}
	return b, nil
}

// UpdateStatus moves a booking along pending -> confirmed -> completed, or to cancelled.
func (s BookingService) UpdateStatus(ctx context.Context, id int64, status string) (models.Booking, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !validBookingStatus(status) {
		return models.Booking{}, domain.ValidationError{Field: "status", Msg: "unknown booking status"}
	}
	b, err := s.Get(ctx, id)
	if err != nil {
		return b, err
	}
	return s.transition(ctx, b, status)
}

func (s BookingService) transition(ctx context.Context, b models.Booking, status string) (models.Booking, error) {
	if !canTransition(b.Status, status) {
		return b, domain.ConflictError{Resource: "booking", Msg: "cannot change status from " + b.Status + " to " + status}
	}
	payment := b.PaymentStatus
	if status == models.BookingCancelled && payment == models.PaymentPaid {
		payment = models.PaymentRefunded
	}
	if err := s.bookings().UpdateStatus(ctx, b.ID, b.StatusState(), status, payment); err != nil {
		if domain.IsConflict(err) {
			return b, err
		}
		return b, domain.InternalError{Err: err}
	}
	prev := b.Status
	b.Status = status
	b.PaymentStatus = payment
	b.UpdatedAt = s.now()

	metrics.IncBookingStatus(status)
	utils.LogEvent(s.RequestID, "bookings", "update_status", prev+" -> "+status,
		"booking_id", b.ID, "payment_status", payment)
	s.publish(ctx, events.BookingUpdated, b)
	return b, nil
}

// UpdatePayment records a manual payment change.
func (s BookingService) UpdatePayment(ctx context.Context, id int64, paymentStatus, method string) (models.Booking, error) {
	paymentStatus = strings.ToLower(strings.TrimSpace(paymentStatus))
	if !validPaymentStatus(paymentStatus) {
		return models.Booking{}, domain.ValidationError{Field: "payment_status", Msg: "unknown payment status"}
	}
	b, err := s.Get(ctx, id)
	if err != nil {
		return b, err
	}
	if paymentStatus == models.PaymentRefunded && b.PaymentStatus != models.PaymentPaid {
		return b, domain.ConflictError{Resource: "booking", Msg: "only paid bookings can be refunded"}
	}
	if paymentStatus == models.PaymentPaid && b.Status == models.BookingCancelled {
		return b, domain.ConflictError{Resource: "booking", Msg: "cancelled bookings cannot be marked paid"}
	}
	method = utils.FirstNonEmpty(method, b.PaymentMethod)
	if paymentStatus == b.PaymentStatus && method == b.PaymentMethod {
		return b, nil
	}
	if err := s.bookings().UpdatePayment(ctx, b.ID, b.StatusState(), paymentStatus, method); err != nil {
		if domain.IsConflict(err) {
			return b, err
		}
		return b, domain.InternalError{Err: err}
	}
	b.PaymentStatus = paymentStatus
	b.PaymentMethod = method
	b.UpdatedAt = s.now()

	utils.LogEvent(s.RequestID, "bookings", "update_payment", paymentStatus, "booking_id", b.ID, "method", method)
	s.publish(ctx, events.BookingUpdated, b)
	return b, nil
}

func (s BookingService) Delete(ctx context.Context, id int64) error {
	b, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.bookings().Delete(ctx, id); err != nil {
		if domain.IsNotFound(err) {
			return err
		}
		return domain.InternalError{Err: err}
	}
	utils.LogEvent(s.RequestID, "bookings", "delete", "ok", "booking_id", id, "reference", b.Reference)
	s.publish(ctx, events.BookingDeleted, b)
	return nil
}

// publish never fails the caller; the feed is best effort.
func (s BookingService) publish(ctx context.Context, typ string, b models.Booking) {
	if s.Bus == nil {
		return
	}
	if err := s.Bus.Publish(ctx, events.NewBookingEvent(typ, b)); err != nil {
		utils.LogError(s.RequestID, "bookings", "publish", err, "type", typ, "booking_id", b.ID)
	}
}

func canTransition(from, to string) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func validBookingStatus(s string) bool {
	switch s {
	case models.BookingPending, models.BookingConfirmed, models.BookingCompleted, models.BookingCancelled:
		return true
	}
	return false
}

func validPaymentStatus(s string) bool {
	switch s {
	case models.PaymentUnpaid, models.PaymentPaid, models.PaymentRefunded, models.PaymentFailed:
		return true
	}
	return false
}
