package models

import "time"

// Booking status
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

// Payment status
const (
	PaymentUnpaid   = "unpaid"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
	PaymentFailed   = "failed"
)

// Booking is one airport transfer reservation.
type Booking struct {
	ID             int64     `json:"id"`
	Reference      string    `json:"reference"`
	UserID         int64     `json:"user_id"`
	Country        string    `json:"country"`
	State          string    `json:"state"`
	City           string    `json:"city"`
	Airport        string    `json:"airport"`
	CabModel       string    `json:"cab_model"`
	TripType       string    `json:"trip_type"`
	FlightNumber   string    `json:"flight_number"`
	PickupAddress  string    `json:"pickup_address"`
	DropAddress    string    `json:"drop_address"`
	PickupAt       time.Time `json:"pickup_at"`
	Passengers     int       `json:"passengers"`
	Luggage        int       `json:"luggage"`
	PassengerName  string    `json:"passenger_name"`
	PassengerPhone string    `json:"passenger_phone"`
	Notes          string    `json:"notes"`
	Packages       []Package `json:"packages"`
	Fare           int64     `json:"fare"`
	PackagesTotal  int64     `json:"packages_total"`
	Total          int64     `json:"total"`
	Currency       string    `json:"currency"`
	Status         string    `json:"status"`
	PaymentStatus  string    `json:"payment_status"`
	PaymentMethod  string    `json:"payment_method"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BookingState is the status pair a guarded update expects to find in storage.
type BookingState struct {
	Status        string
	PaymentStatus string
}

func (b Booking) StatusState() BookingState {
	return BookingState{Status: b.Status, PaymentStatus: b.PaymentStatus}
}

// BookingInput is the booking-flow payload; prices are always computed server-side.
type BookingInput struct {
	Country        string    `json:"country" binding:"required"`
	State          string    `json:"state" binding:"required"`
	City           string    `json:"city" binding:"required"`
	CabModel       string    `json:"cab_model" binding:"required"`
	TripType       string    `json:"trip_type" binding:"required"`
	FlightNumber   string    `json:"flight_number"`
	PickupAddress  string    `json:"pickup_address"`
	DropAddress    string    `json:"drop_address"`
	PickupAt       time.Time `json:"pickup_at" binding:"required"`
	Passengers     int       `json:"passengers"`
	Luggage        int       `json:"luggage"`
	PassengerName  string    `json:"passenger_name" binding:"required"`
	PassengerPhone string    `json:"passenger_phone" binding:"required"`
	Notes          string    `json:"notes"`
	Packages       []string  `json:"packages"`
}

type BookingFilter struct {
	Status        string
	PaymentStatus string
	UserID        int64
	Query         string
	From          *time.Time
	To            *time.Time
}

// BookingStatusCount is one row of the admin summary.
type BookingStatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type AdminSummary struct {
	Users         int                  `json:"users"`
	ActiveUsers   int                  `json:"active_users"`
	TotalBookings int                  `json:"total_bookings"`
	Bookings      []BookingStatusCount `json:"bookings"`
	PaidRevenue   int64                `json:"paid_revenue"`
	UnpaidTotal   int64                `json:"unpaid_total"`
}
