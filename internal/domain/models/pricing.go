package models

import "time"

// PricingDocument holds every rate for one country, nested state -> city -> cab model.
type PricingDocument struct {
	Country   string         `json:"country"`
	Currency  string         `json:"currency"`
	States    []PricingState `json:"states"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type PricingState struct {
	Name   string        `json:"name"`
	Cities []PricingCity `json:"cities"`
}

type PricingCity struct {
	Name     string    `json:"name"`
	Airport  string    `json:"airport"`
	CabRates []CabRate `json:"cab_rates"`
}

// CabRate fares are whole currency units; 0 means the trip type is not offered.
type CabRate struct {
	CabModel      string `json:"cab_model"`
	Seats         int    `json:"seats"`
	PickupFare    int64  `json:"pickup_fare"`
	DropFare      int64  `json:"drop_fare"`
	RoundTripFare int64  `json:"round_trip_fare"`
	ExtraKmRate   int64  `json:"extra_km_rate"`
}

// FareFor returns the fare for a trip type. A round trip without its own fare costs
// both legs, and is not offered when either leg is missing.
func (r CabRate) FareFor(tripType string) int64 {
	switch tripType {
	case TripPickup:
		return r.PickupFare
	case TripDrop:
		return r.DropFare
	case TripRoundTrip:
		if r.RoundTripFare > 0 {
			return r.RoundTripFare
		}
		if r.PickupFare > 0 && r.DropFare > 0 {
			return r.PickupFare + r.DropFare
		}
	}
	return 0
}

// Location tree without fares, for the booking flow and marketing site.
type LocationState struct {
	Name   string         `json:"name"`
	Cities []LocationCity `json:"cities"`
}

type LocationCity struct {
	Name      string   `json:"name"`
	Airport   string   `json:"airport"`
	CabModels []string `json:"cab_models"`
}

type CountrySummary struct {
	Country   string    `json:"country"`
	Currency  string    `json:"currency"`
	States    int       `json:"states"`
	Cities    int       `json:"cities"`
	Rates     int       `json:"rates"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QuoteRequest is what the booking flow sends to price a transfer.
type QuoteRequest struct {
	Country  string   `json:"country" binding:"required"`
	State    string   `json:"state" binding:"required"`
	City     string   `json:"city" binding:"required"`
	CabModel string   `json:"cab_model" binding:"required"`
	TripType string   `json:"trip_type" binding:"required"`
	Packages []string `json:"packages"`
}

type QuoteLine struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

type Quote struct {
	Currency      string      `json:"currency"`
	Fare          int64       `json:"fare"`
	PackagesTotal int64       `json:"packages_total"`
	Total         int64       `json:"total"`
	Airport       string      `json:"airport"`
	Seats         int         `json:"seats"`
	Packages      []Package   `json:"packages"`
	Lines         []QuoteLine `json:"lines"`
}

// Import modes for bulk pricing updates.
const (
	ImportReplace = "replace"
	ImportMerge   = "merge"
)

type ImportSummary struct {
	Mode      string   `json:"mode"`
	Countries []string `json:"countries"`
	States    int      `json:"states"`
	Cities    int      `json:"cities"`
	Rates     int      `json:"rates"`
}
