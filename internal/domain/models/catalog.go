package models

import "strings"

// Trip types priced by the pricing documents.
const (
	TripPickup    = "pickup"
	TripDrop      = "drop"
	TripRoundTrip = "round_trip"
)

// CabModel is a vehicle class offered for transfers.
type CabModel struct {
	Name    string `json:"name" yaml:"name"`
	Seats   int    `json:"seats" yaml:"seats"`
	Luggage int    `json:"luggage" yaml:"luggage"`
}

// Package is an add-on sold together with a transfer (meet & greet, child seat, ...).
type Package struct {
	Code  string `json:"code" yaml:"code"`
	Name  string `json:"name" yaml:"name"`
	Price int64  `json:"price" yaml:"price"`
}

type Catalog struct {
	Currency  string     `json:"currency" yaml:"currency"`
	CabModels []CabModel `json:"cab_models" yaml:"cab_models"`
	Packages  []Package  `json:"packages" yaml:"packages"`
	TripTypes []string   `json:"trip_types" yaml:"trip_types"`
}

func (c Catalog) FindPackage(code string) (Package, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, p := range c.Packages {
		if strings.ToLower(p.Code) == code {
			return p, true
		}
	}
	return Package{}, false
}

func (c Catalog) FindCabModel(name string) (CabModel, bool) {
	name = strings.TrimSpace(name)
	for _, m := range c.CabModels {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return CabModel{}, false
}

func (c Catalog) HasTripType(t string) bool {
	for _, tt := range c.TripTypes {
		if tt == t {
			return true
		}
	}
	return false
}

// DefaultCatalog is used when no catalog file is configured.
func DefaultCatalog() Catalog {
	return Catalog{
		Currency: "INR",
		CabModels: []CabModel{
			{Name: "Sedan", Seats: 4, Luggage: 2},
			{Name: "SUV", Seats: 6, Luggage: 4},
			{Name: "Tempo Traveller", Seats: 12, Luggage: 10},
		},
		Packages: []Package{
			{Code: "meet_greet", Name: "Meet & Greet", Price: 500},
			{Code: "child_seat", Name: "Child Seat", Price: 300},
			{Code: "extra_luggage", Name: "Extra Luggage", Price: 250},
			{Code: "waiting_60", Name: "Extra Waiting (60 min)", Price: 400},
		},
		TripTypes: []string{TripPickup, TripDrop, TripRoundTrip},
	}
}
