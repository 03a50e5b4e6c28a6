package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"transferportal/internal/domain"
	"transferportal/internal/domain/models"
	"transferportal/internal/events"
	"transferportal/internal/repositories"
)

type fakeUsers struct {
	mu     sync.Mutex
	byID   map[int64]models.User
	nextID int64
}

func newFakeUsers(seed ...models.User) *fakeUsers {
	f := &fakeUsers{byID: map[int64]models.User{}}
	for _, u := range seed {
		f.nextID++
		if u.ID == 0 {
			u.ID = f.nextID
		}
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return u, domain.NotFoundError{Resource: "user"}
	}
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, domain.NotFoundError{Resource: "user"}
}

func (f *fakeUsers) EmailTaken(_ context.Context, email string, excludeID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) Create(_ context.Context, u models.User) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u.ID = f.nextID
	f.byID[u.ID] = u
	return u.ID, nil
}

func (f *fakeUsers) List(_ context.Context, fl models.UserFilter, page domain.Pagination) ([]models.User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.byID {
		if fl.Role != "" && u.Role != fl.Role {
			continue
		}
		if fl.Status != "" && u.Status != fl.Status {
			continue
		}
		if fl.Query != "" && !strings.Contains(u.Name+" "+u.Email, fl.Query) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, len(out), nil
}

func (f *fakeUsers) update(id int64, fn func(*models.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return domain.NotFoundError{Resource: "user"}
	}
	fn(&u)
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id int64, name, company, phone string) error {
	return f.update(id, func(u *models.User) { u.Name, u.Company, u.Phone = name, company, phone })
}

func (f *fakeUsers) UpdateEmail(_ context.Context, id int64, email string) error {
	return f.update(id, func(u *models.User) { u.Email = email })
}

func (f *fakeUsers) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	return f.update(id, func(u *models.User) { u.PasswordHash = hash })
}

func (f *fakeUsers) UpdateStatus(_ context.Context, id int64, status string) error {
	return f.update(id, func(u *models.User) { u.Status = status })
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return domain.NotFoundError{Resource: "user"}
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUsers) Counts(_ context.Context) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	active := 0
	for _, u := range f.byID {
		if u.Status == domain.UserActive {
			active++
		}
	}
	return len(f.byID), active, nil
}

// fakePricing keys documents by lower-cased country; WithTx commits only on success.
type fakePricing struct {
	mu   sync.Mutex
	docs map[string]models.PricingDocument
}

func newFakePricing(docs ...models.PricingDocument) *fakePricing {
	f := &fakePricing{docs: map[string]models.PricingDocument{}}
	for _, d := range docs {
		f.docs[strings.ToLower(d.Country)] = d
	}
	return f
}

func (f *fakePricing) List(_ context.Context) ([]models.PricingDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.PricingDocument{}
	for _, d := range f.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Country < out[j].Country })
	return out, nil
}

func (f *fakePricing) Get(_ context.Context, country string) (models.PricingDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[strings.ToLower(country)]
	if !ok {
		return d, domain.NotFoundError{Resource: "pricing for " + country}
	}
	return d, nil
}

func (f *fakePricing) Put(_ context.Context, doc models.PricingDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[strings.ToLower(doc.Country)] = doc
	return nil
}

func (f *fakePricing) Delete(_ context.Context, country string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[strings.ToLower(country)]; !ok {
		return domain.NotFoundError{Resource: "pricing for " + country}
	}
	delete(f.docs, strings.ToLower(country))
	return nil
}

type fakePricingTx struct {
	docs map[string]models.PricingDocument
}

func (t fakePricingTx) GetForUpdate(_ context.Context, country string) (models.PricingDocument, bool, error) {
	d, ok := t.docs[strings.ToLower(country)]
	return d, ok, nil
}

func (t fakePricingTx) Put(_ context.Context, doc models.PricingDocument) error {
	t.docs[strings.ToLower(doc.Country)] = doc
	return nil
}

func (f *fakePricing) WithTx(_ context.Context, fn func(repositories.PricingWriter) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	staged := make(map[string]models.PricingDocument, len(f.docs))
	for k, v := range f.docs {
		staged[k] = v
	}
	if err := fn(fakePricingTx{docs: staged}); err != nil {
		return err
	}
	f.docs = staged
	return nil
}

type fakeBookings struct {
	mu       sync.Mutex
	byID     map[int64]models.Booking
	nextID   int64
	usedRefs map[string]bool
}

func newFakeBookings(seed ...models.Booking) *fakeBookings {
	f := &fakeBookings{byID: map[int64]models.Booking{}, usedRefs: map[string]bool{}}
	for _, b := range seed {
		f.nextID++
		if b.ID == 0 {
			b.ID = f.nextID
		}
		f.byID[b.ID] = b
		f.usedRefs[b.Reference] = true
	}
	return f
}

func (f *fakeBookings) Create(_ context.Context, b models.Booking) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.usedRefs[b.Reference] {
		return 0, domain.ConflictError{Resource: "booking", Msg: "reference already used"}
	}
	f.nextID++
	b.ID = f.nextID
	f.byID[b.ID] = b
	f.usedRefs[b.Reference] = true
	return b.ID, nil
}

func (f *fakeBookings) GetByID(_ context.Context, id int64) (models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.byID[id]
	if !ok {
		return b, domain.NotFoundError{Resource: "booking"}
	}
	return b, nil
}

func (f *fakeBookings) List(_ context.Context, fl models.BookingFilter, _ domain.Pagination) ([]models.Booking, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.byID {
		if fl.UserID > 0 && b.UserID != fl.UserID {
			continue
		}
		if fl.Status != "" && b.Status != fl.Status {
			continue
		}
		if fl.PaymentStatus != "" && b.PaymentStatus != fl.PaymentStatus {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (f *fakeBookings) UpdateStatus(_ context.Context, id int64, from models.BookingState, status, paymentStatus string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.byID[id]
	if !ok || b.StatusState() != from {
		return repositories.ErrStaleBooking
	}
	b.Status, b.PaymentStatus = status, paymentStatus
	f.byID[id] = b
	return nil
}

func (f *fakeBookings) UpdatePayment(_ context.Context, id int64, from models.BookingState, paymentStatus, method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.byID[id]
	if !ok || b.StatusState() != from {
		return repositories.ErrStaleBooking
	}
	b.PaymentStatus, b.PaymentMethod = paymentStatus, method
	f.byID[id] = b
	return nil
}

func (f *fakeBookings) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return domain.NotFoundError{Resource: "booking"}
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeBookings) StatusCounts(_ context.Context) ([]models.BookingStatusCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[string]int{}
	for _, b := range f.byID {
		counts[b.Status]++
	}
	out := []models.BookingStatusCount{}
	for s, n := range counts {
		out = append(out, models.BookingStatusCount{Status: s, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}

func (f *fakeBookings) Revenue(_ context.Context) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var paid, unpaid int64
	for _, b := range f.byID {
		switch {
		case b.PaymentStatus == models.PaymentPaid:
			paid += b.Total
		case b.PaymentStatus == models.PaymentUnpaid && b.Status != models.BookingCancelled:
			unpaid += b.Total
		}
	}
	return paid, unpaid, nil
}

type fakeImages struct {
	mu     sync.Mutex
	byID   map[int64]models.CityImage
	nextID int64
}

func newFakeImages() *fakeImages {
	return &fakeImages{byID: map[int64]models.CityImage{}}
}

func (f *fakeImages) dup(ci models.CityImage) bool {
	for _, x := range f.byID {
		if x.ID != ci.ID && strings.EqualFold(x.Country, ci.Country) && strings.EqualFold(x.City, ci.City) {
			return true
		}
	}
	return false
}

func (f *fakeImages) List(_ context.Context, country string) ([]models.CityImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.CityImage{}
	for _, ci := range f.byID {
		if country == "" || strings.EqualFold(ci.Country, country) {
			out = append(out, ci)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeImages) GetByID(_ context.Context, id int64) (models.CityImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ci, ok := f.byID[id]
	if !ok {
		return ci, domain.NotFoundError{Resource: "city image"}
	}
	return ci, nil
}

func (f *fakeImages) Create(_ context.Context, ci models.CityImage) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dup(ci) {
		return 0, domain.ConflictError{Resource: "city image", Msg: "city already has an image"}
	}
	f.nextID++
	ci.ID = f.nextID
	f.byID[ci.ID] = ci
	return ci.ID, nil
}

func (f *fakeImages) Update(_ context.Context, ci models.CityImage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dup(ci) {
		return domain.ConflictError{Resource: "city image", Msg: "city already has an image"}
	}
	f.byID[ci.ID] = ci
	return nil
}

func (f *fakeImages) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return domain.NotFoundError{Resource: "city image"}
	}
	delete(f.byID, id)
	return nil
}

// recordingBus captures published events.
type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
	fail   bool
}

func (b *recordingBus) Publish(_ context.Context, ev events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return errors.New("bus down")
	}
	b.events = append(b.events, ev)
	return nil
}

func (b *recordingBus) Subscribe(context.Context) (<-chan events.Event, func(), error) {
	return nil, func() {}, errors.New("not supported")
}

func (b *recordingBus) Close() error { return nil }

func (b *recordingBus) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, ev := range b.events {
		out = append(out, ev.Type)
	}
	return out
}

var (
	_ UserStore      = (*fakeUsers)(nil)
	_ PricingStore   = (*fakePricing)(nil)
	_ BookingStore   = (*fakeBookings)(nil)
	_ CityImageStore = (*fakeImages)(nil)
	_ events.Bus     = (*recordingBus)(nil)
)

func indiaPricing() models.PricingDocument {
	return models.PricingDocument{
		Country:  "India",
		Currency: "INR",
		States: []models.PricingState{{
			Name: "Maharashtra",
			Cities: []models.PricingCity{{
				Name:    "Mumbai",
				Airport: "BOM",
				CabRates: []models.CabRate{
					{CabModel: "Sedan", Seats: 4, PickupFare: 1500, DropFare: 1400},
					{CabModel: "SUV", Seats: 6, PickupFare: 2200, DropFare: 2100, RoundTripFare: 4000},
				},
			}},
		}},
	}
}
