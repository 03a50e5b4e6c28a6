package handlers

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"transferportal/internal/domain"
	"transferportal/internal/domain/models"
	"transferportal/internal/events"
	"transferportal/internal/repositories"
	"transferportal/internal/services"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "handlers-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type memUsers struct {
	mu   sync.Mutex
	rows []models.User
	next int64
}

func (m *memUsers) find(pred func(models.User) bool) (int, bool) {
	for i, u := range m.rows {
		if pred(u) {
			return i, true
		}
	}
	return -1, false
}

func (m *memUsers) GetByID(_ context.Context, id int64) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i, ok := m.find(func(u models.User) bool { return u.ID == id }); ok {
		return m.rows[i], nil
	}
	return models.User{}, domain.NotFoundError{Resource: "user"}
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i, ok := m.find(func(u models.User) bool { return u.Email == email }); ok {
		return m.rows[i], nil
	}
	return models.User{}, domain.NotFoundError{Resource: "user"}
}

func (m *memUsers) EmailTaken(_ context.Context, email string, excludeID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.find(func(u models.User) bool { return u.Email == email && u.ID != excludeID })
	return ok, nil
}

func (m *memUsers) Create(_ context.Context, u models.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	u.ID = m.next
	m.rows = append(m.rows, u)
	return u.ID, nil
}

func (m *memUsers) List(_ context.Context, _ models.UserFilter, _ domain.Pagination) ([]models.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]models.User(nil), m.rows...)
	return out, len(out), nil
}

func (m *memUsers) update(id int64, fn func(*models.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.find(func(u models.User) bool { return u.ID == id })
	if !ok {
		return domain.NotFoundError{Resource: "user"}
	}
	fn(&m.rows[i])
	return nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id int64, name, company, phone string) error {
	return m.update(id, func(u *models.User) { u.Name, u.Company, u.Phone = name, company, phone })
}

func (m *memUsers) UpdateEmail(_ context.Context, id int64, email string) error {
	return m.update(id, func(u *models.User) { u.Email = email })
}

func (m *memUsers) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	return m.update(id, func(u *models.User) { u.PasswordHash = hash })
}

func (m *memUsers) UpdateStatus(_ context.Context, id int64, status string) error {
	return m.update(id, func(u *models.User) { u.Status = status })
}

func (m *memUsers) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.find(func(u models.User) bool { return u.ID == id })
	if !ok {
		return domain.NotFoundError{Resource: "user"}
	}
	m.rows = append(m.rows[:i], m.rows[i+1:]...)
	return nil
}

func (m *memUsers) Counts(_ context.Context) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	active := 0
	for _, u := range m.rows {
		if u.Status == domain.UserActive {
			active++
		}
	}
	return len(m.rows), active, nil
}

type memPricing struct {
	mu   sync.Mutex
	docs map[string]models.PricingDocument
}

func newMemPricing(docs ...models.PricingDocument) *memPricing {
	m := &memPricing{docs: map[string]models.PricingDocument{}}
	for _, d := range docs {
		m.docs[strings.ToLower(d.Country)] = d
	}
	return m
}

func (m *memPricing) List(_ context.Context) ([]models.PricingDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.PricingDocument{}
	for _, d := range m.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Country < out[j].Country })
	return out, nil
}

func (m *memPricing) Get(_ context.Context, country string) (models.PricingDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[strings.ToLower(country)]
	if !ok {
		return d, domain.NotFoundError{Resource: "pricing for " + country}
	}
	return d, nil
}

func (m *memPricing) Put(_ context.Context, doc models.PricingDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[strings.ToLower(doc.Country)] = doc
	return nil
}

func (m *memPricing) Delete(_ context.Context, country string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[strings.ToLower(country)]; !ok {
		return domain.NotFoundError{Resource: "pricing for " + country}
	}
	delete(m.docs, strings.ToLower(country))
	return nil
}

type memPricingTx map[string]models.PricingDocument

func (t memPricingTx) GetForUpdate(_ context.Context, country string) (models.PricingDocument, bool, error) {
	d, ok := t[strings.ToLower(country)]
	return d, ok, nil
}

func (t memPricingTx) Put(_ context.Context, doc models.PricingDocument) error {
	t[strings.ToLower(doc.Country)] = doc
	return nil
}

func (m *memPricing) WithTx(_ context.Context, fn func(repositories.PricingWriter) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	staged := memPricingTx{}
	for k, v := range m.docs {
		staged[k] = v
	}
	if err := fn(staged); err != nil {
		return err
	}
	m.docs = staged
	return nil
}

type memBookings struct {
	mu   sync.Mutex
	rows map[int64]models.Booking
	next int64
}

func newMemBookings(seed ...models.Booking) *memBookings {
	m := &memBookings{rows: map[int64]models.Booking{}}
	for _, b := range seed {
		m.next++
		b.ID = m.next
		m.rows[b.ID] = b
	}
	return m
}

func (m *memBookings) Create(_ context.Context, b models.Booking) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	b.ID = m.next
	m.rows[b.ID] = b
	return b.ID, nil
}

func (m *memBookings) GetByID(_ context.Context, id int64) (models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return b, domain.NotFoundError{Resource: "booking"}
	}
	return b, nil
}

func (m *memBookings) List(_ context.Context, f models.BookingFilter, _ domain.Pagination) ([]models.Booking, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.rows {
		if f.UserID > 0 && b.UserID != f.UserID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (m *memBookings) UpdateStatus(_ context.Context, id int64, from models.BookingState, status, paymentStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok || b.StatusState() != from {
		return repositories.ErrStaleBooking
	}
	b.Status, b.PaymentStatus = status, paymentStatus
	m.rows[id] = b
	return nil
}

func (m *memBookings) UpdatePayment(_ context.Context, id int64, from models.BookingState, paymentStatus, method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok || b.StatusState() != from {
		return repositories.ErrStaleBooking
	}
	b.PaymentStatus, b.PaymentMethod = paymentStatus, method
	m.rows[id] = b
	return nil
}

func (m *memBookings) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return domain.NotFoundError{Resource: "booking"}
	}
	delete(m.rows, id)
	return nil
}

func (m *memBookings) StatusCounts(_ context.Context) ([]models.BookingStatusCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int{}
	for _, b := range m.rows {
		counts[b.Status]++
	}
	out := []models.BookingStatusCount{}
	for s, n := range counts {
		out = append(out, models.BookingStatusCount{Status: s, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}

func (m *memBookings) Revenue(_ context.Context) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var paid, unpaid int64
	for _, b := range m.rows {
		switch b.PaymentStatus {
		case models.PaymentPaid:
			paid += b.Total
		case models.PaymentUnpaid:
			unpaid += b.Total
		}
	}
	return paid, unpaid, nil
}

type memImages struct {
	mu   sync.Mutex
	rows []models.CityImage
}

func (m *memImages) List(_ context.Context, country string) ([]models.CityImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.CityImage{}
	for _, ci := range m.rows {
		if country == "" || strings.EqualFold(ci.Country, country) {
			out = append(out, ci)
		}
	}
	return out, nil
}

func (m *memImages) GetByID(_ context.Context, id int64) (models.CityImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ci := range m.rows {
		if ci.ID == id {
			return ci, nil
		}
	}
	return models.CityImage{}, domain.NotFoundError{Resource: "city image"}
}

func (m *memImages) Create(_ context.Context, ci models.CityImage) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.rows {
		if strings.EqualFold(x.Country, ci.Country) && strings.EqualFold(x.City, ci.City) {
			return 0, domain.ConflictError{Resource: "city image", Msg: "city already has an image"}
		}
	}
	ci.ID = int64(len(m.rows) + 1)
	m.rows = append(m.rows, ci)
	return ci.ID, nil
}

func (m *memImages) Update(_ context.Context, ci models.CityImage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == ci.ID {
			m.rows[i] = ci
			return nil
		}
	}
	return domain.NotFoundError{Resource: "city image"}
}

func (m *memImages) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return domain.NotFoundError{Resource: "city image"}
}

var (
	_ services.UserStore      = (*memUsers)(nil)
	_ services.PricingStore   = (*memPricing)(nil)
	_ services.BookingStore   = (*memBookings)(nil)
	_ services.CityImageStore = (*memImages)(nil)
)

func testPricing() models.PricingDocument {
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
				},
			}},
		}},
	}
}

type testEnv struct {
	h        *Handler
	users    *memUsers
	bookings *memBookings
	bus      *events.MemoryBus
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	bus := events.NewMemoryBus(8)
	t.Cleanup(func() { _ = bus.Close() })
	users := &memUsers{}
	for _, u := range []models.User{
		{Name: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin, Status: domain.UserActive},
		{Name: "Agent", Email: "agent@example.com", Role: domain.RoleUser, Status: domain.UserActive},
		{Name: "Other", Email: "other@example.com", Role: domain.RoleUser, Status: domain.UserActive},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		u.PasswordHash = string(hash)
		if _, err := users.Create(context.Background(), u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	bookings := newMemBookings()
	return &testEnv{
		h: New(Deps{
			Users:      users,
			Pricing:    newMemPricing(testPricing()),
			Bookings:   bookings,
			CityImages: &memImages{},
			Bus:        bus,
			Tokens:     services.TokenIssuer{Secret: []byte(testSecret), TTL: time.Hour},
			Catalog:    models.DefaultCatalog(),
			HashCost:   bcrypt.MinCost,
			Company:    "Test Transfers",
		}),
		users:    users,
		bookings: bookings,
		bus:      bus,
	}
}

// token issues a bearer token for the seeded user with id.
func (e *testEnv) token(t *testing.T, id int64) string {
	t.Helper()
	u, err := e.users.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("user %d: %v", id, err)
	}
	tok, _, err := e.h.Tokens.Issue(u)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}
