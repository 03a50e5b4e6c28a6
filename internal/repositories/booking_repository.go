package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	intdb "transferportal/internal/db"
	"transferportal/internal/domain"
	"transferportal/internal/domain/models"
)

type BookingRepository struct {
	DB *sql.DB
}

// ErrStaleBooking reports that a guarded update found the booking in another state.
var ErrStaleBooking = domain.ConflictError{Resource: "booking", Msg: "booking was changed by another request, reload and retry"}

const bookingColumns = `id, reference, user_id, country, state, city, airport, cab_model, trip_type,
	flight_number, pickup_address, drop_address, pickup_at, passengers, luggage,
	passenger_name, passenger_phone, COALESCE(notes, ''), packages, fare, packages_total, total,
	currency, status, payment_status, payment_method, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (models.Booking, error) {
	var (
		b        models.Booking
		packages []byte
	)
	err := row.Scan(&b.ID, &b.Reference, &b.UserID, &b.Country, &b.State, &b.City, &b.Airport,
		&b.CabModel, &b.TripType, &b.FlightNumber, &b.PickupAddress, &b.DropAddress, &b.PickupAt,
		&b.Passengers, &b.Luggage, &b.PassengerName, &b.PassengerPhone, &b.Notes, &packages,
		&b.Fare, &b.PackagesTotal, &b.Total, &b.Currency, &b.Status, &b.PaymentStatus,
		&b.PaymentMethod, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return b, err
	}
	b.Packages = []models.Package{}
	if len(packages) > 0 {
		if err := json.Unmarshal(packages, &b.Packages); err != nil {
			return b, err
		}
	}
	return b, nil
}

func (r BookingRepository) Create(ctx context.Context, b models.Booking) (int64, error) {
	db, err := pickDB(r.DB)
	if err != nil {
		return 0, err
	}
	if b.Packages == nil {
		b.Packages = []models.Package{}
	}
	packages, err := json.Marshal(b.Packages)
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO bookings (reference, user_id, country, state, city, airport, cab_model, trip_type,
			flight_number, pickup_address, drop_address, pickup_at, passengers, luggage,
			passenger_name, passenger_phone, notes, packages, fare, packages_total, total,
			currency, status, payment_status, payment_method, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`, b.Reference, b.UserID, b.Country, b.State, b.City, b.Airport, b.CabModel, b.TripType,
		b.FlightNumber, b.PickupAddress, b.DropAddress, b.PickupAt, b.Passengers, b.Luggage,
		b.PassengerName, b.PassengerPhone, intdb.NullIfEmpty(b.Notes), packages, b.Fare, b.PackagesTotal, b.Total,
		b.Currency, b.Status, b.PaymentStatus, b.PaymentMethod)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, domain.ConflictError{Resource: "booking", Msg: "reference already used", Err: err}
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r BookingRepository) GetByID(ctx context.Context, id int64) (models.Booking, error) {
	db, err := pickDB(r.DB)
	if err != nil {
		return models.Booking{}, err
	}
	b, err := scanBooking(db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Booking{}, domain.NotFoundError{Resource: "booking", Err: err}
	}
	return b, err
}

func bookingWhere(f models.BookingFilter) (string, []any) {
	where := []string{"1=1"}
	args := []any{}
	if f.UserID > 0 {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.PaymentStatus != "" {
		where = append(where, "payment_status = ?")
		args = append(args, f.PaymentStatus)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		where = append(where, "(reference LIKE ? OR passenger_name LIKE ? OR city LIKE ? OR flight_number LIKE ?)")
		like := likeArg(q)
		args = append(args, like, like, like, like)
	}
	if f.From != nil {
		where = append(where, "pickup_at >= ?")
		args = append(args, *f.From)
	}
	if f.To != nil {
		where = append(where, "pickup_at < ?")
		args = append(args, *f.To)
	}
	return strings.Join(where, " AND "), args
}

func (r BookingRepository) List(ctx context.Context, f models.BookingFilter, page domain.Pagination) ([]models.Booking, int, error) {
	db, err := pickDB(r.DB)
	if err != nil {
		return nil, 0, err
	}
	cond, args := bookingWhere(f)

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	rows, err := db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE `+cond+` ORDER BY pickup_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, page.PageSize, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, b)
	}
	return list, total, rows.Err()
}

// UpdateStatus writes status and payment only while the row still holds from.
// A row changed by another request in between yields a ConflictError.
func (r BookingRepository) UpdateStatus(ctx context.Context, id int64, from models.BookingState, status, paymentStatus string) error {
	db, err := pickDB(r.DB)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx,
		`UPDATE bookings SET status = ?, payment_status = ?, updated_at = NOW()
		 WHERE id = ? AND status = ? AND payment_status = ?`,
		status, paymentStatus, id, from.Status, from.PaymentStatus)
	if err != nil {
		return err
	}
	return guardedResult(res)
}

// UpdatePayment follows the same guard as UpdateStatus.
func (r BookingRepository) UpdatePayment(ctx context.Context, id int64, from models.BookingState, paymentStatus, method string) error {
	db, err := pickDB(r.DB)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx,
		`UPDATE bookings SET payment_status = ?, payment_method = ?, updated_at = NOW()
		 WHERE id = ? AND status = ? AND payment_status = ?`,
		paymentStatus, method, id, from.Status, from.PaymentStatus)
	if err != nil {
		return err
	}
	return guardedResult(res)
}

func guardedResult(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStaleBooking
	}
	return nil
}

func (r BookingRepository) Delete(ctx context.Context, id int64) error {
	db, err := pickDB(r.DB)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "booking"}
	}
	return nil
}

// StatusCounts groups bookings by status.
func (r BookingRepository) StatusCounts(ctx context.Context) ([]models.BookingStatusCount, error) {
	db, err := pickDB(r.DB)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT status, COUNT(*) FROM bookings GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.BookingStatusCount{}
	for rows.Next() {
		var c models.BookingStatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Revenue sums totals of paid bookings and of open unpaid ones.
func (r BookingRepository) Revenue(ctx context.Context) (paid, unpaid int64, err error) {
	db, err := pickDB(r.DB)
	if err != nil {
		return 0, 0, err
	}
	err = db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN payment_status = 'paid' THEN total ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN payment_status = 'unpaid' AND status <> 'cancelled' THEN total ELSE 0 END), 0)
		FROM bookings
	`).Scan(&paid, &unpaid)
	return paid, unpaid, err
}
