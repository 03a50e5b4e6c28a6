package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"transferportal/internal/domain"
	"transferportal/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
}

const userColumns = `id, name, company, email, phone, password_hash, role, status, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Company, &u.Email, &u.Phone, &u.PasswordHash,
		&u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r UserRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	db, err := pickDB(r.DB)
	if err != nil {
		return models.User{}, err
	}
	u, err := scanUser(db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
	}
	return u, err
}

func (r UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	db, err := pickDB(r.DB)
	if err != nil {
		return models.User{}, err
	}
	u, err := scanUser(db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
	}
	return u, err
}

// EmailTaken checks whether another user (not excludeID) already owns email.
func (r UserRepository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	db, err := pickDB(r.DB)
	if err != nil {
		return false, err
	}
	var n int
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ? AND id <> ?`, email, excludeID).Scan(&n)
	return n > 0, err
}

func (r UserRepository) Create(ctx context.Context, u models.User) (int64, error) {
	db, err := pickDB(r.DB)
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO users (name, company, email, phone, password_hash, role, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`, u.Name, u.Company, u.Email, u.Phone, u.PasswordHash, u.Role, u.Status)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, domain.ConflictError{Resource: "user", Msg: "email already registered", Err: err}
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r UserRepository) List(ctx context.Context, f models.UserFilter, page domain.Pagination) ([]models.User, int, error) {
	db, err := pickDB(r.DB)
	if err != nil {
		return nil, 0, err
	}

	where := []string{"1=1"}
	args := []any{}
	if q := strings.TrimSpace(f.Query); q != "" {
		where = append(where, "(name LIKE ? OR email LIKE ? OR company LIKE ?)")
		like := likeArg(q)
		args = append(args, like, like, like)
	}
	if f.Role != "" {
		where = append(where, "role = ?")
		args = append(args, f.Role)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	rows, err := db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+cond+` ORDER BY id DESC LIMIT ? OFFSET ?`,
		append(args, page.PageSize, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, u)
	}
	return list, total, rows.Err()
}

func (r UserRepository) UpdateProfile(ctx context.Context, id int64, name, company, phone string) error {
	return r.exec(ctx, `UPDATE users SET name = ?, company = ?, phone = ?, updated_at = NOW() WHERE id = ?`,
		name, company, phone, id)
}

func (r UserRepository) UpdateEmail(ctx context.Context, id int64, email string) error {
	err := r.exec(ctx, `UPDATE users SET email = ?, updated_at = NOW() WHERE id = ?`, email, id)
	if isDuplicateKey(err) {
		return domain.ConflictError{Resource: "user", Msg: "email already registered", Err: err}
	}
	return err
}

func (r UserRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = ?, updated_at = NOW() WHERE id = ?`, hash, id)
}

func (r UserRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	return r.exec(ctx, `UPDATE users SET status = ?, updated_at = NOW() WHERE id = ?`, status, id)
}

func (r UserRepository) Delete(ctx context.Context, id int64) error {
	db, err := pickDB(r.DB)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "user"}
	}
	return nil
}

// Counts returns total and active user counts.
func (r UserRepository) Counts(ctx context.Context) (total, active int, err error) {
	db, err := pickDB(r.DB)
	if err != nil {
		return 0, 0, err
	}
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END), 0) FROM users`,
	).Scan(&total, &active)
	return total, active, err
}

// exec runs an update; callers load the row first, so affected rows are not checked
// (MySQL reports 0 when values are unchanged).
func (r UserRepository) exec(ctx context.Context, query string, args ...any) error {
	db, err := pickDB(r.DB)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, query, args...)
	return err
}
