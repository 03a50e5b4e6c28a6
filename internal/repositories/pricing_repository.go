package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	intdb "transferportal/internal/db"
	"transferportal/internal/domain"
	"transferportal/internal/domain/models"
)

// PricingRepository stores one JSON document per country in table pricing.
type PricingRepository struct {
	DB *sql.DB
}

func scanPricing(row interface{ Scan(...any) error }) (models.PricingDocument, error) {
	var (
		country, currency string
		raw               []byte
		updatedAt         sql.NullTime
	)
	if err := row.Scan(&country, &currency, &raw, &updatedAt); err != nil {
		return models.PricingDocument{}, err
	}
	var doc models.PricingDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.PricingDocument{}, fmt.Errorf("decode pricing %s: %w", country, err)
	}
	doc.Country = country
	doc.Currency = currency
	if updatedAt.Valid {
		doc.UpdatedAt = updatedAt.Time
	}
	return doc, nil
}

func (r PricingRepository) List(ctx context.Context) ([]models.PricingDocument, error) {
	db, err := pickDB(r.DB)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT country, currency, document, updated_at FROM pricing ORDER BY country`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.PricingDocument{}
	for rows.Next() {
		doc, err := scanPricing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (r PricingRepository) Get(ctx context.Context, country string) (models.PricingDocument, error) {
	db, err := pickDB(r.DB)
	if err != nil {
		return models.PricingDocument{}, err
	}
	return r.get(ctx, db, country, false)
}

func (r PricingRepository) get(ctx context.Context, q intdb.QueryRower, country string, forUpdate bool) (models.PricingDocument, error) {
	query := `SELECT country, currency, document, updated_at FROM pricing WHERE country = ? LIMIT 1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	doc, err := scanPricing(q.QueryRowContext(ctx, query, country))
	if errors.Is(err, sql.ErrNoRows) {
		return models.PricingDocument{}, domain.NotFoundError{Resource: "pricing for " + country, Err: err}
	}
	return doc, err
}

// Put upserts the whole document.
func (r PricingRepository) Put(ctx context.Context, doc models.PricingDocument) error {
	db, err := pickDB(r.DB)
	if err != nil {
		return err
	}
	return r.put(ctx, db, doc)
}

func (r PricingRepository) put(ctx context.Context, ex intdb.Execer, doc models.PricingDocument) error {
	body := doc
	body.UpdatedAt = body.UpdatedAt.UTC()
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	_, err = ex.ExecContext(ctx, `
		INSERT INTO pricing (country, currency, document, updated_at)
		VALUES (?, ?, ?, NOW())
		ON DUPLICATE KEY UPDATE currency = VALUES(currency), document = VALUES(document), updated_at = NOW()
	`, doc.Country, doc.Currency, raw)
	return err
}

func (r PricingRepository) Delete(ctx context.Context, country string) error {
	db, err := pickDB(r.DB)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM pricing WHERE country = ?`, country)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "pricing for " + country}
	}
	return nil
}

// PricingWriter is the view of the pricing table inside a transaction.
type PricingWriter interface {
	GetForUpdate(ctx context.Context, country string) (models.PricingDocument, bool, error)
	Put(ctx context.Context, doc models.PricingDocument) error
}

// PricingTx implements PricingWriter over *sql.Tx.
type PricingTx struct {
	repo PricingRepository
	tx   *sql.Tx
}

// GetForUpdate locks and loads a document; ok is false when none exists.
func (t PricingTx) GetForUpdate(ctx context.Context, country string) (models.PricingDocument, bool, error) {
	doc, err := t.repo.get(ctx, t.tx, country, true)
	if domain.IsNotFound(err) {
		return models.PricingDocument{}, false, nil
	}
	if err != nil {
		return models.PricingDocument{}, false, err
	}
	return doc, true, nil
}

func (t PricingTx) Put(ctx context.Context, doc models.PricingDocument) error {
	return t.repo.put(ctx, t.tx, doc)
}

// WithTx runs fn inside one transaction, rolling back on error.
func (r PricingRepository) WithTx(ctx context.Context, fn func(PricingWriter) error) error {
	db, err := pickDB(r.DB)
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(PricingTx{repo: r, tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
