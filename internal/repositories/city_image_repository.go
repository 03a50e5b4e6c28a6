package repositories

import (
	"context"
	"database/sql"
	"errors"

	"transferportal/internal/domain"
	"transferportal/internal/domain/models"
)

type CityImageRepository struct {
	DB *sql.DB
}

func (r CityImageRepository) List(ctx context.Context, country string) ([]models.CityImage, error) {
	db, err := pickDB(r.DB)
	if err != nil {
		return nil, err
	}
	query := `SELECT id, country, city, image_url, caption, sort_order FROM city_images`
	args := []any{}
	if country != "" {
		query += ` WHERE country = ?`
		args = append(args, country)
	}
	query += ` ORDER BY sort_order, country, city`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.CityImage{}
	for rows.Next() {
		var ci models.CityImage
		if err := rows.Scan(&ci.ID, &ci.Country, &ci.City, &ci.ImageURL, &ci.Caption, &ci.SortOrder); err != nil {
			return nil, err
		}
		list = append(list, ci)
	}
	return list, rows.Err()
}

func (r CityImageRepository) GetByID(ctx context.Context, id int64) (models.CityImage, error) {
	db, err := pickDB(r.DB)
	if err != nil {
		return models.CityImage{}, err
	}
	var ci models.CityImage
	err = db.QueryRowContext(ctx,
		`SELECT id, country, city, image_url, caption, sort_order FROM city_images WHERE id = ? LIMIT 1`, id,
	).Scan(&ci.ID, &ci.Country, &ci.City, &ci.ImageURL, &ci.Caption, &ci.SortOrder)
	if errors.Is(err, sql.ErrNoRows) {
		return ci, domain.NotFoundError{Resource: "city image", Err: err}
	}
	return ci, err
}

func (r CityImageRepository) Create(ctx context.Context, ci models.CityImage) (int64, error) {
	db, err := pickDB(r.DB)
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO city_images (country, city, image_url, caption, sort_order) VALUES (?, ?, ?, ?, ?)`,
		ci.Country, ci.City, ci.ImageURL, ci.Caption, ci.SortOrder)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, domain.ConflictError{Resource: "city image", Msg: "city already has an image", Err: err}
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r CityImageRepository) Update(ctx context.Context, ci models.CityImage) error {
	db, err := pickDB(r.DB)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`UPDATE city_images SET country = ?, city = ?, image_url = ?, caption = ?, sort_order = ? WHERE id = ?`,
		ci.Country, ci.City, ci.ImageURL, ci.Caption, ci.SortOrder, ci.ID)
	if isDuplicateKey(err) {
		return domain.ConflictError{Resource: "city image", Msg: "city already has an image", Err: err}
	}
	return err
}

func (r CityImageRepository) Delete(ctx context.Context, id int64) error {
	db, err := pickDB(r.DB)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM city_images WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "city image"}
	}
	return nil
}
