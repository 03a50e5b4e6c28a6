package services

import (
	"context"
	"net/url"
	"strings"

	"transferportal/internal/domain"
	"transferportal/internal/domain/models"
	"transferportal/internal/repositories"
	"transferportal/internal/utils"
)

// CityImageService manages the hero images shown per city on the marketing site.
type CityImageService struct {
	Images    CityImageStore
	RequestID string
}

func (s CityImageService) images() CityImageStore {
	if s.Images != nil {
		return s.Images
	}
	return repositories.CityImageRepository{}
}

func (s CityImageService) List(ctx context.Context, country string) ([]models.CityImage, error) {
	list, err := s.images().List(ctx, utils.NormalizeSpace(country))
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return list, nil
}

func (s CityImageService) Create(ctx context.Context, in models.CityImagePayload) (models.CityImage, error) {
	ci, err := cityImageFromPayload(in)
	if err != nil {
		return ci, err
	}
	id, err := s.images().Create(ctx, ci)
	if err != nil {
		if domain.IsConflict(err) {
			return ci, err
		}
		return ci, domain.InternalError{Err: err}
	}
	ci.ID = id
	utils.LogEvent(s.RequestID, "city_images", "create", "ok", "id", id, "city", ci.City)
	return ci, nil
}

func (s CityImageService) Update(ctx context.Context, id int64, in models.CityImagePayload) (models.CityImage, error) {
	ci, err := cityImageFromPayload(in)
	if err != nil {
		return ci, err
	}
	if _, err := s.images().GetByID(ctx, id); err != nil {
		if domain.IsNotFound(err) {
			return ci, err
		}
		return ci, domain.InternalError{Err: err}
	}
	ci.ID = id
	if err := s.images().Update(ctx, ci); err != nil {
		if domain.IsConflict(err) {
			return ci, err
		}
		return ci, domain.InternalError{Err: err}
	}
	utils.LogEvent(s.RequestID, "city_images", "update", "ok", "id", id)
	return ci, nil
}

func (s CityImageService) Delete(ctx context.Context, id int64) error {
	if err := s.images().Delete(ctx, id); err != nil {
		if domain.IsNotFound(err) {
			return err
		}
		return domain.InternalError{Err: err}
	}
	utils.LogEvent(s.RequestID, "city_images", "delete", "ok", "id", id)
	return nil
}

func cityImageFromPayload(in models.CityImagePayload) (models.CityImage, error) {
	ci := models.CityImage{
		Country:   utils.NormalizeSpace(in.Country),
		City:      utils.NormalizeSpace(in.City),
		ImageURL:  strings.TrimSpace(in.ImageURL),
		Caption:   utils.NormalizeSpace(in.Caption),
		SortOrder: in.SortOrder,
	}
	if ci.Country == "" {
		return ci, domain.ValidationError{Field: "country", Msg: "is required"}
	}
	if ci.City == "" {
		return ci, domain.ValidationError{Field: "city", Msg: "is required"}
	}
	if err := validateImageURL(ci.ImageURL); err != nil {
		return ci, err
	}
	return ci, nil
}

func validateImageURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return domain.ValidationError{Field: "image_url", Msg: "must be an http or https URL"}
	}
	return nil
}
