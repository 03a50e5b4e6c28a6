package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"transferportal/internal/domain"
	"transferportal/internal/domain/models"
	"transferportal/internal/metrics"
	"transferportal/internal/repositories"
	"transferportal/internal/utils"
)

// PricingService manages per-country pricing documents and computes quotes.
type PricingService struct {
	Pricing   PricingStore
	Catalog   models.Catalog
	RequestID string
}

func (s PricingService) store() PricingStore {
	if s.Pricing != nil {
		return s.Pricing
	}
	return repositories.PricingRepository{}
}

func (s PricingService) catalog() models.Catalog {
	if s.Catalog.Currency == "" && len(s.Catalog.CabModels) == 0 {
		return models.DefaultCatalog()
	}
	return s.Catalog
}

// ActiveCatalog is the catalogue quotes are priced against.
func (s PricingService) ActiveCatalog() models.Catalog {
	return s.catalog()
}

// NormalizeDocument trims names, merges duplicates case-insensitively, sorts every
// level by name and rejects negative fares. The last rate wins for a repeated cab model.
func NormalizeDocument(doc models.PricingDocument, defaultCurrency string) (models.PricingDocument, error) {
	out := models.PricingDocument{
		Country:   utils.NormalizeSpace(doc.Country),
		Currency:  strings.ToUpper(strings.TrimSpace(doc.Currency)),
		UpdatedAt: doc.UpdatedAt,
		States:    []models.PricingState{},
	}
	if out.Country == "" {
		return out, domain.ValidationError{Field: "country", Msg: "is required"}
	}
	if out.Currency == "" {
		out.Currency = strings.ToUpper(defaultCurrency)
	}

	stateIdx := map[string]int{}
	for _, st := range doc.States {
		stName := utils.NormalizeSpace(st.Name)
		if stName == "" {
			return out, domain.ValidationError{Field: "state", Msg: fmt.Sprintf("empty state name in %s", out.Country)}
		}
		si, ok := stateIdx[utils.NameKey(stName)]
		if !ok {
			si = len(out.States)
			stateIdx[utils.NameKey(stName)] = si
			out.States = append(out.States, models.PricingState{Name: stName, Cities: []models.PricingCity{}})
		}
		for _, city := range st.Cities {
			if err := mergeCity(&out.States[si], city); err != nil {
				return out, err
			}
		}
	}

	sort.Slice(out.States, func(i, j int) bool {
		return utils.NameKey(out.States[i].Name) < utils.NameKey(out.States[j].Name)
	})
	for i := range out.States {
		cities := out.States[i].Cities
		sort.Slice(cities, func(a, b int) bool { return utils.NameKey(cities[a].Name) < utils.NameKey(cities[b].Name) })
		for j := range cities {
			rates := cities[j].CabRates
			sort.Slice(rates, func(a, b int) bool { return utils.NameKey(rates[a].CabModel) < utils.NameKey(rates[b].CabModel) })
		}
	}
	return out, nil
}

func mergeCity(st *models.PricingState, city models.PricingCity) error {
	name := utils.NormalizeSpace(city.Name)
	if name == "" {
		return domain.ValidationError{Field: "city", Msg: fmt.Sprintf("empty city name in %s", st.Name)}
	}
	ci := -1
	for i := range st.Cities {
		if utils.NameKey(st.Cities[i].Name) == utils.NameKey(name) {
			ci = i
			break
		}
	}
	if ci < 0 {
		ci = len(st.Cities)
		st.Cities = append(st.Cities, models.PricingCity{Name: name, CabRates: []models.CabRate{}})
	}
	target := &st.Cities[ci]
	if airport := utils.NormalizeSpace(city.Airport); airport != "" {
		target.Airport = airport
	}
	for _, rate := range city.CabRates {
		if err := upsertRate(target, rate); err != nil {
			return err
		}
	}
	return nil
}

func upsertRate(city *models.PricingCity, rate models.CabRate) error {
	rate.CabModel = utils.NormalizeSpace(rate.CabModel)
	if rate.CabModel == "" {
		return domain.ValidationError{Field: "cab_model", Msg: fmt.Sprintf("empty cab model in %s", city.Name)}
	}
	if rate.PickupFare < 0 || rate.DropFare < 0 || rate.RoundTripFare < 0 || rate.ExtraKmRate < 0 {
		return domain.ValidationError{Field: "fare", Msg: fmt.Sprintf("negative fare for %s in %s", rate.CabModel, city.Name)}
	}
	if rate.Seats < 0 {
		return domain.ValidationError{Field: "seats", Msg: fmt.Sprintf("negative seats for %s in %s", rate.CabModel, city.Name)}
	}
	for i := range city.CabRates {
		if utils.NameKey(city.CabRates[i].CabModel) == utils.NameKey(rate.CabModel) {
			city.CabRates[i] = rate
			return nil
		}
	}
	city.CabRates = append(city.CabRates, rate)
	return nil
}

// MergeDocuments upserts every rate of patch into base.
func MergeDocuments(base, patch models.PricingDocument, defaultCurrency string) (models.PricingDocument, error) {
	merged := base
	merged.States = append(append([]models.PricingState{}, base.States...), patch.States...)
	if c := strings.TrimSpace(patch.Currency); c != "" {
		merged.Currency = c
	}
	if merged.Country == "" {
		merged.Country = patch.Country
	}
	return NormalizeDocument(merged, defaultCurrency)
}

func (s PricingService) Countries(ctx context.Context) ([]models.CountrySummary, error) {
	docs, err := s.store().List(ctx)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	out := make([]models.CountrySummary, 0, len(docs))
	for _, d := range docs {
		sum := models.CountrySummary{Country: d.Country, Currency: d.Currency, States: len(d.States), UpdatedAt: d.UpdatedAt}
		for _, st := range d.States {
			sum.Cities += len(st.Cities)
			for _, c := range st.Cities {
				sum.Rates += len(c.CabRates)
			}
		}
		out = append(out, sum)
	}
	return out, nil
}

func (s PricingService) Get(ctx context.Context, country string) (models.PricingDocument, error) {
	country = utils.NormalizeSpace(country)
	if country == "" {
		return models.PricingDocument{}, domain.ValidationError{Field: "country", Msg: "is required"}
	}
	doc, err := s.store().Get(ctx, country)
	if err != nil {
		if domain.IsNotFound(err) {
			return doc, err
		}
		return doc, domain.InternalError{Err: err}
	}
	return doc, nil
}

// Put replaces a whole country document.
func (s PricingService) Put(ctx context.Context, doc models.PricingDocument) (models.PricingDocument, error) {
	norm, err := NormalizeDocument(doc, s.catalog().Currency)
	if err != nil {
		return norm, err
	}
	norm.UpdatedAt = utils.NowUTC()
	if err := s.store().Put(ctx, norm); err != nil {
		return norm, domain.InternalError{Err: err}
	}
	utils.LogEvent(s.RequestID, "pricing", "put", "document replaced", "country", norm.Country)
	return norm, nil
}

func (s PricingService) Delete(ctx context.Context, country string) error {
	if err := s.store().Delete(ctx, utils.NormalizeSpace(country)); err != nil {
		if domain.IsNotFound(err) {
			return err
		}
		return domain.InternalError{Err: err}
	}
	utils.LogEvent(s.RequestID, "pricing", "delete", "document removed", "country", country)
	return nil
}

// UpsertCityRate edits one cab rate, creating the state/city when missing.
func (s PricingService) UpsertCityRate(ctx context.Context, country, state, city, airport string, rate models.CabRate) (models.PricingDocument, error) {
	patch := models.PricingDocument{
		Country: country,
		States: []models.PricingState{{
			Name:   state,
			Cities: []models.PricingCity{{Name: city, Airport: airport, CabRates: []models.CabRate{rate}}},
		}},
	}
	_, docs, err := s.BulkImport(ctx, []models.PricingDocument{patch}, models.ImportMerge)
	if err != nil {
		return models.PricingDocument{}, err
	}
	return docs[0], nil
}

// DeleteCityRate removes one cab model from a city; empty cities and states are dropped.
func (s PricingService) DeleteCityRate(ctx context.Context, country, state, city, cabModel string) (models.PricingDocument, error) {
	var result models.PricingDocument
	err := s.store().WithTx(ctx, func(tx repositories.PricingWriter) error {
		doc, ok, err := tx.GetForUpdate(ctx, utils.NormalizeSpace(country))
		if err != nil {
			return domain.InternalError{Err: err}
		}
		if !ok {
			return domain.NotFoundError{Resource: "pricing for " + country}
		}
		removed := false
		states := doc.States[:0]
		for _, st := range doc.States {
			if utils.NameKey(st.Name) == utils.NameKey(state) {
				cities := st.Cities[:0]
				for _, c := range st.Cities {
					if utils.NameKey(c.Name) == utils.NameKey(city) {
						rates := c.CabRates[:0]
						for _, r := range c.CabRates {
							if utils.NameKey(r.CabModel) == utils.NameKey(cabModel) {
								removed = true
								continue
							}
							rates = append(rates, r)
						}
						c.CabRates = rates
						if len(c.CabRates) == 0 {
							continue
						}
					}
					cities = append(cities, c)
				}
				st.Cities = cities
				if len(st.Cities) == 0 {
					continue
				}
			}
			states = append(states, st)
		}
		if !removed {
			return domain.NotFoundError{Resource: fmt.Sprintf("rate %s in %s/%s", cabModel, state, city)}
		}
		doc.States = states
		doc.UpdatedAt = utils.NowUTC()
		if err := tx.Put(ctx, doc); err != nil {
			return domain.InternalError{Err: err}
		}
		result = doc
		return nil
	})
	return result, err
}

// BulkImport applies many documents in one transaction. ImportReplace overwrites each
// country present; ImportMerge upserts cab rates into existing documents.
func (s PricingService) BulkImport(ctx context.Context, docs []models.PricingDocument, mode string) (models.ImportSummary, []models.PricingDocument, error) {
	if mode == "" {
		mode = models.ImportMerge
	}
	if mode != models.ImportMerge && mode != models.ImportReplace {
		return models.ImportSummary{}, nil, domain.ValidationError{Field: "mode", Msg: "must be replace or merge"}
	}
	if len(docs) == 0 {
		return models.ImportSummary{}, nil, domain.ValidationError{Msg: "no pricing rows to import"}
	}

	// Currency stays empty unless given, so a merge keeps the stored one.
	currency := s.catalog().Currency
	incoming, err := groupByCountry(docs, "")
	if err != nil {
		return models.ImportSummary{}, nil, err
	}

	summary := models.ImportSummary{Mode: mode, Countries: []string{}}
	for _, d := range incoming {
		summary.Countries = append(summary.Countries, d.Country)
		summary.States += len(d.States)
		for _, st := range d.States {
			summary.Cities += len(st.Cities)
			for _, c := range st.Cities {
				summary.Rates += len(c.CabRates)
			}
		}
	}

	saved := make([]models.PricingDocument, 0, len(incoming))
	now := utils.NowUTC()
	err = s.store().WithTx(ctx, func(tx repositories.PricingWriter) error {
		for _, d := range incoming {
			final := d
			if mode == models.ImportMerge {
				existing, ok, err := tx.GetForUpdate(ctx, d.Country)
				if err != nil {
					return domain.InternalError{Err: err}
				}
				if ok {
					if final, err = MergeDocuments(existing, d, currency); err != nil {
						return err
					}
				}
			}
			if final.Currency == "" {
				final.Currency = strings.ToUpper(currency)
			}
			final.UpdatedAt = now
			if err := tx.Put(ctx, final); err != nil {
				return domain.InternalError{Err: err}
			}
			saved = append(saved, final)
		}
		return nil
	})
	if err != nil {
		return models.ImportSummary{}, nil, err
	}

	metrics.AddPricingRowsImported(mode, summary.Rates)
	utils.LogEvent(s.RequestID, "pricing", "bulk_import", "ok",
		"mode", mode, "countries", len(summary.Countries), "rates", summary.Rates)
	return summary, saved, nil
}

// groupByCountry normalizes docs and folds repeated countries together.
func groupByCountry(docs []models.PricingDocument, currency string) ([]models.PricingDocument, error) {
	byKey := map[string]int{}
	out := []models.PricingDocument{}
	for _, d := range docs {
		norm, err := NormalizeDocument(d, currency)
		if err != nil {
			return nil, err
		}
		key := utils.NameKey(norm.Country)
		if i, ok := byKey[key]; ok {
			if out[i], err = MergeDocuments(out[i], norm, currency); err != nil {
				return nil, err
			}
			continue
		}
		byKey[key] = len(out)
		out = append(out, norm)
	}
	sort.Slice(out, func(i, j int) bool { return utils.NameKey(out[i].Country) < utils.NameKey(out[j].Country) })
	return out, nil
}

// Locations returns the state/city/cab-model tree without fares.
func (s PricingService) Locations(ctx context.Context, country string) ([]models.LocationState, error) {
	doc, err := s.Get(ctx, country)
	if err != nil {
		return nil, err
	}
	out := make([]models.LocationState, 0, len(doc.States))
	for _, st := range doc.States {
		ls := models.LocationState{Name: st.Name, Cities: make([]models.LocationCity, 0, len(st.Cities))}
		for _, c := range st.Cities {
			lc := models.LocationCity{Name: c.Name, Airport: c.Airport, CabModels: make([]string, 0, len(c.CabRates))}
			for _, r := range c.CabRates {
				lc.CabModels = append(lc.CabModels, r.CabModel)
			}
			ls.Cities = append(ls.Cities, lc)
		}
		out = append(out, ls)
	}
	return out, nil
}

// Quote prices a transfer from the stored document plus catalogue packages.
func (s PricingService) Quote(ctx context.Context, req models.QuoteRequest) (models.Quote, error) {
	cat := s.catalog()
	tripType := strings.ToLower(strings.TrimSpace(req.TripType))
	if !cat.HasTripType(tripType) {
		return models.Quote{}, domain.ValidationError{Field: "trip_type", Msg: "must be one of " + strings.Join(cat.TripTypes, ", ")}
	}

	doc, err := s.Get(ctx, req.Country)
	if err != nil {
		return models.Quote{}, err
	}
	city, rate, err := findRate(doc, req.State, req.City, req.CabModel)
	if err != nil {
		return models.Quote{}, err
	}
	fare := rate.FareFor(tripType)
	if fare <= 0 {
		return models.Quote{}, domain.ValidationError{
			Field: "trip_type",
			Msg:   fmt.Sprintf("%s is not offered for %s in %s", tripType, rate.CabModel, city.Name),
		}
	}

	seats := rate.Seats
	if seats == 0 {
		if m, ok := cat.FindCabModel(rate.CabModel); ok {
			seats = m.Seats
		}
	}

	q := models.Quote{
		Currency: doc.Currency,
		Fare:     fare,
		Airport:  city.Airport,
		Seats:    seats,
		Packages: []models.Package{},
		Lines:    []models.QuoteLine{{Label: fmt.Sprintf("%s %s (%s)", rate.CabModel, strings.ReplaceAll(tripType, "_", " "), city.Name), Amount: fare}},
	}
	seen := map[string]bool{}
	for _, code := range req.Packages {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		p, ok := cat.FindPackage(code)
		if !ok {
			return models.Quote{}, domain.ValidationError{Field: "packages", Msg: "unknown package " + code}
		}
		q.Packages = append(q.Packages, p)
		q.PackagesTotal += p.Price
		q.Lines = append(q.Lines, models.QuoteLine{Label: p.Name, Amount: p.Price})
	}
	q.Total = q.Fare + q.PackagesTotal
	return q, nil
}

func findRate(doc models.PricingDocument, state, city, cabModel string) (models.PricingCity, models.CabRate, error) {
	for _, st := range doc.States {
		if utils.NameKey(st.Name) != utils.NameKey(state) {
			continue
		}
		for _, c := range st.Cities {
			if utils.NameKey(c.Name) != utils.NameKey(city) {
				continue
			}
			for _, r := range c.CabRates {
				if utils.NameKey(r.CabModel) == utils.NameKey(cabModel) {
					return c, r, nil
				}
			}
			return c, models.CabRate{}, domain.NotFoundError{Resource: fmt.Sprintf("cab model %s in %s", cabModel, c.Name)}
		}
		return models.PricingCity{}, models.CabRate{}, domain.NotFoundError{Resource: fmt.Sprintf("city %s in %s", city, st.Name)}
	}
	return models.PricingCity{}, models.CabRate{}, domain.NotFoundError{Resource: fmt.Sprintf("state %s in %s", state, doc.Country)}
}
