package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"transferportal/internal/domain"
	"transferportal/internal/domain/models"
	"transferportal/internal/utils"

	"github.com/xuri/excelize/v2"
)

// PricingSheetName is the worksheet used for pricing import/export.
const PricingSheetName = "Pricing"

const (
	colCountry = iota
	colState
	colCity
	colAirport
	colCabModel
	colSeats
	colPickupFare
	colDropFare
	colRoundTripFare
	colExtraKmRate
	colCurrency
)

var pricingHeaders = []string{
	"Country", "State", "City", "Airport", "Cab Model", "Seats",
	"Pickup Fare", "Drop Fare", "Round Trip Fare", "Extra Km Rate",
}

// Currency is accepted on import but never written, so exports keep the fixed layout.
var optionalHeaders = map[string]int{"currency": colCurrency}

var requiredColumns = []int{colCountry, colState, colCity, colCabModel}

// rate columns; a row that leaves all of them and Cab Model blank lists a city without rates
var rateColumns = []int{colSeats, colPickupFare, colDropFare, colRoundTripFare, colExtraKmRate}

// ExportXLSX writes one row per cab rate, in document order. A city without rates
// gets a single row with the rate columns left blank so it survives a round trip.
func ExportXLSX(w io.Writer, docs []models.PricingDocument) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(PricingSheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	header := make([]any, len(pricingHeaders))
	for i, h := range pricingHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(PricingSheetName, "A1", &header); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(pricingHeaders))
	if style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	}); err == nil {
		_ = f.SetCellStyle(PricingSheetName, "A1", lastCol+"1", style)
	}
	_ = f.SetColWidth(PricingSheetName, "A", lastCol, 18)
	_ = f.SetPanes(PricingSheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	row := 2
	for _, d := range docs {
		for _, st := range d.States {
			for _, c := range st.Cities {
				rows := make([][]any, 0, len(c.CabRates))
				for _, r := range c.CabRates {
					rows = append(rows, []any{
						d.Country, st.Name, c.Name, c.Airport, r.CabModel, r.Seats,
						r.PickupFare, r.DropFare, r.RoundTripFare, r.ExtraKmRate,
					})
				}
				if len(rows) == 0 {
					rows = append(rows, []any{d.Country, st.Name, c.Name, c.Airport})
				}
				for _, values := range rows {
					cell, _ := excelize.CoordinatesToCellName(1, row)
					if err := f.SetSheetRow(PricingSheetName, cell, &values); err != nil {
						return fmt.Errorf("write row %d: %w", row, err)
					}
					row++
				}
			}
		}
	}
	return f.Write(w)
}

// ParseXLSX reads the pricing sheet (or the first sheet when it is absent) into
// normalized documents, one per country. Columns may appear in any order.
func ParseXLSX(r io.Reader) ([]models.PricingDocument, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.ValidationError{Field: "file", Msg: "not a valid xlsx workbook", Err: err}
	}
	defer f.Close()

	sheet := PricingSheetName
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, domain.ValidationError{Field: "file", Msg: "workbook has no sheets"}
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, domain.ValidationError{Field: "file", Msg: "cannot read sheet " + sheet, Err: err}
	}
	return parsePricingRows(rows)
}

func parsePricingRows(rows [][]string) ([]models.PricingDocument, error) {
	headerRow := -1
	for i, r := range rows {
		if !blankRow(r) {
			headerRow = i
			break
		}
	}
	if headerRow < 0 {
		return nil, domain.ValidationError{Field: "file", Msg: "sheet is empty"}
	}
	cols, err := mapHeader(rows[headerRow])
	if err != nil {
		return nil, err
	}

	var docs []models.PricingDocument
	for i := headerRow + 1; i < len(rows); i++ {
		if blankRow(rows[i]) {
			continue
		}
		doc, err := parsePricingRow(rows[i], cols, i+1)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil, domain.ValidationError{Field: "file", Msg: "no pricing rows found"}
	}
	return groupByCountry(docs, "")
}

func mapHeader(header []string) (map[int]int, error) {
	want := map[string]int{}
	for i, h := range pricingHeaders {
		want[headerKey(h)] = i
	}
	for k, v := range optionalHeaders {
		want[k] = v
	}

	cols := map[int]int{}
	for pos, h := range header {
		if field, ok := want[headerKey(h)]; ok {
			if _, dup := cols[field]; !dup {
				cols[field] = pos
			}
		}
	}
	var missing []string
	for _, field := range requiredColumns {
		if _, ok := cols[field]; !ok {
			missing = append(missing, pricingHeaders[field])
		}
	}
	if len(missing) > 0 {
		return nil, domain.ValidationError{Field: "header", Msg: "missing columns: " + strings.Join(missing, ", ")}
	}
	return cols, nil
}

func parsePricingRow(row []string, cols map[int]int, rowNum int) (models.PricingDocument, error) {
	get := func(field int) string {
		pos, ok := cols[field]
		if !ok || pos >= len(row) {
			return ""
		}
		return utils.NormalizeSpace(row[pos])
	}
	rowErr := func(field int, msg string) error {
		return domain.ValidationError{Field: "row", Msg: fmt.Sprintf("row %d: %s %s", rowNum, pricingHeaders[field], msg)}
	}

	for _, field := range []int{colCountry, colState, colCity} {
		if get(field) == "" {
			return models.PricingDocument{}, rowErr(field, "is required")
		}
	}
	doc := models.PricingDocument{
		Country:  get(colCountry),
		Currency: get(colCurrency),
		States: []models.PricingState{{
			Name: get(colState),
			Cities: []models.PricingCity{{
				Name:     get(colCity),
				Airport:  get(colAirport),
				CabRates: []models.CabRate{},
			}},
		}},
	}
	if get(colCabModel) == "" {
		for _, field := range rateColumns {
			if get(field) != "" {
				return models.PricingDocument{}, rowErr(colCabModel, "is required")
			}
		}
		return doc, nil
	}

	rate := models.CabRate{CabModel: get(colCabModel)}
	if s := get(colSeats); s != "" {
		seats, err := strconv.Atoi(strings.TrimSuffix(s, ".0"))
		if err != nil || seats < 0 {
			return models.PricingDocument{}, rowErr(colSeats, "must be a whole number")
		}
		rate.Seats = seats
	}
	amounts := []struct {
		field int
		dst   *int64
	}{
		{colPickupFare, &rate.PickupFare},
		{colDropFare, &rate.DropFare},
		{colRoundTripFare, &rate.RoundTripFare},
		{colExtraKmRate, &rate.ExtraKmRate},
	}
	for _, a := range amounts {
		v, err := utils.ParseAmount(get(a.field))
		if err != nil {
			return models.PricingDocument{}, rowErr(a.field, "is not a number")
		}
		if v < 0 {
			return models.PricingDocument{}, rowErr(a.field, "must not be negative")
		}
		*a.dst = v
	}

	doc.States[0].Cities[0].CabRates = []models.CabRate{rate}
	return doc, nil
}

func headerKey(s string) string {
	return strings.ReplaceAll(utils.NameKey(strings.NewReplacer("_", " ", "-", " ").Replace(s)), " ", "")
}

func blankRow(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ExportSheet renders every document, or just one country, as an xlsx workbook.
func (s PricingService) ExportSheet(ctx context.Context, country string) ([]byte, string, error) {
	var docs []models.PricingDocument
	name := "pricing"
	if c := utils.NormalizeSpace(country); c != "" {
		doc, err := s.Get(ctx, c)
		if err != nil {
			return nil, "", err
		}
		docs = []models.PricingDocument{doc}
		name = "pricing_" + utils.SafeFilenamePart(doc.Country)
	} else {
		all, err := s.store().List(ctx)
		if err != nil {
			return nil, "", domain.InternalError{Err: err}
		}
		docs = all
	}

	var buf bytes.Buffer
	if err := ExportXLSX(&buf, docs); err != nil {
		return nil, "", domain.InternalError{Msg: "failed to build workbook", Err: err}
	}
	utils.LogEvent(s.RequestID, "pricing", "export", "ok", "countries", len(docs), "bytes", buf.Len())
	return buf.Bytes(), name + ".xlsx", nil
}

// ImportSheet parses an uploaded workbook and applies it through BulkImport.
func (s PricingService) ImportSheet(ctx context.Context, r io.Reader, mode string) (models.ImportSummary, error) {
	docs, err := ParseXLSX(r)
	if err != nil {
		utils.LogError(s.RequestID, "pricing", "import_sheet", err)
		return models.ImportSummary{}, err
	}
	summary, _, err := s.BulkImport(ctx, docs, mode)
	return summary, err
}
