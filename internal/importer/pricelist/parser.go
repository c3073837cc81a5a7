// Package pricelist reads trader price lists (CSV or XLSX) into draft line
// items. The header row is located by matching known column profiles, so
// title rows and notes above it are ignored.
package pricelist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/buildestimate/internal/apperr"
	"github.com/MrJamesThe3rd/buildestimate/internal/document"
)

// UnitNormalizer resolves the unit text of a row.
type UnitNormalizer interface {
	Normalize(ctx context.Context, raw string) (document.Unit, error)
}

// colIndex maps lower-cased column names to their index in the row.
type colIndex map[string]int

func (c colIndex) get(name string) int {
	if name == "" {
		return -1
	}

	if i, ok := c[name]; ok {
		return i
	}

	return -1
}

// detectProfile scans rows for a header that matches a known profile.
// Returns the matched profile, column index map, and header row index.
func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

// matchesProfile checks if all required columns of a profile are present.
func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

func noProfile() error {
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, fmt.Sprintf("%s (%s)", p.Name, strings.Join(p.requiredCols(), ", ")))
	}

	return apperr.Invalid("file", "", "no price list header found, expected %s", strings.Join(names, " or "))
}

// parse turns the rows of a sheet into line items with current totals.
func parse(ctx context.Context, units UnitNormalizer, rows [][]string) ([]document.LineItem, error) {
	p, cols, headerIdx := detectProfile(rows)
	if p == nil {
		return nil, noProfile()
	}

	return parseRows(ctx, units, p, cols, rows[headerIdx+1:], headerIdx+1)
}

// parseRows extracts items from data rows using the matched profile.
// headerRowNum is the 0-based index of the header in the original file (for error messages).
func parseRows(ctx context.Context, units UnitNormalizer, p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]document.LineItem, error) {
	var (
		nameIdx     = cols.get(p.NameCol)
		descIdx     = cols.get(p.DescCol)
		qtyIdx      = cols.get(p.QuantityCol)
		unitIdx     = cols.get(p.UnitCol)
		priceIdx    = cols.get(p.PriceCol)
		discountIdx = cols.get(p.DiscountCol)
	)

	var items []document.LineItem

	for i, row := range rows {
		rowNum := headerRowNum + i + 1 // 1-based, skipping header

		qty, err := parseNumber(cellValue(row, qtyIdx))
		if err != nil {
			continue
		}

		name := cellValue(row, nameIdx)
		if name == "" {
			return nil, apperr.Invalid(rowField(rowNum, "name"), "", "missing item name")
		}

		u := document.UnitPieces
		if raw := cellValue(row, unitIdx); raw != "" {
			if u, err = units.Normalize(ctx, raw); err != nil {
				return nil, atRow(rowNum, err)
			}
		}

		price, err := parseNumber(cellValue(row, priceIdx))
		if err != nil {
			return nil, apperr.Invalid(rowField(rowNum, "unitPrice"), cellValue(row, priceIdx), "not a number")
		}

		discount := decimal.Zero
		if raw := cellValue(row, discountIdx); raw != "" {
			if discount, err = parseNumber(raw); err != nil {
				return nil, apperr.Invalid(rowField(rowNum, "discountPercent"), raw, "not a number")
			}
		}

		it := document.LineItem{
			Name:            name,
			Description:     cellValue(row, descIdx),
			Quantity:        qty,
			Unit:            u,
			UnitPrice:       price,
			DiscountPercent: discount,
		}

		if err := it.Recompute(); err != nil {
			return nil, atRow(rowNum, err)
		}

		items = append(items, it)
	}

	return items, nil
}

func rowField(row int, field string) string {
	return fmt.Sprintf("row %d.%s", row, field)
}

// atRow prefixes a ValidationError field with the file row.
func atRow(row int, err error) error {
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("row %d: %w", row, err)
	}

	return apperr.Invalid(rowField(row, ve.Field), ve.Value, "%s", ve.Message)
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
