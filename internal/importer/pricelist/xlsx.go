package pricelist

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/buildestimate/internal/apperr"
	"github.com/MrJamesThe3rd/buildestimate/internal/document"
)

// XLSXParser reads the first sheet of a workbook.
type XLSXParser struct {
	units UnitNormalizer
}

func NewXLSXParser(units UnitNormalizer) *XLSXParser {
	return &XLSXParser{units: units}
}

func (p *XLSXParser) Parse(ctx context.Context, r io.Reader) ([]document.LineItem, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperr.Invalid("file", "", "not an xlsx workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.Invalid("file", "", "workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	return parse(ctx, p.units, rows)
}
