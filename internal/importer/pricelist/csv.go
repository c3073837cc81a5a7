package pricelist

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/buildestimate/internal/apperr"
	"github.com/MrJamesThe3rd/buildestimate/internal/document"
	enc "github.com/MrJamesThe3rd/buildestimate/internal/encoding"
)

// CSVParser reads delimited text in any common encoding.
type CSVParser struct {
	units UnitNormalizer
}

func NewCSVParser(units UnitNormalizer) *CSVParser {
	return &CSVParser{units: units}
}

func (p *CSVParser) Parse(ctx context.Context, r io.Reader) ([]document.LineItem, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read price list: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperr.Invalid("file", "", "malformed csv: %v", err)
	}

	return parse(ctx, p.units, rows)
}

var delimiters = []rune{',', ';', '\t'}

// sniffDelimiter picks the separator that occurs most often on the line
// with the most separators among the first few lines. Ties favour the
// earlier entry in delimiters.
func sniffDelimiter(data []byte) rune {
	best, bestCount := delimiters[0], 0

	lines := bytes.SplitN(data, []byte("\n"), 20)
	for _, line := range lines {
		for _, d := range delimiters {
			if n := bytes.Count(line, []byte(string(d))); n > bestCount {
				best, bestCount = d, n
			}
		}
	}

	return best
}
