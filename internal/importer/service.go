package importer

import (
	"context"
	"io"

	"github.com/MrJamesThe3rd/buildestimate/internal/apperr"
	"github.com/MrJamesThe3rd/buildestimate/internal/auth"
	"github.com/MrJamesThe3rd/buildestimate/internal/document"
	"github.com/MrJamesThe3rd/buildestimate/internal/importer/pricelist"
)

type Service struct {
	importers map[Format]Importer
}

func NewService(units pricelist.UnitNormalizer) *Service {
	return &Service{
		importers: map[Format]Importer{
			FormatCSV:  pricelist.NewCSVParser(units),
			FormatXLSX: pricelist.NewXLSXParser(units),
		},
	}
}

// Import parses a price list into draft line items a trader can attach to an
// estimate or invoice. Nothing is persisted.
func (s *Service) Import(ctx context.Context, a auth.Actor, format Format, r io.Reader) ([]document.LineItem, error) {
	if !a.IsTrader() && !a.IsAdmin() {
		return nil, apperr.Forbidden("import line items", "traders only")
	}

	importer, ok := s.importers[format]
	if !ok {
		return nil, apperr.Invalid("format", string(format), "unsupported import format")
	}

	return importer.Parse(ctx, r)
}
