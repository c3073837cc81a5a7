package importer

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/MrJamesThe3rd/buildestimate/internal/document"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

type Importer interface {
	Parse(ctx context.Context, r io.Reader) ([]document.LineItem, error)
}

// FormatOf guesses the format from an upload's file name. Anything that is
// not a workbook is read as delimited text.
func FormatOf(filename string) Format {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return FormatXLSX
	}

	return FormatCSV
}
