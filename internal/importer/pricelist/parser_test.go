package pricelist_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/buildestimate/internal/apperr"
	"github.com/MrJamesThe3rd/buildestimate/internal/document"
	"github.com/MrJamesThe3rd/buildestimate/internal/importer/pricelist"
	"github.com/MrJamesThe3rd/buildestimate/internal/unit"
)

func units(t *testing.T) pricelist.UnitNormalizer {
	t.Helper()

	repo := unit.NewMockRepository(gomock.NewController(t))
	repo.EXPECT().FindAlias(gomock.Any(), gomock.Any()).Return(document.Unit(""), unit.ErrNotFound).AnyTimes()

	return unit.NewService(repo)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestCSVParser_Standard(t *testing.T) {
	csv := `Sharma Building Materials - Price list
Valid till 30-06-2024

Name,Description,Quantity,Unit,Unit Price,Discount
OPC Cement,Grade 53,10,Bags,"₹ 380",5
TMT Bar,Fe 500D 12mm,"1,250.5",Kg,"72.40",
Total,,,,"4,22,045.20",
`

	items, err := pricelist.NewCSVParser(units(t)).Parse(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "OPC Cement", items[0].Name)
	assert.Equal(t, "Grade 53", items[0].Description)
	assert.Equal(t, document.UnitBags, items[0].Unit)
	assertDecimal(t, "5", items[0].DiscountPercent)
	assertDecimal(t, "3610", items[0].TotalPrice)

	assert.Equal(t, document.UnitKilograms, items[1].Unit)
	assertDecimal(t, "1250.5", items[1].Quantity)
	assertDecimal(t, "0", items[1].DiscountPercent)
	assertDecimal(t, "90536.2", items[1].TotalPrice)
}

func TestCSVParser_CompactSemicolon(t *testing.T) {
	csv := "Item;Qty;UOM;Rate;Disc %\nRiver sand;2,5;MT;1.450,00;0\nFly ash bricks;1000;Nos;6,50;10%\n"

	items, err := pricelist.NewCSVParser(units(t)).Parse(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, document.UnitTons, items[0].Unit)
	assertDecimal(t, "3625", items[0].TotalPrice)

	assert.Equal(t, document.UnitPieces, items[1].Unit)
	assertDecimal(t, "5850", items[1].TotalPrice)
}

func TestCSVParser_TabDelimitedAnyOrder(t *testing.T) {
	csv := "UNIT PRICE\tunit\tNAME\tQUANTITY\n55\tltr\tPrimer\t4\n"

	items, err := pricelist.NewCSVParser(units(t)).Parse(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "Primer", items[0].Name)
	assert.Equal(t, document.UnitLiters, items[0].Unit)
	assertDecimal(t, "220", items[0].TotalPrice)
}

func TestCSVParser_Latin1(t *testing.T) {
	// "Item;Qty;UOM;Rate\nCafé tiles;3;sqm;120\n" in windows-1252.
	var b bytes.Buffer
	b.WriteString("Item;Qty;UOM;Rate\nCaf")
	b.WriteByte(0xE9)
	b.WriteString(" tiles;3;sqm;120\n")

	items, err := pricelist.NewCSVParser(units(t)).Parse(context.Background(), &b)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Café tiles", items[0].Name)
	assert.Equal(t, document.UnitSquareMeters, items[0].Unit)
}

func TestCSVParser_BlankUnitDefaultsToPieces(t *testing.T) {
	csv := "Name,Quantity,Unit,Unit Price\nDoor hinge,6,,45\n"

	items, err := pricelist.NewCSVParser(units(t)).Parse(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, document.UnitPieces, items[0].Unit)
}

func TestCSVParser_Errors(t *testing.T) {
	type testCase struct {
		name      string
		csv       string
		wantField string
	}

	tests := []testCase{
		{
			name:      "No header",
			csv:       "Product,Amount\nCement,10\n",
			wantField: "file",
		},
		{
			name:      "Missing name",
			csv:       "Name,Quantity,Unit,Unit Price\nSand,1,tons,10\n,4,bags,380\n",
			wantField: "row 3.name",
		},
		{
			name:      "Unknown unit",
			csv:       "Name,Quantity,Unit,Unit Price\nPaint,2,drums,900\n",
			wantField: "row 2.unit",
		},
		{
			name:      "Bad price",
			csv:       "Name,Quantity,Unit,Unit Price\nPaint,2,liters,ask\n",
			wantField: "row 2.unitPrice",
		},
		{
			name:      "Discount out of range",
			csv:       "Name,Quantity,Unit,Unit Price,Discount\nPaint,2,liters,100,150\n",
			wantField: "row 2.discountPercent",
		},
		{
			name:      "Zero quantity",
			csv:       "Name,Quantity,Unit,Unit Price\nPaint,0,liters,100\n",
			wantField: "row 2.quantity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pricelist.NewCSVParser(units(t)).Parse(context.Background(), strings.NewReader(tt.csv))

			var ve *apperr.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestCSVParser_HeaderOnly(t *testing.T) {
	items, err := pricelist.NewCSVParser(units(t)).Parse(context.Background(), strings.NewReader("Item,Qty,UOM,Rate\n"))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestXLSXParser(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Quotation rates"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"Item", "Qty", "UOM", "Rate", "Disc %"}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]any{"Granite slab", 12, "sq m", 2400, 2.5}))
	require.NoError(t, f.SetSheetRow(sheet, "A5", &[]any{"Notes: rates exclude GST"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	items, err := pricelist.NewXLSXParser(units(t)).Parse(context.Background(), &buf)
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "Granite slab", items[0].Name)
	assert.Equal(t, document.UnitSquareMeters, items[0].Unit)
	assertDecimal(t, "28080", items[0].TotalPrice)
}

func TestXLSXParser_NotAWorkbook(t *testing.T) {
	_, err := pricelist.NewXLSXParser(units(t)).Parse(context.Background(), strings.NewReader("Name,Quantity\n"))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
