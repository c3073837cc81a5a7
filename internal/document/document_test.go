package document_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/buildestimate/internal/apperr"
	"github.com/MrJamesThe3rd/buildestimate/internal/document"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func TestLineTotal(t *testing.T) {
	type args struct {
		quantity, unitPrice, discount string
	}

	type testCase struct {
		name    string
		args    args
		want    string
		wantErr bool
	}

	tests := []testCase{
		{name: "Scenario A item", args: args{"10", "100", "10"}, want: "900"},
		{name: "No discount", args: args{"3", "12.5", "0"}, want: "37.5"},
		{name: "Full discount", args: args{"7", "450", "100"}, want: "0"},
		{name: "Fractional quantity", args: args{"2.5", "0.35", "0"}, want: "0.875"},
		{name: "Zero price", args: args{"5", "0", "20"}, want: "0"},
		{name: "Negative quantity", args: args{"-1", "10", "0"}, wantErr: true},
		{name: "Negative price", args: args{"1", "-10", "0"}, wantErr: true},
		{name: "Discount above 100", args: args{"1", "10", "100.01"}, wantErr: true},
		{name: "Negative discount", args: args{"1", "10", "-5"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := document.LineTotal(dec(tt.args.quantity), dec(tt.args.unitPrice), dec(tt.args.discount))

			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrValidation)
				return
			}

			require.NoError(t, err)
			assertDecimal(t, tt.want, got)
		})
	}
}

func TestLineTotal_Monotonic(t *testing.T) {
	quantities := []string{"0", "0.5", "1", "10", "250"}
	prices := []string{"0", "1.99", "100", "4999.5"}
	discounts := []string{"0", "5", "33.3", "50", "100"}

	for _, p := range prices {
		for _, d := range discounts {
			prev := decimal.Zero
			for _, q := range quantities {
				got, err := document.LineTotal(dec(q), dec(p), dec(d))
				require.NoError(t, err)
				assert.True(t, got.GreaterThanOrEqual(prev), "quantity %s price %s discount %s", q, p, d)
				prev = got
			}
		}
	}

	for _, q := range quantities {
		for _, p := range prices {
			prev, err := document.LineTotal(dec(q), dec(p), decimal.Zero)
			require.NoError(t, err)
			assertDecimal(t, dec(q).Mul(dec(p)).String(), prev)

			for _, d := range discounts[1:] {
				got, err := document.LineTotal(dec(q), dec(p), dec(d))
				require.NoError(t, err)
				assert.True(t, got.LessThanOrEqual(prev), "quantity %s price %s discount %s", q, p, d)
				prev = got
			}
		}
	}
}

func TestComputeTotals(t *testing.T) {
	type testCase struct {
		name    string
		items   []document.LineItem
		charges document.Charges
		want    document.Totals
		wantErr bool
	}

	tests := []testCase{
		{
			name:    "Scenario A",
			items:   []document.LineItem{{TotalPrice: dec("900")}},
			charges: document.Charges{LoadingCharges: dec("50"), TaxPercent: dec("18")},
			want: document.Totals{
				Subtotal:       dec("900"),
				DiscountAmount: dec("0"),
				TaxableAmount:  dec("950"),
				TaxAmount:      dec("171"),
				TotalAmount:    dec("1121"),
			},
		},
		{
			name:    "Overall discount before loading",
			items:   []document.LineItem{{TotalPrice: dec("600")}, {TotalPrice: dec("400")}},
			charges: document.Charges{DiscountPercent: dec("10"), LoadingCharges: dec("100"), TaxPercent: dec("5")},
			want: document.Totals{
				Subtotal:       dec("1000"),
				DiscountAmount: dec("100"),
				TaxableAmount:  dec("1000"),
				TaxAmount:      dec("50"),
				TotalAmount:    dec("1050"),
			},
		},
		{
			name:    "Zero tax",
			items:   []document.LineItem{{TotalPrice: dec("123.45")}},
			charges: document.Charges{},
			want: document.Totals{
				Subtotal:       dec("123.45"),
				DiscountAmount: dec("0"),
				TaxableAmount:  dec("123.45"),
				TaxAmount:      dec("0"),
				TotalAmount:    dec("123.45"),
			},
		},
		{
			name:    "No items",
			charges: document.Charges{LoadingCharges: dec("20"), TaxPercent: dec("10")},
			want: document.Totals{
				Subtotal:       dec("0"),
				DiscountAmount: dec("0"),
				TaxableAmount:  dec("20"),
				TaxAmount:      dec("2"),
				TotalAmount:    dec("22"),
			},
		},
		{
			name:    "Tax above 100",
			charges: document.Charges{TaxPercent: dec("101")},
			wantErr: true,
		},
		{
			name:    "Negative loading",
			charges: document.Charges{LoadingCharges: dec("-1")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := document.ComputeTotals(tt.items, tt.charges)

			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrValidation)
				return
			}

			require.NoError(t, err)
			assertDecimal(t, tt.want.Subtotal.String(), got.Subtotal)
			assertDecimal(t, tt.want.DiscountAmount.String(), got.DiscountAmount)
			assertDecimal(t, tt.want.TaxableAmount.String(), got.TaxableAmount)
			assertDecimal(t, tt.want.TaxAmount.String(), got.TaxAmount)
			assertDecimal(t, tt.want.TotalAmount.String(), got.TotalAmount)
		})
	}
}

func TestRecompute_OverwritesCallerTotals(t *testing.T) {
	items := []document.LineItem{
		{Name: "Cement", Quantity: dec("10"), Unit: document.UnitBags, UnitPrice: dec("100"), DiscountPercent: dec("10"), TotalPrice: dec("1")},
		{Name: "Sand", Quantity: dec("2"), Unit: document.UnitTons, UnitPrice: dec("50"), TotalPrice: dec("99999")},
	}

	totals, err := document.Recompute(items, document.Charges{})
	require.NoError(t, err)

	assertDecimal(t, "900", items[0].TotalPrice)
	assertDecimal(t, "100", items[1].TotalPrice)
	assertDecimal(t, "1000", totals.Subtotal)
	assertDecimal(t, items[0].TotalPrice.Add(items[1].TotalPrice).String(), totals.Subtotal)
}

func TestRecompute_Idempotent(t *testing.T) {
	items := []document.LineItem{
		{Name: "Steel rod", Quantity: dec("3.333"), Unit: document.UnitKilograms, UnitPrice: dec("71.7"), DiscountPercent: dec("12.5")},
	}
	charges := document.Charges{DiscountPercent: dec("3"), LoadingCharges: dec("17.25"), TaxPercent: dec("18")}

	first, err := document.Recompute(items, charges)
	require.NoError(t, err)

	firstItem := items[0].TotalPrice

	second, err := document.Recompute(items, charges)
	require.NoError(t, err)

	assert.True(t, firstItem.Equal(items[0].TotalPrice))
	assert.True(t, first.TotalAmount.Equal(second.TotalAmount))
	assert.True(t, first.TaxAmount.Equal(second.TaxAmount))
	assert.True(t, first.Subtotal.Equal(second.Subtotal))
}

func TestRecompute_ItemValidation(t *testing.T) {
	type testCase struct {
		name      string
		item      document.LineItem
		wantField string
	}

	tests := []testCase{
		{
			name:      "Missing name",
			item:      document.LineItem{Name: " ", Quantity: dec("1"), Unit: document.UnitPieces},
			wantField: "items[0].name",
		},
		{
			name:      "Zero quantity",
			item:      document.LineItem{Name: "Brick", Quantity: dec("0"), Unit: document.UnitPieces},
			wantField: "items[0].quantity",
		},
		{
			name:      "Unknown unit",
			item:      document.LineItem{Name: "Brick", Quantity: dec("1"), Unit: "crates"},
			wantField: "items[0].unit",
		},
		{
			name:      "Discount out of range",
			item:      document.LineItem{Name: "Brick", Quantity: dec("1"), Unit: document.UnitPieces, DiscountPercent: dec("150")},
			wantField: "items[0].discountPercent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := document.Recompute([]document.LineItem{tt.item}, document.Charges{})

			var ve *apperr.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestCloneItems_Independent(t *testing.T) {
	orig := []document.LineItem{{Name: "Tiles", Quantity: dec("4"), Unit: document.UnitSquareMeters}}

	clone := document.CloneItems(orig)
	clone[0].Name = "Marble"
	clone[0].Quantity = dec("40")

	assert.Equal(t, "Tiles", orig[0].Name)
	assertDecimal(t, "4", orig[0].Quantity)
	assert.Nil(t, document.CloneItems(nil))
}

func TestUnits(t *testing.T) {
	assert.True(t, document.UnitCubicMeters.Known())
	assert.Equal(t, "Cubic Meters", document.UnitCubicMeters.Label())
	assert.False(t, document.Unit("pallets").Known())
	assert.Len(t, document.Units(), 10)

	document.RegisterUnits(map[string]string{" pallets ": "Pallets", "rolls": "", "": "Nothing"})
	t.Cleanup(func() {
		document.UnregisterUnit("pallets")
		document.UnregisterUnit("rolls")
	})

	assert.True(t, document.Unit("pallets").Known())
	assert.Equal(t, "Pallets", document.Unit("pallets").Label())
	assert.Equal(t, "rolls", document.Unit("rolls").Label())
	assert.False(t, document.Unit("").Known())
	assert.Len(t, document.Units(), 12)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1121.00", document.Format(dec("1121")))
	assert.Equal(t, "0.88", document.Format(dec("0.875")))
}

func TestEncodeItems_Decimals(t *testing.T) {
	items := []document.LineItem{
		{Name: "Cement", Quantity: dec("12.5"), Unit: document.UnitBags, UnitPrice: dec("0.1"), DiscountPercent: dec("0"), TotalPrice: dec("1.25")},
	}

	b, err := document.EncodeItems(items)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"quantity":"12.5"`)
	assert.Contains(t, string(b), `"unit":"bags"`)

	got, err := document.DecodeItems(b)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Cement", got[0].Name)
	assertDecimal(t, "1.25", got[0].TotalPrice)

	empty, err := document.DecodeItems(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
