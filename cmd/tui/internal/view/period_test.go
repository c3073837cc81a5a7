package view_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/buildestimate/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/buildestimate/internal/invoice"
)

func day(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

func endOf(s string) time.Time {
	return day(s).Add(24*time.Hour - time.Second)
}

func TestPeriodFilter(t *testing.T) {
	type args struct {
		period view.Period
		now    time.Time
	}

	type testCase struct {
		name     string
		args     args
		wantFrom time.Time
		wantTo   time.Time
	}

	midFebruary := time.Date(2026, time.February, 14, 16, 30, 0, 0, time.UTC)
	midAugust := time.Date(2026, time.August, 20, 9, 0, 0, 0, time.UTC)

	tests := []testCase{
		{
			name:     "This month",
			args:     args{period: view.PeriodThisMonth, now: midFebruary},
			wantFrom: day("2026-02-01"),
			wantTo:   endOf("2026-02-14"),
		},
		{
			name:     "Last month crosses the calendar year",
			args:     args{period: view.PeriodLastMonth, now: time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)},
			wantFrom: day("2025-12-01"),
			wantTo:   endOf("2025-12-31"),
		},
		{
			name:     "Last month ends on its last day",
			args:     args{period: view.PeriodLastMonth, now: time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)},
			wantFrom: day("2026-02-01"),
			wantTo:   endOf("2026-02-28"),
		},
		{
			name:     "Fourth quarter runs January to March",
			args:     args{period: view.PeriodThisQuarter, now: midFebruary},
			wantFrom: day("2026-01-01"),
			wantTo:   endOf("2026-02-14"),
		},
		{
			name:     "Second quarter starts in July",
			args:     args{period: view.PeriodThisQuarter, now: midAugust},
			wantFrom: day("2026-07-01"),
			wantTo:   endOf("2026-08-20"),
		},
		{
			name:     "Financial year before April belongs to the previous year",
			args:     args{period: view.PeriodFinancialYear, now: midFebruary},
			wantFrom: day("2025-04-01"),
			wantTo:   endOf("2026-02-14"),
		},
		{
			name:     "Financial year after April",
			args:     args{period: view.PeriodFinancialYear, now: midAugust},
			wantFrom: day("2026-04-01"),
			wantTo:   endOf("2026-08-20"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := view.PeriodFilter(tt.args.period, tt.args.now)

			require.NotNil(t, got.From)
			require.NotNil(t, got.To)
			assert.Equal(t, tt.wantFrom, *got.From)
			assert.Equal(t, tt.wantTo, *got.To)
			assert.Nil(t, got.Status)
		})
	}
}

func TestPeriodFilter_Unbounded(t *testing.T) {
	now := time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)

	overdue := view.PeriodFilter(view.PeriodOverdue, now)
	require.NotNil(t, overdue.Status)
	assert.Equal(t, invoice.StatusOverdue, *overdue.Status)
	assert.Nil(t, overdue.From)
	assert.Nil(t, overdue.To)

	assert.Equal(t, invoice.ListFilter{}, view.PeriodFilter(view.PeriodAll, now))
	assert.Equal(t, invoice.ListFilter{}, view.PeriodFilter(view.PeriodCustom, now))
}

func TestCustomRangeFilter(t *testing.T) {
	type testCase struct {
		name    string
		start   string
		end     string
		wantErr string
	}

	tests := []testCase{
		{name: "Single day", start: "2026-03-31", end: " 2026-03-31 "},
		{name: "Bad start", start: "31/03/2026", end: "2026-03-31", wantErr: "invalid start date"},
		{name: "Bad end", start: "2026-03-01", end: "", wantErr: "invalid end date"},
		{name: "Reversed", start: "2026-03-31", end: "2026-03-01", wantErr: "before start"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := view.CustomRangeFilter(tt.start, tt.end)

			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, day("2026-03-31"), *got.From)
			assert.Equal(t, endOf("2026-03-31"), *got.To)
		})
	}
}

func TestPeriod_String(t *testing.T) {
	assert.Equal(t, "This quarter (GST)", view.PeriodThisQuarter.String())
	assert.Equal(t, "Overdue invoices", view.PeriodOverdue.String())
	assert.Equal(t, "weekly", view.Period("weekly").String())
}
