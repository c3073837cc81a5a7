package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/MrJamesThe3rd/buildestimate/internal/invoice"
)

// Period is a preset slice of the invoice register offered by the export screen.
type Period string

const (
	PeriodThisMonth     Period = "this_month"
	PeriodLastMonth     Period = "last_month"
	PeriodThisQuarter   Period = "this_quarter"
	PeriodFinancialYear Period = "financial_year"
	PeriodOverdue       Period = "overdue"
	PeriodAll           Period = "all"
	PeriodCustom        Period = "custom"
)

var periods = []Period{
	PeriodThisMonth,
	PeriodLastMonth,
	PeriodThisQuarter,
	PeriodFinancialYear,
	PeriodOverdue,
	PeriodAll,
	PeriodCustom,
}

func (p Period) String() string {
	switch p {
	case PeriodThisMonth:
		return "This month"
	case PeriodLastMonth:
		return "Last month"
	case PeriodThisQuarter:
		return "This quarter (GST)"
	case PeriodFinancialYear:
		return "This financial year"
	case PeriodOverdue:
		return "Overdue invoices"
	case PeriodAll:
		return "Everything"
	case PeriodCustom:
		return "Custom dates"
	}

	return string(p)
}

// PeriodFilter turns a preset into an invoice filter relative to now. Quarters
// and years follow the Indian financial year, which starts on 1 April. Ranges
// cover whole days in UTC; Overdue selects by status and ignores dates.
// PeriodCustom and PeriodAll yield an unrestricted filter.
func PeriodFilter(p Period, now time.Time) invoice.ListFilter {
	today := dayStart(now)

	var from time.Time

	to := dayEnd(today)

	switch p {
	case PeriodThisMonth:
		from = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	case PeriodLastMonth:
		from = time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, time.UTC)
		to = dayEnd(from.AddDate(0, 1, -1))
	case PeriodThisQuarter:
		fy := financialYearStart(today)
		elapsed := (int(today.Month()) - int(time.April) + 12) % 12
		from = time.Date(fy.Year(), time.April+time.Month(elapsed-elapsed%3), 1, 0, 0, 0, 0, time.UTC)
	case PeriodFinancialYear:
		from = financialYearStart(today)
	case PeriodOverdue:
		return invoice.ListFilter{Status: new(invoice.StatusOverdue)}
	default:
		return invoice.ListFilter{}
	}

	return invoice.ListFilter{From: &from, To: &to}
}

// CustomRangeFilter parses inclusive YYYY-MM-DD bounds.
func CustomRangeFilter(start, end string) (invoice.ListFilter, error) {
	from, err := parseDay(start)
	if err != nil {
		return invoice.ListFilter{}, fmt.Errorf("invalid start date (YYYY-MM-DD)")
	}

	last, err := parseDay(end)
	if err != nil {
		return invoice.ListFilter{}, fmt.Errorf("invalid end date (YYYY-MM-DD)")
	}

	if last.Before(from) {
		return invoice.ListFilter{}, fmt.Errorf("end date is before start date")
	}

	to := dayEnd(last)

	return invoice.ListFilter{From: &from, To: &to}, nil
}

func parseDay(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, strings.TrimSpace(s))
}

func financialYearStart(day time.Time) time.Time {
	year := day.Year()
	if day.Month() < time.April {
		year--
	}

	return time.Date(year, time.April, 1, 0, 0, 0, 0, time.UTC)
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}

func newPeriodForm(selected Period) *huh.Form {
	options := make([]huh.Option[Period], 0, len(periods))
	for _, p := range periods {
		options = append(options, huh.NewOption(p.String(), p))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[Period]().
				Key("period").
				Title("Invoices to export").
				Options(options...).
				Value(new(selected)),
		),
	).WithWidth(45).WithShowHelp(false)
}

func newCustomRangeForm() *huh.Form {
	validDay := func(s string) error {
		if _, err := parseDay(s); err != nil {
			return fmt.Errorf("use YYYY-MM-DD")
		}

		return nil
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("start").
				Title("Raised from").
				Placeholder("YYYY-MM-DD").
				CharLimit(10).
				Validate(validDay),

			huh.NewInput().
				Key("end").
				Title("Raised until").
				Placeholder("YYYY-MM-DD").
				CharLimit(10).
				Validate(validDay),
		),
	).WithWidth(45).WithShowHelp(false)
}
