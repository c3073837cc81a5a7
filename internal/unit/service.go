// Package unit maps the free-form unit text found in price lists and
// requests onto the document unit vocabulary.
package unit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/buildestimate/internal/apperr"
	"github.com/MrJamesThe3rd/buildestimate/internal/auth"
	"github.com/MrJamesThe3rd/buildestimate/internal/document"
)

var ErrNotFound = errors.New("unit alias not found")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=unit
type Repository interface {
	FindAlias(ctx context.Context, alias string) (document.Unit, error)
	SaveAlias(ctx context.Context, alias string, u document.Unit) error
	ListAliases(ctx context.Context) ([]Alias, error)
}

// Alias is a learned spelling of a vocabulary unit.
type Alias struct {
	Alias     string
	Unit      document.Unit
	CreatedAt time.Time
}

// Entry is one vocabulary unit with its display label.
type Entry struct {
	Code  document.Unit
	Label string
}

var builtin = map[string]document.Unit{
	"pc": document.UnitPieces, "pcs": document.UnitPieces, "piece": document.UnitPieces,
	"pieces": document.UnitPieces, "no": document.UnitPieces, "nos": document.UnitPieces,
	"kg": document.UnitKilograms, "kgs": document.UnitKilograms, "kilo": document.UnitKilograms,
	"kilogram": document.UnitKilograms, "kilograms": document.UnitKilograms,
	"t": document.UnitTons, "ton": document.UnitTons, "tons": document.UnitTons,
	"tonne": document.UnitTons, "tonnes": document.UnitTons, "mt": document.UnitTons,
	"bag": document.UnitBags, "bags": document.UnitBags,
	"m3": document.UnitCubicMeters, "cum": document.UnitCubicMeters, "cu m": document.UnitCubicMeters,
	"cbm": document.UnitCubicMeters, "cubic meter": document.UnitCubicMeters, "cubic metre": document.UnitCubicMeters,
	"m2": document.UnitSquareMeters, "sqm": document.UnitSquareMeters, "sq m": document.UnitSquareMeters,
	"square meter": document.UnitSquareMeters, "square metre": document.UnitSquareMeters,
	"ft": document.UnitFeet, "foot": document.UnitFeet, "feet": document.UnitFeet,
	"m": document.UnitMeters, "mtr": document.UnitMeters, "meter": document.UnitMeters,
	"metre": document.UnitMeters, "metres": document.UnitMeters, "meters": document.UnitMeters,
	"l": document.UnitLiters, "ltr": document.UnitLiters, "litre": document.UnitLiters,
	"litres": document.UnitLiters, "liter": document.UnitLiters, "liters": document.UnitLiters,
	"gal": document.UnitGallons, "gallon": document.UnitGallons, "gallons": document.UnitGallons,
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Key folds raw unit text into the form aliases are stored under:
// lower case, single spaces, no trailing dots.
func Key(raw string) string {
	s := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	return strings.TrimRight(s, ".")
}

// Normalize resolves raw unit text. Vocabulary codes and labels win, then the
// built-in spellings, then aliases learned through Learn.
func (s *Service) Normalize(ctx context.Context, raw string) (document.Unit, error) {
	key := Key(raw)
	if key == "" {
		return "", apperr.Invalid("unit", raw, "is required")
	}

	if u, ok := lookup(key); ok {
		return u, nil
	}

	u, err := s.repo.FindAlias(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", apperr.Invalid("unit", raw, "unknown unit")
		}

		return "", err
	}

	if !u.Known() {
		return "", apperr.Invalid("unit", raw, "alias points to retired unit %q", u)
	}

	return u, nil
}

func lookup(key string) (document.Unit, bool) {
	for _, u := range document.Units() {
		if key == string(u) || key == strings.ToLower(u.Label()) {
			return u, true
		}
	}

	u, ok := builtin[key]

	return u, ok
}

// Learn remembers that alias means u. Built-in spellings cannot be redefined.
func (s *Service) Learn(ctx context.Context, a auth.Actor, alias string, u document.Unit) (Alias, error) {
	if !a.IsAdmin() && !a.IsTrader() {
		return Alias{}, apperr.Forbidden("learn unit alias", "traders only")
	}

	key := Key(alias)
	if key == "" {
		return Alias{}, apperr.Invalid("alias", alias, "is required")
	}

	if !u.Known() {
		return Alias{}, apperr.Invalid("unit", string(u), "unknown unit")
	}

	if existing, ok := lookup(key); ok && existing != u {
		return Alias{}, apperr.Invalid("alias", alias, "already means %q", existing)
	}

	if err := s.repo.SaveAlias(ctx, key, u); err != nil {
		return Alias{}, err
	}

	return Alias{Alias: key, Unit: u}, nil
}

// Vocabulary lists the units documents may use.
func (s *Service) Vocabulary() []Entry {
	units := document.Units()

	out := make([]Entry, 0, len(units))
	for _, u := range units {
		out = append(out, Entry{Code: u, Label: u.Label()})
	}

	return out
}

func (s *Service) Aliases(ctx context.Context) ([]Alias, error) {
	return s.repo.ListAliases(ctx)
}
