package document

import (
	"slices"
	"strings"
	"sync"
)

// Unit is a measurement unit code attached to a line item.
type Unit string

const (
	UnitPieces       Unit = "pcs"
	UnitKilograms    Unit = "kg"
	UnitTons         Unit = "tons"
	UnitBags         Unit = "bags"
	UnitCubicMeters  Unit = "cubic_meters"
	UnitSquareMeters Unit = "square_meters"
	UnitFeet         Unit = "feet"
	UnitMeters       Unit = "meters"
	UnitLiters       Unit = "liters"
	UnitGallons      Unit = "gallons"
)

var (
	unitsMu sync.RWMutex
	units   = map[Unit]string{
		UnitPieces:       "Pieces",
		UnitKilograms:    "Kilograms",
		UnitTons:         "Tons",
		UnitBags:         "Bags",
		UnitCubicMeters:  "Cubic Meters",
		UnitSquareMeters: "Square Meters",
		UnitFeet:         "Feet",
		UnitMeters:       "Meters",
		UnitLiters:       "Liters",
		UnitGallons:      "Gallons",
	}
)

// RegisterUnits extends the vocabulary with extra unit codes mapped to their
// display labels. An empty label falls back to the code; registering an
// existing code only replaces its label.
func RegisterUnits(extra map[string]string) {
	unitsMu.Lock()
	defer unitsMu.Unlock()

	for code, label := range extra {
		code, label = strings.TrimSpace(code), strings.TrimSpace(label)
		if code == "" {
			continue
		}

		if label == "" {
			label = code
		}

		units[Unit(code)] = label
	}
}

func unregisterUnit(code Unit) {
	unitsMu.Lock()
	defer unitsMu.Unlock()

	delete(units, code)
}

// Known reports whether the unit is part of the vocabulary.
func (u Unit) Known() bool {
	unitsMu.RLock()
	defer unitsMu.RUnlock()

	_, ok := units[u]

	return ok
}

// Label returns the display label, or the raw code for unknown units.
func (u Unit) Label() string {
	unitsMu.RLock()
	defer unitsMu.RUnlock()

	if l, ok := units[u]; ok {
		return l
	}

	return string(u)
}

// Units lists the vocabulary sorted by code.
func Units() []Unit {
	unitsMu.RLock()
	defer unitsMu.RUnlock()

	out := make([]Unit, 0, len(units))
	for u := range units {
		out = append(out, u)
	}

	slices.Sort(out)

	return out
}
