package rbi

import (
	"fmt"
)

// Category is the ordered five-level label shared by POF, COF and risk.
// The zero value is not a valid category.
type Category int

const (
	CategoryLow Category = iota + 1
	CategoryMediumLow
	CategoryMedium
	CategoryMediumHigh
	CategoryHigh
)

// Categories in ascending order.
var Categories = []Category{CategoryLow, CategoryMediumLow, CategoryMedium, CategoryMediumHigh, CategoryHigh}

var categoryLabels = map[Category]string{
	CategoryLow:        "Low",
	CategoryMediumLow:  "Medium-Low",
	CategoryMedium:     "Medium",
	CategoryMediumHigh: "Medium-High",
	CategoryHigh:       "High",
}

func (c Category) String() string {
	if s, ok := categoryLabels[c]; ok {
		return s
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

func ParseCategory(s string) (Category, error) {
	for c, label := range categoryLabels {
		if label == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid category %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	v, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Bands holds the exclusive upper bounds of Low, Medium-Low, Medium and
// Medium-High. Anything at or above the last bound is High.
type Bands [4]float64

// Classify maps v to exactly one category. Bounds must be ascending.
func (b Bands) Classify(v float64) Category {
	for i, upper := range b {
		if v < upper {
			return Categories[i]
		}
	}
	return CategoryHigh
}

var (
	// POFBands are dimensionless probability bands.
	POFBands = Bands{0.2, 0.4, 0.6, 0.8}
	// COFBands are monetary consequence bands (USD).
	COFBands = Bands{10_000, 100_000, 1_000_000, 10_000_000}
	// RiskBands apply to pof × cof_total, so they sit on their own scale.
	RiskBands = Bands{5_000, 25_000, 100_000, 500_000}
)
