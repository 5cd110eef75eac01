package rbi

import (
	"errors"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/bryanwahyu/rbi-inspect/internal/domain/fault"
)

func newProperties(minSuccessful int) *gopter.Properties {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = minSuccessful
	return gopter.NewProperties(parameters)
}

func mechanismNames() []string {
	cat := testCatalog()
	names := make([]string, 0, len(cat))
	for n := range cat {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Property: CombinePOF(cs) ∈ [0,1] and CombinePOF(cs + c) >= CombinePOF(cs).
func TestCombinePOFProperties(t *testing.T) {
	properties := newProperties(200)

	properties.Property("pof stays within [0,1]", prop.ForAll(
		func(cs []float64) bool {
			p := CombinePOF(cs)
			return p >= 0 && p <= 1
		},
		gen.SliceOf(gen.Float64Range(-0.5, 1.5)),
	))

	properties.Property("adding a mechanism never lowers pof", prop.ForAll(
		func(cs []float64, extra float64) bool {
			return CombinePOF(append(cs, extra)) >= CombinePOF(cs)
		},
		gen.SliceOf(gen.Float64Range(0, 1)),
		gen.Float64Range(0, 1),
	))

	properties.TestingRun(t)
}

// Property: every value maps to exactly one category and that category's
// band contains it.
func TestBandsAreTotal(t *testing.T) {
	properties := newProperties(300)

	for name, bands := range map[string]Bands{"pof": POFBands, "cof": COFBands, "risk": RiskBands} {
		bands := bands
		properties.Property(name+" classification has no gaps", prop.ForAll(
			func(v float64) bool {
				c := bands.Classify(v)
				if !c.Valid() {
					return false
				}
				i := int(c) - 1
				if i < len(bands) && v >= bands[i] {
					return false
				}
				if i > 0 && v < bands[i-1] {
					return false
				}
				return true
			},
			gen.Float64Range(-1, 2e7),
		))
	}

	properties.TestingRun(t)
}

type randomRequest struct {
	Picks       []int
	Coefficient float64
	Mass        float64
	Cost        float64
	Product     ProductType
	Year        int
}

func genRequest(n int) gopter.Gen {
	return gopter.CombineGens(
		gen.SliceOf(gen.IntRange(0, n-1)),
		gen.Float64Range(0, 1),
		gen.Float64Range(0.001, 1e6),
		gen.Float64Range(0, 1e4),
		gen.OneConstOf(ProductFlammable, ProductToxic, ProductNonHazardous),
		gen.IntRange(1950, 2025),
	).Map(func(vals []interface{}) randomRequest {
		return randomRequest{
			Picks:       vals[0].([]int),
			Coefficient: vals[1].(float64),
			Mass:        vals[2].(float64),
			Cost:        vals[3].(float64),
			Product:     vals[4].(ProductType),
			Year:        vals[5].(int),
		}
	})
}

func (r randomRequest) input(names []string) Input {
	dms := make([]string, 0, len(r.Picks))
	for _, i := range r.Picks {
		dms = append(dms, names[i])
	}
	return Input{
		EquipmentID:          "eq-1",
		DamageMechanisms:     dms,
		FlammableCoefficient: r.Coefficient,
		InventoryMass:        r.Mass,
		MaterialCostPerUnit:  r.Cost,
		ProductType:          r.Product,
	}
}

func TestComputeProperties(t *testing.T) {
	names := mechanismNames()
	e := NewEngine(testCatalog())
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	properties := newProperties(150)

	properties.Property("valid requests produce bounded scores", prop.ForAll(
		func(r randomRequest) bool {
			eq := vessel()
			eq.YearCommissioned = r.Year
			a, err := e.Compute(eq, r.input(names), now)
			if len(r.Picks) == 0 {
				return errors.Is(err, fault.ErrInvalidInput)
			}
			if err != nil {
				return false
			}
			return a.POFValue >= 0 && a.POFValue <= 1 &&
				a.COFAsset >= 0 && a.COFHSE >= 0 && a.COFEnv >= 0 &&
				a.COFTotal >= 0 && a.RiskValue >= 0 &&
				a.POFCategory == POFBands.Classify(a.POFValue) &&
				a.COFCategory == COFBands.Classify(a.COFTotal) &&
				a.RiskCategory == RiskBands.Classify(a.RiskValue) &&
				a.NextInspectionDate.Equal(AddYears(a.AnalysisDate, a.InspectionIntervalYears))
		},
		genRequest(len(names)),
	))

	properties.Property("ndt recommendation is repeatable", prop.ForAll(
		func(r randomRequest) bool {
			if len(r.Picks) == 0 {
				return true
			}
			first, err1 := e.Compute(vessel(), r.input(names), now)
			second, err2 := e.Compute(vessel(), r.input(names), now)
			if err1 != nil || err2 != nil {
				return false
			}
			return reflect.DeepEqual(first.RecommendedNDTMethods, second.RecommendedNDTMethods)
		},
		genRequest(len(names)),
	))

	properties.Property("more mechanisms never lower pof", prop.ForAll(
		func(r randomRequest, extra int) bool {
			if len(r.Picks) == 0 {
				return true
			}
			base, err := e.Compute(vessel(), r.input(names), now)
			if err != nil {
				return false
			}
			r.Picks = append(append([]int(nil), r.Picks...), extra)
			more, err := e.Compute(vessel(), r.input(names), now)
			if err != nil {
				return false
			}
			return more.POFValue >= base.POFValue
		},
		genRequest(len(names)),
		gen.IntRange(0, len(names)-1),
	))

	properties.TestingRun(t)
}
