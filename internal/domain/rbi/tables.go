package rbi

import (
	"github.com/bryanwahyu/rbi-inspect/internal/domain/equipment"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/fault"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/mechanisms"
)

// NDT method codes.
const (
	NDTVisual       = "VT"
	NDTUltrasonic   = "UT"
	NDTAutomatedUT  = "AUT"
	NDTMagneticPart = "MT"
	NDTPenetrant    = "PT"
	NDTPhasedArray  = "PAUT"
	NDTTOFD         = "TOFD"
	NDTHardness     = "HT"
	NDTReplication  = "REP"
)

var ndtByCategory = map[mechanisms.Category][]string{
	mechanisms.CategoryCorrosion:     {NDTVisual, NDTUltrasonic, NDTAutomatedUT},
	mechanisms.CategoryCracking:      {NDTMagneticPart, NDTPenetrant, NDTPhasedArray, NDTTOFD},
	mechanisms.CategoryMetallurgical: {NDTPhasedArray, NDTHardness, NDTReplication},
	mechanisms.CategoryMechanical:    {NDTVisual, NDTMagneticPart, NDTPenetrant},
}

// NDTMethods returns the techniques for a mechanism category.
func NDTMethods(c mechanisms.Category) ([]string, error) {
	m, ok := ndtByCategory[c]
	if !ok {
		return nil, fault.InvalidInput("no NDT methods for mechanism category %q", c)
	}
	return m, nil
}

var intervalYears = map[Category]int{
	CategoryHigh:       1,
	CategoryMediumHigh: 2,
	CategoryMedium:     3,
	CategoryMediumLow:  4,
	CategoryLow:        5,
}

// InspectionInterval returns the re-inspection interval in whole years.
func InspectionInterval(c Category) (int, error) {
	y, ok := intervalYears[c]
	if !ok {
		return 0, fault.InvalidInput("no inspection interval for risk category %v", c)
	}
	return y, nil
}

var classMultiplier = map[equipment.Class]float64{
	equipment.ClassVessels:        1.5,
	equipment.ClassPiping:         1.0,
	equipment.ClassTanks:          1.2,
	equipment.ClassHeatExchangers: 1.8,
	equipment.ClassAirCoolers:     1.6,
	equipment.ClassPSV:            0.8,
}

var inspectionType = map[equipment.Class]string{
	equipment.ClassVessels:        "Internal Inspection",
	equipment.ClassPiping:         "On-Stream Inspection",
	equipment.ClassTanks:          "Out-of-Service Floor Inspection",
	equipment.ClassHeatExchangers: "Bundle Inspection",
	equipment.ClassAirCoolers:     "External Header Inspection",
	equipment.ClassPSV:            "Bench Test",
}

// InspectionType names the inspection performed on a class of equipment.
func InspectionType(c equipment.Class) (string, error) {
	t, ok := inspectionType[c]
	if !ok {
		return "", fault.InvalidInput("unknown equipment class %q", c)
	}
	return t, nil
}

type productFactors struct {
	hseUnitCost   float64 // USD per unit mass per unit exposure
	toxicExposure float64
	envUnitCost   float64 // USD per unit mass
}

var products = map[ProductType]productFactors{
	ProductFlammable:    {hseUnitCost: 20, toxicExposure: 0, envUnitCost: 8},
	ProductToxic:        {hseUnitCost: 30, toxicExposure: 0.5, envUnitCost: 15},
	ProductNonHazardous: {hseUnitCost: 0, toxicExposure: 0, envUnitCost: 0.2},
}
