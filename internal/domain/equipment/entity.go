package equipment

import (
	"math"
	"time"
)

// ID tipe untuk Equipment
type ID string

// Class enum
type Class string

const (
	ClassVessels        Class = "vessels"
	ClassPiping         Class = "piping"
	ClassTanks          Class = "tanks"
	ClassHeatExchangers Class = "heat_exchangers"
	ClassAirCoolers     Class = "air_coolers"
	ClassPSV            Class = "psv"
)

// Classes lists every known class in display order.
var Classes = []Class{ClassVessels, ClassPiping, ClassTanks, ClassHeatExchangers, ClassAirCoolers, ClassPSV}

func (c Class) Valid() bool {
	for _, k := range Classes {
		if c == k {
			return true
		}
	}
	return false
}

// Equipment is a registered asset. Pressures are psi, temperatures °F,
// thickness and diameter inches, length feet, volume ft³.
type Equipment struct {
	ID                   ID        `json:"id"`
	Tag                  string    `json:"tag"`
	Description          string    `json:"description"`
	Class                Class     `json:"equipment_class"`
	DesignPressure       float64   `json:"design_pressure"`
	DesignTemperature    float64   `json:"design_temperature"`
	OperatingPressure    float64   `json:"operating_pressure"`
	OperatingTemperature float64   `json:"operating_temperature"`
	Material             string    `json:"material"`
	Thickness            float64   `json:"thickness"`
	Diameter             *float64  `json:"diameter,omitempty"`
	Length               *float64  `json:"length,omitempty"`
	Volume               *float64  `json:"volume,omitempty"`
	YearCommissioned     int       `json:"year_commissioned"`
	Location             string    `json:"location"`
	FLOC                 *string   `json:"floc,omitempty"`
	CorrosionLoop        *string   `json:"corrosion_loop,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// EffectiveVolume returns the stated volume, or the cylinder volume derived
// from diameter and length. ok is false when neither is known.
func (e *Equipment) EffectiveVolume() (v float64, ok bool) {
	if e.Volume != nil && *e.Volume > 0 {
		return *e.Volume, true
	}
	if e.Diameter != nil && e.Length != nil && *e.Diameter > 0 && *e.Length > 0 {
		r := *e.Diameter / 24 // inches to feet, halved
		return math.Pi * r * r * *e.Length, true
	}
	return 0, false
}

// FLOCGroups is equipment grouped by functional location.
type FLOCGroups struct {
	Groups     map[string][]*Equipment `json:"groups"`
	Unassigned []*Equipment            `json:"unassigned"`
}
