package mechanisms

// Category is the fixed damage mechanism taxonomy.
type Category string

const (
	CategoryCorrosion     Category = "corrosion"
	CategoryCracking      Category = "cracking"
	CategoryMetallurgical Category = "metallurgical"
	CategoryMechanical    Category = "mechanical"
)

var Categories = []Category{CategoryCorrosion, CategoryCracking, CategoryMetallurgical, CategoryMechanical}

func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// DamageMechanism is a catalog entry. BaseWeight is the standalone POF
// contribution at nominal age and operating severity.
type DamageMechanism struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Category    Category `json:"category" yaml:"category"`
	BaseWeight  float64  `json:"base_weight" yaml:"base_weight"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}
