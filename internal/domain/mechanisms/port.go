package mechanisms

// Catalog is the read-only damage mechanism reference table.
type Catalog interface {
	ListAll() []DamageMechanism
	Lookup(name string) (DamageMechanism, bool)
}
