package drug

// Kind distinguishes liquid drugs (dispensed in cc) from solid ones
// (dispensed in units). Quantity ranges differ per kind.
type Kind string

const (
	Liquid Kind = "cc"
	Solid  Kind = "unit"
)

// Drug is one configured entry of the clinic's dispensing catalog.
type Drug struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Catalog is the fixed list of drugs the clinic dispenses. Quotas, reports
// and deliveries are all keyed by these names.
var Catalog = []Drug{
	{Name: "شربت متادون", Kind: Liquid},
	{Name: "شربت تریاک", Kind: Liquid},
	{Name: "قرص متادون 5", Kind: Solid},
	{Name: "قرص متادون 20", Kind: Solid},
	{Name: "قرص بوپرنورفین 2", Kind: Solid},
	{Name: "قرص بوپرنورفین 8", Kind: Solid},
}

// Find returns the catalog entry for name.
func Find(name string) (Drug, bool) {
	for _, d := range Catalog {
		if d.Name == name {
			return d, true
		}
	}
	return Drug{}, false
}

// Valid reports whether name is a configured drug.
func Valid(name string) bool {
	_, ok := Find(name)
	return ok
}

// Names returns all configured drug names in catalog order.
func Names() []string {
	names := make([]string, len(Catalog))
	for i, d := range Catalog {
		names[i] = d.Name
	}
	return names
}

// ValidQuantity reports whether qty is dispensable for the drug's kind.
// Liquid drugs accept 1-1000 cc, solid drugs any positive unit count.
func (d Drug) ValidQuantity(qty int) bool {
	if d.Kind == Liquid {
		return qty >= 1 && qty <= 1000
	}
	return qty >= 1
}
