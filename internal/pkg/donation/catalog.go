package donation

import "github.com/shopspring/decimal"

// CustomPackageID is the sentinel package whose amount is chosen by the donor.
const CustomPackageID = "custom"

// Package is a server-trusted donation tier.
type Package struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Suggested   bool            `json:"suggested"`
}

func (p Package) IsCustom() bool {
	return p.ID == CustomPackageID
}

// Catalog is an immutable, ordered set of packages.
type Catalog struct {
	packages []Package
	index    map[string]int
}

// NewCatalog builds a catalog preserving the given order. Later duplicates of
// an id are ignored.
func NewCatalog(packages ...Package) *Catalog {
	c := &Catalog{index: make(map[string]int, len(packages))}
	for _, p := range packages {
		if _, ok := c.index[p.ID]; ok {
			continue
		}
		c.index[p.ID] = len(c.packages)
		c.packages = append(c.packages, p)
	}
	return c
}

// DefaultCatalog returns the church's standard donation tiers.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		Package{
			ID:          "blessing",
			Name:        "Bénédiction",
			Amount:      decimal.NewFromInt(25),
			Description: "Une petite bénédiction pour soutenir nos ministères",
		},
		Package{
			ID:          "support",
			Name:        "Soutien",
			Amount:      decimal.NewFromInt(50),
			Description: "Soutenez nos activités communautaires",
			Suggested:   true,
		},
		Package{
			ID:          "generosity",
			Name:        "Générosité",
			Amount:      decimal.NewFromInt(100),
			Description: "Un don généreux pour nos projets d'évangélisation",
			Suggested:   true,
		},
		Package{
			ID:          "partnership",
			Name:        "Partenariat",
			Amount:      decimal.NewFromInt(250),
			Description: "Devenez partenaire de notre mission",
		},
		Package{
			ID:          CustomPackageID,
			Name:        "Montant personnalisé",
			Amount:      decimal.Zero,
			Description: "Choisissez le montant de votre don",
		},
	)
}

// List returns the packages in catalog order.
func (c *Catalog) List() []Package {
	out := make([]Package, len(c.packages))
	copy(out, c.packages)
	return out
}

func (c *Catalog) Get(id string) (Package, bool) {
	i, ok := c.index[id]
	if !ok {
		return Package{}, false
	}
	return c.packages[i], true
}
