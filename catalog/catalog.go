// Package catalog is a static, read-only vendor lookup over a JSON
// price list.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Vendor is one catalog entry: a vendor's price for one product.
type Vendor struct {
	Name      string  `json:"name"`
	Product   string  `json:"product"`
	UnitPrice float64 `json:"unit_price"`
	Currency  string  `json:"currency"`
}

// Catalog is an in-memory vendor price list.
type Catalog struct {
	vendors []Vendor
}

// New creates a catalog from entries.
func New(vendors []Vendor) *Catalog {
	return &Catalog{vendors: vendors}
}

// Load reads a catalog from a JSON file holding an array of vendors.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var vendors []Vendor
	if err := json.Unmarshal(data, &vendors); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(vendors), nil
}

// FindVendor returns the first entry for the named vendor.
func (c *Catalog) FindVendor(name string) (Vendor, bool) {
	for _, v := range c.vendors {
		if strings.EqualFold(v.Name, name) {
			return v, true
		}
	}
	return Vendor{}, false
}

// SearchProduct returns entries whose product matches the query,
// cheapest first.
func (c *Catalog) SearchProduct(product string) []Vendor {
	query := strings.ToLower(product)
	var matches []Vendor
	for _, v := range c.vendors {
		if strings.Contains(strings.ToLower(v.Product), query) {
			matches = append(matches, v)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].UnitPrice < matches[j].UnitPrice
	})
	return matches
}
