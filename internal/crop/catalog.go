package crop

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed crops.yaml
var catalogYAML []byte

// Category groups crops that are farmed in a similar way
type Category struct {
	Name  string   `yaml:"name" json:"name"`
	Crops []string `yaml:"crops" json:"crops"`
}

// Catalog is the list of crop categories offered when adding a plant
type Catalog struct {
	Categories []Category `yaml:"categories" json:"categories"`
}

var (
	loadOnce sync.Once
	catalog  *Catalog
	loadErr  error
)

// ParseCatalog decodes a YAML catalog document
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse crop catalog: %w", err)
	}
	for _, cat := range c.Categories {
		if cat.Name == "" {
			return nil, fmt.Errorf("parse crop catalog: category without a name")
		}
	}
	return &c, nil
}

// Default returns the embedded catalog
func Default() (*Catalog, error) {
	loadOnce.Do(func() {
		catalog, loadErr = ParseCatalog(catalogYAML)
	})
	return catalog, loadErr
}

// AllCrops returns every crop name sorted alphabetically
func (c *Catalog) AllCrops() []string {
	var all []string
	for _, cat := range c.Categories {
		all = append(all, cat.Crops...)
	}
	sort.Strings(all)
	return all
}

// CategoryOf returns the category a crop belongs to, matched case-insensitively
func (c *Catalog) CategoryOf(cropName string) (string, bool) {
	for _, cat := range c.Categories {
		for _, name := range cat.Crops {
			if strings.EqualFold(name, cropName) {
				return cat.Name, true
			}
		}
	}
	return "", false
}
