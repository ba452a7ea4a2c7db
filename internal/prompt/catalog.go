// internal/prompt/catalog.go
package prompt

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var categoriesYAML []byte

// Question is one category-specific context question. Answers are stored in
// a plan's context_data under the question ID.
type Question struct {
	ID          string `yaml:"id" json:"id"`
	Question    string `yaml:"question" json:"question"`
	Placeholder string `yaml:"placeholder" json:"placeholder"`
	Hint        string `yaml:"hint" json:"hint"`
}

type Category struct {
	Key       string     `yaml:"key" json:"key"`
	Label     string     `yaml:"label" json:"category"`
	Aliases   []string   `yaml:"aliases" json:"-"`
	Questions []Question `yaml:"questions" json:"questions"`
}

// Catalog resolves plan categories and their aliases.
type Catalog struct {
	Default    string     `yaml:"default"`
	Categories []Category `yaml:"categories"`

	byAlias map[string]int
}

// ParseCatalog decodes a catalog document and indexes its aliases.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse category catalog: %w", err)
	}

	c.byAlias = make(map[string]int)
	for i, cat := range c.Categories {
		c.byAlias[strings.ToLower(cat.Key)] = i
		for _, alias := range cat.Aliases {
			c.byAlias[strings.ToLower(alias)] = i
		}
	}
	if _, ok := c.byAlias[strings.ToLower(c.Default)]; !ok {
		return nil, fmt.Errorf("default category %q is not defined", c.Default)
	}
	return &c, nil
}

// Lookup resolves name case-insensitively. Unknown or empty names fall back
// to the default category; the second result reports whether name matched.
func (c *Catalog) Lookup(name string) (Category, bool) {
	if i, ok := c.byAlias[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c.Categories[i], true
	}
	return c.Categories[c.byAlias[strings.ToLower(c.Default)]], false
}

var (
	defaultCatalogOnce sync.Once
	defaultCatalog     *Catalog
)

// DefaultCatalog returns the embedded category catalog.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := ParseCatalog(categoriesYAML)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// LookupCategory resolves name against the embedded catalog.
func LookupCategory(name string) (Category, bool) {
	return DefaultCatalog().Lookup(name)
}
