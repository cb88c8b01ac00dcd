// Package catalog holds the display labels and prompt fragments for project
// types and visual styles.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var raw []byte

type ProjectType struct {
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
}

type Catalog struct {
	ProjectTypes  map[string]ProjectType `yaml:"project_types"`
	Styles        map[string]string      `yaml:"styles"`
	FallbackLabel string                 `yaml:"fallback_label"`
}

var defaultCatalog = mustParse(raw)

func mustParse(data []byte) *Catalog {
	c, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return c
}

// Parse decodes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if c.FallbackLabel == "" {
		c.FallbackLabel = "Autre"
	}
	return &c, nil
}

// Default returns the embedded catalog.
func Default() *Catalog { return defaultCatalog }

// Label is the quote heading for a project type.
func (c *Catalog) Label(projectType string) string {
	if pt, ok := c.ProjectTypes[strings.ToLower(projectType)]; ok {
		return pt.Label
	}
	return c.FallbackLabel
}

// Describe returns the prompt fragment of a project type, or the key itself.
func (c *Catalog) Describe(projectType string) string {
	if pt, ok := c.ProjectTypes[strings.ToLower(projectType)]; ok && pt.Description != "" {
		return pt.Description
	}
	return projectType
}

// Style returns the prompt fragment of a style, or the key itself.
func (c *Catalog) Style(style string) string {
	if s, ok := c.Styles[strings.ToLower(style)]; ok {
		return s
	}
	return style
}

// ProjectTypeKeys lists known project types in a stable order.
func (c *Catalog) ProjectTypeKeys() []string {
	keys := make([]string, 0, len(c.ProjectTypes))
	for k := range c.ProjectTypes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
