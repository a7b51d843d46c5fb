package notice

import (
	"sort"
	"strings"
	"unicode"
)

// ProjectDescription is manually supplied notice metadata for one project.
// It serves both as a "modified code" entry and as a hint for dependencies
// whose POM lacks a license or homepage.
type ProjectDescription struct {
	ProjectName string `mapstructure:"projectName" yaml:"projectName" toml:"projectName" json:"projectName"`
	LicenseName string `mapstructure:"licenseName" yaml:"licenseName" toml:"licenseName" json:"licenseName"`
	LicenseURL  string `mapstructure:"licenseUrl" yaml:"licenseUrl" toml:"licenseUrl" json:"licenseUrl"`
	HomePage    string `mapstructure:"homePage" yaml:"homePage" toml:"homePage" json:"homePage"`
	Version     string `mapstructure:"version" yaml:"version" toml:"version" json:"version"`
}

// SortKey is the concatenation of all fields, in declaration order.
func (d ProjectDescription) SortKey() string {
	return d.ProjectName + d.LicenseName + d.LicenseURL + d.HomePage + d.Version
}

// SortDescriptions returns a copy of ds ordered by descending SortKey,
// compared byte-wise. Equal keys keep their input order.
func SortDescriptions(ds []ProjectDescription) []ProjectDescription {
	sorted := make([]ProjectDescription, len(ds))
	copy(sorted, ds)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SortKey() > sorted[j].SortKey()
	})
	return sorted
}

// Hints looks up descriptions by case-insensitive project name. Names are
// compared rune by rune with simple case folding, the rule strings.EqualFold
// uses, so "STRASSE" does not match "straße".
type Hints struct {
	byName map[string]ProjectDescription
}

// NewHints indexes ds. When several entries share a name the first one wins.
func NewHints(ds []ProjectDescription) *Hints {
	h := &Hints{byName: make(map[string]ProjectDescription, len(ds))}
	for _, d := range ds {
		key := foldKey(d.ProjectName)
		if _, exists := h.byName[key]; !exists {
			h.byName[key] = d
		}
	}
	return h
}

// Lookup returns the hint for a project name.
func (h *Hints) Lookup(name string) (ProjectDescription, bool) {
	if h == nil {
		return ProjectDescription{}, false
	}
	d, ok := h.byName[foldKey(name)]
	return d, ok
}

// foldKey maps every rune to the smallest member of its simple case-folding
// orbit. Two names have the same key exactly when strings.EqualFold holds.
func foldKey(name string) string {
	return strings.Map(func(r rune) rune {
		smallest := r
		for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
			if f < smallest {
				smallest = f
			}
		}
		return smallest
	}, name)
}
