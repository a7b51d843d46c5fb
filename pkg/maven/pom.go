package maven

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// License is a license declared in a POM.
type License struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Dependency is a <dependency> entry as declared in a POM.
type Dependency struct {
	Coordinate
	Type       string
	Classifier string
	Scope      string
	Optional   bool
	// Exclusions prune the dependency's own transitive dependencies.
	Exclusions []Exclusion
}

// Exclusion is an <exclusion> of a dependency. Either field may be "*".
type Exclusion struct {
	GroupID    string
	ArtifactID string
}

// Matches reports whether c is excluded.
func (e Exclusion) Matches(c Coordinate) bool {
	return (e.GroupID == "*" || e.GroupID == c.GroupID) &&
		(e.ArtifactID == "*" || e.ArtifactID == c.ArtifactID)
}

// Excludes reports whether any exclusion in es matches c.
func Excludes(es []Exclusion, c Coordinate) bool {
	for _, e := range es {
		if e.Matches(c) {
			return true
		}
	}
	return false
}

// Parent is the <parent> element of a POM.
type Parent struct {
	Coordinate
	// RelativePath is empty when the element is absent; Maven then uses "../pom.xml".
	RelativePath    string
	HasRelativePath bool
}

// POM is the raw, uninterpolated content of a pom.xml that matters for notices.
type POM struct {
	Parent               *Parent
	Coordinate           Coordinate
	Packaging            string
	Name                 string
	URL                  string
	Licenses             []License
	Properties           map[string]string
	Dependencies         []Dependency
	DependencyManagement []Dependency
}

// ParsePOM parses a pom.xml document.
func ParsePOM(data []byte) (*POM, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("POM is not well-formed: %w", err)
	}

	root := doc.Root()
	if root == nil || root.Tag != "project" {
		return nil, fmt.Errorf("POM root element must be <project>")
	}

	pom := &POM{
		Coordinate: Coordinate{
			GroupID:    childText(root, "groupId"),
			ArtifactID: childText(root, "artifactId"),
			Version:    childText(root, "version"),
		},
		Packaging:  childText(root, "packaging"),
		Name:       childText(root, "name"),
		URL:        childText(root, "url"),
		Properties: map[string]string{},
	}
	if pom.Coordinate.ArtifactID == "" {
		return nil, fmt.Errorf("POM is missing <artifactId>")
	}

	if p := root.SelectElement("parent"); p != nil {
		pom.Parent = &Parent{
			Coordinate: Coordinate{
				GroupID:    childText(p, "groupId"),
				ArtifactID: childText(p, "artifactId"),
				Version:    childText(p, "version"),
			},
		}
		if rp := p.SelectElement("relativePath"); rp != nil {
			pom.Parent.HasRelativePath = true
			pom.Parent.RelativePath = strings.TrimSpace(rp.Text())
		}
	}

	if licenses := root.SelectElement("licenses"); licenses != nil {
		for _, l := range licenses.SelectElements("license") {
			pom.Licenses = append(pom.Licenses, License{
				Name: childText(l, "name"),
				URL:  childText(l, "url"),
			})
		}
	}

	if props := root.SelectElement("properties"); props != nil {
		for _, p := range props.ChildElements() {
			pom.Properties[p.Tag] = strings.TrimSpace(p.Text())
		}
	}

	pom.Dependencies = parseDependencies(root.SelectElement("dependencies"))
	if dm := root.SelectElement("dependencyManagement"); dm != nil {
		pom.DependencyManagement = parseDependencies(dm.SelectElement("dependencies"))
	}

	return pom, nil
}

func parseDependencies(el *etree.Element) []Dependency {
	if el == nil {
		return nil
	}
	var deps []Dependency
	for _, d := range el.SelectElements("dependency") {
		deps = append(deps, Dependency{
			Coordinate: Coordinate{
				GroupID:    childText(d, "groupId"),
				ArtifactID: childText(d, "artifactId"),
				Version:    childText(d, "version"),
			},
			Type:       childText(d, "type"),
			Classifier: childText(d, "classifier"),
			Scope:      childText(d, "scope"),
			Optional:   strings.EqualFold(childText(d, "optional"), "true"),
			Exclusions: parseExclusions(d.SelectElement("exclusions")),
		})
	}
	return deps
}

func parseExclusions(el *etree.Element) []Exclusion {
	if el == nil {
		return nil
	}
	var out []Exclusion
	for _, e := range el.SelectElements("exclusion") {
		ex := Exclusion{GroupID: childText(e, "groupId"), ArtifactID: childText(e, "artifactId")}
		if ex.GroupID == "" && ex.ArtifactID == "" {
			continue
		}
		// A missing part is treated as a wildcard.
		if ex.GroupID == "" {
			ex.GroupID = "*"
		}
		if ex.ArtifactID == "" {
			ex.ArtifactID = "*"
		}
		out = append(out, ex)
	}
	return out
}

func childText(el *etree.Element, tag string) string {
	child := el.SelectElement(tag)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Text())
}
