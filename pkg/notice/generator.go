package notice

import (
	"strings"

	"github.com/fulmenhq/noticegen/pkg/logger"
	"github.com/fulmenhq/noticegen/pkg/maven"
)

const (
	licensePlaceholder  = "\tLicense is not included in maven artifact, look at homepage for license\t\n"
	homepagePlaceholder = "Home page is not included in maven artifact, and thus couldn't be referenced here"
)

// RenderOptions controls notice rendering.
type RenderOptions struct {
	ModifiedCode []ProjectDescription
	Hints        []ProjectDescription
	// Strict turns a missing license or homepage into an error instead of a placeholder.
	Strict bool
}

// Render produces the notice text for deps, which must already be ordered.
// Modified-code entries follow the dependencies, sorted by SortDescriptions.
func Render(deps []*maven.Project, opts RenderOptions) (string, error) {
	hints := NewHints(opts.Hints)

	var b strings.Builder
	for _, dep := range deps {
		if err := renderDependency(&b, dep, hints, opts.Strict); err != nil {
			return "", err
		}
	}
	for _, d := range SortDescriptions(opts.ModifiedCode) {
		renderModified(&b, d)
	}
	return b.String(), nil
}

func renderDependency(b *strings.Builder, p *maven.Project, hints *Hints, strict bool) error {
	b.WriteString("This product depends on ")
	b.WriteString(p.Name)
	b.WriteString(" ")
	b.WriteString(MajorMinor(p.Version))
	b.WriteString("\n\n")

	switch {
	case len(p.Licenses) > 0:
		for _, l := range p.Licenses {
			b.WriteString("\tLicense:\t")
			b.WriteString(l.URL)
			b.WriteString(" (")
			b.WriteString(l.Name)
			b.WriteString(")\n")
		}
	default:
		if hint, ok := hints.Lookup(p.Name); ok {
			b.WriteString("\tLicense:\t")
			b.WriteString(hint.LicenseURL)
			b.WriteString(" (")
			b.WriteString(hint.LicenseName)
			b.WriteString(")\n")
		} else if strict {
			return &LicenseMissingError{Artifact: p.Coordinate, Name: p.Name}
		} else {
			logger.Warn("Dependency has no license, using placeholder", logger.String("artifact", p.Coordinate.String()))
			b.WriteString(licensePlaceholder)
		}
	}

	b.WriteString("\tHomepage:\t")
	switch {
	case p.URL != "":
		b.WriteString(p.URL)
	default:
		if hint, ok := hints.Lookup(p.Name); ok {
			b.WriteString(hint.HomePage)
		} else if strict {
			return &HomepageMissingError{Artifact: p.Coordinate, Name: p.Name}
		} else {
			logger.Warn("Dependency has no homepage, using placeholder", logger.String("artifact", p.Coordinate.String()))
			b.WriteString(homepagePlaceholder)
		}
	}
	b.WriteString("\n\n")
	return nil
}

func renderModified(b *strings.Builder, d ProjectDescription) {
	b.WriteString("This product contains a modified version of ")
	b.WriteString(d.ProjectName)
	b.WriteString(" ")
	b.WriteString(d.Version)
	b.WriteString("\n\n")
	b.WriteString("\tLicense:\t")
	b.WriteString(d.LicenseName)
	b.WriteString(" (")
	b.WriteString(d.LicenseURL)
	b.WriteString(")\n")
	b.WriteString("\tHomepage:\t")
	b.WriteString(d.HomePage)
	b.WriteString("\n\n")
}

// MajorMinor reduces a version to its first two dot-separated parts.
// Trailing empty parts are ignored, so "1." becomes "1" and "1.2.3" becomes "1.2".
func MajorMinor(version string) string {
	parts := strings.Split(version, ".")
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	switch len(parts) {
	case 0:
		return version
	case 1:
		return parts[0]
	default:
		return parts[0] + "." + parts[1]
	}
}
