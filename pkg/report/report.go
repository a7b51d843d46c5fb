// Package report summarises where each dependency's notice data came from
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aymerick/raymond"
	"github.com/fulmenhq/noticegen/internal/assets"
	"github.com/fulmenhq/noticegen/pkg/ascii"
	"github.com/fulmenhq/noticegen/pkg/maven"
	"github.com/fulmenhq/noticegen/pkg/notice"
)

// Format is an output format for a Report
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
	FormatTable    Format = "table"
)

// Source tells where a license or homepage came from
type Source string

const (
	SourcePOM     Source = "pom"
	SourceHint    Source = "hint"
	SourceMissing Source = "missing"
)

// Entry is one dependency as it will appear in the notice
type Entry struct {
	Coordinate     string          `json:"coordinate"`
	Name           string          `json:"name"`
	Version        string          `json:"version"`
	NoticeVersion  string          `json:"notice_version"`
	Licenses       []maven.License `json:"licenses"`
	Homepage       string          `json:"homepage,omitempty"`
	LicenseSource  Source          `json:"license_source"`
	HomepageSource Source          `json:"homepage_source"`
}

// Summary counts entries by source
type Summary struct {
	Dependencies int `json:"dependencies"`
	Declared     int `json:"declared"`
	Hinted       int `json:"hinted"`
	Missing      int `json:"missing"`
	ModifiedCode int `json:"modified_code"`
}

// Report describes the notice contents for one project
type Report struct {
	Project      string                      `json:"project"`
	ProjectName  string                      `json:"project_name"`
	GeneratedAt  time.Time                   `json:"generated_at"`
	Strict       bool                        `json:"strict"`
	Dependencies []Entry                     `json:"dependencies"`
	ModifiedCode []notice.ProjectDescription `json:"modified_code"`
	Summary      Summary                     `json:"summary"`
}

// Build classifies each dependency the way the notice generator would.
// deps must already be in notice order.
func Build(root *maven.Project, deps []*maven.Project, opts notice.Options, now time.Time) *Report {
	hints := notice.NewHints(opts.Hints)
	r := &Report{
		Project:      root.Coordinate.String(),
		ProjectName:  root.Name,
		GeneratedAt:  now.UTC(),
		Strict:       opts.Strict,
		Dependencies: make([]Entry, 0, len(deps)),
		ModifiedCode: notice.SortDescriptions(opts.ModifiedCode),
	}

	for _, d := range deps {
		e := Entry{
			Coordinate:     d.Coordinate.String(),
			Name:           d.Name,
			Version:        d.Version,
			NoticeVersion:  notice.MajorMinor(d.Version),
			Licenses:       d.Licenses,
			Homepage:       d.URL,
			LicenseSource:  SourcePOM,
			HomepageSource: SourcePOM,
		}
		hint, hinted := hints.Lookup(d.Name)
		if len(d.Licenses) == 0 {
			e.Licenses = nil
			e.LicenseSource = SourceMissing
			if hinted {
				e.Licenses = []maven.License{{Name: hint.LicenseName, URL: hint.LicenseURL}}
				e.LicenseSource = SourceHint
			}
		}
		if d.URL == "" {
			e.HomepageSource = SourceMissing
			if hinted {
				e.Homepage = hint.HomePage
				e.HomepageSource = SourceHint
			}
		}

		switch {
		case e.LicenseSource == SourceMissing || e.HomepageSource == SourceMissing:
			r.Summary.Missing++
		case e.LicenseSource == SourceHint || e.HomepageSource == SourceHint:
			r.Summary.Hinted++
		default:
			r.Summary.Declared++
		}
		r.Dependencies = append(r.Dependencies, e)
	}
	r.Summary.Dependencies = len(r.Dependencies)
	r.Summary.ModifiedCode = len(r.ModifiedCode)
	return r
}

// Render formats the report
func (r *Report) Render(format Format) (string, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return string(data) + "\n", nil
	case FormatTable:
		return r.table(), nil
	case FormatMarkdown:
		return r.renderTemplate("report/report.md.hbs")
	case FormatHTML:
		return r.renderTemplate("report/report.html.hbs")
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func (r *Report) table() string {
	rows := make([][]string, 0, len(r.Dependencies))
	for _, e := range r.Dependencies {
		licenses := make([]string, 0, len(e.Licenses))
		for _, l := range e.Licenses {
			licenses = append(licenses, l.Name)
		}
		rows = append(rows, []string{e.Name, e.NoticeVersion, strings.Join(licenses, ", "), e.Coordinate, string(e.LicenseSource)})
	}
	return ascii.Table([]string{"NAME", "VERSION", "LICENSE", "ARTIFACT", "SOURCE"}, rows, 48)
}

var registerHelpers sync.Once

func (r *Report) renderTemplate(name string) (string, error) {
	registerHelpers.Do(func() {
		raymond.RegisterHelper("sourceClass", func(source string) string {
			switch Source(source) {
			case SourceMissing:
				return "missing"
			case SourceHint:
				return "hint"
			default:
				return ""
			}
		})
	})

	tpl, err := assets.GetTemplate(name)
	if err != nil {
		return "", fmt.Errorf("failed to load template %s: %w", name, err)
	}
	out, err := raymond.Render(string(tpl), r.templateData())
	if err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return out, nil
}

// templateData flattens the report into maps keyed the way the templates expect
func (r *Report) templateData() map[string]interface{} {
	deps := make([]map[string]interface{}, 0, len(r.Dependencies))
	for _, e := range r.Dependencies {
		licenses := make([]map[string]string, 0, len(e.Licenses))
		for _, l := range e.Licenses {
			licenses = append(licenses, map[string]string{"name": l.Name, "url": l.URL})
		}
		deps = append(deps, map[string]interface{}{
			"coordinate":     e.Coordinate,
			"name":           e.Name,
			"version":        e.NoticeVersion,
			"licenses":       licenses,
			"homepage":       e.Homepage,
			"licenseSource":  string(e.LicenseSource),
			"homepageSource": string(e.HomepageSource),
		})
	}
	modified := make([]map[string]string, 0, len(r.ModifiedCode))
	for _, d := range r.ModifiedCode {
		modified = append(modified, map[string]string{
			"projectName": d.ProjectName,
			"licenseName": d.LicenseName,
			"licenseUrl":  d.LicenseURL,
			"homePage":    d.HomePage,
			"version":     d.Version,
		})
	}
	return map[string]interface{}{
		"project": map[string]string{
			"name":       r.ProjectName,
			"coordinate": r.Project,
		},
		"generatedAt":  r.GeneratedAt.Format(time.RFC3339),
		"strict":       r.Strict,
		"dependencies": deps,
		"modifiedCode": modified,
		"summary": map[string]int{
			"dependencies": r.Summary.Dependencies,
			"declared":     r.Summary.Declared,
			"hinted":       r.Summary.Hinted,
			"missing":      r.Summary.Missing,
			"modifiedCode": r.Summary.ModifiedCode,
		},
	}
}
