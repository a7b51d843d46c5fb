package notice

import (
	"testing"

	"github.com/fulmenhq/noticegen/pkg/maven"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMajorMinor(t *testing.T) {
	tests := []struct {
		version  string
		expected string
	}{
		{"1", "1"},
		{"1.2", "1.2"},
		{"1.2.3", "1.2"},
		{"1.2.3.4", "1.2"},
		{"2.0.0-SNAPSHOT", "2.0"},
		{"1.", "1"},
		{"", ""},
		{"R7", "R7"},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			assert.Equal(t, tt.expected, MajorMinor(tt.version))
		})
	}
}

func TestRender_DeclaredMetadata(t *testing.T) {
	deps := []*maven.Project{{
		Coordinate: maven.Coordinate{GroupID: "org.example", ArtifactID: "lib", Version: "2.5.1"},
		Name:       "Example Lib",
		URL:        "https://example.org/lib",
		Licenses: []maven.License{
			{Name: "Apache-2.0", URL: "https://www.apache.org/licenses/LICENSE-2.0"},
			{Name: "MIT", URL: "https://opensource.org/licenses/MIT"},
		},
	}}

	text, err := Render(deps, RenderOptions{Strict: true})
	require.NoError(t, err)
	assert.Equal(t, "This product depends on Example Lib 2.5\n\n"+
		"\tLicense:\thttps://www.apache.org/licenses/LICENSE-2.0 (Apache-2.0)\n"+
		"\tLicense:\thttps://opensource.org/licenses/MIT (MIT)\n"+
		"\tHomepage:\thttps://example.org/lib\n\n", text)
}

func bareProject() *maven.Project {
	return &maven.Project{
		Coordinate: maven.Coordinate{GroupID: "org.example", ArtifactID: "bare", Version: "0.9"},
		Name:       "Bare",
	}
}

func TestRender_HintMatchesCaseInsensitively(t *testing.T) {
	hints := []ProjectDescription{
		{ProjectName: "bARE", LicenseName: "BSD", LicenseURL: "https://example.org/bsd", HomePage: "https://example.org/bare"},
		{ProjectName: "Bare", LicenseName: "ignored", LicenseURL: "ignored", HomePage: "ignored"},
	}

	text, err := Render([]*maven.Project{bareProject()}, RenderOptions{Hints: hints, Strict: true})
	require.NoError(t, err)
	assert.Equal(t, "This product depends on Bare 0.9\n\n"+
		"\tLicense:\thttps://example.org/bsd (BSD)\n"+
		"\tHomepage:\thttps://example.org/bare\n\n", text)
}

func TestRender_Placeholders(t *testing.T) {
	text, err := Render([]*maven.Project{bareProject()}, RenderOptions{})
	require.NoError(t, err)
	assert.Equal(t, "This product depends on Bare 0.9\n\n"+
		"\tLicense is not included in maven artifact, look at homepage for license\t\n"+
		"\tHomepage:\tHome page is not included in maven artifact, and thus couldn't be referenced here\n\n", text)
}

func TestRender_StrictFailures(t *testing.T) {
	_, err := Render([]*maven.Project{bareProject()}, RenderOptions{Strict: true})
	var licErr *LicenseMissingError
	require.ErrorAs(t, err, &licErr)
	assert.Equal(t, "bare", licErr.Artifact.ArtifactID)
	assert.Contains(t, err.Error(), "org.example:bare:0.9")

	licensed := bareProject()
	licensed.Licenses = []maven.License{{Name: "MIT", URL: "https://opensource.org/licenses/MIT"}}
	_, err = Render([]*maven.Project{licensed}, RenderOptions{Strict: true})
	var homeErr *HomepageMissingError
	require.ErrorAs(t, err, &homeErr)
	assert.Equal(t, "Bare", homeErr.Name)
}

func TestRender_ModifiedCode(t *testing.T) {
	entries := []ProjectDescription{
		{ProjectName: "Alpha", LicenseName: "MIT", LicenseURL: "https://mit", HomePage: "https://alpha", Version: "1.0"},
		{ProjectName: "Gamma", LicenseName: "BSD", LicenseURL: "https://bsd", HomePage: "https://gamma", Version: "3.0"},
		{ProjectName: "Beta", LicenseName: "ASL", LicenseURL: "https://asl", HomePage: "https://beta", Version: "2.0"},
	}

	text, err := Render(nil, RenderOptions{ModifiedCode: entries})
	require.NoError(t, err)
	assert.Equal(t, "This product contains a modified version of Gamma 3.0\n\n"+
		"\tLicense:\tBSD (https://bsd)\n"+
		"\tHomepage:\thttps://gamma\n\n"+
		"This product contains a modified version of Beta 2.0\n\n"+
		"\tLicense:\tASL (https://asl)\n"+
		"\tHomepage:\thttps://beta\n\n"+
		"This product contains a modified version of Alpha 1.0\n\n"+
		"\tLicense:\tMIT (https://mit)\n"+
		"\tHomepage:\thttps://alpha\n\n", text)

	permuted, err := Render(nil, RenderOptions{ModifiedCode: []ProjectDescription{entries[1], entries[0], entries[2]}})
	require.NoError(t, err)
	assert.Equal(t, text, permuted)
}

func TestRender_DependenciesBeforeModifiedCode(t *testing.T) {
	dep := bareProject()
	dep.URL = "https://example.org/bare"
	dep.Licenses = []maven.License{{Name: "MIT", URL: "https://mit"}}

	text, err := Render([]*maven.Project{dep}, RenderOptions{
		ModifiedCode: []ProjectDescription{{ProjectName: "Vendored", Version: "1"}},
	})
	require.NoError(t, err)
	assert.Regexp(t, `(?s)^This product depends on Bare.*This product contains a modified version of Vendored 1\n`, text)
}
