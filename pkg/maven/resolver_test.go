package maven

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range []struct {
		file  string
		coord Coordinate
	}{
		{"commons-parent-52.pom", Coordinate{GroupID: "org.apache.commons", ArtifactID: "commons-parent", Version: "52"}},
		{"commons-lang3-3.12.0.pom", Coordinate{GroupID: "org.apache.commons", ArtifactID: "commons-lang3", Version: "3.12.0"}},
	} {
		data, err := os.ReadFile(filepath.Join("testdata", f.file))
		require.NoError(t, err)
		writePOM(t, root, f.coord, string(data))
	}
	return root
}

func coordinates(deps []Dependency) []Coordinate {
	out := make([]Coordinate, len(deps))
	for i, d := range deps {
		out[i] = d.Coordinate
	}
	return out
}

func TestResolver_InheritsFromParent(t *testing.T) {
	r := NewResolver(NewLocalRepository(fixtureRepo(t)))

	p, err := r.ResolveProject(context.Background(), Coordinate{GroupID: "org.apache.commons", ArtifactID: "commons-lang3", Version: "3.12.0"})
	require.NoError(t, err)

	assert.Equal(t, "org.apache.commons", p.GroupID)
	assert.Equal(t, "Apache Commons Lang", p.Name)
	assert.Equal(t, "https://commons.apache.org/proper/commons-lang/", p.URL)
	assert.Equal(t, "jar", p.Packaging)
	require.Len(t, p.Licenses, 1, "licenses are inherited from the parent")
	assert.Equal(t, "Apache License, Version 2.0", p.Licenses[0].Name)

	require.Len(t, p.Dependencies, 2)
	helper := p.Dependencies[1]
	assert.Equal(t, "lang3-helper", helper.ArtifactID, "child property overrides parent")
	assert.Equal(t, "3.12.0", helper.Version)

	// Optional and test-scoped dependencies are not followed for non-root projects.
	assert.Empty(t, r.DirectDependencies(p))
}

func TestResolver_CachesModels(t *testing.T) {
	root := fixtureRepo(t)
	r := NewResolver(NewLocalRepository(root))
	c := Coordinate{GroupID: "org.apache.commons", ArtifactID: "commons-lang3", Version: "3.12.0"}

	first, err := r.ResolveProject(context.Background(), c)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(root))
	second, err := r.ResolveProject(context.Background(), c)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestResolver_NameFallsBackToArtifactID(t *testing.T) {
	root := t.TempDir()
	c := Coordinate{GroupID: "org.example", ArtifactID: "nameless", Version: "2.0.1"}
	writePOM(t, root, c, `<project><groupId>org.example</groupId><artifactId>nameless</artifactId><version>2.0.1</version></project>`)

	p, err := NewResolver(NewLocalRepository(root)).ResolveProject(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "nameless", p.Name)
	assert.Empty(t, p.URL)
	assert.Empty(t, p.Licenses)
}

func TestResolver_InheritedURLAppendsArtifactID(t *testing.T) {
	root := t.TempDir()
	parent := Coordinate{GroupID: "org.example", ArtifactID: "parent", Version: "1"}
	child := Coordinate{GroupID: "org.example", ArtifactID: "child", Version: "1"}
	writePOM(t, root, parent, `<project><groupId>org.example</groupId><artifactId>parent</artifactId><version>1</version><url>https://example.org/</url></project>`)
	writePOM(t, root, child, `<project><parent><groupId>org.example</groupId><artifactId>parent</artifactId><version>1</version></parent><artifactId>child</artifactId></project>`)

	p, err := NewResolver(NewLocalRepository(root)).ResolveProject(context.Background(), child)
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/child", p.URL)
	assert.Equal(t, "1", p.Version)
}

func TestResolver_ManagedVersionsAndBOMImport(t *testing.T) {
	root := t.TempDir()
	bom := Coordinate{GroupID: "org.example", ArtifactID: "bom", Version: "1"}
	app := Coordinate{GroupID: "org.example", ArtifactID: "app", Version: "1"}
	writePOM(t, root, bom, `<project><groupId>org.example</groupId><artifactId>bom</artifactId><version>1</version>
  <dependencyManagement><dependencies>
    <dependency><groupId>org.example</groupId><artifactId>from-bom</artifactId><version>4.2</version></dependency>
  </dependencies></dependencyManagement></project>`)
	writePOM(t, root, app, `<project><groupId>org.example</groupId><artifactId>app</artifactId><version>1</version>
  <properties><local.version>7.1</local.version></properties>
  <dependencyManagement><dependencies>
    <dependency><groupId>org.example</groupId><artifactId>bom</artifactId><version>1</version><type>pom</type><scope>import</scope></dependency>
    <dependency><groupId>org.example</groupId><artifactId>local</artifactId><version>${local.version}</version><scope>runtime</scope></dependency>
  </dependencies></dependencyManagement>
  <dependencies>
    <dependency><groupId>org.example</groupId><artifactId>from-bom</artifactId></dependency>
    <dependency><groupId>org.example</groupId><artifactId>local</artifactId></dependency>
    <dependency><groupId>org.example</groupId><artifactId>provided</artifactId><version>1</version><scope>provided</scope></dependency>
  </dependencies></project>`)

	r := NewResolver(NewLocalRepository(root))
	p, err := r.ResolveProject(context.Background(), app)
	require.NoError(t, err)

	assert.Equal(t, []Coordinate{
		{GroupID: "org.example", ArtifactID: "from-bom", Version: "4.2"},
		{GroupID: "org.example", ArtifactID: "provided", Version: "1"},
	}, coordinates(r.DirectDependencies(p)), "the managed runtime scope is not followed by default")

	withRuntime := NewResolver(NewLocalRepository(root), WithScopes([]string{"compile", "runtime", "provided"}))
	p, err = withRuntime.ResolveProject(context.Background(), app)
	require.NoError(t, err)
	assert.Len(t, withRuntime.DirectDependencies(p), 3)
}

func TestResolver_ParentCycle(t *testing.T) {
	root := t.TempDir()
	a := Coordinate{GroupID: "g", ArtifactID: "a", Version: "1"}
	b := Coordinate{GroupID: "g", ArtifactID: "b", Version: "1"}
	writePOM(t, root, a, `<project><parent><groupId>g</groupId><artifactId>b</artifactId><version>1</version></parent><artifactId>a</artifactId></project>`)
	writePOM(t, root, b, `<project><parent><groupId>g</groupId><artifactId>a</artifactId><version>1</version></parent><artifactId>b</artifactId></project>`)

	_, err := NewResolver(NewLocalRepository(root)).ResolveProject(context.Background(), a)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParentCycle)
}

func TestResolver_ResolutionErrors(t *testing.T) {
	r := NewResolver(NewLocalRepository(t.TempDir()))

	_, err := r.ResolveProject(context.Background(), Coordinate{GroupID: "g", ArtifactID: "missing", Version: "1"})
	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "missing", resErr.Coordinate.ArtifactID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.ResolveProject(context.Background(), Coordinate{GroupID: "g", ArtifactID: "ranged", Version: "[1.0,2.0)"})
	assert.ErrorIs(t, err, ErrVersionRange)

	_, err = r.ResolveProject(context.Background(), Coordinate{GroupID: "g", ArtifactID: "unversioned"})
	require.ErrorAs(t, err, &resErr)
}

func TestResolver_LoadProjectFile_RelativeParent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pom.xml"), []byte(`<project>
  <groupId>org.example</groupId><artifactId>aggregator</artifactId><version>3.1.4</version>
  <url>https://example.org/aggregator</url>
  <licenses><license><name>MIT</name><url>https://opensource.org/licenses/MIT</url></license></licenses>
  <dependencies>
    <dependency><groupId>org.example</groupId><artifactId>inherited</artifactId><version>1</version></dependency>
  </dependencies>
</project>`), 0o644))
	module := filepath.Join(dir, "module")
	require.NoError(t, os.MkdirAll(module, 0o755))
	pomPath := filepath.Join(module, "pom.xml")
	require.NoError(t, os.WriteFile(pomPath, []byte(`<project>
  <parent><groupId>org.example</groupId><artifactId>aggregator</artifactId><version>3.1.4</version></parent>
  <artifactId>module</artifactId>
  <dependencies>
    <dependency><groupId>org.example</groupId><artifactId>opt</artifactId><version>${project.version}</version><optional>true</optional></dependency>
  </dependencies>
</project>`), 0o644))

	// The repository is empty: the parent can only come from ../pom.xml.
	r := NewResolver(NewLocalRepository(t.TempDir()))
	p, err := r.LoadProjectFile(context.Background(), pomPath)
	require.NoError(t, err)

	assert.True(t, p.Root)
	assert.Equal(t, Coordinate{GroupID: "org.example", ArtifactID: "module", Version: "3.1.4"}, p.Coordinate)
	assert.Equal(t, "https://example.org/aggregator/module", p.URL)
	require.Len(t, p.Licenses, 1)
	assert.Equal(t, []Coordinate{
		{GroupID: "org.example", ArtifactID: "inherited", Version: "1"},
		{GroupID: "org.example", ArtifactID: "opt", Version: "3.1.4"},
	}, coordinates(r.DirectDependencies(p)), "root follows inherited and optional dependencies")
}

func TestResolver_LoadProjectFile_Missing(t *testing.T) {
	r := NewResolver(NewLocalRepository(t.TempDir()))
	_, err := r.LoadProjectFile(context.Background(), filepath.Join(t.TempDir(), "pom.xml"))
	assert.Error(t, err)
}

func TestInterpolate(t *testing.T) {
	props := map[string]string{
		"a":      "${b}",
		"b":      "value",
		"self":   "${self}",
		"nested": "x-${a}-y",
	}
	assert.Equal(t, "value", interpolate("${a}", props))
	assert.Equal(t, "x-value-y", interpolate("${nested}", props))
	assert.Equal(t, "${unknown}", interpolate("${unknown}", props))
	assert.Equal(t, "${self}", interpolate("${self}", props))
	assert.Equal(t, "plain", interpolate("plain", props))

	t.Setenv("NOTICEGEN_TEST_ENV", "from-env")
	assert.Equal(t, "from-env", interpolate("${env.NOTICEGEN_TEST_ENV}", props))
}

func TestResolver_PrefetchWarmsRemoteCache(t *testing.T) {
	mock := NewMockHTTPFetcher()
	var coords []Coordinate
	for _, a := range []string{"one", "two", "three"} {
		c := Coordinate{GroupID: "org.example", ArtifactID: a, Version: "1.0"}
		coords = append(coords, c)
		mock.AddResponse(DefaultRemoteURL+"/"+c.POMPath(), 200,
			"<project><groupId>org.example</groupId><artifactId>"+a+"</artifactId><version>1.0</version></project>")
	}
	missing := Coordinate{GroupID: "org.example", ArtifactID: "missing", Version: "1.0"}
	remote := NewRemoteRepositoryWithFetcher(DefaultRemoteURL, time.Hour, mock)
	r := NewResolver(remote, WithPrefetch(4))

	r.Prefetch(context.Background(), append(coords, missing))
	assert.Len(t, mock.Requests, 4)

	for _, c := range coords {
		p, err := r.ResolveProject(context.Background(), c)
		require.NoError(t, err)
		assert.Equal(t, c, p.Coordinate)
	}
	assert.Len(t, mock.Requests, 4, "resolution is served from the cache")
}

func TestResolver_PrefetchDisabled(t *testing.T) {
	mock := NewMockHTTPFetcher()
	r := NewResolver(NewRemoteRepositoryWithFetcher(DefaultRemoteURL, time.Hour, mock))
	r.Prefetch(context.Background(), []Coordinate{
		{GroupID: "g", ArtifactID: "a", Version: "1"},
		{GroupID: "g", ArtifactID: "b", Version: "1"},
	})
	assert.Empty(t, mock.Requests)
}

func TestResolver_DefaultScopesMatchCompileClasspath(t *testing.T) {
	assert.Equal(t, []string{"compile", "provided", "system"}, DefaultScopes)

	root := t.TempDir()
	app := Coordinate{GroupID: "g", ArtifactID: "app", Version: "1"}
	writePOM(t, root, app, `<project><groupId>g</groupId><artifactId>app</artifactId><version>1</version>
  <dependencies>
    <dependency><groupId>g</groupId><artifactId>x</artifactId><version>1</version></dependency>
    <dependency><groupId>g</groupId><artifactId>prov</artifactId><version>1</version><scope>provided</scope></dependency>
    <dependency><groupId>g</groupId><artifactId>sys</artifactId><version>1</version><scope>system</scope></dependency>
    <dependency><groupId>g</groupId><artifactId>rt</artifactId><version>1</version><scope>runtime</scope></dependency>
    <dependency><groupId>g</groupId><artifactId>junit</artifactId><version>1</version><scope>test</scope></dependency>
  </dependencies></project>`)

	r := NewResolver(NewLocalRepository(root))
	p, err := r.ResolveProject(context.Background(), app)
	require.NoError(t, err)
	assert.Equal(t, []Coordinate{
		{GroupID: "g", ArtifactID: "x", Version: "1"},
		{GroupID: "g", ArtifactID: "prov", Version: "1"},
		{GroupID: "g", ArtifactID: "sys", Version: "1"},
	}, coordinates(r.DirectDependencies(p)))
}

func TestResolver_Exclusions(t *testing.T) {
	root := t.TempDir()
	app := Coordinate{GroupID: "g", ArtifactID: "app", Version: "1"}
	writePOM(t, root, app, `<project><groupId>g</groupId><artifactId>app</artifactId><version>1</version>
  <properties><excluded.group>g</excluded.group></properties>
  <dependencyManagement><dependencies>
    <dependency><groupId>g</groupId><artifactId>x</artifactId><version>1</version>
      <exclusions><exclusion><groupId>*</groupId><artifactId>managed-out</artifactId></exclusion></exclusions>
    </dependency>
  </dependencies></dependencyManagement>
  <dependencies>
    <dependency><groupId>g</groupId><artifactId>x</artifactId>
      <exclusions>
        <exclusion><groupId>${excluded.group}</groupId><artifactId>y</artifactId></exclusion>
        <exclusion><groupId>org.noisy</groupId><artifactId>*</artifactId></exclusion>
      </exclusions>
    </dependency>
  </dependencies></project>`)

	r := NewResolver(NewLocalRepository(root))
	p, err := r.ResolveProject(context.Background(), app)
	require.NoError(t, err)

	deps := r.DirectDependencies(p)
	require.Len(t, deps, 1)
	assert.Equal(t, "1", deps[0].Version)
	assert.Equal(t, []Exclusion{
		{GroupID: "g", ArtifactID: "y"},
		{GroupID: "org.noisy", ArtifactID: "*"},
		{GroupID: "*", ArtifactID: "managed-out"},
	}, deps[0].Exclusions)

	assert.True(t, Excludes(deps[0].Exclusions, Coordinate{GroupID: "g", ArtifactID: "y", Version: "1"}))
	assert.True(t, Excludes(deps[0].Exclusions, Coordinate{GroupID: "org.noisy", ArtifactID: "anything", Version: "2"}))
	assert.True(t, Excludes(deps[0].Exclusions, Coordinate{GroupID: "h", ArtifactID: "managed-out", Version: "3"}))
	assert.False(t, Excludes(deps[0].Exclusions, Coordinate{GroupID: "h", ArtifactID: "y", Version: "1"}))
}
