package maven

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/fulmenhq/noticegen/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// DefaultScopes are the dependency scopes followed when none are configured:
// what Maven resolves for the compile classpath.
var DefaultScopes = []string{"compile", "provided", "system"}

// maxInterpolationPasses bounds nested ${...} expansion.
const maxInterpolationPasses = 10

var (
	// ErrVersionRange is returned for coordinates whose version is a range.
	ErrVersionRange = errors.New("version ranges are not supported")
	// ErrParentCycle is returned when a POM is (transitively) its own parent.
	ErrParentCycle = errors.New("parent POM cycle")
)

// ResolutionError indicates an artifact's project descriptor could not be built.
type ResolutionError struct {
	Coordinate Coordinate
	Err        error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("could not resolve POM for %s: %v", e.Coordinate, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Project is the effective model of a resolved Maven project: inheritance
// applied and properties interpolated.
type Project struct {
	Coordinate
	// Name is the POM <name>, or the artifactId when the POM has none.
	Name      string
	URL       string
	Packaging string
	Licenses  []License
	// Dependencies are the effective declared dependencies with managed versions filled in.
	Dependencies []Dependency
	// Root marks the project the walk starts from; optional dependencies are only followed for it.
	Root bool
}

// model carries what children inherit in addition to the Project.
type model struct {
	project *Project
	props   map[string]string
	managed map[string]Dependency
}

// Resolver builds effective projects from a Repository. It caches every
// model it builds, so each POM is fetched at most once per run.
type Resolver struct {
	repo     Repository
	scopes   map[string]bool
	models   map[Coordinate]*model
	visiting map[Coordinate]bool
	prefetch int
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithScopes sets the dependency scopes to follow.
func WithScopes(scopes []string) ResolverOption {
	return func(r *Resolver) {
		if len(scopes) == 0 {
			return
		}
		r.scopes = make(map[string]bool, len(scopes))
		for _, s := range scopes {
			r.scopes[strings.ToLower(strings.TrimSpace(s))] = true
		}
	}
}

// WithPrefetch sets how many POMs Prefetch downloads in parallel. Values
// below 2 disable prefetching.
func WithPrefetch(workers int) ResolverOption {
	return func(r *Resolver) {
		r.prefetch = workers
	}
}

// NewResolver creates a Resolver backed by repo.
func NewResolver(repo Repository, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		repo:     repo,
		models:   make(map[Coordinate]*model),
		visiting: make(map[Coordinate]bool),
	}
	WithScopes(DefaultScopes)(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadProjectFile builds the root project from a pom.xml on disk. Parents are
// looked up through <relativePath> first, then in the repository.
func (r *Resolver) LoadProjectFile(ctx context.Context, path string) (*Project, error) {
	// #nosec G304 -- the project file is chosen by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}
	pom, err := ParsePOM(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m, err := r.build(ctx, pom, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	root := *m.project
	root.Root = true
	return &root, nil
}

// ResolveProject returns the effective project for a coordinate.
func (r *Resolver) ResolveProject(ctx context.Context, c Coordinate) (*Project, error) {
	if c.IsVersionRange() {
		return nil, &ResolutionError{Coordinate: c, Err: ErrVersionRange}
	}
	if c.Version == "" {
		return nil, &ResolutionError{Coordinate: c, Err: errors.New("no version declared or managed")}
	}
	m, err := r.load(ctx, c)
	if err != nil {
		return nil, &ResolutionError{Coordinate: c, Err: err}
	}
	return m.project, nil
}

// DirectDependencies returns p's dependencies that are in a followed scope,
// one entry per coordinate, with their exclusions. Optional dependencies
// are followed only for the root.
func (r *Resolver) DirectDependencies(p *Project) []Dependency {
	seen := make(map[Coordinate]bool)
	var deps []Dependency
	for _, d := range p.Dependencies {
		scope := strings.ToLower(d.Scope)
		if scope == "" {
			scope = "compile"
		}
		if !r.scopes[scope] {
			continue
		}
		if d.Optional && !p.Root {
			continue
		}
		if seen[d.Coordinate] {
			continue
		}
		seen[d.Coordinate] = true
		deps = append(deps, d)
	}
	return deps
}

// Prefetch downloads the POMs of coords in parallel so that resolving them
// later is served from the repository cache. Fetch failures are ignored
// here; they surface when the coordinate is resolved. Prefetch must not run
// concurrently with other Resolver methods.
func (r *Resolver) Prefetch(ctx context.Context, coords []Coordinate) {
	if r.prefetch < 2 {
		return
	}
	var pending []Coordinate
	for _, c := range coords {
		if _, ok := r.models[c]; ok || c.Version == "" || c.IsVersionRange() {
			continue
		}
		pending = append(pending, c)
	}
	if len(pending) < 2 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.prefetch)
	for _, c := range pending {
		c := c
		g.Go(func() error {
			if _, err := r.repo.FetchPOM(gctx, c); err != nil {
				logger.Trace("Prefetch failed", logger.String("coordinate", c.String()), logger.Err(err))
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (r *Resolver) load(ctx context.Context, c Coordinate) (*model, error) {
	if m, ok := r.models[c]; ok {
		return m, nil
	}
	if r.visiting[c] {
		return nil, fmt.Errorf("%w at %s", ErrParentCycle, c)
	}
	r.visiting[c] = true
	defer delete(r.visiting, c)

	logger.Trace("Fetching POM", logger.String("coordinate", c.String()))
	data, err := r.repo.FetchPOM(ctx, c)
	if err != nil {
		return nil, err
	}
	pom, err := ParsePOM(data)
	if err != nil {
		return nil, err
	}
	m, err := r.build(ctx, pom, "")
	if err != nil {
		return nil, err
	}
	r.models[c] = m
	return m, nil
}

// parentModel finds the parent of pom. For POMs read from disk the
// relativePath (default ../pom.xml) is tried before the repository.
func (r *Resolver) parentModel(ctx context.Context, parent *Parent, source string) (*model, error) {
	if source != "" {
		rel := "../pom.xml"
		if parent.HasRelativePath {
			rel = parent.RelativePath
		}
		if rel != "" {
			candidate := filepath.Join(filepath.Dir(source), filepath.FromSlash(rel))
			if st, err := os.Stat(candidate); err == nil && st.IsDir() {
				candidate = filepath.Join(candidate, "pom.xml")
			}
			if m, ok := r.loadRelativeParent(ctx, parent, candidate); ok {
				return m, nil
			}
		}
	}
	return r.load(ctx, parent.Coordinate)
}

func (r *Resolver) loadRelativeParent(ctx context.Context, parent *Parent, path string) (*model, bool) {
	// #nosec G304 -- relativePath comes from the project's own POM
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	pom, err := ParsePOM(data)
	if err != nil {
		logger.Debug("Ignoring unparsable relative parent", logger.String("path", path), logger.Err(err))
		return nil, false
	}
	if pom.Coordinate.ArtifactID != parent.ArtifactID {
		return nil, false
	}
	if r.visiting[parent.Coordinate] {
		return nil, false
	}
	r.visiting[parent.Coordinate] = true
	defer delete(r.visiting, parent.Coordinate)

	m, err := r.build(ctx, pom, path)
	if err != nil {
		logger.Debug("Ignoring relative parent", logger.String("path", path), logger.Err(err))
		return nil, false
	}
	if m.project.GroupID != parent.GroupID || m.project.Version != parent.Version {
		return nil, false
	}
	return m, true
}

// build computes the effective model of pom.
func (r *Resolver) build(ctx context.Context, pom *POM, source string) (*model, error) {
	var parent *model
	if pom.Parent != nil {
		var err error
		parent, err = r.parentModel(ctx, pom.Parent, source)
		if err != nil {
			return nil, fmt.Errorf("parent %s: %w", pom.Parent.Coordinate, err)
		}
	}

	coord := pom.Coordinate
	if parent != nil {
		if coord.GroupID == "" {
			coord.GroupID = parent.project.GroupID
		}
		if coord.Version == "" {
			coord.Version = parent.project.Version
		}
	}

	props := make(map[string]string)
	if parent != nil {
		for k, v := range parent.props {
			props[k] = v
		}
	}
	for k, v := range pom.Properties {
		props[k] = v
	}
	builtins := map[string]string{
		"groupId":    coord.GroupID,
		"artifactId": coord.ArtifactID,
		"version":    coord.Version,
	}
	for k, v := range builtins {
		props["project."+k] = v
		props["pom."+k] = v
		if _, ok := pom.Properties[k]; !ok {
			props[k] = v
		}
	}
	if pom.Parent != nil {
		props["project.parent.groupId"] = pom.Parent.GroupID
		props["project.parent.artifactId"] = pom.Parent.ArtifactID
		props["project.parent.version"] = pom.Parent.Version
	}
	if pom.Name != "" {
		props["project.name"] = pom.Name
	} else {
		delete(props, "project.name")
	}
	expand := func(s string) string { return interpolate(s, props) }

	coord = Coordinate{
		GroupID:    expand(coord.GroupID),
		ArtifactID: expand(coord.ArtifactID),
		Version:    expand(coord.Version),
	}
	if coord.GroupID == "" || coord.Version == "" {
		return nil, fmt.Errorf("POM for %s has no groupId or version", coord.ArtifactID)
	}

	project := &Project{
		Coordinate: coord,
		Name:       expand(pom.Name),
		Packaging:  expand(pom.Packaging),
	}
	if project.Name == "" {
		project.Name = coord.ArtifactID
	}
	if project.Packaging == "" {
		project.Packaging = "jar"
	}

	switch {
	case pom.URL != "":
		project.URL = expand(pom.URL)
	case parent != nil && parent.project.URL != "":
		project.URL = strings.TrimSuffix(parent.project.URL, "/") + "/" + coord.ArtifactID
	}

	if len(pom.Licenses) > 0 {
		for _, l := range pom.Licenses {
			project.Licenses = append(project.Licenses, License{Name: expand(l.Name), URL: expand(l.URL)})
		}
	} else if parent != nil {
		project.Licenses = append(project.Licenses, parent.project.Licenses...)
	}

	managed := make(map[string]Dependency)
	if parent != nil {
		for k, d := range parent.managed {
			managed[k] = d
		}
	}
	for _, d := range pom.DependencyManagement {
		d = expandDependency(d, expand)
		if strings.EqualFold(d.Scope, "import") {
			r.importManaged(ctx, d, managed)
			continue
		}
		managed[managementKey(d)] = d
	}

	// Inherited dependencies come first; a child redeclaration replaces the parent's entry in place.
	var deps []Dependency
	index := make(map[string]int)
	add := func(d Dependency) {
		k := managementKey(d)
		if i, ok := index[k]; ok {
			deps[i] = d
			return
		}
		index[k] = len(deps)
		deps = append(deps, d)
	}
	if parent != nil {
		for _, d := range parent.project.Dependencies {
			add(d)
		}
	}
	for _, d := range pom.Dependencies {
		d = expandDependency(d, expand)
		if m, ok := managed[managementKey(d)]; ok {
			if d.Version == "" {
				d.Version = m.Version
			}
			if d.Scope == "" {
				d.Scope = m.Scope
			}
			for _, e := range m.Exclusions {
				if !slices.Contains(d.Exclusions, e) {
					d.Exclusions = append(d.Exclusions, e)
				}
			}
		}
		add(d)
	}
	project.Dependencies = deps

	return &model{project: project, props: props, managed: managed}, nil
}

// importManaged merges the dependencyManagement of an imported BOM; entries
// already present win.
func (r *Resolver) importManaged(ctx context.Context, bom Dependency, managed map[string]Dependency) {
	m, err := r.load(ctx, bom.Coordinate)
	if err != nil {
		logger.Warn(fmt.Sprintf("Could not import dependency management from %s", bom.Coordinate), logger.Err(err))
		return
	}
	for k, d := range m.managed {
		if _, ok := managed[k]; !ok {
			managed[k] = d
		}
	}
}

func expandDependency(d Dependency, expand func(string) string) Dependency {
	d.GroupID = expand(d.GroupID)
	d.ArtifactID = expand(d.ArtifactID)
	d.Version = expand(d.Version)
	d.Scope = expand(d.Scope)
	d.Type = expand(d.Type)
	d.Classifier = expand(d.Classifier)
	if len(d.Exclusions) > 0 {
		exclusions := make([]Exclusion, len(d.Exclusions))
		for i, e := range d.Exclusions {
			exclusions[i] = Exclusion{GroupID: expand(e.GroupID), ArtifactID: expand(e.ArtifactID)}
		}
		d.Exclusions = exclusions
	}
	return d
}

func managementKey(d Dependency) string {
	typ := d.Type
	if typ == "" {
		typ = "jar"
	}
	return d.Key() + ":" + typ + ":" + d.Classifier
}

var propertyRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// interpolate replaces ${name} references with values from props. Unknown
// references are left untouched.
func interpolate(s string, props map[string]string) string {
	for i := 0; i < maxInterpolationPasses && strings.Contains(s, "${"); i++ {
		next := propertyRef.ReplaceAllStringFunc(s, func(ref string) string {
			name := ref[2 : len(ref)-1]
			if v, ok := props[name]; ok {
				return v
			}
			if env, found := strings.CutPrefix(name, "env."); found {
				if v, ok := os.LookupEnv(env); ok {
					return v
				}
			}
			return ref
		})
		if next == s {
			break
		}
		s = next
	}
	return s
}
