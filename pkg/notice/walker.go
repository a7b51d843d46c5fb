package notice

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fulmenhq/noticegen/pkg/logger"
	"github.com/fulmenhq/noticegen/pkg/maven"
)

// Resolver is what the walker needs from the build system.
type Resolver interface {
	DirectDependencies(project *maven.Project) []maven.Dependency
	ResolveProject(ctx context.Context, c maven.Coordinate) (*maven.Project, error)
}

// Prefetcher is implemented by resolvers that can warm their cache for a
// batch of coordinates before the walker resolves them one at a time.
type Prefetcher interface {
	Prefetch(ctx context.Context, coords []maven.Coordinate)
}

// Walker collects the transitive dependencies of a project.
type Walker struct {
	resolver Resolver
	exclude  []string
}

// NewWalker creates a walker. exclude holds doublestar patterns matched
// against "groupId:artifactId"; matching artifacts are neither resolved nor
// descended into.
func NewWalker(resolver Resolver, exclude []string) (*Walker, error) {
	for _, p := range exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return &Walker{resolver: resolver, exclude: exclude}, nil
}

type frame struct {
	project  *maven.Project
	children []maven.Dependency
	// exclusions accumulated on the path from the root; they apply to
	// every dependency below this project.
	exclusions []maven.Exclusion
	next       int
}

// CollectDependencies walks the graph below root depth-first and returns
// every resolved project once, ordered by projectOrderKey. A project is
// collected after its own dependencies. Artifacts that cannot be resolved
// are logged and skipped. A dependency excluded by an <exclusion> on the
// path that reached it is not followed along that path. The root itself is
// never part of the result.
func (w *Walker) CollectDependencies(ctx context.Context, root *maven.Project) ([]*maven.Project, error) {
	seen := map[maven.Coordinate]bool{root.Coordinate: true}
	skipped := make(map[maven.Coordinate]bool)
	var collected []*maven.Project

	push := func(project *maven.Project, exclusions []maven.Exclusion) *frame {
		f := &frame{project: project, children: w.resolver.DirectDependencies(project), exclusions: exclusions}
		w.prefetch(ctx, f, seen, skipped)
		return f
	}

	stack := []*frame{push(root, nil)}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		top := stack[len(stack)-1]
		if top.next == len(top.children) {
			stack = stack[:len(stack)-1]
			if top.project != root {
				collected = append(collected, top.project)
			}
			continue
		}

		dep := top.children[top.next]
		coord := dep.Coordinate
		top.next++
		if seen[coord] || skipped[coord] {
			continue
		}
		if maven.Excludes(top.exclusions, coord) {
			logger.Debug("Artifact excluded by its dependent", logger.String("artifact", coord.String()),
				logger.String("via", top.project.Coordinate.String()))
			continue
		}
		if w.excluded(coord) {
			logger.Debug("Excluding artifact", logger.String("artifact", coord.String()))
			skipped[coord] = true
			continue
		}

		project, err := w.resolver.ResolveProject(ctx, coord)
		if err != nil {
			logger.Warn(fmt.Sprintf("Could not find a pom for the artifact: %s", coord.Key()), logger.Err(err))
			skipped[coord] = true
			continue
		}

		seen[coord] = true
		if seen[project.Coordinate] && project.Coordinate != coord {
			continue
		}
		seen[project.Coordinate] = true

		logger.Trace("Descending into dependency", logger.String("artifact", project.Coordinate.String()),
			logger.Int("depth", len(stack)))
		stack = append(stack, push(project, inherit(top.exclusions, dep.Exclusions)))
	}

	sort.SliceStable(collected, func(i, j int) bool {
		ki, kj := projectOrderKey(collected[i]), projectOrderKey(collected[j])
		if ki != kj {
			return ki < kj
		}
		return collected[i].Coordinate.String() < collected[j].Coordinate.String()
	})
	return collected, nil
}

// inherit returns the exclusions for a child frame without sharing the
// parent's backing array.
func inherit(parent, own []maven.Exclusion) []maven.Exclusion {
	if len(own) == 0 {
		return parent
	}
	out := make([]maven.Exclusion, 0, len(parent)+len(own))
	out = append(out, parent...)
	return append(out, own...)
}

func (w *Walker) prefetch(ctx context.Context, f *frame, seen, skipped map[maven.Coordinate]bool) {
	p, ok := w.resolver.(Prefetcher)
	if !ok {
		return
	}
	var todo []maven.Coordinate
	for _, d := range f.children {
		c := d.Coordinate
		if !seen[c] && !skipped[c] && !w.excluded(c) && !maven.Excludes(f.exclusions, c) {
			todo = append(todo, c)
		}
	}
	if len(todo) > 0 {
		p.Prefetch(ctx, todo)
	}
}

func (w *Walker) excluded(c maven.Coordinate) bool {
	key := c.Key()
	for _, p := range w.exclude {
		if ok, _ := doublestar.Match(p, key); ok {
			return true
		}
	}
	return false
}

// projectOrderKey concatenates name, licenses, homepage and version.
// Keys are compared byte-wise, never with locale rules.
func projectOrderKey(p *maven.Project) string {
	var b strings.Builder
	b.WriteString(p.Name)
	for _, l := range p.Licenses {
		b.WriteString(l.Name)
		b.WriteString(l.URL)
	}
	b.WriteString(p.URL)
	b.WriteString(p.Version)
	return b.String()
}
