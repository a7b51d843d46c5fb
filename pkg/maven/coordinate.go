package maven

import (
	"fmt"
	"strings"
)

// Coordinate identifies a Maven artifact.
type Coordinate struct {
	GroupID    string
	ArtifactID string
	Version    string
}

// ParseCoordinate parses "groupId:artifactId:version". The longer
// "groupId:artifactId:type:version" and "groupId:artifactId:type:classifier:version"
// forms are accepted; type and classifier are dropped.
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	var c Coordinate
	switch len(parts) {
	case 3, 4, 5:
		c = Coordinate{GroupID: parts[0], ArtifactID: parts[1], Version: parts[len(parts)-1]}
	default:
		return Coordinate{}, fmt.Errorf("invalid coordinate %q: expected groupId:artifactId:version", s)
	}
	if c.GroupID == "" || c.ArtifactID == "" || c.Version == "" {
		return Coordinate{}, fmt.Errorf("invalid coordinate %q: empty component", s)
	}
	return c, nil
}

// String returns groupId:artifactId:version.
func (c Coordinate) String() string {
	return c.GroupID + ":" + c.ArtifactID + ":" + c.Version
}

// Key returns groupId:artifactId, the version-less identity used for
// dependency management and exclusion patterns.
func (c Coordinate) Key() string {
	return c.GroupID + ":" + c.ArtifactID
}

// POMPath returns the repository-relative path of the artifact's POM,
// always slash separated.
func (c Coordinate) POMPath() string {
	group := strings.ReplaceAll(c.GroupID, ".", "/")
	return fmt.Sprintf("%s/%s/%s/%s-%s.pom", group, c.ArtifactID, c.Version, c.ArtifactID, c.Version)
}

// IsVersionRange reports whether the version is a range such as "[1.0,2.0)".
func (c Coordinate) IsVersionRange() bool {
	v := strings.TrimSpace(c.Version)
	return strings.HasPrefix(v, "[") || strings.HasPrefix(v, "(")
}
