package maven

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writePOM stores a POM in a local repository layout under root.
func writePOM(t *testing.T, root string, c Coordinate, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(c.POMPath()))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLocalRepository_FetchPOM(t *testing.T) {
	root := t.TempDir()
	c := Coordinate{GroupID: "org.example", ArtifactID: "lib", Version: "1.0"}
	writePOM(t, root, c, "<project/>")

	repo := NewLocalRepository(root)
	data, err := repo.FetchPOM(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "<project/>", string(data))

	_, err = repo.FetchPOM(context.Background(), Coordinate{GroupID: "org.example", ArtifactID: "missing", Version: "1.0"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, repo.Name(), root)
}

func TestRemoteRepository_FetchPOM_Mock(t *testing.T) {
	fixture, err := os.ReadFile("testdata/commons-parent-52.pom")
	require.NoError(t, err)

	mock := NewMockHTTPFetcher()
	url := "https://repo.example.com/maven2/org/apache/commons/commons-parent/52/commons-parent-52.pom"
	mock.AddResponse(url, 200, string(fixture))

	repo := NewRemoteRepositoryWithFetcher("https://repo.example.com/maven2/", 24*time.Hour, mock)
	c := Coordinate{GroupID: "org.apache.commons", ArtifactID: "commons-parent", Version: "52"}

	data, err := repo.FetchPOM(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, string(fixture), string(data))

	// Second fetch is served from cache.
	_, err = repo.FetchPOM(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, []string{url}, mock.Requests)
}

func TestRemoteRepository_FetchPOM_404(t *testing.T) {
	mock := NewMockHTTPFetcher()
	repo := NewRemoteRepositoryWithFetcher(DefaultRemoteURL, time.Hour, mock)

	_, err := repo.FetchPOM(context.Background(), Coordinate{GroupID: "g", ArtifactID: "a", Version: "1"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoteRepository_FetchPOM_ServerError(t *testing.T) {
	mock := NewMockHTTPFetcher()
	url := DefaultRemoteURL + "/g/a/1/a-1.pom"
	mock.AddResponse(url, 503, "unavailable")
	repo := NewRemoteRepositoryWithFetcher(DefaultRemoteURL, time.Hour, mock)

	_, err := repo.FetchPOM(context.Background(), Coordinate{GroupID: "g", ArtifactID: "a", Version: "1"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "503")
}

func TestRemoteRepository_FetchPOM_TransportError(t *testing.T) {
	mock := NewMockHTTPFetcher()
	url := DefaultRemoteURL + "/g/a/1/a-1.pom"
	mock.AddError(url, errors.New("connection reset"))
	repo := NewRemoteRepositoryWithFetcher(DefaultRemoteURL, time.Hour, mock)

	_, err := repo.FetchPOM(context.Background(), Coordinate{GroupID: "g", ArtifactID: "a", Version: "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestChain_FallsThroughNotFound(t *testing.T) {
	local := NewLocalRepository(t.TempDir())
	mock := NewMockHTTPFetcher()
	c := Coordinate{GroupID: "g", ArtifactID: "a", Version: "1"}
	mock.AddResponse(DefaultRemoteURL+"/"+c.POMPath(), 200, "<project/>")

	chain := Chain{local, NewRemoteRepositoryWithFetcher(DefaultRemoteURL, time.Hour, mock)}
	data, err := chain.FetchPOM(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "<project/>", string(data))
	assert.Contains(t, chain.Name(), "remote:"+DefaultRemoteURL)
}

func TestChain_AllMissing(t *testing.T) {
	chain := Chain{NewLocalRepository(t.TempDir()), NewLocalRepository(t.TempDir())}
	_, err := chain.FetchPOM(context.Background(), Coordinate{GroupID: "g", ArtifactID: "a", Version: "1"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChain_ReportsRealFailures(t *testing.T) {
	mock := NewMockHTTPFetcher()
	c := Coordinate{GroupID: "g", ArtifactID: "a", Version: "1"}
	mock.AddError(DefaultRemoteURL+"/"+c.POMPath(), errors.New("dial tcp: timeout"))

	chain := Chain{NewLocalRepository(t.TempDir()), NewRemoteRepositoryWithFetcher(DefaultRemoteURL, time.Hour, mock)}
	_, err := chain.FetchPOM(context.Background(), c)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "dial tcp: timeout")
}
