package maven

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fulmenhq/noticegen/pkg/buildinfo"
)

// DefaultRemoteURL is Maven Central.
const DefaultRemoteURL = "https://repo1.maven.org/maven2"

// maxPOMSize bounds how much of a remote response is read.
const maxPOMSize = 8 << 20

// ErrNotFound indicates a repository has no POM for the requested coordinate.
var ErrNotFound = errors.New("POM not found")

// Repository serves POM documents by coordinate.
type Repository interface {
	Name() string
	FetchPOM(ctx context.Context, c Coordinate) ([]byte, error)
}

// LocalRepository reads POMs from a directory in the standard Maven layout
// (for example ~/.m2/repository).
type LocalRepository struct {
	root string
}

// NewLocalRepository creates a repository rooted at dir.
func NewLocalRepository(dir string) *LocalRepository {
	return &LocalRepository{root: dir}
}

// DefaultLocalRepositoryPath returns ~/.m2/repository.
func DefaultLocalRepositoryPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".m2", "repository"), nil
}

func (r *LocalRepository) Name() string {
	return "local:" + r.root
}

func (r *LocalRepository) FetchPOM(_ context.Context, c Coordinate) ([]byte, error) {
	path := filepath.Join(r.root, filepath.FromSlash(c.POMPath()))
	// #nosec G304 -- path is built from the repository root and a coordinate
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

type cacheEntry struct {
	data   []byte
	expiry time.Time
}

// RemoteRepository fetches POMs over HTTP from a Maven repository base URL.
type RemoteRepository struct {
	baseURL string
	cache   map[string]*cacheEntry
	mu      sync.RWMutex
	ttl     time.Duration
	fetcher HTTPFetcher
}

// NewRemoteRepository creates a RemoteRepository with real HTTP for production use
func NewRemoteRepository(baseURL string, timeout, ttl time.Duration) *RemoteRepository {
	return NewRemoteRepositoryWithFetcher(baseURL, ttl, NewRealHTTPFetcher(timeout))
}

// NewRemoteRepositoryWithFetcher creates a RemoteRepository with injectable HTTP for testing
func NewRemoteRepositoryWithFetcher(baseURL string, ttl time.Duration, fetcher HTTPFetcher) *RemoteRepository {
	return &RemoteRepository{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		cache:   make(map[string]*cacheEntry),
		ttl:     ttl,
		fetcher: fetcher,
	}
}

func (r *RemoteRepository) Name() string {
	return "remote:" + r.baseURL
}

func (r *RemoteRepository) FetchPOM(ctx context.Context, c Coordinate) ([]byte, error) {
	pomURL := r.baseURL + "/" + c.POMPath()

	r.mu.RLock()
	entry, ok := r.cache[pomURL]
	r.mu.RUnlock()
	if ok && time.Now().Before(entry.expiry) {
		return entry.data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pomURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "noticegen/"+buildinfo.BinaryVersion+" (https://github.com/fulmenhq/noticegen)")

	resp, err := r.fetcher.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pomURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, pomURL)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("repository %s returned status %d for %s", r.baseURL, resp.StatusCode, pomURL)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPOMSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", pomURL, err)
	}

	r.mu.Lock()
	r.cache[pomURL] = &cacheEntry{data: data, expiry: time.Now().Add(r.ttl)}
	r.mu.Unlock()

	return data, nil
}

// Chain queries repositories in order and returns the first POM found.
type Chain []Repository

func (c Chain) Name() string {
	names := make([]string, len(c))
	for i, r := range c {
		names[i] = r.Name()
	}
	return "chain[" + strings.Join(names, ", ") + "]"
}

func (c Chain) FetchPOM(ctx context.Context, coord Coordinate) ([]byte, error) {
	var failures []error
	for _, repo := range c {
		data, err := repo.FetchPOM(ctx, coord)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrNotFound) {
			failures = append(failures, fmt.Errorf("%s: %w", repo.Name(), err))
		}
	}
	if len(failures) > 0 {
		return nil, errors.Join(failures...)
	}
	return nil, fmt.Errorf("%w in %d repositories: %s", ErrNotFound, len(c), coord)
}
