package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const corpus = "wikipedia\nl_comment\nurls\n"

func corpusServer(t *testing.T) (*httptest.Server, *int64) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		if r.URL.Path != "/corpus" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(corpus))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func requireKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	var fe *FetchError
	require.True(t, errors.As(err, &fe), "expected a FetchError, got %v", err)
	require.Equal(t, kind, fe.Kind)
}

func TestEnsureCachedIsIdempotent(t *testing.T) {
	srv, hits := corpusServer(t)
	path := filepath.Join(t.TempDir(), "a", "b", "corpus")
	acq := NewAcquirer(srv.Client())

	require.NoError(t, acq.EnsureCached(context.Background(), srv.URL+"/corpus", path))
	require.NoError(t, acq.EnsureCached(context.Background(), srv.URL+"/corpus", path))
	require.Equal(t, int64(1), atomic.LoadInt64(hits))

	data, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, corpus, string(data))
}

func TestEnsureCachedTrustsExistingFile(t *testing.T) {
	srv, hits := corpusServer(t)
	path := filepath.Join(t.TempDir(), "corpus")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	require.NoError(t, NewAcquirer(srv.Client()).EnsureCached(context.Background(), srv.URL+"/corpus", path))
	require.Zero(t, atomic.LoadInt64(hits))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "stale", string(data))
}

type failingFile struct {
	*os.File
}

// Write stores half of p, then fails.
func (f failingFile) Write(p []byte) (int, error) {
	n, _ := f.File.Write(p[:len(p)/2])
	return n, errors.New("disk full")
}

func TestEnsureCachedRemovesPartialWrite(t *testing.T) {
	srv, _ := corpusServer(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus")

	acq := NewAcquirer(srv.Client())
	acq.create = func(dir, pattern string) (cacheFile, error) {
		f, err := os.CreateTemp(dir, pattern)
		if err != nil {
			return nil, err
		}
		return failingFile{f}, nil
	}

	err := acq.EnsureCached(context.Background(), srv.URL+"/corpus", path)
	requireKind(t, err, KindFileWrite)
	require.Contains(t, err.Error(), "disk full")

	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr), "cache path must not exist after a failed write")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries, "temporary file left behind")

	// a later run fetches again
	acq.create = NewAcquirer(nil).create
	require.NoError(t, acq.EnsureCached(context.Background(), srv.URL+"/corpus", path))
}

func TestEnsureCachedCreateFailure(t *testing.T) {
	srv, _ := corpusServer(t)
	path := filepath.Join(t.TempDir(), "corpus")
	acq := NewAcquirer(srv.Client())
	acq.create = func(string, string) (cacheFile, error) {
		return nil, errors.New("read-only file system")
	}

	requireKind(t, acq.EnsureCached(context.Background(), srv.URL+"/corpus", path), KindFileWrite)
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestEnsureCachedDirectoryFailure(t *testing.T) {
	srv, hits := corpusServer(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := NewAcquirer(srv.Client()).EnsureCached(context.Background(), srv.URL+"/corpus", filepath.Join(blocker, "sub", "corpus"))
	requireKind(t, err, KindDirectoryCreation)
	require.Zero(t, atomic.LoadInt64(hits), "no request may be made before directories exist")
}

func TestEnsureCachedNetworkFailures(t *testing.T) {
	srv, _ := corpusServer(t)
	dir := t.TempDir()
	acq := NewAcquirer(srv.Client())

	path := filepath.Join(dir, "missing")
	requireKind(t, acq.EnsureCached(context.Background(), srv.URL+"/missing", path), KindNetworkTransfer)
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()
	requireKind(t, acq.EnsureCached(context.Background(), down.URL+"/corpus", filepath.Join(dir, "down")), KindNetworkTransfer)
}

func TestEnsureCachedFileURL(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "fixture")
	require.NoError(t, os.WriteFile(src, []byte(corpus), 0o644))
	dst := filepath.Join(dir, "cache", "fixture")

	require.NoError(t, NewAcquirer(nil).EnsureCached(context.Background(), "file://"+src, dst))
	data, err := Load(dst)
	require.NoError(t, err)
	require.Equal(t, corpus, string(data))
}

func TestDBText(t *testing.T) {
	ds := DBText("cache")
	require.Len(t, ds, 3)
	require.Equal(t, Descriptor{
		Name: "dbtext/wikipedia",
		URL:  "https://raw.githubusercontent.com/cwida/fsst/4e188a/paper/dbtext/wikipedia",
		Path: filepath.Join("cache", "wikipedia"),
	}, ds[0])
	require.Equal(t, "dbtext/l_comment", ds[1].Name)
	require.Equal(t, "dbtext/urls", ds[2].Name)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
