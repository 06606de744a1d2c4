package dataset

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/axiomhq/fsstbench/internal/logger"
)

type cacheFile interface {
	io.Writer
	Close() error
	Name() string
}

// Acquirer downloads corpora into the local cache. It does not retry and
// applies no timeout beyond the caller's context.
type Acquirer struct {
	client *http.Client
	// create opens the temporary file a download is written to.
	create func(dir, pattern string) (cacheFile, error)
}

// NewAcquirer returns an Acquirer using client, or a default client that also
// serves file:// URLs when client is nil.
func NewAcquirer(client *http.Client) *Acquirer {
	if client == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))
		client = &http.Client{Transport: transport}
	}
	return &Acquirer{
		client: client,
		create: func(dir, pattern string) (cacheFile, error) {
			return os.CreateTemp(dir, pattern)
		},
	}
}

// EnsureCached makes sure path holds the content of url. Missing parent
// directories are created first. An existing path is trusted as is: no
// request is made and its content is not checked.
//
// On failure nothing is left at path.
func (a *Acquirer) EnsureCached(ctx context.Context, url, path string) error {
	fail := func(kind Kind, err error) error {
		return &FetchError{Kind: kind, URL: url, Path: path, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fail(KindDirectoryCreation, errors.WithStack(err))
	}
	if _, err := os.Stat(path); err == nil {
		logger.Debugf("using cached %s", path)
		return nil
	}

	logger.Infof("downloading %s", url)
	body, err := a.download(ctx, url)
	if err != nil {
		return fail(KindNetworkTransfer, err)
	}
	if err := a.write(path, body); err != nil {
		return fail(KindFileWrite, err)
	}
	logger.Infof("cached %s (%s)", path, humanize.IBytes(uint64(len(body))))
	return nil
}

func (a *Acquirer) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return body, nil
}

// write stores body at path with a single write to a temporary sibling that
// is renamed into place, so path only ever holds the complete body.
func (a *Acquirer) write(path string, body []byte) error {
	f, err := a.create(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.WithStack(err)
	}
	tmp := f.Name()
	cleanup := func(cause error) error {
		_ = f.Close()
		_ = os.Remove(tmp)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warnf("failed to remove %s: %v", path, err)
		}
		return errors.WithStack(cause)
	}

	n, err := f.Write(body)
	if err == nil && n != len(body) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return cleanup(err)
	}
	if err := f.Close(); err != nil {
		return cleanup(err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		return cleanup(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return cleanup(err)
	}
	return nil
}
