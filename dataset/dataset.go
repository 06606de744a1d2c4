// Package dataset fetches benchmark corpora and caches them on local disk.
package dataset

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DefaultCacheDir is where corpora are cached, relative to the working
// directory.
const DefaultCacheDir = "testdata/dbtext"

// dbtextBase pins the corpora to one commit of the FSST paper repository.
const dbtextBase = "https://raw.githubusercontent.com/cwida/fsst/4e188a/paper/dbtext/"

// Descriptor names one corpus, where to fetch it and where to cache it.
type Descriptor struct {
	Name string
	URL  string
	Path string
}

// DBText returns the dbtext corpora cached under dir: wikipedia, l_comment
// and urls, in that order.
func DBText(dir string) []Descriptor {
	names := []string{"wikipedia", "l_comment", "urls"}
	out := make([]Descriptor, len(names))
	for i, name := range names {
		out[i] = Descriptor{
			Name: "dbtext/" + name,
			URL:  dbtextBase + name,
			Path: filepath.Join(dir, name),
		}
	}
	return out
}

// Load reads a cached corpus fully into memory.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load corpus %s", path)
	}
	return data, nil
}
