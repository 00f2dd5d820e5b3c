package discovery

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/sourcegraph/conc"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/cover-normalizer/internal/model"
)

// fileStorage defines the filesystem operations discovery needs.
type fileStorage interface {
	ReadDir(dir string) ([]os.FileInfo, error)
	Exists(path string) (bool, error)
}

// dimensionReader reads image dimensions without decoding pixels.
type dimensionReader interface {
	Dimensions(path string) (int, int, error)
}

// Policy decides which files are candidates.
type Policy struct {
	Prefix        string // required file name prefix
	SkipThreshold int    // existing outputs within this square are kept
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{Prefix: model.CoverPrefix, SkipThreshold: model.DefaultSkipThreshold}
}

// Matches reports whether a regular file named name is cover art that is not
// itself a thumbnail.
func (p Policy) Matches(name string) bool {
	if !strings.HasPrefix(name, p.Prefix) {
		return false
	}

	return !strings.EqualFold(filepath.Ext(name), model.TargetExt)
}

// Adequate reports whether an existing output of w×h needs no reconversion.
func (p Policy) Adequate(w, h int) bool {
	return w <= p.SkipThreshold && h <= p.SkipThreshold
}

// Discoverer walks directory trees in parallel looking for candidates.
type Discoverer struct {
	fileStorage fileStorage
	dims        dimensionReader
	policy      Policy
	workers     int
}

// New creates a Discoverer. At most workers directories are read at once;
// workers <= 0 uses GOMAXPROCS.
func New(fs fileStorage, dims dimensionReader, policy Policy, workers int) *Discoverer {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if policy.Prefix == "" {
		policy.Prefix = model.CoverPrefix
	}

	return &Discoverer{
		fileStorage: fs,
		dims:        dims,
		policy:      policy,
		workers:     workers,
	}
}

// Discover returns every candidate under root in no particular order.
// Entries that cannot be read are left out; discovery never fails as a whole.
func (d *Discoverer) Discover(root string) []model.Candidate {
	w := &walk{
		d:      d,
		tokens: make(chan struct{}, d.workers),
	}

	w.wg.Go(func() { w.dir(root) })
	w.wg.Wait()

	return w.found
}

// walk holds the state of one Discover call.
type walk struct {
	d      *Discoverer
	tokens chan struct{}
	wg     conc.WaitGroup

	mu    sync.Mutex
	found []model.Candidate
}

// dir scans one directory and spawns a task per subdirectory. The token is
// held only while touching the filesystem, never while children run.
func (w *walk) dir(path string) {
	w.tokens <- struct{}{}
	subdirs, found := w.d.scan(path)
	<-w.tokens

	if len(found) > 0 {
		w.mu.Lock()
		w.found = append(w.found, found...)
		w.mu.Unlock()
	}

	for _, sub := range subdirs {
		w.wg.Go(func() { w.dir(sub) })
	}
}

func (d *Discoverer) scan(dir string) ([]string, []model.Candidate) {
	entries, err := d.fileStorage.ReadDir(dir)
	if err != nil {
		zlog.Logger.Debug().Err(err).Str("path", dir).Msg("skipping unreadable directory")
		return nil, nil
	}

	var (
		subdirs []string
		found   []model.Candidate
	)

	for _, e := range entries {
		path := filepath.Join(dir, e.Name())

		switch {
		case e.IsDir():
			subdirs = append(subdirs, path)
		case e.Mode().IsRegular():
			if c, ok := d.classify(path, e.Name()); ok {
				found = append(found, c)
			}
		}
	}

	return subdirs, found
}

// classify applies the naming rule and the skip policy to a regular file.
func (d *Discoverer) classify(path, name string) (model.Candidate, bool) {
	if !d.policy.Matches(name) {
		return model.Candidate{}, false
	}

	c := model.NewCandidate(path)

	exists, err := d.fileStorage.Exists(c.Output)
	if err != nil {
		zlog.Logger.Debug().Err(err).Str("path", path).Msg("skipping entry, cannot stat output")
		return model.Candidate{}, false
	}
	if !exists {
		return c, true
	}

	w, h, err := d.dims.Dimensions(c.Output)
	if err != nil {
		// An unreadable output is replaced.
		return c, true
	}

	if d.policy.Adequate(w, h) {
		zlog.Logger.Debug().
			Str("path", path).
			Int("width", w).
			Int("height", h).
			Msg("output already adequate")
		return model.Candidate{}, false
	}

	return c, true
}
