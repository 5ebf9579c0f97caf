// loader/loader.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package loader finds the configured airspace files and loads them into
// a repository, preferring up-to-date compiled files over parsing the
// OpenAir source.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/glidernav/airwarn/airspace"
	"github.com/glidernav/airwarn/log"
	"github.com/glidernav/airwarn/openair"
	"github.com/glidernav/airwarn/projection"
	"github.com/glidernav/airwarn/txc"
	"github.com/glidernav/airwarn/util"

	"github.com/brunoga/deep"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// AllFiles as the first allow-list entry disables filtering.
const AllFiles = "All"

// Subdirectory of each map directory that holds airspace files.
const airspaceDir = "airspaces"

const (
	sourceExt          = ".txt"
	defaultMemoryCache = 64
)

var ErrProjectionMismatch = errors.New("compiled file was written under a different projection")

type Options struct {
	// MapDirs are searched for an "airspaces" subdirectory.
	MapDirs []string
	// Files is the allow-list of source file names. Nothing is loaded
	// if it is empty.
	Files      []string
	Projection projection.Projection
	Logger     *log.Logger
	// Registerer receives the loader's metrics; it may be nil.
	Registerer prometheus.Registerer
	// MemoryCacheSize is the number of decoded files kept in memory.
	MemoryCacheSize int
	// Now is used to stamp compiled files; time.Now if nil.
	Now func() time.Time
}

// Loader loads airspace repositories. It is not safe for concurrent use.
type Loader struct {
	dirs    []string
	files   []string
	desc    projection.Descriptor
	parser  *openair.Parser
	lg      *log.Logger
	cache   *lru.Cache[cacheKey, []airspace.Record]
	metrics *metrics
	now     func() time.Time
}

// cacheKey identifies one version of a compiled file as decoded under
// one projection.
type cacheKey struct {
	path        string
	modTime     int64
	fingerprint uint64
}

// Stats summarizes a call to Load.
type Stats struct {
	Files     int // files that contributed airspaces
	Parsed    int // source files parsed
	Compiled  int // compiled files read from disk
	Memory    int // compiled files served from memory
	Rejected  int // compiled files found stale or unreadable
	Written   int // compiled files written
	Airspaces int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d airspaces from %d files (%d parsed, %d compiled, %d in memory, %d rejected, %d written)",
		s.Airspaces, s.Files, s.Parsed, s.Compiled, s.Memory, s.Rejected, s.Written)
}

func New(opts Options) (*Loader, error) {
	if opts.Projection == nil {
		return nil, errors.New("loader: no projection")
	}
	size := opts.MemoryCacheSize
	if size <= 0 {
		size = defaultMemoryCache
	}
	cache, err := lru.New[cacheKey, []airspace.Record](size)
	if err != nil {
		return nil, err
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Loader{
		dirs:    slices.Clone(opts.MapDirs),
		files:   slices.Clone(opts.Files),
		desc:    opts.Projection.Descriptor(),
		parser:  openair.NewParser(opts.Projection, opts.Logger),
		lg:      opts.Logger.With(slog.String("component", "loader")),
		cache:   cache,
		metrics: newMetrics(opts.Registerer),
		now:     now,
	}, nil
}

// SetFiles replaces the allow-list used by subsequent loads.
func (l *Loader) SetFiles(files []string) {
	l.files = slices.Clone(files)
}

// Load reads every allowed airspace file. It never fails; files that
// cannot be read are logged and skipped, and an empty repository is a
// valid result. Cancelling ctx stops after the file being loaded.
func (l *Loader) Load(ctx context.Context) (*airspace.Repository, Stats) {
	start := time.Now()
	var st Stats
	var as []*airspace.Airspace

	for _, c := range l.candidates() {
		if err := ctx.Err(); err != nil {
			l.lg.Warnf("airspace loading interrupted: %v", err)
			break
		}

		recs, src := l.loadCandidate(c, &st)
		if len(recs) == 0 {
			continue
		}
		st.Files++
		l.metrics.airspaces.WithLabelValues(src).Add(float64(len(recs)))
		for _, r := range recs {
			as = append(as, airspace.New(r))
		}
	}

	repo := airspace.NewRepository(l.desc, as)
	st.Airspaces = repo.Len()
	l.lg.Info("loaded airspaces", slog.String("stats", st.String()),
		slog.String("projection", l.desc.String()), slog.Duration("elapsed", time.Since(start)))
	return repo, st
}

// candidate is a source file and its compiled form; either may be
// missing.
type candidate struct {
	source, compiled string
}

// candidates returns the allowed airspace files of all map directories,
// pairing each source file with its compiled file.
func (l *Loader) candidates() []candidate {
	if len(l.files) == 0 {
		l.lg.Warn("no airspace files selected")
		return nil
	}
	all := l.files[0] == AllFiles

	byBase := make(map[string]*candidate)
	for _, dir := range l.dirs {
		dir = filepath.Join(dir, airspaceDir)
		entries, err := os.ReadDir(dir)
		if err != nil {
			l.lg.Warnf("%s: %v", dir, err)
			continue
		}

		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := e.Name()
			ext := filepath.Ext(name)
			if ext != txc.Extension && !strings.EqualFold(ext, sourceExt) {
				continue
			}
			if ext != sourceExt && strings.EqualFold(ext, sourceExt) {
				name = l.lowerCase(dir, name)
				ext = filepath.Ext(name)
			}

			base := strings.TrimSuffix(name, ext)
			if !all && !slices.Contains(l.files, base+sourceExt) {
				continue
			}

			key := filepath.Join(dir, base)
			c, ok := byBase[key]
			if !ok {
				c = &candidate{}
				byBase[key] = c
			}
			if ext == txc.Extension {
				c.compiled = filepath.Join(dir, name)
			} else {
				c.source = filepath.Join(dir, name)
			}
		}
	}

	keys := make([]string, 0, len(byBase))
	for k := range byBase {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	cs := make([]candidate, 0, len(keys))
	for _, k := range keys {
		c := byBase[k]
		if c.compiled == "" {
			c.compiled = k + txc.Extension
		}
		cs = append(cs, *c)
	}
	return cs
}

// lowerCase renames a file in dir to its lower-case name and returns the
// name to use from now on.
func (l *Loader) lowerCase(dir, name string) string {
	lower := strings.ToLower(name)
	if err := os.Rename(filepath.Join(dir, name), filepath.Join(dir, lower)); err != nil {
		l.lg.Warnf("%s: unable to rename to lower case: %v", filepath.Join(dir, name), err)
		return name
	}
	return lower
}

func (l *Loader) loadCandidate(c candidate, st *Stats) ([]airspace.Record, string) {
	if c.source == "" {
		// Only the compiled file exists; there is nothing to fall back to.
		recs, src, err := l.readCompiled(c.compiled, st)
		if err != nil {
			st.Rejected++
			l.metrics.rejects.Inc()
			l.lg.Warnf("%v; file unavailable", err)
			return nil, ""
		}
		return recs, src
	}

	if _, err := os.Stat(c.compiled); err == nil {
		if !l.compiledCurrent(c) {
			st.Rejected++
			l.metrics.rejects.Inc()
		} else if recs, src, err := l.readCompiled(c.compiled, st); err == nil {
			return recs, src
		} else {
			st.Rejected++
			l.metrics.rejects.Inc()
			l.lg.Warnf("%v; parsing source instead", err)
		}
	}
	return l.compile(c, st), sourceText
}

// compiledCurrent checks the header of a compiled file against its
// source, its mapping file and the active projection.
func (l *Loader) compiledCurrent(c candidate) bool {
	s := Staleness{Current: l.desc}

	hdr, err := txc.ReadHeader(c.compiled)
	if err != nil {
		l.lg.Warnf("%v", err)
	} else {
		s.HeaderValid = true
		s.CacheCreated = hdr.Created
		s.Cached = hdr.Projection
	}

	if s.SourceModTime, err = util.ModTime(c.source); err != nil {
		l.lg.Warnf("%v", err)
	}
	if s.ConfigModTime, err = util.ModTime(openair.MappingPath(c.source)); err != nil {
		l.lg.Warnf("%v", err)
	}

	if ShouldInvalidate(s) {
		l.lg.Info("compiled airspace file is stale", slog.String("path", c.compiled),
			slog.Bool("header_valid", s.HeaderValid), slog.Time("created", s.CacheCreated),
			slog.Time("source_modified", s.SourceModTime), slog.String("projection", s.Cached.String()))
		return false
	}
	return true
}

// readCompiled returns the records of a compiled file, from memory if
// this version of it has been decoded before.
func (l *Loader) readCompiled(path string, st *Stats) ([]airspace.Record, string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, "", err
	}
	key := l.key(path, fi.ModTime())
	if recs, ok := l.cache.Get(key); ok {
		st.Memory++
		l.metrics.hits.WithLabelValues(sourceMemory).Inc()
		return deep.MustCopy(recs), sourceMemory, nil
	}

	hdr, recs, err := txc.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	if !hdr.Projection.Equal(l.desc) {
		return nil, "", fmt.Errorf("%s: %s: %w", path, hdr.Projection, ErrProjectionMismatch)
	}

	st.Compiled++
	l.metrics.hits.WithLabelValues(sourceCompiled).Inc()
	l.cache.Add(key, deep.MustCopy(recs))
	return recs, sourceCompiled, nil
}

// compile parses a source file and, if it parsed cleanly, writes its
// compiled form. Any existing compiled file is removed first.
func (l *Loader) compile(c candidate, st *Stats) []airspace.Record {
	if err := os.Remove(c.compiled); err != nil && !errors.Is(err, fs.ErrNotExist) {
		l.lg.Warnf("unable to remove stale compiled file: %v", err)
	}

	res, err := l.parser.ParseFile(c.source)
	if err != nil {
		l.lg.Errorf("%v", err)
		return nil
	}
	st.Parsed++
	l.metrics.parsed.Inc()

	if res.HadError || len(res.Records) == 0 {
		l.lg.Info("not compiling airspace file", slog.String("path", c.source),
			slog.Bool("had_error", res.HadError), slog.Int("count", len(res.Records)))
		return res.Records
	}

	hdr := txc.Header{Created: l.now(), Projection: l.desc}
	if err := txc.WriteFile(c.compiled, hdr, res.Records); err != nil {
		l.metrics.writes.WithLabelValues("error").Inc()
		l.lg.Warnf("unable to write compiled airspace file: %v", err)
		return res.Records
	}
	st.Written++
	l.metrics.writes.WithLabelValues("ok").Inc()

	if fi, err := os.Stat(c.compiled); err == nil {
		l.cache.Add(l.key(c.compiled, fi.ModTime()), deep.MustCopy(res.Records))
	}
	return res.Records
}

func (l *Loader) key(path string, mod time.Time) cacheKey {
	return cacheKey{path: path, modTime: mod.UnixNano(), fingerprint: l.desc.Fingerprint()}
}
