package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"phphint/internal/cache"
	"phphint/internal/config"
	"phphint/internal/diag"
	"phphint/internal/model"
	"phphint/internal/observ"
	"phphint/internal/phpver"
	"phphint/internal/rule"
	"phphint/internal/source"
)

// DiagnoseOptions configure file and directory runs.
type DiagnoseOptions struct {
	Config *config.Config
	Log    zerolog.Logger
	// Jobs bounds the files analysed at once, 0 means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics caps the findings of one file; 0 takes the config
	// value, which in turn defaults to unbounded.
	MaxDiagnostics int
	// Version forces the target version; 0 asks the config per file.
	Version phpver.Version
	// Suggest runs the suggestion rules with the caret at Caret.
	Suggest bool
	Caret   int

	IgnoreWarnings   bool
	WarningsAsErrors bool
	EnableTimings    bool

	Cache *cache.Cache
	// Progress, when set, is called from worker goroutines after each file.
	Progress func(Progress)
}

// Progress reports one finished file of a run.
type Progress struct {
	Path     string
	Done     int
	Total    int
	Findings int
	Cached   bool
	Err      error
}

// FileResult is the outcome of one file. Unit is nil when the file could
// not be read.
type FileResult struct {
	Path    string
	FileSet *source.FileSet
	Unit    *Unit
	Version phpver.Version
	Bag     *diag.Bag
	Cached  bool
	Timing  *observ.Report
}

func (o *DiagnoseOptions) maxDiagnostics() int {
	if o.MaxDiagnostics > 0 {
		return o.MaxDiagnostics
	}
	if o.Config != nil {
		return o.Config.MaxDiagnostics
	}
	return 0
}

func (o *DiagnoseOptions) versionFor(path string) phpver.Version {
	if o.Version != 0 {
		return o.Version
	}
	return o.Config.VersionFor(path)
}

// DiagnoseFile analyses one file on its own. Its declarations are the only
// ones cross-file lookups see.
func DiagnoseFile(ctx context.Context, path string, opts DiagnoseOptions) (*FileResult, error) {
	timer := newTimer(opts.EnableTimings)
	idx := timer.Begin("parse")
	u, err := Parse(path, opts.maxDiagnostics())
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	timer.End(idx, "")

	ix := model.NewMemIndex()
	ix.Put(u.Scope)
	res, err := analyze(ctx, u, ix, cache.Digest{}, opts, timer)
	if res != nil {
		res.Path = path
	}
	return res, err
}

// DiagnoseUnit analyses an already parsed unit against ix, for callers
// that keep their own index such as the language server.
func DiagnoseUnit(ctx context.Context, u *Unit, ix model.Index, opts DiagnoseOptions) (*FileResult, error) {
	return analyze(ctx, u, ix, cache.Digest{}, opts, newTimer(opts.EnableTimings))
}

// DiagnoseDir analyses every PHP file under dir in parallel. All files are
// parsed first so each one sees the declarations of the others. Per-file
// failures are aggregated into the returned error next to the results of
// the files that succeeded; a cancelled run returns only ctx.Err().
func DiagnoseDir(ctx context.Context, dir string, opts DiagnoseOptions) ([]FileResult, error) {
	files, err := ListFiles(dir, opts.Config)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	fileSet := source.NewFileSetWithBase(dir)
	loaded := make([]source.FileID, len(files))
	loadErrors := make(map[int]error)
	for i, path := range files {
		id, err := fileSet.Load(path)
		if err != nil {
			loadErrors[i] = err
			// findings about the file still need a file to point at
			loaded[i] = fileSet.AddVirtual(path, nil)
			continue
		}
		loaded[i] = id
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	maxDiags := opts.maxDiagnostics()
	results := make([]FileResult, len(files))

	// parse, each worker writes only its own slot
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		results[i].Path = path
		if _, bad := loadErrors[i]; bad {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			u, err := parseLoaded(fileSet, fileSet.Get(loaded[i]), maxDiags)
			if err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}
			results[i].Unit = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ix := model.NewMemIndex()
	hashes := make([]cache.Digest, 0, len(results))
	for _, r := range results {
		if r.Unit != nil {
			ix.Put(r.Unit.Scope)
			hashes = append(hashes, r.Unit.File.Hash)
		}
	}
	var peers cache.Digest
	if len(hashes) > 0 {
		peers = cache.Combine(hashes[0], hashes[1:]...)
	}

	var (
		failures error
		done     = make(chan struct{}, len(files))
	)
	errs := make([]error, len(files))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i := range results {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := &results[i]
			if loadErr, bad := loadErrors[i]; bad {
				r.FileSet = fileSet
				r.Bag = diag.NewBag(maxDiags)
				r.Bag.Add(&diag.Diagnostic{
					Severity: diag.SevError,
					Code:     diag.IOLoadFileError,
					Message:  fmt.Sprintf("failed to load file: %v", loadErr),
					Primary:  source.Span{File: loaded[i]},
					Priority: diag.DefaultPriority,
				})
				errs[i] = fmt.Errorf("load %s: %w", r.Path, loadErr)
			} else {
				out, err := analyze(gctx, r.Unit, ix, peers, opts, newTimer(opts.EnableTimings))
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				if out != nil {
					out.Path = r.Path
					*r = *out
				}
				errs[i] = err
			}
			outcome := "ok"
			if errs[i] != nil {
				outcome = "failed"
			} else if r.Cached {
				outcome = "cached"
			}
			observ.FilesTotal.WithLabelValues(outcome).Inc()
			done <- struct{}{}
			if opts.Progress != nil {
				opts.Progress(Progress{
					Path:     r.Path,
					Done:     len(done),
					Total:    len(files),
					Findings: bagLen(r.Bag),
					Cached:   r.Cached,
					Err:      errs[i],
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		failures = multierr.Append(failures, err)
	}
	return results, failures
}

// analyze runs the error, hint and optionally suggestion passes over u.
func analyze(ctx context.Context, u *Unit, ix model.Index, peers cache.Digest, opts DiagnoseOptions, timer *observ.Timer) (*FileResult, error) {
	v := opts.versionFor(u.File.Path)
	res := &FileResult{Path: u.File.Path, FileSet: u.FileSet, Unit: u, Version: v}
	log := opts.Log.With().Str("file", u.File.Path).Logger()
	d := NewDispatcher(Options{Config: opts.Config, Log: log})

	var key cache.Digest
	useCache := opts.Cache != nil && !opts.Suggest
	if useCache {
		key = cache.Key(u.File.Hash, v, cache.Fingerprint(d.Registry().Metas()), peers)
		cached, ok, err := opts.Cache.Get(key, u.File.ID)
		if err != nil {
			log.Warn().Err(err).Msg("cache read failed")
		}
		if ok {
			res.Bag = diag.NewBag(0)
			res.Bag.Merge(u.Parse.Bag)
			for _, c := range cached {
				res.Bag.Add(c)
			}
			res.Cached = true
			finish(res, opts, timer)
			return res, nil
		}
	}

	rc := u.Context(v, ix)
	findings := diag.NewBag(opts.maxDiagnostics())
	var errs error
	passes := []struct {
		name string
		run  func() ([]*diag.Diagnostic, error)
	}{
		{"errors", func() ([]*diag.Diagnostic, error) { return d.ComputeErrors(ctx, rc) }},
		{"hints", func() ([]*diag.Diagnostic, error) { return d.ComputeHints(ctx, rc) }},
	}
	if opts.Suggest {
		passes = append(passes, struct {
			name string
			run  func() ([]*diag.Diagnostic, error)
		}{"suggestions", func() ([]*diag.Diagnostic, error) { return d.ComputeSuggestions(ctx, rc, opts.Caret) }})
	}
	for _, p := range passes {
		idx := timer.Begin(p.name)
		found, err := p.run()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		errs = multierr.Append(errs, err)
		for _, f := range found {
			findings.Add(f)
		}
		timer.End(idx, fmt.Sprintf("%d findings", len(found)))
	}

	if useCache && errs == nil {
		if err := opts.Cache.Put(key, u.File.Path, findings.Items()); err != nil {
			log.Warn().Err(err).Msg("cache write failed")
		}
	}

	res.Bag = diag.NewBag(0)
	res.Bag.Merge(u.Parse.Bag)
	res.Bag.Merge(findings)
	finish(res, opts, timer)
	log.Debug().Int("findings", res.Bag.Len()).Bool("cached", false).Msg("file analysed")
	return res, errs
}

// finish applies the severity switches and sorts the findings.
func finish(res *FileResult, opts DiagnoseOptions, timer *observ.Timer) {
	if opts.IgnoreWarnings {
		res.Bag.Filter(func(d *diag.Diagnostic) bool { return d.Severity >= diag.SevError })
	}
	if opts.WarningsAsErrors {
		for _, d := range res.Bag.Items() {
			if d.Severity == diag.SevWarning {
				d.Severity = diag.SevError
			}
		}
	}
	res.Bag.Sort()
	if timer != nil {
		report := timer.Report()
		res.Timing = &report
	}
}

func newTimer(enabled bool) *observ.Timer {
	if !enabled {
		return nil
	}
	return observ.NewTimer()
}

func bagLen(b *diag.Bag) int {
	if b == nil {
		return 0
	}
	return b.Len()
}

// PHPExtensions are the file suffixes directory runs pick up.
var PHPExtensions = []string{".php", ".phtml", ".inc"}

// IsPHPFile reports whether path has one of PHPExtensions.
func IsPHPFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range PHPExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ListFiles returns the sorted PHP files under dir that cfg does not
// exclude. Excluded directories are not entered.
func ListFiles(dir string, cfg *config.Config) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && cfg.Excluded(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && IsPHPFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// RuleKinds lists the kinds in pass order, for callers rendering metadata.
var RuleKinds = []rule.Kind{rule.KindError, rule.KindHint, rule.KindSuggestion}
