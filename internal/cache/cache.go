// Package cache keeps the findings of a file on disk, keyed by everything
// that can change them: the file content, the target language version, the
// rule set and the declarations of the other files analysed with it.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"phphint/internal/diag"
	"phphint/internal/phpver"
	"phphint/internal/rule"
	"phphint/internal/source"
)

// schemaVersion is bumped whenever Entry changes shape.
const schemaVersion uint16 = 1

// Digest is a SHA-256 value, the same as source.File.Hash.
type Digest [32]byte

// Combine hashes content followed by parts, in the given order.
func Combine(content Digest, parts ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range parts {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Fingerprint digests the identity of a rule set: codes, kinds and
// default severities, in code order.
func Fingerprint(metas []rule.Meta) Digest {
	sorted := append([]rule.Meta(nil), metas...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Code < sorted[j].Code })
	h := sha256.New()
	for _, m := range sorted {
		fmt.Fprintf(h, "%d:%d:%d;", m.Code, m.Kind, m.DefaultSeverity)
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Key builds the cache key of one file.
func Key(content Digest, v phpver.Version, rules, peers Digest) Digest {
	var ver Digest
	copy(ver[:], v.String())
	return Combine(content, ver, rules, peers)
}

// Entry is what the cache stores per file. Spans are kept as offsets and
// rebound to the file on load.
type Entry struct {
	Schema      uint16
	Path        string
	Diagnostics []Finding
}

type Finding struct {
	Severity diag.Severity
	Code     diag.Code
	Message  string
	Start    uint32
	End      uint32
	Priority int
	Notes    []NoteEntry
	Fixes    []FixEntry
}

type NoteEntry struct {
	Start, End uint32
	Msg        string
}

// FixEntry drops the followup of a fix: it runs only in the process that
// produced the finding.
type FixEntry struct {
	ID            string
	Title         string
	Kind          diag.FixKind
	Applicability diag.FixApplicability
	IsPreferred   bool
	Interactive   bool
	Edits         []EditEntry
}

type EditEntry struct {
	Start, End uint32
	NewText    string
	OldText    string
}

// Cache stores entries as msgpack files in one directory. It is safe for
// concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// Open creates dir if needed. An empty dir selects $XDG_CACHE_HOME/phphint,
// or ~/.cache/phphint.
func Open(dir string) (*Cache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("locate cache directory: %w", err)
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "phphint")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

func (c *Cache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "files", hexKey[:2], hexKey+".mp")
}

// Put writes the findings of path under key. The write is atomic: readers
// see the old entry or the new one.
func (c *Cache) Put(key Digest, path string, diags []*diag.Diagnostic) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(toEntry(path, diags)); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get loads the findings stored under key and binds their spans to file.
// A missing entry or one of an older schema is a miss, not an error.
func (c *Cache) Get(key Digest, file source.FileID) ([]*diag.Diagnostic, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var e Entry
	if err := msgpack.NewDecoder(f).Decode(&e); err != nil {
		return nil, false, fmt.Errorf("decode cache entry: %w", err)
	}
	if e.Schema != schemaVersion {
		return nil, false, nil
	}
	return fromEntry(&e, file), true, nil
}

// DropAll removes every entry.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.RemoveAll(filepath.Join(c.dir, "files")); err != nil {
		return fmt.Errorf("drop cache: %w", err)
	}
	return nil
}

func toEntry(path string, diags []*diag.Diagnostic) *Entry {
	e := &Entry{Schema: schemaVersion, Path: path, Diagnostics: make([]Finding, 0, len(diags))}
	for _, d := range diags {
		f := Finding{
			Severity: d.Severity,
			Code:     d.Code,
			Message:  d.Message,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
			Priority: d.Priority,
		}
		for _, n := range d.Notes {
			f.Notes = append(f.Notes, NoteEntry{Start: n.Span.Start, End: n.Span.End, Msg: n.Msg})
		}
		for _, fx := range d.Fixes {
			if fx == nil {
				continue
			}
			fe := FixEntry{
				ID:            fx.ID,
				Title:         fx.Title,
				Kind:          fx.Kind,
				Applicability: fx.Applicability,
				IsPreferred:   fx.IsPreferred,
				Interactive:   fx.Interactive,
			}
			for _, ed := range fx.Edits {
				fe.Edits = append(fe.Edits, EditEntry{Start: ed.Span.Start, End: ed.Span.End, NewText: ed.NewText, OldText: ed.OldText})
			}
			f.Fixes = append(f.Fixes, fe)
		}
		e.Diagnostics = append(e.Diagnostics, f)
	}
	return e
}

func fromEntry(e *Entry, file source.FileID) []*diag.Diagnostic {
	span := func(start, end uint32) source.Span { return source.Span{File: file, Start: start, End: end} }
	out := make([]*diag.Diagnostic, 0, len(e.Diagnostics))
	for _, f := range e.Diagnostics {
		d := &diag.Diagnostic{
			Severity: f.Severity,
			Code:     f.Code,
			Message:  f.Message,
			Primary:  span(f.Start, f.End),
			Priority: f.Priority,
		}
		for _, n := range f.Notes {
			d.Notes = append(d.Notes, diag.Note{Span: span(n.Start, n.End), Msg: n.Msg})
		}
		for _, fe := range f.Fixes {
			fx := &diag.Fix{
				ID:            fe.ID,
				Title:         fe.Title,
				Kind:          fe.Kind,
				Applicability: fe.Applicability,
				IsPreferred:   fe.IsPreferred,
				Interactive:   fe.Interactive,
			}
			for _, ed := range fe.Edits {
				fx.Edits = append(fx.Edits, diag.TextEdit{Span: span(ed.Start, ed.End), NewText: ed.NewText, OldText: ed.OldText})
			}
			d.Fixes = append(d.Fixes, fx)
		}
		out = append(out, d)
	}
	return out
}
