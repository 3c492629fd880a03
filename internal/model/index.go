package model

import (
	"sort"
	"strings"
	"sync"

	"phphint/internal/source"
)

// NameKind selects how Index.Classes matches names.
type NameKind uint8

const (
	// Exact matches the full name, ignoring case.
	Exact NameKind = iota
	// Prefix matches names starting with the argument, ignoring case.
	Prefix
)

// Index answers cross-file declaration queries.
type Index interface {
	// Classes returns class-likes whose fully qualified name matches name.
	Classes(kind NameKind, name string) []*TypeInfo
	// InheritedTypeConstants returns the constants t inherits from its parent
	// classes and interfaces, nearest first. t's own constants are excluded.
	InheritedTypeConstants(t *TypeInfo) []*ConstInfo
}

// MemIndex is an in-memory Index over the files added to it. It is safe for
// concurrent use.
type MemIndex struct {
	mu    sync.RWMutex
	files map[source.FileID]*FileScope
	byFQN map[string][]*TypeInfo // folded FQN
}

func NewMemIndex() *MemIndex {
	return &MemIndex{
		files: make(map[source.FileID]*FileScope),
		byFQN: make(map[string][]*TypeInfo),
	}
}

// Put adds or replaces the declarations of one file.
func (ix *MemIndex) Put(fs *FileScope) {
	if fs == nil {
		return
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeLocked(fs.File)
	ix.files[fs.File] = fs
	for _, t := range fs.Types {
		key := Fold(t.FQN)
		ix.byFQN[key] = append(ix.byFQN[key], t)
	}
}

// Remove drops the declarations of file id.
func (ix *MemIndex) Remove(id source.FileID) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeLocked(id)
}

func (ix *MemIndex) removeLocked(id source.FileID) {
	old, ok := ix.files[id]
	if !ok {
		return
	}
	delete(ix.files, id)
	for _, t := range old.Types {
		key := Fold(t.FQN)
		list := ix.byFQN[key][:0]
		for _, u := range ix.byFQN[key] {
			if u.File != id {
				list = append(list, u)
			}
		}
		if len(list) == 0 {
			delete(ix.byFQN, key)
		} else {
			ix.byFQN[key] = list
		}
	}
}

func (ix *MemIndex) Classes(kind NameKind, name string) []*TypeInfo {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	key := Fold(trimLeadingSlash(name))
	if kind == Exact {
		return append([]*TypeInfo(nil), ix.byFQN[key]...)
	}
	var out []*TypeInfo
	for k, list := range ix.byFQN {
		if strings.HasPrefix(k, key) {
			out = append(out, list...)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FQN != out[j].FQN {
			return out[i].FQN < out[j].FQN
		}
		return out[i].File < out[j].File
	})
	return out
}

func (ix *MemIndex) InheritedTypeConstants(t *TypeInfo) []*ConstInfo {
	if t == nil {
		return nil
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	seen := map[string]bool{Fold(t.FQN): true}
	var out []*ConstInfo
	queue := append([]string(nil), t.Supertypes()...)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		key := Fold(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		for _, super := range ix.byFQN[key] {
			out = append(out, super.Constants...)
			queue = append(queue, super.Supertypes()...)
		}
	}
	return out
}

// Len returns the number of indexed files.
func (ix *MemIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.files)
}
