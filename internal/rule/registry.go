package rule

import (
	"fmt"
	"sort"
	"sync"

	"phphint/internal/diag"
)

// Registry holds a rule set, indexed by kind and code.
type Registry struct {
	mu     sync.RWMutex
	rules  []Rule
	byKind map[Kind][]int // kind -> indices into rules
	byCode map[diag.Code]int
}

// NewRegistry creates a registry holding rules. It panics on duplicate codes,
// which is a programming error in the rule battery.
func NewRegistry(rules ...Rule) *Registry {
	r := &Registry{
		byKind: make(map[Kind][]int),
		byCode: make(map[diag.Code]int),
	}
	for _, rl := range rules {
		if err := r.Add(rl); err != nil {
			panic(err)
		}
	}
	return r
}

// Add registers a rule.
func (r *Registry) Add(rl Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := rl.Meta()
	if _, dup := r.byCode[m.Code]; dup {
		return fmt.Errorf("rule %s registered twice", m.Code.ID())
	}
	idx := len(r.rules)
	r.rules = append(r.rules, rl)
	r.byKind[m.Kind] = append(r.byKind[m.Kind], idx)
	r.byCode[m.Code] = idx
	return nil
}

// All returns every rule in registration order.
func (r *Registry) All() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Rule(nil), r.rules...)
}

// ByKind returns the rules of kind k in registration order.
func (r *Registry) ByKind(k Kind) []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.byKind[k]
	out := make([]Rule, 0, len(idx))
	for _, i := range idx {
		out = append(out, r.rules[i])
	}
	return out
}

// Lookup finds a rule by code.
func (r *Registry) Lookup(code diag.Code) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.byCode[code]
	if !ok {
		return nil, false
	}
	return r.rules[i], true
}

// Metas returns the metadata of every rule ordered by code.
func (r *Registry) Metas() []Meta {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Meta, 0, len(r.rules))
	for _, rl := range r.rules {
		out = append(out, rl.Meta())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Len returns the number of rules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}
