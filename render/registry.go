package render

import (
	"sync"

	"github.com/google/uuid"
)

// Registry holds the surfaces currently shown by viewer tabs under random
// tokens. Each tab owns at most one surface; publishing a new one releases
// the previous, so nothing accumulates across navigations.
type Registry struct {
	mu     sync.Mutex
	byTok  map[string]entry
	tabTok map[string]string
}

type entry struct {
	tab     string
	surface Surface
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byTok:  make(map[string]entry),
		tabTok: make(map[string]string),
	}
}

// Publish builds a surface for tab under a fresh token and returns the
// token. build receives the token so the surface can link to itself.
func (r *Registry) Publish(tab string, build func(token string) Surface) string {
	tok := uuid.NewString()
	s := build(tok)

	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.tabTok[tab]; ok {
		delete(r.byTok, old)
	}
	r.byTok[tok] = entry{tab: tab, surface: s}
	r.tabTok[tab] = tok
	return tok
}

// Open returns the surface registered under token.
func (r *Registry) Open(token string) (Surface, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byTok[token]
	return e.surface, ok
}

// Release drops the surface owned by tab, if any.
func (r *Registry) Release(tab string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tok, ok := r.tabTok[tab]; ok {
		delete(r.byTok, tok)
		delete(r.tabTok, tab)
	}
}

// Len reports how many surfaces are live.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byTok)
}
