package core

import (
	"fmt"
	"strings"
	"sync"
)

// DefaultSheets are the tabs of the KKN program spreadsheet.
var DefaultSheets = []Sheet{
	{Name: "Interdisipliner", GID: "923191782"},
	{Name: "Kluster Medika", GID: "1930446062"},
	{Name: "Kluster Soshum", GID: "826689546"},
	{Name: "Kluster Saintek", GID: "697864567"},
	{Name: "Kluster Agro", GID: "397232107"},
}

// Registry holds the configured sheets in tab order.
type Registry struct {
	mu     sync.RWMutex
	sheets []Sheet
	byName map[string]int
}

// NewRegistry creates a registry holding sheets in the given order.
func NewRegistry(sheets ...Sheet) (*Registry, error) {
	r := &Registry{byName: make(map[string]int)}
	for _, s := range sheets {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends a sheet. Names must be unique (case-insensitive) and
// non-empty.
func (r *Registry) Register(s Sheet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(s.Name))
	if key == "" {
		return fmt.Errorf("register sheet: empty name")
	}
	if _, exists := r.byName[key]; exists {
		return fmt.Errorf("register sheet: already registered: %s", s.Name)
	}

	r.byName[key] = len(r.sheets)
	r.sheets = append(r.sheets, s)
	return nil
}

// Get returns a sheet by name, ignoring case.
func (r *Registry) Get(name string) (Sheet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Sheet{}, false
	}
	return r.sheets[i], true
}

// IndexOf returns the tab index of a sheet name, or -1.
func (r *Registry) IndexOf(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return i
	}
	return -1
}

// All returns the sheets in tab order.
func (r *Registry) All() []Sheet {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Sheet, len(r.sheets))
	copy(out, r.sheets)
	return out
}

// Len returns the number of registered sheets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sheets)
}
