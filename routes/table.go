package routes

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/goGuard/permission"
)

var (
	// ErrDuplicateRoute is returned when two destinations share a name or a path.
	ErrDuplicateRoute = errors.New("duplicate route")
	// ErrInvalidRoute is returned for destinations without a name or an absolute path.
	ErrInvalidRoute = errors.New("invalid route")
)

// Requirement is the access requirement attached to a destination. An empty
// Roles set means any authenticated role is accepted.
type Requirement struct {
	RequiresAuth  bool
	RequiresGuest bool
	Roles         permission.RoleSet
}

// Destination is a named navigation target.
type Destination struct {
	Name string
	Path string
	Requirement
}

// Table is an immutable set of destinations indexed by name and path.
type Table struct {
	order  []Destination
	byName map[string]int
	byPath map[string]int
}

// NewTable indexes dests. Names and normalized paths must be unique.
func NewTable(dests ...Destination) (*Table, error) {
	t := &Table{
		order:  make([]Destination, 0, len(dests)),
		byName: make(map[string]int, len(dests)),
		byPath: make(map[string]int, len(dests)),
	}

	for _, d := range dests {
		d.Name = strings.TrimSpace(d.Name)
		if d.Name == "" {
			return nil, fmt.Errorf("%w: empty name", ErrInvalidRoute)
		}
		if !strings.HasPrefix(d.Path, "/") {
			return nil, fmt.Errorf("%w: %s path %q must start with /", ErrInvalidRoute, d.Name, d.Path)
		}
		d.Path = normalizePath(d.Path)

		if _, ok := t.byName[d.Name]; ok {
			return nil, fmt.Errorf("%w: name %q", ErrDuplicateRoute, d.Name)
		}
		if _, ok := t.byPath[d.Path]; ok {
			return nil, fmt.Errorf("%w: path %q", ErrDuplicateRoute, d.Path)
		}

		t.byName[d.Name] = len(t.order)
		t.byPath[d.Path] = len(t.order)
		t.order = append(t.order, d)
	}

	return t, nil
}

// MustTable is NewTable that panics on error. Intended for static tables.
func MustTable(dests ...Destination) *Table {
	t, err := NewTable(dests...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) Lookup(name string) (Destination, bool) {
	if t == nil {
		return Destination{}, false
	}
	i, ok := t.byName[name]
	if !ok {
		return Destination{}, false
	}
	return t.order[i], true
}

// Match finds the destination whose path equals p, ignoring a trailing slash.
func (t *Table) Match(p string) (Destination, bool) {
	if t == nil {
		return Destination{}, false
	}
	i, ok := t.byPath[normalizePath(p)]
	if !ok {
		return Destination{}, false
	}
	return t.order[i], true
}

// PathOf returns the path of the named destination.
func (t *Table) PathOf(name string) (string, bool) {
	d, ok := t.Lookup(name)
	return d.Path, ok
}

// All returns the destinations in registration order.
func (t *Table) All() []Destination {
	if t == nil {
		return nil
	}
	out := make([]Destination, len(t.order))
	copy(out, t.order)
	return out
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

func normalizePath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}
	return p
}
