package ecology

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
)

// Catalog is an immutable, ordered set of crop profiles. It is safe for
// concurrent use because nothing mutates it after construction.
type Catalog struct {
	profiles []Profile
}

// NewCatalog copies profiles into a new catalog, preserving order.
func NewCatalog(profiles []Profile) *Catalog {
	cp := make([]Profile, len(profiles))
	copy(cp, profiles)
	return &Catalog{profiles: cp}
}

// Profiles returns a copy of the profiles in catalog order.
func (c *Catalog) Profiles() []Profile {
	if c == nil {
		return nil
	}
	cp := make([]Profile, len(c.profiles))
	copy(cp, c.profiles)
	return cp
}

// Len returns the number of profiles.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.profiles)
}

// Build validates profiles and assembles a catalog.
//
// Malformed profiles are dropped and inconsistent ones are kept, both with a
// warning. With strict set, either kind fails the whole build.
func Build(profiles []Profile, strict bool) (*Catalog, error) {
	kept := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		err := p.Validate()
		switch {
		case err == nil:
			kept = append(kept, p)
		case strict:
			return nil, err
		case errors.Is(err, ErrMalformedProfile):
			log.Printf("WARN: catalog: dropping profile: %v", err)
		default:
			log.Printf("WARN: catalog: %v", err)
			kept = append(kept, p)
		}
	}
	return &Catalog{profiles: kept}, nil
}

// Source loads a catalog from some backing store.
type Source interface {
	Load(ctx context.Context) (*Catalog, error)
}

// Registry holds the catalog currently served. A reload swaps in a new
// immutable catalog; readers holding the previous one are unaffected.
type Registry struct {
	source  Source
	current atomic.Pointer[Catalog]
}

// NewRegistry creates a registry backed by source, initially empty.
func NewRegistry(source Source) *Registry {
	r := &Registry{source: source}
	r.current.Store(NewCatalog(nil))
	return r
}

// Current returns the catalog currently in use. It is never nil.
func (r *Registry) Current() *Catalog {
	return r.current.Load()
}

// Set replaces the current catalog.
func (r *Registry) Set(c *Catalog) {
	if c == nil {
		c = NewCatalog(nil)
	}
	r.current.Store(c)
}

// Reload loads the source and, on success, replaces the current catalog.
// On failure the previous catalog stays in place.
func (r *Registry) Reload(ctx context.Context) error {
	if r.source == nil {
		return fmt.Errorf("catalog source not configured")
	}
	c, err := r.source.Load(ctx)
	if err != nil {
		return err
	}
	r.Set(c)
	return nil
}
