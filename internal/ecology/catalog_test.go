package ecology

import (
	"context"
	"errors"
	"testing"
)

func TestBuildLenientKeepsInconsistentDropsMalformed(t *testing.T) {
	inconsistent := validProfile()
	inconsistent.Crop = "Odd"
	inconsistent.SoilPH.Optimal = Range{4, 9}

	malformed := validProfile()
	malformed.Crop = "Broken"
	malformed.Planting = Window{0, 3}

	cat, err := Build([]Profile{validProfile(), inconsistent, malformed}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := cat.Profiles()
	if len(got) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(got))
	}
	if got[0].Crop != "Maize" || got[1].Crop != "Odd" {
		t.Fatalf("unexpected order: %s, %s", got[0].Crop, got[1].Crop)
	}
}

func TestBuildStrictRejects(t *testing.T) {
	inconsistent := validProfile()
	inconsistent.Altitude.Optimal = Range{0, 5000}

	_, err := Build([]Profile{validProfile(), inconsistent}, true)
	if !errors.Is(err, ErrInconsistentProfile) {
		t.Fatalf("expected ErrInconsistentProfile, got %v", err)
	}
}

func TestCatalogProfilesIsACopy(t *testing.T) {
	cat := NewCatalog([]Profile{validProfile()})
	ps := cat.Profiles()
	ps[0].Crop = "Changed"

	if cat.Profiles()[0].Crop != "Maize" {
		t.Fatalf("catalog mutated through Profiles()")
	}
}

func TestNilCatalog(t *testing.T) {
	var cat *Catalog
	if cat.Len() != 0 || cat.Profiles() != nil {
		t.Fatalf("nil catalog should be empty")
	}
}

type stubSource struct {
	cat *Catalog
	err error
}

func (s *stubSource) Load(context.Context) (*Catalog, error) {
	return s.cat, s.err
}

func TestRegistryReload(t *testing.T) {
	src := &stubSource{cat: NewCatalog([]Profile{validProfile()})}
	reg := NewRegistry(src)

	if reg.Current() == nil || reg.Current().Len() != 0 {
		t.Fatalf("new registry should serve an empty catalog")
	}

	if err := reg.Reload(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := reg.Current()
	if first.Len() != 1 {
		t.Fatalf("expected 1 profile, got %d", first.Len())
	}

	src.cat, src.err = nil, errors.New("disk gone")
	if err := reg.Reload(context.Background()); err == nil {
		t.Fatalf("expected reload error")
	}
	if reg.Current() != first {
		t.Fatalf("failed reload must keep previous catalog")
	}
}

func TestRegistryWithoutSource(t *testing.T) {
	reg := NewRegistry(nil)
	if err := reg.Reload(context.Background()); err == nil {
		t.Fatalf("expected error without source")
	}
	reg.Set(nil)
	if reg.Current() == nil {
		t.Fatalf("Set(nil) must keep a non-nil catalog")
	}
}
