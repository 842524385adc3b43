package astro

import (
	"testing"

	"github.com/soniakeys/unit"
)

func TestDefaultCatalog_BrightestFirst(t *testing.T) {
	stars := DefaultCatalog().Stars
	if len(stars) < 40 {
		t.Fatalf("catalog has %d stars, want at least 40", len(stars))
	}
	if stars[0].Name != "Sirius" {
		t.Errorf("brightest star = %s, want Sirius", stars[0].Name)
	}
	for i := 1; i < len(stars); i++ {
		if stars[i].Mag < stars[i-1].Mag {
			t.Errorf("%s (%.2f) sorted after fainter %s (%.2f)",
				stars[i].Name, stars[i].Mag, stars[i-1].Name, stars[i-1].Mag)
		}
	}
}

func TestDefaultCatalog_ValidCoordinates(t *testing.T) {
	seen := make(map[string]bool)
	for _, s := range DefaultCatalog().Stars {
		if seen[s.Name] {
			t.Errorf("duplicate star %s", s.Name)
		}
		seen[s.Name] = true
		if s.RA.Deg() < 0 || s.RA.Deg() >= 360 {
			t.Errorf("%s: RA %v out of range", s.Name, s.RA.Deg())
		}
		if s.Dec.Deg() < -90 || s.Dec.Deg() > 90 {
			t.Errorf("%s: Dec %v out of range", s.Name, s.Dec.Deg())
		}
	}
}

func TestCatalogLookup(t *testing.T) {
	cat := DefaultCatalog()
	s, ok := cat.Lookup("betelgeuse")
	if !ok {
		t.Fatal("Lookup(betelgeuse) not found")
	}
	if s.Name != "Betelgeuse" {
		t.Errorf("Lookup returned %s", s.Name)
	}
	if _, ok := cat.Lookup("Vulcan"); ok {
		t.Error("Lookup(Vulcan) should fail")
	}
}

func TestCatalogWithin(t *testing.T) {
	cat := DefaultCatalog()
	alnilam, _ := cat.Lookup("Alnilam")

	got := cat.Within(alnilam.Equatorial, unit.AngleFromDeg(3))
	names := make(map[string]bool)
	for _, s := range got {
		names[s.Name] = true
	}
	for _, want := range []string{"Alnilam", "Alnitak", "Mintaka"} {
		if !names[want] {
			t.Errorf("Within(Alnilam, 3°) missing %s", want)
		}
	}
	if names["Sirius"] {
		t.Error("Within(Alnilam, 3°) should not include Sirius")
	}
	if got[0].Name != "Alnilam" {
		t.Errorf("nearest star = %s, want Alnilam", got[0].Name)
	}
}
