package nav

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/soniakeys/unit"

	"github.com/DanLyss/AstroNavigation/internal/astro"
)

func TestHourAngle_EastWest(t *testing.T) {
	lat := unit.AngleFromDeg(32)
	dec := unit.AngleFromDeg(10)

	tests := []struct {
		name  string
		haDeg float64
	}{
		{"east, rising", -40},
		{"west, setting", 55},
		{"far east", -150},
		{"far west", 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := astro.HourAngleToHorizontal(unit.AngleFromDeg(tt.haDeg), dec, lat)
			s := ProjectedStar{Star: NewStar(0, 0, 0, dec), Alt: h.Alt, Az: h.Az}

			got, ok := HourAngle(s, lat)
			if !ok {
				t.Fatal("HourAngle rejected a consistent star")
			}
			want := astro.Normalize(tt.haDeg, 0, 360)
			if math.Abs(got.Deg()-want) > 1e-7 {
				t.Errorf("HourAngle = %v, want %v", got.Deg(), want)
			}
		})
	}
}

func TestHourAngle_Inconsistent(t *testing.T) {
	s := ProjectedStar{
		Star: NewStar(0, 0, 0, unit.AngleFromDeg(-60)),
		Alt:  unit.AngleFromDeg(80),
		Az:   unit.AngleFromDeg(100),
	}
	if _, ok := HourAngle(s, unit.AngleFromDeg(32)); ok {
		t.Error("a star 80° up at dec -60° cannot be seen from 32°N")
	}
}

func TestSolveLongitude_ExactStars(t *testing.T) {
	obs := astro.NewObserver(32.08, 34.78)
	tm := time.Date(2024, 11, 3, 19, 30, 0, 0, time.UTC)

	var stars []ProjectedStar
	for _, p := range [][2]float64{{10, 5}, {40, 20}, {75, -10}, {130, 30}, {200, 45}, {260, 0}, {300, -20}} {
		eq := astro.Equatorial{RA: unit.AngleFromDeg(p[0]), Dec: unit.AngleFromDeg(p[1])}
		h := astro.EquatorialToHorizontal(eq, obs, tm)
		if h.Alt < 0 {
			continue
		}
		stars = append(stars, ProjectedStar{Star: NewStar(0, 0, eq.RA, eq.Dec), Alt: h.Alt, Az: h.Az})
	}
	if len(stars) < 2 {
		t.Fatalf("only %d test stars above the horizon", len(stars))
	}

	for _, mode := range []astro.EoTMode{astro.EoTEmpirical, astro.EoTSmart} {
		cfg := DefaultConfig()
		cfg.EquationOfTime = mode

		res, err := SolveLongitude(stars, obs.Lat, tm, cfg)
		if err != nil {
			t.Fatalf("%v: SolveLongitude: %v", mode, err)
		}
		if math.Abs(res.Longitude.Deg()-34.78) > 0.5 {
			t.Errorf("%v: longitude = %v, want 34.78 (±0.5)", mode, res.Longitude.Deg())
		}
		if len(res.Estimates) != len(stars) || res.Skipped != 0 {
			t.Errorf("%v: %d estimates, %d skipped", mode, len(res.Estimates), res.Skipped)
		}
	}
}

func TestSolveLongitude_DateLine(t *testing.T) {
	// Estimates straddling ±180° must average near the date line.
	obs := astro.NewObserver(-17.7, 179.9)
	tm := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

	var stars []ProjectedStar
	for ra := 0.0; ra < 360; ra += 30 {
		eq := astro.Equatorial{RA: unit.AngleFromDeg(ra), Dec: unit.AngleFromDeg(-20)}
		h := astro.EquatorialToHorizontal(eq, obs, tm)
		if h.Alt.Deg() < 5 {
			continue
		}
		stars = append(stars, ProjectedStar{Star: NewStar(0, 0, eq.RA, eq.Dec), Alt: h.Alt, Az: h.Az})
	}

	res, err := SolveLongitude(stars, obs.Lat, tm, DefaultConfig())
	if err != nil {
		t.Fatalf("SolveLongitude: %v", err)
	}
	if d := math.Abs(astro.WrapAngle(res.Longitude - obs.Lon).Deg()); d > 0.5 {
		t.Errorf("longitude = %v, want 179.9", res.Longitude.Deg())
	}
}

func TestSolveLongitude_NoValidStars(t *testing.T) {
	s := ProjectedStar{
		Star: NewStar(0, 0, 0, unit.AngleFromDeg(-60)),
		Alt:  unit.AngleFromDeg(80),
		Az:   unit.AngleFromDeg(100),
	}
	res, err := SolveLongitude([]ProjectedStar{s}, unit.AngleFromDeg(32), time.Now(), DefaultConfig())
	if !errors.Is(err, ErrNoLongitude) {
		t.Errorf("error = %v, want ErrNoLongitude", err)
	}
	if res.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", res.Skipped)
	}
}
