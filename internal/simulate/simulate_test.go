package simulate

import (
	"math"
	"testing"
	"time"

	"github.com/soniakeys/unit"

	"github.com/DanLyss/AstroNavigation/internal/astro"
	"github.com/DanLyss/AstroNavigation/internal/corr"
	"github.com/DanLyss/AstroNavigation/internal/nav"
)

func testScene() Scene {
	return Scene{
		Observer: astro.NewObserver(32.08, 34.78),
		Time:     time.Date(2024, 11, 3, 19, 30, 0, 0, time.UTC),
		Pointing: Pointing{
			Alt:  unit.AngleFromDeg(35),
			Az:   unit.AngleFromDeg(110),
			Roll: unit.AngleFromDeg(15),
		},
		FocalPx: 800,
	}
}

func TestFromOffsets_AxisStar(t *testing.T) {
	sc := testScene()
	dets := sc.FromOffsets([]nav.Point{{}, {X: 50, Y: 20}})

	axis := dets[0]
	if axis.X != 0 || axis.Y != 0 {
		t.Errorf("axis star at (%v, %v), want origin", axis.X, axis.Y)
	}
	if math.Abs(axis.True.Alt.Deg()-35) > 1e-9 {
		t.Errorf("axis altitude = %v, want 35", axis.True.Alt.Deg())
	}
	if math.Abs(axis.True.Az.Deg()-110) > 1e-9 {
		t.Errorf("axis azimuth = %v, want 110", axis.True.Az.Deg())
	}

	// RA/Dec must place the star back where it was rendered.
	h := astro.EquatorialToHorizontal(dets[1].Equatorial, sc.Observer, sc.Time)
	if d := astro.AngularSeparation(h.Az, h.Alt, dets[1].True.Az, dets[1].True.Alt); d.Deg() > 1e-6 {
		t.Errorf("round trip separation = %v°", d.Deg())
	}
}

func TestProject_MatchesFromOffsets(t *testing.T) {
	sc := testScene()
	dets := sc.FromOffsets(SymmetricOffsets(4, 200))

	for i, d := range dets {
		x, y, ok := sc.Project(d.True)
		if !ok {
			t.Fatalf("detection %d reported behind the camera", i)
		}
		if math.Abs(x-d.X) > 1e-6 || math.Abs(y-d.Y) > 1e-6 {
			t.Errorf("detection %d projects to (%v, %v), want (%v, %v)", i, x, y, d.X, d.Y)
		}
	}

	behind := astro.Horizontal{Alt: unit.AngleFromDeg(-35), Az: unit.AngleFromDeg(290)}
	if _, _, ok := sc.Project(behind); ok {
		t.Error("antipode of the optical axis should be behind the camera")
	}
}

func TestFromCatalog_TargetOnAxis(t *testing.T) {
	cat := astro.DefaultCatalog()
	obs := astro.NewObserver(32.08, 34.78)
	tm := time.Date(2024, 11, 3, 19, 30, 0, 0, time.UTC)

	var target astro.CatalogStar
	for _, s := range cat.Stars {
		if astro.EquatorialToHorizontal(s.Equatorial, obs, tm).Alt.Deg() > 30 {
			target = s
			break
		}
	}
	if target.Name == "" {
		t.Fatal("no catalogue star above 30°")
	}

	sc := Scene{Observer: obs, Time: tm, Pointing: PointAt(target.Equatorial, obs, tm, 0), FocalPx: 600}
	dets := sc.FromCatalog(cat, 960, 540)

	found := false
	for _, d := range dets {
		if math.Abs(d.X) > 960 || math.Abs(d.Y) > 540 {
			t.Errorf("%s at (%v, %v) outside the frame", d.Name, d.X, d.Y)
		}
		if d.Name == target.Name {
			found = true
			if math.Hypot(d.X, d.Y) > 1e-6 {
				t.Errorf("target at (%v, %v), want origin", d.X, d.Y)
			}
		}
	}
	if !found {
		t.Errorf("target %s missing from %d detections", target.Name, len(dets))
	}
}

func TestRows_FilterKeepsAxisAnchor(t *testing.T) {
	sc := testScene()
	dets := sc.FromOffsets(SymmetricOffsets(3, 150))
	rows := Rows(dets, 1920, 1080, 1)

	res, err := corr.Filter(rows, corr.DefaultOptions())
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if res.Kept != len(dets) {
		t.Fatalf("kept %d of %d rows", res.Kept, len(dets))
	}

	anchor := res.Stars[res.Anchor]
	if anchor.Measured.Norm() > 1e-9 {
		t.Errorf("anchor at %v, want origin", anchor.Measured)
	}
	if math.Abs(anchor.RA.Deg()-dets[0].RA.Deg()) > 1e-9 {
		t.Errorf("anchor RA = %v, want the axis star's %v", anchor.RA.Deg(), dets[0].RA.Deg())
	}
}

func TestSymmetricOffsets(t *testing.T) {
	pts := SymmetricOffsets(5, 100)
	if len(pts) != 11 {
		t.Fatalf("len = %d, want 11", len(pts))
	}
	var sx, sy float64
	for _, p := range pts {
		sx += p.X
		sy += p.Y
		if p.Norm() > 100+1e-9 {
			t.Errorf("offset %v beyond radius", p)
		}
	}
	if math.Abs(sx) > 1e-9 || math.Abs(sy) > 1e-9 {
		t.Errorf("centroid (%v, %v), want origin", sx, sy)
	}
}
