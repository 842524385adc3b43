package export

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/soniakeys/unit"

	"github.com/DanLyss/AstroNavigation/internal/nav"
)

func testSolution() *nav.Solution {
	star := func(x, y, ra, dec, alt, az float64) nav.ProjectedStar {
		return nav.ProjectedStar{
			Star: nav.NewStar(x, y, unit.AngleFromDeg(ra), unit.AngleFromDeg(dec)),
			Alt:  unit.AngleFromDeg(alt),
			Az:   unit.AngleFromDeg(az),
		}
	}
	return &nav.Solution{
		Latitude:  unit.AngleFromDeg(32.08),
		Longitude: unit.AngleFromDeg(34.78),
		AzStar0:   unit.AngleFromDeg(110),
		Scale: nav.Scale{
			X: unit.AngleFromDeg(10), Y: unit.AngleFromDeg(8),
			PairsX: 3, PairsY: 2,
		},
		Stars: []nav.ProjectedStar{
			star(0, 0, 80, 20, 35, 110),
			star(40, -25, 78, 22, 33, 112),
		},
		Resamples: []nav.AstroSolution{
			{Latitude: unit.AngleFromDeg(32.0)},
			{Latitude: unit.AngleFromDeg(32.2)},
		},
		FailedResamples:    1,
		LongitudeEstimates: []unit.Angle{unit.AngleFromDeg(34.7), unit.AngleFromDeg(34.9)},
		Observation: nav.Observation{
			PositionalAngle: unit.AngleFromDeg(35),
			RotationAngle:   unit.AngleFromDeg(15),
			Time:            time.Date(2024, 11, 3, 19, 30, 0, 0, time.UTC),
		},
	}
}

func TestFromSolution(t *testing.T) {
	solvedAt := time.Date(2024, 11, 4, 8, 0, 0, 0, time.UTC)
	e := FromSolution(testSolution(), solvedAt)

	if e.SolvedAt != solvedAt {
		t.Errorf("SolvedAt = %v, want %v", e.SolvedAt, solvedAt)
	}
	if math.Abs(e.Latitude-32.08) > 1e-9 || math.Abs(e.Longitude-34.78) > 1e-9 {
		t.Errorf("position = (%v, %v)", e.Latitude, e.Longitude)
	}
	if e.Resamples != 2 || e.FailedResamples != 1 {
		t.Errorf("resamples = %d, failed = %d", e.Resamples, e.FailedResamples)
	}
	// Sample standard deviation of {32.0, 32.2}.
	if math.Abs(e.LatitudeStdDev-0.1414) > 1e-3 {
		t.Errorf("LatitudeStdDev = %v", e.LatitudeStdDev)
	}
	if len(e.Stars) != 2 {
		t.Fatalf("Stars count = %d, want 2", len(e.Stars))
	}
	if e.Stars[1].X != 40 || math.Abs(e.Stars[1].Az-112) > 1e-9 {
		t.Errorf("star 1 = %+v", e.Stars[1])
	}
}

func TestFromSolution_LongitudeSpreadAcrossDateLine(t *testing.T) {
	sol := testSolution()
	sol.Longitude = unit.AngleFromDeg(179.95)
	sol.LongitudeEstimates = []unit.Angle{unit.AngleFromDeg(179.9), unit.AngleFromDeg(-179.9)}

	e := FromSolution(sol, time.Now())
	if e.LongitudeStdDev > 1 {
		t.Errorf("LongitudeStdDev = %v, want a fraction of a degree", e.LongitudeStdDev)
	}
}

func TestFromSolution_Nil(t *testing.T) {
	solvedAt := time.Now()
	e := FromSolution(nil, solvedAt)

	if e.SolvedAt != solvedAt {
		t.Errorf("SolvedAt = %v, want %v", e.SolvedAt, solvedAt)
	}
	if len(e.Stars) != 0 {
		t.Error("Stars should be empty for nil solution")
	}
}

func TestSolutionExport_WriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := FromSolution(testSolution(), time.Now()).WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, key := range []string{"latitude", "longitude", "anchor_azimuth", "stars", "scale_x"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("output should be indented")
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, testSolution()); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}

	lines := strings.Split(buf.String(), "\n")
	if lines[0] != "Number of stars: 2" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "Angular X size: 0.174533 radians" {
		t.Errorf("line 1 = %q", lines[1])
	}
	if lines[2] != "Angular Y size: 0.139626 radians" {
		t.Errorf("line 2 = %q", lines[2])
	}
	if lines[3] != "1.396263 0.349066 0.610865 1.919862" {
		t.Errorf("line 3 = %q", lines[3])
	}
	if lines[4] != "" {
		t.Errorf("line 4 = %q, want blank", lines[4])
	}

	if err := WriteReport(&buf, nil); err == nil {
		t.Error("expected error for nil solution")
	}
}

func TestFormatCoordinates(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{FormatLatitude(32.08), "32.0800° N"},
		{FormatLatitude(-33.9), "33.9000° S"},
		{FormatLongitude(34.78), "34.7800° E"},
		{FormatLongitude(200), "160.0000° W"},
		{FormatLongitude(-180), "180.0000° E"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestWriteSummaryTable(t *testing.T) {
	var buf bytes.Buffer
	WriteSummaryTable(&buf, testSolution())
	out := buf.String()

	for _, want := range []string{"Fix @ 2024-11-03T19:30:00Z", "32.0800° N", "34.7800° E", "Total: 2 stars"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	WriteSummaryTable(&buf, nil)
	if !strings.Contains(buf.String(), "No solution") {
		t.Error("nil solution should say so")
	}
}
