package astro

import (
	"math"
	"testing"
	"time"
)

func TestSunPosition(t *testing.T) {
	tests := []struct {
		name   string
		time   time.Time
		wantRA float64 // degrees
		wantDe float64 // degrees
		tol    float64
	}{
		{
			name:   "March equinox 2024",
			time:   time.Date(2024, 3, 20, 3, 6, 0, 0, time.UTC),
			wantRA: 0,
			wantDe: 0,
			tol:    0.1,
		},
		{
			name:   "June solstice 2024",
			time:   time.Date(2024, 6, 20, 20, 51, 0, 0, time.UTC),
			wantRA: 90,
			wantDe: 23.44,
			tol:    0.1,
		},
		{
			name:   "December solstice 2024",
			time:   time.Date(2024, 12, 21, 9, 20, 0, 0, time.UTC),
			wantRA: 270,
			wantDe: -23.44,
			tol:    0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sun := SunPosition(tt.time)
			ra := sun.RA.Deg()
			if d := math.Abs(Normalize(ra-tt.wantRA, -180, 180)); d > tt.tol {
				t.Errorf("RA = %v, want %v (±%v)", ra, tt.wantRA, tt.tol)
			}
			if math.Abs(sun.Dec.Deg()-tt.wantDe) > tt.tol {
				t.Errorf("Dec = %v, want %v (±%v)", sun.Dec.Deg(), tt.wantDe, tt.tol)
			}
			if SunRA(tt.time) != sun.RA {
				t.Error("SunRA disagrees with SunPosition")
			}
		})
	}
}

func TestEquationOfTime(t *testing.T) {
	tests := []struct {
		name        string
		time        time.Time
		wantMinutes float64
		tol         float64
	}{
		{"early November maximum", time.Date(2024, 11, 3, 0, 0, 0, 0, time.UTC), 16.45, 0.3},
		{"mid February minimum", time.Date(2024, 2, 11, 0, 0, 0, 0, time.UTC), -14.25, 0.3},
		{"mid March", time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC), -8.7, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, mode := range []EoTMode{EoTEmpirical, EoTSmart} {
				got := EquationOfTime(tt.time, mode) * 60
				if math.Abs(got-tt.wantMinutes) > tt.tol {
					t.Errorf("%v: E = %.2f min, want %.2f (±%v)", mode, got, tt.wantMinutes, tt.tol)
				}
			}
		})
	}
}

func TestEquationOfTimeModesAgree(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 366; day += 4 {
		tm := start.AddDate(0, 0, day)
		diff := math.Abs(EmpiricalEquationOfTime(tm)-SmartEquationOfTime(tm)) * 60
		if diff > 1.5 {
			t.Errorf("%s: empirical and Smart differ by %.2f min", tm.Format("2006-01-02"), diff)
		}
	}
}

func TestParseEoTMode(t *testing.T) {
	tests := []struct {
		in      string
		want    EoTMode
		wantErr bool
	}{
		{"", EoTEmpirical, false},
		{"empirical", EoTEmpirical, false},
		{"Smart", EoTSmart, false},
		{"meeus", EoTSmart, false},
		{"sundial", EoTEmpirical, true},
	}

	for _, tt := range tests {
		got, err := ParseEoTMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseEoTMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseEoTMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDayOfYearAndUTCHours(t *testing.T) {
	zone := time.FixedZone("UTC+3", 3*3600)
	tm := time.Date(2024, 1, 2, 9, 30, 0, 0, zone) // 06:30 UTC on 2 January

	if got := UTCHours(tm); math.Abs(got-6.5) > 1e-12 {
		t.Errorf("UTCHours = %v, want 6.5", got)
	}
	if got := DayOfYear(tm); math.Abs(got-(1+6.5/24)) > 1e-12 {
		t.Errorf("DayOfYear = %v, want %v", got, 1+6.5/24)
	}
}
