package astro

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/eqtime"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"
)

// SunPosition returns the apparent equatorial coordinates of the Sun at t.
// Uses the low-precision solar theory from Meeus ch. 25 (about 0.01°).
func SunPosition(t time.Time) Equatorial {
	ra, dec := solar.ApparentEquatorial(JulianDay(t))
	return Equatorial{RA: NormalizeAngle(unit.Angle(ra.Rad())), Dec: dec}
}

// SunRA returns the Sun's apparent right ascension at t.
func SunRA(t time.Time) unit.Angle {
	return SunPosition(t).RA
}

// EoTMode selects how the equation of time is evaluated.
type EoTMode int

const (
	// EoTEmpirical is a two-term fit, good to roughly half a minute.
	EoTEmpirical EoTMode = iota
	// EoTSmart is W.M. Smart's series (Meeus ch. 28), good to seconds.
	EoTSmart
)

func (m EoTMode) String() string {
	switch m {
	case EoTEmpirical:
		return "empirical"
	case EoTSmart:
		return "smart"
	default:
		return "unknown"
	}
}

// ParseEoTMode parses an equation-of-time mode name.
func ParseEoTMode(s string) (EoTMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "empirical":
		return EoTEmpirical, nil
	case "smart", "meeus":
		return EoTSmart, nil
	default:
		return EoTEmpirical, fmt.Errorf("unknown equation of time mode %q", s)
	}
}

// EquationOfTime returns apparent minus mean solar time at t, in hours.
func EquationOfTime(t time.Time, mode EoTMode) float64 {
	if mode == EoTSmart {
		return SmartEquationOfTime(t)
	}
	return EmpiricalEquationOfTime(t)
}

// EmpiricalEquationOfTime evaluates the two-term sinusoidal fit
//
//	E = (-7.659 sin d + 9.863 sin(2d + 3.5932)) minutes
//	d = 6.24 + 0.0172 (365.35 (year-2000) + day of year)
//
// and returns it in hours.
func EmpiricalEquationOfTime(t time.Time) float64 {
	t = t.UTC()
	days := 365.35*float64(t.Year()-2000) + DayOfYear(t)
	d := 6.24 + 0.0172*days
	minutes := -7.659*math.Sin(d) + 9.863*math.Sin(2*d+3.5932)
	return minutes / 60
}

// SmartEquationOfTime returns the equation of time from Smart's series, in
// hours.
func SmartEquationOfTime(t time.Time) float64 {
	e := eqtime.ESmart(JulianDay(t))
	return e.Rad() * 12 / math.Pi
}

// DayOfYear returns the zero-based fractional day of the year of t in UTC.
// 1 January 06:00 is 0.25.
func DayOfYear(t time.Time) float64 {
	t = t.UTC()
	return float64(t.YearDay()-1) + UTCHours(t)/24
}

// UTCHours returns the UTC time of day of t in fractional hours.
func UTCHours(t time.Time) float64 {
	t = t.UTC()
	return float64(t.Hour()) +
		float64(t.Minute())/60 +
		(float64(t.Second())+float64(t.Nanosecond())/1e9)/3600
}
