package astro

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/unit"
)

// Equatorial holds J2000 right ascension and declination.
type Equatorial struct {
	RA  unit.Angle
	Dec unit.Angle
}

// Horizontal holds altitude and azimuth.
// Azimuth: 0 = North, π/2 = East, π = South, 3π/2 = West.
type Horizontal struct {
	Alt unit.Angle
	Az  unit.Angle
}

// Observer represents a ground-based observer location.
type Observer struct {
	Lat  unit.Angle // north positive
	Lon  unit.Angle // east positive
	Name string
}

// NewObserver builds an observer from degrees.
func NewObserver(latDeg, lonDeg float64) Observer {
	return Observer{Lat: unit.AngleFromDeg(latDeg), Lon: unit.AngleFromDeg(lonDeg)}
}

// JulianDay returns the Julian day of t, taken in UTC.
func JulianDay(t time.Time) float64 {
	return julian.TimeToJD(t.UTC())
}

// GreenwichMeanSiderealTime returns GMST for a UTC instant, in [0, 2π).
// Uses the IAU 1982 expression in Julian days from J2000.
func GreenwichMeanSiderealTime(t time.Time) unit.Angle {
	jd := JulianDay(t)
	T := (jd - 2451545.0) / 36525.0

	gmst := 280.46061837 +
		360.98564736629*(jd-2451545.0) +
		0.000387933*T*T -
		T*T*T/38710000.0

	return unit.AngleFromDeg(Normalize(gmst, 0, 360))
}

// LocalSiderealTime returns the local mean sidereal time at longitude lon.
func LocalSiderealTime(t time.Time, lon unit.Angle) unit.Angle {
	return NormalizeAngle(GreenwichMeanSiderealTime(t) + lon)
}

// EquatorialToHorizontal converts RA/Dec to Alt/Az for an observer at t.
func EquatorialToHorizontal(eq Equatorial, obs Observer, t time.Time) Horizontal {
	ha := LocalSiderealTime(t, obs.Lon) - eq.RA
	return HourAngleToHorizontal(ha, eq.Dec, obs.Lat)
}

// HourAngleToHorizontal converts hour angle and declination to Alt/Az.
func HourAngleToHorizontal(ha, dec, lat unit.Angle) Horizontal {
	sinAlt := dec.Sin()*lat.Sin() + dec.Cos()*lat.Cos()*ha.Cos()
	alt := Asin(sinAlt)

	// atan2 keeps the quadrant without the acos sign fix-up.
	y := -dec.Cos() * ha.Sin()
	x := dec.Sin()*lat.Cos() - dec.Cos()*lat.Sin()*ha.Cos()
	az := NormalizeAngle(unit.Angle(math.Atan2(y, x)))

	return Horizontal{Alt: alt, Az: az}
}

// HorizontalToEquatorial converts Alt/Az back to RA/Dec for an observer at t.
func HorizontalToEquatorial(h Horizontal, obs Observer, t time.Time) Equatorial {
	lat := obs.Lat
	sinDec := lat.Sin()*h.Alt.Sin() + lat.Cos()*h.Alt.Cos()*h.Az.Cos()
	dec := Asin(sinDec)

	y := -h.Az.Sin() * h.Alt.Cos()
	x := lat.Cos()*h.Alt.Sin() - lat.Sin()*h.Alt.Cos()*h.Az.Cos()
	ha := unit.Angle(math.Atan2(y, x))

	ra := NormalizeAngle(LocalSiderealTime(t, obs.Lon) - ha)
	return Equatorial{RA: ra, Dec: dec}
}
