// Package export renders solutions as JSON, plain-text reports and
// summary tables.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/DanLyss/AstroNavigation/internal/nav"
)

// SolutionExport is the JSON-serializable representation of a solution.
// Angles are in degrees.
type SolutionExport struct {
	SolvedAt   time.Time `json:"solved_at"`
	ObservedAt time.Time `json:"observed_at"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	AzStar0   float64 `json:"anchor_azimuth"`

	// Spread of the bootstrap latitudes and of the per-star longitudes.
	LatitudeStdDev  float64 `json:"latitude_stddev"`
	LongitudeStdDev float64 `json:"longitude_stddev"`

	PositionalAngle float64 `json:"positional_angle"`
	RotationAngle   float64 `json:"rotation_angle"`
	ScaleX          float64 `json:"scale_x"`
	ScaleY          float64 `json:"scale_y"`
	ScalePairsX     int     `json:"scale_pairs_x"`
	ScalePairsY     int     `json:"scale_pairs_y"`

	Resamples       int `json:"resamples"`
	FailedResamples int `json:"failed_resamples"`
	SkippedStars    int `json:"skipped_stars"`

	Stars []StarExport `json:"stars"`
}

// StarExport is one projected star.
type StarExport struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	RA  float64 `json:"ra"`
	Dec float64 `json:"dec"`
	Alt float64 `json:"alt"`
	Az  float64 `json:"az"`
}

// FromSolution converts a solution to its exportable form.
func FromSolution(sol *nav.Solution, solvedAt time.Time) *SolutionExport {
	if sol == nil {
		return &SolutionExport{SolvedAt: solvedAt}
	}

	out := &SolutionExport{
		SolvedAt:        solvedAt,
		ObservedAt:      sol.Observation.Time,
		Latitude:        sol.Latitude.Deg(),
		Longitude:       sol.Longitude.Deg(),
		AzStar0:         sol.AzStar0.Deg(),
		PositionalAngle: sol.Observation.PositionalAngle.Deg(),
		RotationAngle:   sol.Observation.RotationAngle.Deg(),
		ScaleX:          sol.Scale.X.Deg(),
		ScaleY:          sol.Scale.Y.Deg(),
		ScalePairsX:     sol.Scale.PairsX,
		ScalePairsY:     sol.Scale.PairsY,
		Resamples:       len(sol.Resamples),
		FailedResamples: sol.FailedResamples,
		SkippedStars:    sol.SkippedStars,
	}

	lats := make([]float64, len(sol.Resamples))
	for i, r := range sol.Resamples {
		lats[i] = r.Latitude.Deg()
	}
	out.LatitudeStdDev = spread(lats)

	lons := make([]float64, len(sol.LongitudeEstimates))
	for i, l := range sol.LongitudeEstimates {
		// Estimates are compared on the branch nearest the final longitude.
		lons[i] = sol.Longitude.Deg() + math.Remainder(l.Deg()-sol.Longitude.Deg(), 360)
	}
	out.LongitudeStdDev = spread(lons)

	for _, s := range sol.Stars {
		out.Stars = append(out.Stars, StarExport{
			X:   s.Measured.X,
			Y:   s.Measured.Y,
			RA:  s.RA.Deg(),
			Dec: s.Dec.Deg(),
			Alt: s.Alt.Deg(),
			Az:  s.Az.Deg(),
		})
	}
	return out
}

func spread(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	_, std := stat.MeanStdDev(values, nil)
	return std
}

// WriteJSON writes the solution as JSON to the given writer.
func (s *SolutionExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteReport writes the star cluster in the plain-text report format:
// star count, angular sizes in radians, then "RA Dec Alt Az" in radians for
// each star followed by a blank line.
func WriteReport(w io.Writer, sol *nav.Solution) error {
	if sol == nil {
		return fmt.Errorf("no solution to report")
	}
	if _, err := fmt.Fprintf(w, "Number of stars: %d\n", len(sol.Stars)); err != nil {
		return err
	}
	fmt.Fprintf(w, "Angular X size: %.6f radians\n", sol.Scale.X.Rad())
	fmt.Fprintf(w, "Angular Y size: %.6f radians\n", sol.Scale.Y.Rad())
	for _, s := range sol.Stars {
		if _, err := fmt.Fprintf(w, "%.6f %.6f %.6f %.6f\n\n", s.RA.Rad(), s.Dec.Rad(), s.Alt.Rad(), s.Az.Rad()); err != nil {
			return err
		}
	}
	return nil
}

// FormatLatitude formats a latitude in degrees as "32.0800° N".
func FormatLatitude(deg float64) string {
	hemi := "N"
	if deg < 0 {
		hemi = "S"
	}
	return fmt.Sprintf("%.4f° %s", math.Abs(deg), hemi)
}

// FormatLongitude formats a longitude in degrees as "34.7800° E", folding
// values into (-180, 180].
func FormatLongitude(deg float64) string {
	deg = math.Remainder(deg, 360)
	if deg == -180 {
		deg = 180
	}
	hemi := "E"
	if deg < 0 {
		hemi = "W"
	}
	return fmt.Sprintf("%.4f° %s", math.Abs(deg), hemi)
}

// WriteSummaryTable writes a text table to the given writer.
func WriteSummaryTable(w io.Writer, sol *nav.Solution) {
	e := FromSolution(sol, time.Time{})

	fmt.Fprintf(w, "Fix @ %s\n", e.ObservedAt.UTC().Format(time.RFC3339))
	fmt.Fprintln(w, strings.Repeat("─", 60))

	if sol == nil {
		fmt.Fprintln(w, "No solution")
		return
	}

	fmt.Fprintf(w, "Latitude   %-16s ±%.3f°\n", FormatLatitude(e.Latitude), e.LatitudeStdDev)
	fmt.Fprintf(w, "Longitude  %-16s ±%.3f°\n", FormatLongitude(e.Longitude), e.LongitudeStdDev)
	fmt.Fprintf(w, "Anchor Az  %.3f°\n", e.AzStar0)
	fmt.Fprintf(w, "Scale      %.4f° x %.4f° (%d/%d pairs)\n", e.ScaleX, e.ScaleY, e.ScalePairsX, e.ScalePairsY)
	fmt.Fprintf(w, "Resamples  %d ok, %d failed\n", e.Resamples, e.FailedResamples)
	fmt.Fprintln(w, strings.Repeat("─", 60))

	fmt.Fprintf(w, "%-4s %10s %10s %10s %10s %9s %9s\n", "#", "X", "Y", "RA", "Dec", "Alt", "Az")
	for i, s := range e.Stars {
		fmt.Fprintf(w, "%-4d %10.1f %10.1f %10.4f %10.4f %9.3f %9.3f\n", i, s.X, s.Y, s.RA, s.Dec, s.Alt, s.Az)
	}

	fmt.Fprintf(w, "\nTotal: %d stars, %d skipped for longitude\n", len(e.Stars), e.SkippedStars)
}
