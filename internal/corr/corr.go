// Package corr reads plate-solver correspondence tables and turns confident
// matches into stars for the navigation solver.
package corr

import (
	"errors"
	"fmt"
)

// Column names shared by the FITS and CSV formats.
const (
	ColFieldX      = "field_x"
	ColFieldY      = "field_y"
	ColFieldRA     = "field_ra"
	ColFieldDec    = "field_dec"
	ColMatchWeight = "match_weight"
)

// Columns lists the required columns in CSV output order.
var Columns = []string{ColFieldX, ColFieldY, ColFieldRA, ColFieldDec, ColMatchWeight}

// Row is one detected star matched to a catalogue star. Pixel coordinates
// follow image convention (y grows downward); RA and Dec are in degrees.
type Row struct {
	FieldX      float64 `json:"field_x"`
	FieldY      float64 `json:"field_y"`
	FieldRA     float64 `json:"field_ra"`
	FieldDec    float64 `json:"field_dec"`
	MatchWeight float64 `json:"match_weight"`
}

// ErrNoUsableStars is wrapped by InputError when no row survives filtering.
var ErrNoUsableStars = errors.New("no usable stars")

// InputError reports a missing, unreadable or empty correspondence input.
type InputError struct {
	Op   string
	Path string
	Err  error
}

func (e *InputError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}
