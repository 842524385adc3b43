package corr

import (
	"fmt"
	"math"

	"github.com/soniakeys/unit"

	"github.com/DanLyss/AstroNavigation/internal/nav"
)

// Options controls which rows become stars.
type Options struct {
	// Threshold is the match weight a row must exceed.
	Threshold float64
	// MaxStars caps the number of stars kept. Zero keeps all.
	MaxStars int
	// Seed drives the selection when more than MaxStars rows qualify.
	Seed uint64
	// Width and Height, when positive, drop rows outside the image.
	Width, Height float64
}

// DefaultOptions returns the standard filter options.
func DefaultOptions() Options {
	return Options{Threshold: 0.995}
}

// Result is the filtered star set. Stars[Anchor] sits at the pixel origin.
type Result struct {
	Stars  []nav.Star
	Anchor int
	Kept   int // rows that passed the weight and bounds checks
	Total  int
}

// Filter keeps confident matches, flips y to point up, and re-centres the
// coordinates on the kept star nearest the centroid.
func Filter(rows []Row, opts Options) (Result, error) {
	kept := make([]Row, 0, len(rows))
	for _, r := range rows {
		if !(r.MatchWeight > opts.Threshold) {
			continue
		}
		if opts.Width > 0 && (r.FieldX < 0 || r.FieldX > opts.Width) {
			continue
		}
		if opts.Height > 0 && (r.FieldY < 0 || r.FieldY > opts.Height) {
			continue
		}
		kept = append(kept, r)
	}

	res := Result{Kept: len(kept), Total: len(rows)}
	if len(kept) == 0 {
		return res, &InputError{
			Op:  "filter",
			Err: fmt.Errorf("%w: none of %d rows has match weight above %g", ErrNoUsableStars, len(rows), opts.Threshold),
		}
	}

	if opts.MaxStars > 0 && len(kept) > opts.MaxStars {
		rnd := nav.NewRand(opts.Seed)
		rnd.Shuffle(len(kept), func(i, j int) { kept[i], kept[j] = kept[j], kept[i] })
		kept = kept[:opts.MaxStars]
	}

	var cx, cy float64
	for _, r := range kept {
		cx += r.FieldX
		cy += -r.FieldY
	}
	cx /= float64(len(kept))
	cy /= float64(len(kept))

	anchor := 0
	best := math.Inf(1)
	for i, r := range kept {
		if d := math.Hypot(r.FieldX-cx, -r.FieldY-cy); d < best {
			best = d
			anchor = i
		}
	}

	ax, ay := kept[anchor].FieldX, -kept[anchor].FieldY
	res.Anchor = anchor
	res.Stars = make([]nav.Star, len(kept))
	for i, r := range kept {
		res.Stars[i] = nav.NewStar(
			r.FieldX-ax,
			-r.FieldY-ay,
			unit.AngleFromDeg(r.FieldRA),
			unit.AngleFromDeg(r.FieldDec),
		)
	}
	return res, nil
}
