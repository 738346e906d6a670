package aerosol

import (
	"context"

	"github.com/developmentseed/espa-surface-reflectance/lut"
	"github.com/developmentseed/espa-surface-reflectance/satellite"
)

// sentinelResidual1 and sentinelResidual2 are the large placeholder
// residuals the search starts with, so the first advance step is always
// accepted unless testth fires on it (spec §4.3 step 1).
const (
	sentinelRaot1     = 1e-4
	sentinelRaot2     = 1e-6
	sentinelResidual1 = 2000.0
	sentinelResidual2 = 1000.0
)

// Retrieve implements the per-pixel aerosol retriever (component C3, spec
// §4.3): it sweeps the AOT-550nm grid starting at the iaots warm-start
// hint, brackets the minimum residual, refines it by a parabolic fit, and
// returns the retrieved AOT, its residual, and the warm-start hint for the
// next pixel. It never fails on its own account: apart from ctx's error,
// the errors it returns come from the kernel — a fatal LutRangeError from
// the legacy kernel (spec §7), or atmcorr.Wavelength's error for a
// satellite kind or band it has no wavelength for. ctx is checked once,
// for cooperative cancellation parity with the surrounding tile-parallel driver — a single call is bounded to at most
// 22 grid steps plus one refinement evaluation (spec §5) and never blocks.
func Retrieve(ctx context.Context, in PixelInputs, cfg satellite.Config, store *lut.Store, useSemiEmpirical bool, iaots int) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	raot550 := lut.AotGrid[iaots]
	r0, testthAtStart, err := computeResidual(in, cfg, store, useSemiEmpirical, raot550)
	if err != nil {
		return Result{}, err
	}

	raot, residual := raot550, r0
	raot1, residual1 := sentinelRaot1, sentinelResidual1
	raot2, residual2 := sentinelRaot2, sentinelResidual2
	iaot1, iaot2 := 0, 0
	iaot := iaots

	if !testthAtStart {
		for {
			iaot++
			if iaot > len(lut.AotGrid)-1 {
				break
			}
			candidateAot := lut.AotGrid[iaot]
			candidateResidual, testth, err := computeResidual(in, cfg, store, useSemiEmpirical, candidateAot)
			if err != nil {
				return Result{}, err
			}
			if testth {
				break
			}
			if candidateResidual < residual1 {
				residual2, raot2, iaot2 = residual1, raot1, iaot1
				residual1, raot1, iaot1 = candidateResidual, candidateAot, iaot
				residual, raot = candidateResidual, candidateAot
				continue
			}
			residual, raot = candidateResidual, candidateAot
			break
		}
	}

	raotSaved, residualSaved := raot, residual

	if iaot > 1 {
		if raotMin, ok := parabolicMinimum(raot2, residual2, raot1, residual1, raot, residual); ok {
			residualMin, _, err := computeResidual(in, cfg, store, useSemiEmpirical, raotMin)
			if err != nil {
				return Result{}, err
			}
			best, bestResidual := raotMin, residualMin
			if residualSaved < bestResidual {
				best, bestResidual = raotSaved, residualSaved
			}
			if residual1 < bestResidual {
				best, bestResidual = raot1, residual1
			}
			if residual2 < bestResidual {
				best, bestResidual = raot2, residual2
			}
			raot, residual = best, bestResidual
		} else {
			// DegenerateBracket (spec §7): fall back to the best observed
			// grid-point AOT, i.e. the lowest-residual of the pre-refinement
			// candidate and the two bracket points — not the very first
			// grid point (see DESIGN.md "Open Question decisions" for why
			// this departs from a literal reading of "keep raot = raot550").
			best, bestResidual := raotSaved, residualSaved
			if residual1 < bestResidual {
				best, bestResidual = raot1, residual1
			}
			if residual2 < bestResidual {
				best, bestResidual = raot2, residual2
			}
			raot, residual = best, bestResidual
		}
	}

	nextIaots := iaot2 - 3
	if nextIaots < 0 {
		nextIaots = 0
	}
	if in.Water && iaot == 1 {
		nextIaots = 0
	}

	return Result{Raot: raot, Residual: residual, Iaots: nextIaots}, nil
}
