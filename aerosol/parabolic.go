package aerosol

import "math"

// minAotBound and maxAotBound bound a valid parabolic-minimum refinement
// (spec §4.3); outside this range the candidate is rejected as a
// DegenerateBracket recovery (spec §7).
const (
	minAotBound = 0.01
	maxAotBound = 4.0

	// degenerateEpsilon guards the xa-xb denominator against collapsing to
	// zero (a flat-bottomed bracket, scenario D).
	degenerateEpsilon = 1e-12
)

// parabolicMinimum fits a quadratic r(x) = a*x^2 + b*x + c through the
// three bracket points (raot2, residual2), (raot1, residual1), (raot,
// residual) — eliminating c — and returns its minimum's x location. It is
// a stand-alone numerical primitive (spec §9) independently testable
// against a known quadratic's analytic minimum.
//
// ok is false (a DegenerateBracket, spec §7) when the three points do not
// determine a minimum — xa-xb is too close to zero — or when the result
// falls outside [minAotBound, maxAotBound].
func parabolicMinimum(raot2, residual2, raot1, residual1, raot, residual float64) (x float64, ok bool) {
	xa := (residual1 - residual) * (raot2 - raot)
	xb := (residual2 - residual) * (raot1 - raot)

	denom := xa - xb
	if math.Abs(denom) < degenerateEpsilon {
		return 0, false
	}

	raotMin := 0.5 * (xa*(raot2+raot) - xb*(raot1+raot)) / denom
	if math.IsNaN(raotMin) || math.IsInf(raotMin, 0) {
		return 0, false
	}
	if raotMin < minAotBound || raotMin > maxAotBound {
		return 0, false
	}
	return raotMin, true
}
