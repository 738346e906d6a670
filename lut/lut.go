// Package lut holds the per-scene look-up tables and polynomial
// coefficients that the atmospheric-correction kernel evaluates: the
// semi-empirical polynomial form (BandCoefficients) and the traditional
// 4-D table-interpolation form (LegacyTables, see legacy.go). A Store is
// constructed once per scene and is safe for concurrent reads by many
// goroutines thereafter; nothing in this package mutates a Store after
// construction.
package lut

import "gonum.org/v1/gonum/floats"

// NCoef is the number of terms in each semi-empirical polynomial.
const NCoef = 5

// BandIndex identifies a reflective band within a satellite's band set.
type BandIndex int

// AotGrid is the fixed, monotonically increasing sequence of 22 AOT-550nm
// grid points every retrieval and LUT table is indexed against. Non-uniform
// spacing is load-bearing: do not resample it.
var AotGrid = [22]float64{
	0.01, 0.05, 0.10, 0.15, 0.20, 0.30, 0.40, 0.60, 0.80, 1.00,
	1.20, 1.40, 1.60, 1.80, 2.00, 2.30, 2.60, 3.00, 3.50, 4.00,
	4.50, 5.00,
}

// BandCoefficients are the immutable, per-band coefficients used by the
// semi-empirical retrieval path.
type BandCoefficients struct {
	// Tgo is the scalar gaseous transmittance for this band.
	Tgo float64

	// RoatmCoef, TtatmgCoef, SatmCoef are the degree-(NCoef-1) polynomial
	// coefficients (descending power order, coef[0] is the highest-degree
	// term) for intrinsic atmospheric reflectance, total atmospheric
	// transmittance x other-gas, and spherical albedo, as functions of
	// AOT-550nm.
	RoatmCoef, TtatmgCoef, SatmCoef [NCoef]float64

	// NormextP0A3 is the normalized extinction coefficient at the
	// reference (pressure-layer-0, AOT-index-3) slice.
	NormextP0A3 float64

	// RoatmIaMax is the AOT-grid index above which polynomial
	// extrapolation is clamped (spec §4.1).
	RoatmIaMax int
}

// Store is the read-only per-scene LUT coefficient store (component C1).
// It is constructed once by a scene loader (or by LoadNetCDF) and shared
// read-only with every retriever goroutine.
type Store struct {
	bands  []BandCoefficients
	legacy *LegacyTables
}

// NewStore builds a Store from already-parsed semi-empirical band
// coefficients. legacy may be nil if the scene only uses the semi-empirical
// path.
func NewStore(bands []BandCoefficients, legacy *LegacyTables) *Store {
	return &Store{bands: append([]BandCoefficients(nil), bands...), legacy: legacy}
}

// Band returns the coefficient set for b.
func (s *Store) Band(b BandIndex) BandCoefficients {
	return s.bands[b]
}

// NumBands reports how many bands this store was loaded with.
func (s *Store) NumBands() int {
	return len(s.bands)
}

// HasLegacy reports whether this store was loaded with the traditional
// table-interpolation LUTs.
func (s *Store) HasLegacy() bool {
	return s.legacy != nil
}

// Legacy returns the traditional table-interpolation LUTs, or nil if this
// store was loaded without them.
func (s *Store) Legacy() *LegacyTables {
	return s.legacy
}

// ClampAot returns the AOT-550nm value to evaluate a band's polynomials
// at: x itself, unless x exceeds the grid value at RoatmIaMax, in which
// case evaluation is clamped to that grid value (spec §4.1 step 1,
// prevents runaway extrapolation as AOT approaches 5.0). The clamp is
// applied to the raw AOT before any Ångström spectral adjustment; callers
// that additionally scale by wavelength must clamp first, as atmcorr does.
func ClampAot(coef BandCoefficients, x float64) float64 {
	max := AotGrid[coef.RoatmIaMax]
	if x > max {
		return max
	}
	return x
}

// evalPoly evaluates a degree-(NCoef-1) polynomial (descending power order)
// at x via a dot product against the powers of x, mirroring the teacher's
// use of gonum/floats for vector reductions rather than a hand-rolled
// Horner loop.
func evalPoly(coef [NCoef]float64, x float64) float64 {
	powers := make([]float64, NCoef)
	p := 1.0
	for i := NCoef - 1; i >= 0; i-- {
		powers[i] = p
		p *= x
	}
	return floats.Dot(coef[:], powers)
}

// Semiempirical evaluates the three semi-empirical polynomials for band b
// at AOT-550nm value aot550, applying the top-end clamp of spec §4.1.
// roatm is the intrinsic path reflectance, ttatmg the downward x upward
// transmittance including other-gas absorption, satm the spherical albedo.
func (s *Store) Semiempirical(b BandIndex, aot550 float64) (roatm, ttatmg, satm float64) {
	coef := s.bands[b]
	x := ClampAot(coef, aot550)
	return s.EvalPolynomials(b, x)
}

// EvalPolynomials evaluates the three semi-empirical polynomials for band b
// at x directly, without applying the RoatmIaMax clamp. Callers that need
// to interleave the clamp with another transform of x (the atmcorr
// package's Ångström adjustment) should clamp explicitly via ClampAot and
// call this instead of Semiempirical.
func (s *Store) EvalPolynomials(b BandIndex, x float64) (roatm, ttatmg, satm float64) {
	coef := s.bands[b]
	return evalPoly(coef.RoatmCoef, x), evalPoly(coef.TtatmgCoef, x), evalPoly(coef.SatmCoef, x)
}
