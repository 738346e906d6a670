// Package aerosol implements the per-pixel aerosol retriever (component
// C3): it sweeps the AOT-550nm grid, calling the atmospheric-correction
// kernel once per participating band at each candidate, accumulates a
// residual, brackets the minimum, and refines the estimate by a
// three-point parabolic fit.
package aerosol

import (
	"github.com/developmentseed/espa-surface-reflectance/lut"
	"github.com/developmentseed/espa-surface-reflectance/satellite"
)

// PixelInputs are the per-pixel quantities the retriever needs (spec §3).
type PixelInputs struct {
	// Troatm holds TOA reflectance per band, fill-valued for bands that do
	// not participate.
	Troatm []float64

	// Erelc holds inter-band ratio weights; a band participates in the
	// retrieval iff Erelc[b] > 0.
	Erelc []float64

	// Iband1 is the primary "driver" band whose retrieved surface
	// reflectance defines ros1 for the land residual definition.
	Iband1 lut.BandIndex

	// Water is true for water pixels, which use a different residual
	// definition and band participation rule (spec §4.3).
	Water bool

	// Eps is the Ångström exponent expressing spectral dependence of AOT.
	Eps float64

	// Semi-empirical kernel inputs; ignored when the legacy kernel is in
	// use.
	Satellite satellite.Kind

	// Legacy-kernel-only geometry, ignored when Retrieve's useSemiEmpirical
	// argument is true. ColumnOzone, ColumnWaterVapor and Airmass are
	// carried but not read by either kernel: the legacy path takes its
	// gaseous transmittance from the band's Tgo only.
	PressureHPa  float64
	SolarZenDeg  float64
	ViewZenDeg   float64
	RelAzDeg     float64
	ColumnOzone  float64
	ColumnWaterVapor float64
	Airmass      float64
}

// Result is the output of one retrieval call (spec §3 RetrievalResult).
type Result struct {
	// Raot is the retrieved AOT-550nm, finite and in [0.01, 5.0].
	Raot float64

	// Residual is the non-negative RMS model residual.
	Residual float64

	// Iaots is the AOT grid index carried across successive pixels as a
	// search warm-start hint (caller-owned, in/out).
	Iaots int
}
