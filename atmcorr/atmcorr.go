// Package atmcorr implements the Lambertian atmospheric-correction kernel
// (component C2): given a band, an AOT-550nm candidate, and TOA
// reflectance, it inverts the standard atmospheric model to recover
// surface reflectance. Both exported functions are pure and
// side-effect-free; neither allocates beyond local scalars.
package atmcorr

import (
	"fmt"
	"math"

	"github.com/developmentseed/espa-surface-reflectance/lut"
	"github.com/developmentseed/espa-surface-reflectance/satellite"
)

// minDenominator guards the Lambertian inversion's denominator against
// collapsing to zero for very bright pixels at large AOT (spec §4.2).
const minDenominator = 1e-12

// referenceWavelengthNM is the 550nm reference wavelength the Ångström
// spectral adjustment scales every band's AOT against.
const referenceWavelengthNM = 550.0

// nominalWavelengthNM gives the nominal center wavelength, in nanometers,
// of each reflective band for the satellites this package supports, keyed
// by satellite kind: Landsat8 and Landsat9 share one 8-band table;
// Sentinel2 has a 13-band table (indices 0..12).
var nominalWavelengthNM = map[satellite.Kind][]float64{
	satellite.Landsat8: {443, 482, 561, 655, 865, 1609, 2201, 1373},
	satellite.Landsat9: {443, 482, 561, 655, 865, 1609, 2201, 1373},
	satellite.Sentinel2: {
		443, 490, 560, 665, 705, 740, 783, 842,
		865, 945, 1375, 1610, 2190,
	},
}

// Wavelength returns the nominal center wavelength in nanometers for band b
// of satellite kind sat.
func Wavelength(sat satellite.Kind, b lut.BandIndex) (float64, error) {
	table, ok := nominalWavelengthNM[sat]
	if !ok || int(b) < 0 || int(b) >= len(table) {
		return 0, fmt.Errorf("atmcorr: no nominal wavelength for %v band %d", sat, b)
	}
	return table[b], nil
}

// angstromScale returns (referenceWavelengthNM/wavelengthNM)^eps, the
// spectral adjustment of spec §4.2 step 2.
func angstromScale(wavelengthNM, eps float64) float64 {
	return math.Pow(referenceWavelengthNM/wavelengthNM, eps)
}

func safeDenominator(d float64) float64 {
	if math.Abs(d) < minDenominator {
		if d < 0 {
			return -minDenominator
		}
		return minDenominator
	}
	return d
}

// SemiEmpirical implements the semi-empirical-form kernel (spec §4.2): it
// clamps the AOT for coefficient evaluation, applies the Ångström spectral
// adjustment, evaluates the three polynomials, and inverts the Lambertian
// equation to recover surface reflectance.
func SemiEmpirical(sat satellite.Kind, b lut.BandIndex, aot550, eps float64, store *lut.Store, troatm float64) (roslamb float64, err error) {
	wavelength, err := Wavelength(sat, b)
	if err != nil {
		return 0, err
	}
	coef := store.Band(b)

	clamped := lut.ClampAot(coef, aot550)
	x := clamped * angstromScale(wavelength, eps)
	roatm, ttatmg, satm := store.EvalPolynomials(b, x)

	y := troatm/coef.Tgo - roatm
	denom := safeDenominator(ttatmg + satm*y)
	roslamb = y / denom
	if math.IsNaN(roslamb) || math.IsInf(roslamb, 0) {
		return 0, errNonFiniteResidual(b)
	}
	return roslamb, nil
}

// Legacy implements the traditional table-interpolation-form kernel (spec
// §4.2 legacy form): roatm/ttatmg/satm come from the 4-D LUT instead of a
// polynomial, and the Rayleigh diagnostic xrorayp is additionally returned.
func Legacy(b lut.BandIndex, legacy *lut.LegacyTables, pressure, aot550, solarZenDeg, viewZenDeg, relAzDeg, tgo, troatm float64) (roslamb, xrorayp float64, err error) {
	roatm, ttatmg, satm, xro, err := legacy.Legacy(b, pressure, aot550, solarZenDeg, viewZenDeg, relAzDeg)
	if err != nil {
		return 0, 0, err
	}
	y := troatm/tgo - roatm
	denom := safeDenominator(ttatmg + satm*y)
	roslamb = y / denom
	if math.IsNaN(roslamb) || math.IsInf(roslamb, 0) {
		return 0, xro, errNonFiniteResidual(b)
	}
	return roslamb, xro, nil
}

// NonFiniteResidualError reports that the Lambertian inversion produced a
// non-finite value even after the denominator guard (spec §7). The caller
// (the aerosol retriever) treats this identically to testth having fired
// for the offending band/AOT candidate.
type NonFiniteResidualError struct {
	Band lut.BandIndex
}

func (e *NonFiniteResidualError) Error() string {
	return fmt.Sprintf("atmcorr: non-finite surface reflectance for band %d", e.Band)
}

func errNonFiniteResidual(b lut.BandIndex) error {
	return &NonFiniteResidualError{Band: b}
}
