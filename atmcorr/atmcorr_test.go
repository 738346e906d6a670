package atmcorr

import (
	"math"
	"testing"

	"github.com/developmentseed/espa-surface-reflectance/lut"
	"github.com/developmentseed/espa-surface-reflectance/satellite"
)

func constBand(roatm, ttatmg, satm float64, iaMax int) lut.BandCoefficients {
	return lut.BandCoefficients{
		Tgo:        1,
		RoatmCoef:  [lut.NCoef]float64{0, 0, 0, 0, roatm},
		TtatmgCoef: [lut.NCoef]float64{0, 0, 0, 0, ttatmg},
		SatmCoef:   [lut.NCoef]float64{0, 0, 0, 0, satm},
		RoatmIaMax: iaMax,
	}
}

// TestRoundTrip implements spec §8 property 6: the kernel recovers a chosen
// surface reflectance rho from troatm = roatm + ttatmg*rho/(1-satm*rho).
func TestRoundTrip(t *testing.T) {
	const roatm, ttatmg, satm = 0.02, 0.85, 0.05
	store := lut.NewStore([]lut.BandCoefficients{constBand(roatm, ttatmg, satm, len(lut.AotGrid)-1)}, nil)

	for _, rho := range []float64{0.0, 0.1, 0.25, 0.5, 0.9, 1.0} {
		troatm := roatm + ttatmg*rho/(1-satm*rho)
		got, err := SemiEmpirical(satellite.Landsat8, 0, 0.2, 0, store, troatm)
		if err != nil {
			t.Fatalf("rho=%v: unexpected error: %v", rho, err)
		}
		if math.Abs(got-rho) > 1e-9 {
			t.Errorf("rho=%v: recovered %v, want within 1e-9", rho, got)
		}
	}
}

// TestSemiEmpiricalClampsAotAtIaMax implements scenario E: a pixel that
// pushes AOT to 5.0 with roatm_iaMax=17 (grid value 3.0) must evaluate the
// polynomial at 3.0, not 5.0.
func TestSemiEmpiricalClampsAotAtIaMax(t *testing.T) {
	// roatm(x) = x so the clamp point is directly observable in the output.
	band := lut.BandCoefficients{
		Tgo:        1,
		RoatmCoef:  [lut.NCoef]float64{0, 0, 0, 1, 0},
		TtatmgCoef: [lut.NCoef]float64{0, 0, 0, 0, 1},
		SatmCoef:   [lut.NCoef]float64{0, 0, 0, 0, 0},
		RoatmIaMax: 17,
	}
	store := lut.NewStore([]lut.BandCoefficients{band}, nil)

	// eps=0 so the Ångström scale factor is 1 and doesn't perturb x.
	troatmAtFive, err := SemiEmpirical(satellite.Landsat8, 0, 5.0, 0, store, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	troatmAtClamp, err := SemiEmpirical(satellite.Landsat8, 0, lut.AotGrid[17], 0, store, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(troatmAtFive-troatmAtClamp) > 1e-12 {
		t.Fatalf("AOT=5.0 result (%v) should match AOT=grid[17]=%v result (%v)",
			troatmAtFive, lut.AotGrid[17], troatmAtClamp)
	}
}

func TestNonFiniteResidualGuarded(t *testing.T) {
	// ttatmg=0, satm=0 drives the denominator to exactly zero; the guard
	// must clamp it to a small epsilon instead of dividing by zero.
	band := constBand(0, 0, 0, len(lut.AotGrid)-1)
	store := lut.NewStore([]lut.BandCoefficients{band}, nil)
	got, err := SemiEmpirical(satellite.Landsat8, 0, 0.2, 0, store, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("expected a finite (if extreme) result, got %v", got)
	}
}

func TestWavelengthUnknownSatelliteBand(t *testing.T) {
	if _, err := Wavelength(satellite.Landsat8, 99); err == nil {
		t.Fatal("expected an error for an out-of-range band index")
	}
}
