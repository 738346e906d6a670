package aerosol

import (
	"math"

	"github.com/developmentseed/espa-surface-reflectance/atmcorr"
	"github.com/developmentseed/espa-surface-reflectance/lut"
	"github.com/developmentseed/espa-surface-reflectance/satellite"
)

// evalBand invokes the kernel (semi-empirical or legacy, per
// useSemiEmpirical) for one band at one AOT-550nm candidate, returning the
// Lambertian surface reflectance. A NonFiniteResidualError from the
// semi-empirical kernel's denominator guard is treated identically to
// testth having fired for this band (spec §7 NonFiniteResidual); any other
// error (a legacy LutRangeError) is fatal to the pixel and propagated.
func evalBand(in PixelInputs, store *lut.Store, useSemiEmpirical bool, b lut.BandIndex, aot550 float64) (roslamb float64, nonFinite bool, err error) {
	if useSemiEmpirical {
		roslamb, err = atmcorr.SemiEmpirical(in.Satellite, b, aot550, in.Eps, store, in.Troatm[b])
		if err != nil {
			if _, ok := err.(*atmcorr.NonFiniteResidualError); ok {
				return 0, true, nil
			}
			return 0, false, err
		}
		return roslamb, false, nil
	}

	legacy := store.Legacy()
	tgo := store.Band(b).Tgo
	roslamb, _, err = atmcorr.Legacy(b, legacy, in.PressureHPa, aot550, in.SolarZenDeg, in.ViewZenDeg, in.RelAzDeg, tgo, in.Troatm[b])
	if err != nil {
		if _, ok := err.(*atmcorr.NonFiniteResidualError); ok {
			return 0, true, nil
		}
		return 0, false, err
	}
	return roslamb, false, nil
}

// ResidualAt exposes computeResidual for callers outside this package
// (the diagnostics package's convergence plot) that need the residual at
// an arbitrary AOT-550nm candidate without running the full search.
func ResidualAt(in PixelInputs, cfg satellite.Config, store *lut.Store, useSemiEmpirical bool, aot550 float64) (residual float64, testth bool, err error) {
	return computeResidual(in, cfg, store, useSemiEmpirical, aot550)
}

// computeResidual evaluates the residual at one AOT-550nm candidate (spec
// §4.3 "Residual definition"), returning the RMS point-error residual and
// whether testth fired for any participating band at this candidate.
func computeResidual(in PixelInputs, cfg satellite.Config, store *lut.Store, useSemiEmpirical bool, aot550 float64) (residual float64, testth bool, err error) {
	tth := cfg.TTH(in.Water)

	check := func(b lut.BandIndex, roslamb float64) {
		if int(b) < len(tth) && roslamb-tth[b] < 0 {
			testth = true
		}
	}

	if in.Water {
		var sumSq float64
		var n int
		for b := cfg.StartBand; b <= cfg.EndBand; b++ {
			bi := lut.BandIndex(b)
			if in.Erelc[b] <= 0 {
				continue
			}
			roslamb, nonFinite, evalErr := evalBand(in, store, useSemiEmpirical, bi, aot550)
			if evalErr != nil {
				return 0, false, evalErr
			}
			if nonFinite {
				testth = true
				continue
			}
			check(bi, roslamb)
			sumSq += roslamb * roslamb
			n++
		}
		return rms(sumSq, n), testth, nil
	}

	ros1, nonFinite, err := evalBand(in, store, useSemiEmpirical, in.Iband1, aot550)
	if err != nil {
		return 0, false, err
	}
	if nonFinite {
		testth = true
	} else {
		check(in.Iband1, ros1)
	}

	var sumSq float64
	var n int
	for b := cfg.StartBand; b <= cfg.EndBand; b++ {
		bi := lut.BandIndex(b)
		if bi == in.Iband1 || in.Erelc[b] <= 0 {
			continue
		}
		roslamb, bandNonFinite, evalErr := evalBand(in, store, useSemiEmpirical, bi, aot550)
		if evalErr != nil {
			return 0, false, evalErr
		}
		if bandNonFinite {
			testth = true
			continue
		}
		check(bi, roslamb)
		pointError := roslamb - in.Erelc[b]*ros1
		sumSq += pointError * pointError
		n++
	}
	return rms(sumSq, n), testth, nil
}

// rms returns sqrt(sumSq)/n, or 0 when no bands participated (keeps the
// retriever's "always returns a finite residual" contract, spec §4.3,
// total invariant).
func rms(sumSq float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return math.Sqrt(sumSq) / float64(n)
}
