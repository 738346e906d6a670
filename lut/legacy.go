package lut

import (
	"fmt"
	"math"
)

// LutRangeError reports that a legacy LUT lookup fell outside tabulated
// bounds that could not be clamped (spec §7, fatal to the pixel).
type LutRangeError struct {
	Table string
	Value float64
}

func (e *LutRangeError) Error() string {
	return fmt.Sprintf("lut: %s read failure: value %v out of table range", e.Table, e.Value)
}

// LegacyTables holds the traditional table-interpolation LUTs (spec §3
// LegacyLutTables), immutable after scene load.
type LegacyTables struct {
	// PresGrid, SolarZenGrid, ViewZenGrid are the monotonically increasing
	// grids the 3rd/4th LUT dimensions are indexed against (pressure in
	// hPa, solar/view zenith angle in degrees).
	PresGrid     []float64
	SolarZenGrid []float64
	ViewZenGrid  []float64

	// Rolutt is the intrinsic atmospheric reflectance table, indexed
	// [band][pres][aot][solarZen].
	Rolutt [][][][]float64

	// Transt is the total transmittance table, indexed
	// [band][pres][aot][viewZen].
	Transt [][][][]float64

	// Sphalbt is the spherical albedo table, indexed [band][pres][aot].
	Sphalbt [][][]float64

	// Normext is the normalized extinction coefficient table, indexed
	// [band][pres][aot].
	Normext [][][]float64

	// Nbfic holds the Fourier coefficients used to reconstruct the
	// angular dependence of the Rayleigh path reflectance as a cosine
	// series in the scattering angle (see Legacy), indexed
	// [band][pres][aot][term]. Nbfi gives, for the same indices, how many
	// of Nbfic's leading terms are valid.
	Nbfic [][][][]float64
	Nbfi  [][][]int

	// Tsmax and Tsmin bound the scattering-angle-equivalent quantity used
	// before azimuthal reconstruction, indexed [pres][aot]; inputs outside
	// [Tsmin, Tsmax] are clamped rather than extrapolated.
	Tsmax, Tsmin [][]float64

	// Tts and Ttv are the solar/view zenith angle grids used by the
	// azimuthal Fourier reconstruction (may equal SolarZenGrid/ViewZenGrid).
	Tts, Ttv []float64

	// Per-band scalar constants.
	TauRay                         []float64
	Ogtransa1, Ogtransb0, Ogtransb1 []float64
	Wvtransa, Wvtransb             []float64
	Oztransa                       []float64
}

// clampedBracket finds i such that grid[i] <= x <= grid[i+1], clamping x to
// the grid's range (no extrapolation, per spec §4.1 legacy semantics), and
// returns the bracket index and the fractional position within it.
func clampedBracket(grid []float64, x float64) (i int, frac float64) {
	n := len(grid)
	if n < 2 {
		return 0, 0
	}
	if x <= grid[0] {
		return 0, 0
	}
	if x >= grid[n-1] {
		return n - 2, 1
	}
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if grid[mid] <= x {
			lo = mid
		} else {
			hi = mid
		}
	}
	span := grid[lo+1] - grid[lo]
	if span == 0 {
		return lo, 0
	}
	return lo, (x - grid[lo]) / span
}

func lerp(a, b, frac float64) float64 {
	return a + (b-a)*frac
}

// bilinear2D interpolates table[i0..i0+1][j0..j0+1] at fractional position
// (fi, fj) within the bracket.
func bilinear2D(table [][]float64, i0 int, fi float64, j0 int, fj float64) float64 {
	v00 := table[i0][j0]
	v01 := table[i0][j0+1]
	v10 := table[i0+1][j0]
	v11 := table[i0+1][j0+1]
	top := lerp(v00, v01, fj)
	bot := lerp(v10, v11, fj)
	return lerp(top, bot, fi)
}

// fourierAzimuth reconstructs the angular dependence of a quantity from its
// Fourier coefficients as a truncated cosine series in the angle passed as
// relAzRad (Legacy passes the scattering angle), matching the series used
// by legacy radiative-transfer LUTs to avoid storing a full angle
// dimension.
func fourierAzimuth(coef []float64, nTerms int, relAzRad float64) float64 {
	if nTerms <= 0 || len(coef) == 0 {
		return 0
	}
	if nTerms > len(coef) {
		nTerms = len(coef)
	}
	val := coef[0]
	for k := 1; k < nTerms; k++ {
		val += coef[k] * math.Cos(float64(k)*relAzRad)
	}
	return val
}

// Legacy performs the traditional multilinear-interpolation lookup (spec
// §4.1 Legacy) for band b at pressure p (hPa), AOT-550nm x, solar/view
// zenith angles in degrees, and relative azimuth in degrees. It returns the
// intrinsic path reflectance, total transmittance, spherical albedo, and
// the Rayleigh diagnostic xrorayp. Out-of-range pressure or angle
// arguments are clamped to table bounds; an out-of-range AOT index that
// cannot be resolved against the grid is reported as a LutRangeError,
// fatal to the pixel.
func (lt *LegacyTables) Legacy(b BandIndex, p, x, solarZenDeg, viewZenDeg, relAzDeg float64) (roatm, ttatmg, satm, xrorayp float64, err error) {
	if lt == nil {
		return 0, 0, 0, 0, &LutRangeError{Table: "legacy", Value: x}
	}
	if x < AotGrid[0] || x > AotGrid[len(AotGrid)-1] {
		return 0, 0, 0, 0, &LutRangeError{Table: "rolutt(aot)", Value: x}
	}

	pi, pf := clampedBracket(lt.PresGrid, p)
	ai, af := clampedBracket(AotGrid[:], x)
	si, sf := clampedBracket(lt.SolarZenGrid, solarZenDeg)
	vi, vf := clampedBracket(lt.ViewZenGrid, viewZenDeg)

	// rolutt: interpolate (pres, aot) bilinearly for each bracketing solar
	// angle, then interpolate across the solar-angle bracket.
	roLo := bilinear2D(sliceAtAngle(lt.Rolutt[b], si), pi, pf, ai, af)
	roHi := bilinear2D(sliceAtAngle(lt.Rolutt[b], si+1), pi, pf, ai, af)
	roatm = lerp(roLo, roHi, sf)

	// transt: same structure, indexed by view zenith instead of solar.
	ttLo := bilinear2D(sliceAtAngle(lt.Transt[b], vi), pi, pf, ai, af)
	ttHi := bilinear2D(sliceAtAngle(lt.Transt[b], vi+1), pi, pf, ai, af)
	ttatmg = lerp(ttLo, ttHi, vf)

	satm = bilinear2D(lt.Sphalbt[b], pi, pf, ai, af)

	nTerms := 0
	var coef []float64
	if len(lt.Nbfi) > int(b) && len(lt.Nbfi[b]) > pi && len(lt.Nbfi[b][pi]) > ai {
		nTerms = lt.Nbfi[b][pi][ai]
		coef = lt.Nbfic[b][pi][ai]
	}

	// The azimuthal reconstruction is driven by the scattering angle, not
	// the raw relative azimuth: clamp the zenith angles to the dedicated
	// tts/ttv grids (which may differ from SolarZenGrid/ViewZenGrid), derive
	// the scattering angle, then clamp it into [tsmin, tsmax] for this
	// (pres, aot) cell before feeding it to the Fourier series.
	clampedSolarZen := clampToGrid(lt.Tts, solarZenDeg)
	clampedViewZen := clampToGrid(lt.Ttv, viewZenDeg)
	scatterDeg := scatteringAngleDeg(clampedSolarZen, clampedViewZen, relAzDeg)
	if lt.Tsmax != nil && lt.Tsmin != nil {
		tsMax := bilinear2D(lt.Tsmax, pi, pf, ai, af)
		tsMin := bilinear2D(lt.Tsmin, pi, pf, ai, af)
		if tsMin <= tsMax {
			if scatterDeg < tsMin {
				scatterDeg = tsMin
			} else if scatterDeg > tsMax {
				scatterDeg = tsMax
			}
		}
	}
	scatterRad := scatterDeg * math.Pi / 180
	xrorayp = lt.TauRay[b] * fourierAzimuth(coef, nTerms, scatterRad)

	return roatm, ttatmg, satm, xrorayp, nil
}

// clampToGrid clamps x into [grid[0], grid[len(grid)-1]]. An empty or nil
// grid is a no-op: it leaves x unchanged so callers built without a
// dedicated tts/ttv grid fall back to the angle as given.
func clampToGrid(grid []float64, x float64) float64 {
	if len(grid) == 0 {
		return x
	}
	lo, hi := grid[0], grid[len(grid)-1]
	if lo > hi {
		lo, hi = hi, lo
	}
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// scatteringAngleDeg returns the scattering angle in degrees between the
// solar and view directions, given their zenith angles and the relative
// azimuth between them, all in degrees.
func scatteringAngleDeg(solarZenDeg, viewZenDeg, relAzDeg float64) float64 {
	sz := solarZenDeg * math.Pi / 180
	vz := viewZenDeg * math.Pi / 180
	ra := relAzDeg * math.Pi / 180
	cosScatter := math.Cos(sz)*math.Cos(vz) + math.Sin(sz)*math.Sin(vz)*math.Cos(ra)
	if cosScatter > 1 {
		cosScatter = 1
	} else if cosScatter < -1 {
		cosScatter = -1
	}
	return math.Acos(cosScatter) * 180 / math.Pi
}

// sliceAtAngle collapses a [pres][aot][angle] cube to a [pres][aot] slice
// at a fixed angle index k (clamped to the table's last valid index; the
// caller has already clamped the fractional position, this only guards
// the k+1 lookup at the grid edge).
func sliceAtAngle(table [][][]float64, k int) [][]float64 {
	out := make([][]float64, len(table))
	for p, byAot := range table {
		row := make([]float64, len(byAot))
		for a, byAngle := range byAot {
			idx := k
			if idx >= len(byAngle) {
				idx = len(byAngle) - 1
			}
			row[a] = byAngle[idx]
		}
		out[p] = row
	}
	return out
}

// OzoneTransmittance returns exp(-oztransa[b]*uoz*airmass), the ozone
// transmittance term of spec §4.1 Legacy.
func (lt *LegacyTables) OzoneTransmittance(b BandIndex, uoz, airmass float64) float64 {
	return math.Exp(-lt.Oztransa[b] * uoz * airmass)
}

// WaterVaporTransmittance returns the water-vapour transmittance term
// computed from wvtransa/wvtransb.
func (lt *LegacyTables) WaterVaporTransmittance(b BandIndex, uwv, airmass float64) float64 {
	return math.Exp(-(lt.Wvtransa[b] * math.Pow(uwv*airmass, lt.Wvtransb[b])))
}

// OtherGasTransmittance returns the other-gas transmittance term computed
// from ogtransa1/ogtransb0/ogtransb1.
func (lt *LegacyTables) OtherGasTransmittance(b BandIndex, airmass float64) float64 {
	return math.Exp(-(lt.Ogtransa1[b] * math.Pow(airmass, lt.Ogtransb0[b]+lt.Ogtransb1[b]*airmass)))
}
