package lut

import (
	"fmt"
	"os"

	"github.com/ctessum/cdf"
)

// readFullVar64 reads a full float64 variable from f, mirroring the
// teacher's srreader.go helper of the same shape.
func readFullVar64(f *cdf.File, name string) ([]float64, error) {
	r := f.Reader(name, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("lut: reading variable %q: %w", name, err)
	}
	v, ok := buf.([]float64)
	if !ok {
		return nil, fmt.Errorf("lut: variable %q is not float64", name)
	}
	return v, nil
}

// reshape3 reshapes a flat row-major buffer into a [d0][d1][d2]float64.
func reshape3(flat []float64, d0, d1, d2 int) [][][]float64 {
	out := make([][][]float64, d0)
	idx := 0
	for i := range out {
		out[i] = make([][]float64, d1)
		for j := range out[i] {
			out[i][j] = flat[idx : idx+d2]
			idx += d2
		}
	}
	return out
}

// reshape4 reshapes a flat row-major buffer into a [d0][d1][d2][d3]float64.
func reshape4(flat []float64, d0, d1, d2, d3 int) [][][][]float64 {
	out := make([][][][]float64, d0)
	idx := 0
	for i := range out {
		out[i] = make([][][]float64, d1)
		for j := range out[i] {
			out[i][j] = make([][]float64, d2)
			for k := range out[i][j] {
				out[i][j][k] = flat[idx : idx+d3]
				idx += d3
			}
		}
	}
	return out
}

// reshape2 reshapes a flat row-major buffer into a [d0][d1]float64.
func reshape2(flat []float64, d0, d1 int) [][]float64 {
	out := make([][]float64, d0)
	idx := 0
	for i := range out {
		out[i] = flat[idx : idx+d1]
		idx += d1
	}
	return out
}

// LoadNetCDF reads a NetCDF-formatted LUT/coefficient file into a Store,
// grounded on the teacher's cdf.Open/File.Reader pattern for reading
// gridded scientific data (sr/srreader.go). The file is expected to carry:
//
//   - "roatm_coef", "ttatmg_coef", "satm_coef": [nband][NCoef] polynomial
//     coefficients
//   - "tgo", "normext_p0a3": [nband] scalars
//   - "roatm_iamax": [nband] integers (stored as float64 in the file)
//   - "pres_grid", "solar_zen_grid", "view_zen_grid": 1-D angular/pressure
//     grids
//   - "rolutt", "transt": [nband][npres][naot][nangle]
//   - "sphalbt", "normext": [nband][npres][naot]
//   - "nbfic": [nband][npres][naot][nterms] Fourier coefficients, "nbfi":
//     [nband][npres][naot] term counts (stored as float64), "tsmax",
//     "tsmin": [npres][naot], "tts", "ttv": 1-D zenith grids — all six
//     optional (nbfic/nbfi and tsmax/tsmin are read only as pairs); a file
//     without them loads a LegacyTables whose azimuthal reconstruction
//     always returns 0, matching spec §4.1's fallback
//   - "tauray", "ogtransa1", "ogtransb0", "ogtransb1", "wvtransa",
//     "wvtransb", "oztransa": [nband] scalars
//
// Everything from "pres_grid" on is the legacy group: a file without a
// "rolutt" variable loads a Store with no legacy tables (HasLegacy false).
//
// File-format specifics belong to the scene loader collaborator; this
// function exists so the core LUT store has at least one concrete,
// testable construction path from disk, matching spec §6's description of
// a LUT loader collaborator.
func LoadNetCDF(path string) (*Store, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lut: opening %s: %w", path, err)
	}
	defer fh.Close()

	cf, err := cdf.Open(fh)
	if err != nil {
		return nil, fmt.Errorf("lut: parsing NetCDF header of %s: %w", path, err)
	}

	nband := cf.Header.Lengths("tgo")[0]

	tgo, err := readFullVar64(cf, "tgo")
	if err != nil {
		return nil, err
	}
	normextP0A3, err := readFullVar64(cf, "normext_p0a3")
	if err != nil {
		return nil, err
	}
	roatmIaMaxF, err := readFullVar64(cf, "roatm_iamax")
	if err != nil {
		return nil, err
	}
	roatmCoefFlat, err := readFullVar64(cf, "roatm_coef")
	if err != nil {
		return nil, err
	}
	ttatmgCoefFlat, err := readFullVar64(cf, "ttatmg_coef")
	if err != nil {
		return nil, err
	}
	satmCoefFlat, err := readFullVar64(cf, "satm_coef")
	if err != nil {
		return nil, err
	}

	bands := make([]BandCoefficients, nband)
	for b := 0; b < nband; b++ {
		bc := BandCoefficients{
			Tgo:         tgo[b],
			NormextP0A3: normextP0A3[b],
			RoatmIaMax:  int(roatmIaMaxF[b]),
		}
		copy(bc.RoatmCoef[:], roatmCoefFlat[b*NCoef:(b+1)*NCoef])
		copy(bc.TtatmgCoef[:], ttatmgCoefFlat[b*NCoef:(b+1)*NCoef])
		copy(bc.SatmCoef[:], satmCoefFlat[b*NCoef:(b+1)*NCoef])
		bands[b] = bc
	}

	legacy, err := loadLegacyNetCDF(cf, nband)
	if err != nil {
		return nil, err
	}

	return NewStore(bands, legacy), nil
}

func loadLegacyNetCDF(cf *cdf.File, nband int) (*LegacyTables, error) {
	if !hasVariable(cf, "rolutt") {
		// Legacy tables are optional: a scene using only the semi-empirical
		// kernel need not ship them.
		return nil, nil
	}

	presGrid, err := readFullVar64(cf, "pres_grid")
	if err != nil {
		return nil, err
	}
	solarZenGrid, err := readFullVar64(cf, "solar_zen_grid")
	if err != nil {
		return nil, err
	}
	viewZenGrid, err := readFullVar64(cf, "view_zen_grid")
	if err != nil {
		return nil, err
	}
	npres, naot := len(presGrid), len(AotGrid)

	rolutt, err := readFullVar64(cf, "rolutt")
	if err != nil {
		return nil, err
	}
	transt, err := readFullVar64(cf, "transt")
	if err != nil {
		return nil, err
	}
	sphalbt, err := readFullVar64(cf, "sphalbt")
	if err != nil {
		return nil, err
	}
	normext, err := readFullVar64(cf, "normext")
	if err != nil {
		return nil, err
	}

	tauray, err := readFullVar64(cf, "tauray")
	if err != nil {
		return nil, err
	}
	ogtransa1, err := readFullVar64(cf, "ogtransa1")
	if err != nil {
		return nil, err
	}
	ogtransb0, err := readFullVar64(cf, "ogtransb0")
	if err != nil {
		return nil, err
	}
	ogtransb1, err := readFullVar64(cf, "ogtransb1")
	if err != nil {
		return nil, err
	}
	wvtransa, err := readFullVar64(cf, "wvtransa")
	if err != nil {
		return nil, err
	}
	wvtransb, err := readFullVar64(cf, "wvtransb")
	if err != nil {
		return nil, err
	}
	oztransa, err := readFullVar64(cf, "oztransa")
	if err != nil {
		return nil, err
	}

	lt := &LegacyTables{
		PresGrid:     presGrid,
		SolarZenGrid: solarZenGrid,
		ViewZenGrid:  viewZenGrid,
		Rolutt:       reshape4(rolutt, nband, npres, naot, len(solarZenGrid)),
		Transt:       reshape4(transt, nband, npres, naot, len(viewZenGrid)),
		Sphalbt:      reshape3(sphalbt, nband, npres, naot),
		Normext:      reshape3(normext, nband, npres, naot),
		TauRay:       tauray,
		Ogtransa1:    ogtransa1,
		Ogtransb0:    ogtransb0,
		Ogtransb1:    ogtransb1,
		Wvtransa:     wvtransa,
		Wvtransb:     wvtransb,
		Oztransa:     oztransa,
	}

	// The azimuthal-reconstruction variables are optional: a file built
	// for the bilinear-only legacy path need not ship them, and Legacy
	// treats a nil Nbfi/Nbfic as "no azimuthal term" rather than an error.
	if hasVariable(cf, "nbfic") && hasVariable(cf, "nbfi") {
		nbficLengths := cf.Header.Lengths("nbfic")
		nterms := nbficLengths[len(nbficLengths)-1]

		nbficFlat, err := readFullVar64(cf, "nbfic")
		if err != nil {
			return nil, err
		}
		nbfiFlat, err := readFullVar64(cf, "nbfi")
		if err != nil {
			return nil, err
		}

		lt.Nbfic = reshape4(nbficFlat, nband, npres, naot, nterms)
		nbfi3 := reshape3(nbfiFlat, nband, npres, naot)
		lt.Nbfi = make([][][]int, nband)
		for b := range nbfi3 {
			lt.Nbfi[b] = make([][]int, npres)
			for p := range nbfi3[b] {
				lt.Nbfi[b][p] = make([]int, naot)
				for a := range nbfi3[b][p] {
					lt.Nbfi[b][p][a] = int(nbfi3[b][p][a])
				}
			}
		}
	}

	if hasVariable(cf, "tsmax") && hasVariable(cf, "tsmin") {
		tsmaxFlat, err := readFullVar64(cf, "tsmax")
		if err != nil {
			return nil, err
		}
		tsminFlat, err := readFullVar64(cf, "tsmin")
		if err != nil {
			return nil, err
		}
		lt.Tsmax = reshape2(tsmaxFlat, npres, naot)
		lt.Tsmin = reshape2(tsminFlat, npres, naot)
	}

	if hasVariable(cf, "tts") {
		tts, err := readFullVar64(cf, "tts")
		if err != nil {
			return nil, err
		}
		lt.Tts = tts
	}
	if hasVariable(cf, "ttv") {
		ttv, err := readFullVar64(cf, "ttv")
		if err != nil {
			return nil, err
		}
		lt.Ttv = ttv
	}

	return lt, nil
}

func hasVariable(cf *cdf.File, name string) bool {
	for _, v := range cf.Header.Variables() {
		if v == name {
			return true
		}
	}
	return false
}
