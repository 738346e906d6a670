package lut

import (
	"os"
	"testing"

	"github.com/ctessum/cdf"
)

// buildLegacyFixture writes a minimal but complete legacy-table NetCDF file
// to a temp path and returns it, using the real cdf.Create/AddVariable/
// Writer path rather than a hand-rolled byte layout.
func buildLegacyFixture(t *testing.T, nband, npres, nang, nterms int, withAzimuth bool) string {
	t.Helper()
	naot := len(AotGrid)

	f, err := os.CreateTemp(t.TempDir(), "legacy-*.nc")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	path := f.Name()
	defer f.Close()

	dims := []string{"band", "pres", "aot", "ang", "term", "coef"}
	lengths := []int{nband, npres, naot, nang, nterms, NCoef}
	h := cdf.NewHeader(dims, lengths)

	h.AddVariable("tgo", []string{"band"}, make([]float64, nband))
	h.AddVariable("normext_p0a3", []string{"band"}, make([]float64, nband))
	h.AddVariable("roatm_iamax", []string{"band"}, make([]float64, nband))
	h.AddVariable("roatm_coef", []string{"band", "coef"}, make([]float64, nband*NCoef))
	h.AddVariable("ttatmg_coef", []string{"band", "coef"}, make([]float64, nband*NCoef))
	h.AddVariable("satm_coef", []string{"band", "coef"}, make([]float64, nband*NCoef))

	h.AddVariable("pres_grid", []string{"pres"}, make([]float64, npres))
	h.AddVariable("solar_zen_grid", []string{"ang"}, make([]float64, nang))
	h.AddVariable("view_zen_grid", []string{"ang"}, make([]float64, nang))
	h.AddVariable("rolutt", []string{"band", "pres", "aot", "ang"}, make([]float64, nband*npres*naot*nang))
	h.AddVariable("transt", []string{"band", "pres", "aot", "ang"}, make([]float64, nband*npres*naot*nang))
	h.AddVariable("sphalbt", []string{"band", "pres", "aot"}, make([]float64, nband*npres*naot))
	h.AddVariable("normext", []string{"band", "pres", "aot"}, make([]float64, nband*npres*naot))
	h.AddVariable("tauray", []string{"band"}, make([]float64, nband))
	h.AddVariable("ogtransa1", []string{"band"}, make([]float64, nband))
	h.AddVariable("ogtransb0", []string{"band"}, make([]float64, nband))
	h.AddVariable("ogtransb1", []string{"band"}, make([]float64, nband))
	h.AddVariable("wvtransa", []string{"band"}, make([]float64, nband))
	h.AddVariable("wvtransb", []string{"band"}, make([]float64, nband))
	h.AddVariable("oztransa", []string{"band"}, make([]float64, nband))

	if withAzimuth {
		h.AddVariable("nbfic", []string{"band", "pres", "aot", "term"}, make([]float64, nband*npres*naot*nterms))
		h.AddVariable("nbfi", []string{"band", "pres", "aot"}, make([]float64, nband*npres*naot))
		h.AddVariable("tsmax", []string{"pres", "aot"}, make([]float64, npres*naot))
		h.AddVariable("tsmin", []string{"pres", "aot"}, make([]float64, npres*naot))
		h.AddVariable("tts", []string{"ang"}, make([]float64, nang))
		h.AddVariable("ttv", []string{"ang"}, make([]float64, nang))
	}

	h.Define()

	cf, err := cdf.Create(f, h)
	if err != nil {
		t.Fatalf("creating NetCDF file: %v", err)
	}

	write := func(name string, vals []float64) {
		if _, err := cf.Writer(name, nil, nil).Write(vals); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}

	tgo := rangeF(nband, 1.0, 0.01)
	write("tgo", tgo)
	write("normext_p0a3", rangeF(nband, 0.1, 0.0))
	write("roatm_iamax", rangeF(nband, float64(naot-1), 0))
	write("roatm_coef", rangeF(nband*NCoef, 0, 0.001))
	write("ttatmg_coef", rangeF(nband*NCoef, 0, 0.001))
	write("satm_coef", rangeF(nband*NCoef, 0, 0.001))

	presGrid := rangeF(npres, 500, 250)
	solarZen := rangeF(nang, 0, 40)
	viewZen := rangeF(nang, 0, 40)
	write("pres_grid", presGrid)
	write("solar_zen_grid", solarZen)
	write("view_zen_grid", viewZen)
	write("rolutt", rangeF(nband*npres*naot*nang, 0.01, 0.0001))
	write("transt", rangeF(nband*npres*naot*nang, 0.8, 0.0001))
	write("sphalbt", rangeF(nband*npres*naot, 0.05, 0.0001))
	write("normext", rangeF(nband*npres*naot, 1.0, 0.0001))
	write("tauray", rangeF(nband, 0.05, 0.001))
	write("ogtransa1", rangeF(nband, 0.01, 0.001))
	write("ogtransb0", rangeF(nband, 0.5, 0.001))
	write("ogtransb1", rangeF(nband, 0.01, 0.0001))
	write("wvtransa", rangeF(nband, 0.01, 0.001))
	write("wvtransb", rangeF(nband, 0.5, 0.001))
	write("oztransa", rangeF(nband, 0.01, 0.0001))

	if withAzimuth {
		write("nbfic", rangeF(nband*npres*naot*nterms, 1.0, 0.01))
		write("nbfi", rangeF(nband*npres*naot, float64(nterms), 0))
		write("tsmax", rangeF(npres*naot, 170, -0.1))
		write("tsmin", rangeF(npres*naot, 10, 0.1))
		write("tts", solarZen)
		write("ttv", viewZen)
	}

	return path
}

// rangeF returns n values starting at start and stepping by step, a simple
// deterministic non-constant fixture series.
func rangeF(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestLoadNetCDFWithoutAzimuthTerms(t *testing.T) {
	path := buildLegacyFixture(t, 2, 2, 2, 3, false)
	store, err := LoadNetCDF(path)
	if err != nil {
		t.Fatalf("LoadNetCDF: %v", err)
	}
	if !store.HasLegacy() {
		t.Fatalf("expected a legacy table to be loaded")
	}
	lt := store.Legacy()
	if lt.Nbfi != nil || lt.Nbfic != nil {
		t.Fatalf("expected no azimuthal terms when the file carries none")
	}
	if lt.Tsmax != nil || lt.Tsmin != nil || lt.Tts != nil || lt.Ttv != nil {
		t.Fatalf("expected no tsmax/tsmin/tts/ttv when the file carries none")
	}

	_, _, _, xrorayp, err := lt.Legacy(0, 600, AotGrid[5], 10, 10, 30)
	if err != nil {
		t.Fatalf("Legacy: %v", err)
	}
	if xrorayp != 0 {
		t.Fatalf("expected xrorayp=0 with no azimuthal terms, got %v", xrorayp)
	}
}

func TestLoadNetCDFPopulatesAzimuthTerms(t *testing.T) {
	nband, npres, nang, nterms := 2, 2, 2, 3
	path := buildLegacyFixture(t, nband, npres, nang, nterms, true)
	store, err := LoadNetCDF(path)
	if err != nil {
		t.Fatalf("LoadNetCDF: %v", err)
	}
	lt := store.Legacy()

	if len(lt.Nbfi) != nband || len(lt.Nbfi[0]) != npres || len(lt.Nbfi[0][0]) != len(AotGrid) {
		t.Fatalf("Nbfi shape = [%d][%d][%d], want [%d][%d][%d]",
			len(lt.Nbfi), len(lt.Nbfi[0]), len(lt.Nbfi[0][0]), nband, npres, len(AotGrid))
	}
	if lt.Nbfi[0][0][0] != nterms {
		t.Fatalf("Nbfi[0][0][0] = %d, want %d", lt.Nbfi[0][0][0], nterms)
	}
	if len(lt.Nbfic[0][0][0]) != nterms {
		t.Fatalf("Nbfic term count = %d, want %d", len(lt.Nbfic[0][0][0]), nterms)
	}
	if len(lt.Tsmax) != npres || len(lt.Tsmax[0]) != len(AotGrid) {
		t.Fatalf("Tsmax shape = [%d][%d], want [%d][%d]", len(lt.Tsmax), len(lt.Tsmax[0]), npres, len(AotGrid))
	}
	if len(lt.Tts) != nang || len(lt.Ttv) != nang {
		t.Fatalf("Tts/Ttv lengths = %d/%d, want %d", len(lt.Tts), len(lt.Ttv), nang)
	}

	// With real (non-zero) Fourier coefficients populated, the azimuthal
	// reconstruction term is no longer the constant-0 fallback.
	_, _, _, xrorayp, err := lt.Legacy(0, 600, AotGrid[5], 20, 20, 30)
	if err != nil {
		t.Fatalf("Legacy: %v", err)
	}
	if xrorayp == 0 {
		t.Fatalf("expected a non-zero xrorayp once nbfic/nbfi/tsmax/tsmin/tts/ttv are populated")
	}
}

func TestLoadNetCDFMissingLegacyVariablesIsSemiEmpiricalOnly(t *testing.T) {
	// A file with only the semi-empirical variables (no "rolutt") loads
	// successfully with HasLegacy() == false, per LoadNetCDF's doc comment.
	nband := 2
	f, err := os.CreateTemp(t.TempDir(), "semiempirical-*.nc")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	path := f.Name()
	defer f.Close()

	h := cdf.NewHeader([]string{"band", "coef"}, []int{nband, NCoef})
	h.AddVariable("tgo", []string{"band"}, make([]float64, nband))
	h.AddVariable("normext_p0a3", []string{"band"}, make([]float64, nband))
	h.AddVariable("roatm_iamax", []string{"band"}, make([]float64, nband))
	h.AddVariable("roatm_coef", []string{"band", "coef"}, make([]float64, nband*NCoef))
	h.AddVariable("ttatmg_coef", []string{"band", "coef"}, make([]float64, nband*NCoef))
	h.AddVariable("satm_coef", []string{"band", "coef"}, make([]float64, nband*NCoef))
	h.Define()

	cf, err := cdf.Create(f, h)
	if err != nil {
		t.Fatalf("creating NetCDF file: %v", err)
	}
	for _, name := range []string{"tgo", "normext_p0a3", "roatm_iamax"} {
		if _, err := cf.Writer(name, nil, nil).Write(make([]float64, nband)); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	for _, name := range []string{"roatm_coef", "ttatmg_coef", "satm_coef"} {
		if _, err := cf.Writer(name, nil, nil).Write(make([]float64, nband*NCoef)); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}

	store, err := LoadNetCDF(path)
	if err != nil {
		t.Fatalf("LoadNetCDF: %v", err)
	}
	if store.HasLegacy() {
		t.Fatalf("expected HasLegacy() == false for a file with no rolutt variable")
	}
}
