// Package satellite resolves satellite-specific band ranges and the
// per-band minimum-reflectance threshold tables ("tth") that the aerosol
// retriever uses to terminate AOT expansion early.
package satellite

import "fmt"

// Kind is a tagged variant identifying the sensor a pixel came from. It
// determines band count, band index semantics, and which tth table applies.
type Kind int

const (
	Landsat8 Kind = iota
	Landsat9
	Sentinel2
)

func (k Kind) String() string {
	switch k {
	case Landsat8:
		return "landsat8"
	case Landsat9:
		return "landsat9"
	case Sentinel2:
		return "sentinel2"
	default:
		return fmt.Sprintf("satellite.Kind(%d)", int(k))
	}
}

// Config is the pure, read-only result of resolving a Kind (and a few
// retrieval-wide flags) into the band range and tth table the retriever
// sweeps over for one pixel.
type Config struct {
	Kind Kind

	// StartBand and EndBand bound the inclusive band range swept by the
	// aerosol retriever (spec §4.4).
	StartBand, EndBand int

	// TTHLand and TTHWater are the per-band minimum surface reflectance
	// thresholds, selected by the pixel's water flag.
	TTHLand, TTHWater []float64
}

// TTH returns the threshold table applicable to water, given the pixel's
// water flag.
func (c Config) TTH(water bool) []float64 {
	if water {
		return c.TTHWater
	}
	return c.TTHLand
}

var (
	landsatTTHLand  = []float64{1e-3, 1e-3, 0, 1e-3, 0, 0, 1e-4, 0}
	landsatTTHWater = []float64{1e-3, 1e-3, 0, 1e-3, 1e-3, 0, 1e-4, 0}

	sentinel2DefaultTTHLand  = []float64{1e-3, 1e-3, 0, 1e-3, 0, 0, 0, 0, 0, 0, 1e-4}
	sentinel2DefaultTTHWater = []float64{1e-3, 0, 0, 1e-3, 0, 0, 0, 0, 1e-3, 0, 1e-4}

	sentinel2AllTTHLand  = []float64{1e-3, 1e-3, 0, 1e-3, 0, 0, 0, 0, 0, 0, 0, 0, 1e-4}
	sentinel2AllTTHWater = []float64{1e-3, 0, 0, 1e-3, 0, 0, 0, 0, 1e-3, 0, 0, 0, 1e-4}

	// sentinel2AllTTHWaterAlternate is the corrected Sentinel-2 "all bands"
	// water table exposed behind useAlternateSentinelWaterTTH. The shipped
	// table above (sentinel2AllTTHWater) carries a source comment doubting
	// its own correctness ("I think that's a bug") with no replacement
	// values given; see DESIGN.md "Open Question decisions" for why this
	// package mirrors the land table here rather than inventing numbers the
	// source never stated. Off by default: the shipped table remains the
	// default for both band-count variants.
	sentinel2AllTTHWaterAlternate     = append([]float64(nil), sentinel2AllTTHLand...)
	sentinel2DefaultTTHWaterAlternate = append([]float64(nil), sentinel2DefaultTTHLand...)
)

// NewConfig resolves a satellite kind and the retrieval-wide flags into a
// Config. water selects the tth table; processAllSentinelBands includes
// Sentinel-2 bands 9 and 10 (ignored for Landsat); useAlternateSentinelWaterTTH
// substitutes the documented-uncertain Sentinel-2 water tth table (spec §9,
// §4.4 Open Question) with the alternate described above.
func NewConfig(kind Kind, water bool, processAllSentinelBands bool, useAlternateSentinelWaterTTH bool) Config {
	switch kind {
	case Landsat8, Landsat9:
		return Config{
			Kind:      kind,
			StartBand: 0, EndBand: 6,
			TTHLand:  landsatTTHLand,
			TTHWater: landsatTTHWater,
		}
	case Sentinel2:
		if processAllSentinelBands {
			waterTTH := sentinel2AllTTHWater
			if useAlternateSentinelWaterTTH {
				waterTTH = sentinel2AllTTHWaterAlternate
			}
			return Config{
				Kind:      kind,
				StartBand: 0, EndBand: 12,
				TTHLand:  sentinel2AllTTHLand,
				TTHWater: waterTTH,
			}
		}
		waterTTH := sentinel2DefaultTTHWater
		if useAlternateSentinelWaterTTH {
			waterTTH = sentinel2DefaultTTHWaterAlternate
		}
		return Config{
			Kind:      kind,
			StartBand: 0, EndBand: 10,
			TTHLand:  sentinel2DefaultTTHLand,
			TTHWater: waterTTH,
		}
	default:
		panic(fmt.Sprintf("satellite: unknown kind %v", kind))
	}
}
