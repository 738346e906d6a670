package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/developmentseed/espa-surface-reflectance/aerosol"
	"github.com/developmentseed/espa-surface-reflectance/internal/lasrclog"
	"github.com/developmentseed/espa-surface-reflectance/lut"
	"github.com/developmentseed/espa-surface-reflectance/satellite"
)

// pixelRecord is the JSON wire shape of one pixel in an input batch,
// mirroring aerosol.PixelInputs with exported-and-tagged fields and a
// plain int in place of lut.BandIndex so the wire format carries none of
// the core's numeric types (runBatch converts it). Row/Col are the pixel's position in the
// scene, used only for diagnostic logging when a pixel fails.
type pixelRecord struct {
	Row              int       `json:"row"`
	Col              int       `json:"col"`
	Troatm           []float64 `json:"troatm"`
	Erelc            []float64 `json:"erelc"`
	Iband1           int       `json:"iband1"`
	Water            bool      `json:"water"`
	Eps              float64   `json:"eps"`
	PressureHPa      float64   `json:"pressure_hpa"`
	SolarZenDeg      float64   `json:"solar_zen_deg"`
	ViewZenDeg       float64   `json:"view_zen_deg"`
	RelAzDeg         float64   `json:"rel_az_deg"`
	ColumnOzone      float64   `json:"column_ozone"`
	ColumnWaterVapor float64   `json:"column_water_vapor"`
	Airmass          float64   `json:"airmass"`
	Iaots            int       `json:"iaots"`
}

// resultRecord is the JSON wire shape of one pixel's retrieval result.
type resultRecord struct {
	Raot     float64 `json:"raot"`
	Residual float64 `json:"residual"`
	Iaots    int      `json:"iaots"`
	Error    string   `json:"error,omitempty"`
}

func readBatch(path string) ([]pixelRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lasrc: opening input batch %s: %w", path, err)
	}
	defer f.Close()

	var batch []pixelRecord
	if err := json.NewDecoder(f).Decode(&batch); err != nil {
		return nil, fmt.Errorf("lasrc: decoding input batch %s: %w", path, err)
	}
	return batch, nil
}

func writeResults(path string, results []resultRecord) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("lasrc: creating output file %s: %w", path, err)
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("lasrc: writing results: %w", err)
	}
	return nil
}

// runBatch retrieves AOT for every pixel in batch, tiling the work across
// runtime.GOMAXPROCS(0) goroutines fed by a job channel, matching the
// teacher's job-channel-plus-worker-pool pattern (sr/sr.go's numGetters
// loop). Each pixel is independent (spec §5 "data-parallel"); only the
// per-pixel call is sequential. A legacy LutRangeError for one pixel does
// not abort the batch — it is recorded on that pixel's result record.
func runBatch(ctx context.Context, logger *logrus.Logger, batch []pixelRecord, satKind satellite.Kind, store *lut.Store, useSemiEmpirical, processAllSentinelBands, useAlternateSentinelWaterTTH bool) []resultRecord {
	results := make([]resultRecord, len(batch))

	jobs := make(chan int, len(batch))
	for i := range batch {
		jobs <- i
	}
	close(jobs)

	workers := runtime.GOMAXPROCS(0)
	if workers > len(batch) {
		workers = len(batch)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					results[i] = resultRecord{Error: err.Error()}
					continue
				}
				rec := batch[i]
				cfg := satellite.NewConfig(satKind, rec.Water, processAllSentinelBands, useAlternateSentinelWaterTTH)
				in := aerosol.PixelInputs{
					Troatm:           rec.Troatm,
					Erelc:            rec.Erelc,
					Iband1:           lut.BandIndex(rec.Iband1),
					Water:            rec.Water,
					Eps:              rec.Eps,
					Satellite:        satKind,
					PressureHPa:      rec.PressureHPa,
					SolarZenDeg:      rec.SolarZenDeg,
					ViewZenDeg:       rec.ViewZenDeg,
					RelAzDeg:         rec.RelAzDeg,
					ColumnOzone:      rec.ColumnOzone,
					ColumnWaterVapor: rec.ColumnWaterVapor,
					Airmass:          rec.Airmass,
				}
				res, err := aerosol.Retrieve(ctx, in, cfg, store, useSemiEmpirical, rec.Iaots)
				if err != nil {
					lasrclog.PixelEntry(logger, rec.Row, rec.Col).WithError(err).Warn("pixel retrieval failed")
					results[i] = resultRecord{Error: err.Error()}
					continue
				}
				results[i] = resultRecord{Raot: res.Raot, Residual: res.Residual, Iaots: res.Iaots}
			}
		}()
	}
	wg.Wait()

	return results
}
