// Package config binds the demonstration CLI's configuration options
// (spec §6 "Configuration options") to command-line flags and an optional
// TOML file, following the teacher's inmaputil.InitializeConfig pattern: a
// Cfg wrapping a *viper.Viper with a table of registered options, each
// bound to a pflag and overridable by a TOML config file or an environment
// variable.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/lnashier/viper"
	"github.com/spf13/pflag"
)

// option describes one configuration knob: its flag name, default value,
// and help text. Mirrors the teacher's unexported `options` table in
// inmaputil/cmd.go, trimmed to this repository's much smaller surface.
type option struct {
	name, usage string
	defaultVal  interface{}
}

var options = []option{
	{"satellite", "satellite the pixel batch came from: landsat8, landsat9, or sentinel2", "landsat8"},
	{"process_all_sentinel_bands", "include Sentinel-2 bands 9 and 10 in the retrieval range (spec §4.4/§6)", false},
	{"use_semi_empirical_kernel", "use the semi-empirical polynomial kernel instead of the legacy LUT-interpolation kernel (spec §4.2/§6)", true},
	{"use_alternate_sentinel2_water_tth", "substitute the alternate Sentinel-2 water tth table for the shipped one flagged as a possible bug (spec §9)", false},
	{"lut", "path to a NetCDF-formatted LUT/coefficient file (lut.LoadNetCDF)", ""},
	{"in", "path to a JSON array of PixelInputs to retrieve", ""},
	{"out", "path to write the JSON array of RetrievalResult (default: stdout)", ""},
	{"json-logs", "emit structured JSON logs instead of colorized text", false},
	{"debug", "enable debug-level logging", false},
}

// Cfg holds the bound configuration for one CLI invocation.
type Cfg struct {
	*viper.Viper
}

// New registers every option in the table as a flag on flags, binds it into
// a fresh viper.Viper under the LASRC_ environment prefix, and returns the
// resulting Cfg. Call Load after flags.Parse to apply an optional TOML
// config file on top of the flag defaults.
func New(flags *pflag.FlagSet) *Cfg {
	cfg := &Cfg{Viper: viper.New()}
	cfg.SetEnvPrefix("LASRC")
	cfg.AutomaticEnv()

	for _, o := range options {
		switch d := o.defaultVal.(type) {
		case bool:
			flags.Bool(o.name, d, o.usage)
		case string:
			flags.String(o.name, d, o.usage)
		default:
			panic(fmt.Sprintf("config: unsupported default type for %q: %T", o.name, d))
		}
		cfg.BindPFlag(o.name, flags.Lookup(o.name))
	}
	return cfg
}

// Load reads an optional TOML configuration file (via "--config") and
// merges it under the flag-bound values, using BurntSushi/toml directly
// rather than viper's built-in decoder so this package's one file-format
// dependency stays the one the teacher already carries in go.mod.
func (cfg *Cfg) Load(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: opening %s: %w", path, err)
	}
	defer f.Close()

	var raw map[string]interface{}
	if _, err := toml.DecodeReader(f, &raw); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.MergeConfigMap(raw); err != nil {
		return fmt.Errorf("config: merging %s: %w", path, err)
	}
	return nil
}

// Options bakes the bound configuration into a plain struct for the core
// packages and the CLI to consume, rather than threading a *viper.Viper
// through them.
type Options struct {
	Satellite                     string
	ProcessAllSentinelBands       bool
	UseSemiEmpiricalKernel        bool
	UseAlternateSentinel2WaterTTH bool
	LUTPath                       string
	InputPath                     string
	OutputPath                    string
	JSONLogs                      bool
	Debug                         bool
}

// Resolve reads every registered option out of the bound viper.Viper.
func (cfg *Cfg) Resolve() Options {
	return Options{
		Satellite:                     cfg.GetString("satellite"),
		ProcessAllSentinelBands:       cfg.GetBool("process_all_sentinel_bands"),
		UseSemiEmpiricalKernel:        cfg.GetBool("use_semi_empirical_kernel"),
		UseAlternateSentinel2WaterTTH: cfg.GetBool("use_alternate_sentinel2_water_tth"),
		LUTPath:                       cfg.GetString("lut"),
		InputPath:                     cfg.GetString("in"),
		OutputPath:                    cfg.GetString("out"),
		JSONLogs:                      cfg.GetBool("json-logs"),
		Debug:                         cfg.GetBool("debug"),
	}
}
