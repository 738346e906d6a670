// Package lasrclog configures the structured logger used by the
// demonstration CLI. The core packages (lut, atmcorr, aerosol, satellite)
// take no logger and never log; per-pixel diagnostics come from the CLI.
package lasrclog

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// New configures a *logrus.Logger the way the teacher's web/service
// entry points do (cmd/inmapweb, emissions/slca servers): RFC3339Nano
// timestamps, and either JSON or colorized text output depending on json.
func New(json bool, debug bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if json {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
			DisableSorting:  true,
		})
	}
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger
}

// PixelEntry returns a log entry pre-tagged with the pixel's position, for
// the rare diagnostic messages the CLI emits about a single pixel (e.g. a
// legacy LutRangeError returned by the retriever).
func PixelEntry(logger *logrus.Logger, row, col int) *logrus.Entry {
	return logger.WithFields(logrus.Fields{"row": row, "col": col})
}
