// internal/cmdutil/log.go
package cmdutil

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Log formats accepted by NewLogger.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// NewLogger builds the process logger on dst. quiet keeps warnings and
// errors only; verbose adds per-partition debug lines. quiet wins.
func NewLogger(dst io.Writer, format string, quiet, verbose bool) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetOutput(dst)
	switch format {
	case LogFormatText, "":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	case LogFormatJSON:
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, errors.Errorf("invalid --log-format %q", format)
	}
	switch {
	case quiet:
		l.SetLevel(logrus.WarnLevel)
	case verbose:
		l.SetLevel(logrus.DebugLevel)
	default:
		l.SetLevel(logrus.InfoLevel)
	}
	return l, nil
}
