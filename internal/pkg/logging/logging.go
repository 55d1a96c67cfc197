package logging

import (
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"serv00_keepalive/internal/pkg/errors"
)

// Setup configures the logger for console output plus an optional append-only
// log file. Verbose switches the level to debug.
func Setup(logger *log.Logger, logFile string, verbose bool) (func(), error) {
	logger.SetFormatter(&log.TextFormatter{
		TimestampFormat: time.RFC3339,
		FullTimestamp:   true,
	})

	logger.SetLevel(log.InfoLevel)
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	if logFile == "" {
		logger.SetOutput(os.Stdout)
		return func() {}, nil
	}

	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, `failed to open log file`)
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, f))
	return func() { f.Close() }, nil
}

const (
	colorGreen  = "\033[92m"
	colorYellow = "\033[93m"
	colorRed    = "\033[91m"
	colorReset  = "\033[0m"
)

// Success prefixes msg with a green check mark.
func Success(msg string) string {
	return colorGreen + "✓" + colorReset + " " + msg
}

// Warning prefixes msg with a yellow warning sign.
func Warning(msg string) string {
	return colorYellow + "⚠" + colorReset + " " + msg
}

// Failure prefixes msg with a red cross.
func Failure(msg string) string {
	return colorRed + "✗" + colorReset + " " + msg
}
