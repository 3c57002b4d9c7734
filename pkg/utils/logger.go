package utils

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger for debug messages
var (
	isVerbose = false
	logFile   *os.File
	logger    = zerolog.Nop()
)

// Log writes a debug line to the log file if verbose mode is enabled
func Log(text string, args ...interface{}) {
	if isVerbose {
		logger.Debug().Msgf(text, args...)
	}
}

// Logger returns the structured logger; a no-op logger unless verbose mode is on
func Logger() zerolog.Logger {
	return logger
}

// InitLogger initializes the logging system. The TUI owns the terminal, so
// verbose output goes to a dated file under /tmp.
func InitLogger(verbose bool) {
	isVerbose = verbose
	if !verbose {
		logger = zerolog.Nop()
		return
	}

	logFileName := fmt.Sprintf("/tmp/qnotes_%s.log", time.Now().Format("2006-01-02"))

	var err error
	logFile, err = os.OpenFile(logFileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Printf("Error creating log file: %v\n", err)
		isVerbose = false
		return
	}

	SetOutput(logFile)
	Log("Verbose logging enabled")
}

// SetOutput points the logger at w with debug level enabled
func SetOutput(w io.Writer) {
	isVerbose = true
	logger = zerolog.New(w).With().Timestamp().Logger().Level(zerolog.DebugLevel)
}

// CloseLogger closes the log file if it's open
func CloseLogger() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}
