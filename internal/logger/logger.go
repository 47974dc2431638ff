package logger

import (
	"io"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
)

// Setup installs the global apex/log handler. format is "text" or "json";
// an unknown level falls back to info.
func Setup(level, format string, debug bool) {
	SetupWriter(os.Stderr, level, format, debug)
}

// SetupWriter is Setup with an explicit destination
func SetupWriter(w io.Writer, level, format string, debug bool) {
	switch strings.ToLower(format) {
	case "json":
		log.SetHandler(json.New(w))
	default:
		log.SetHandler(text.New(w))
	}

	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = log.InfoLevel
	}
	if debug {
		lvl = log.DebugLevel
	}
	log.SetLevel(lvl)
}
