package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

// Init configures the global zerolog logger. Console output with level
// markers when attached to a terminal, plain fields otherwise.
func Init(env string) {
	useColor := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	paint := func(color, s string) string {
		if !useColor {
			return s
		}
		return color + s + colorReset
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    !useColor,
		FormatLevel: func(i interface{}) string {
			switch strings.ToUpper(fmt.Sprintf("%s", i)) {
			case "DEBUG":
				return paint(colorCyan, "DBG")
			case "INFO":
				return paint(colorBlue, "INF")
			case "WARN":
				return paint(colorYellow, "WRN")
			case "ERROR", "FATAL":
				return paint(colorRed, "ERR")
			default:
				return fmt.Sprintf("%s", i)
			}
		},
		FormatFieldName: func(i interface{}) string {
			return paint(colorCyan, fmt.Sprintf("%s=", i))
		},
	}

	log.Logger = zerolog.New(output).
		With().
		Timestamp().
		Str("env", env).
		Logger()

	switch env {
	case "dev", "development", "local":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
