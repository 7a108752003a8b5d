package logger

import (
	"io"
	"log"
	"os"
)

var (
	Debug   *log.Logger
	Info    *log.Logger
	Warning *log.Logger
	Error   *log.Logger
	HTTP    *log.Logger
)

// Setup initializes the leveled loggers. Debug output is discarded unless
// APP_DEBUG is set.
func Setup() {
	flags := log.Ldate | log.Ltime | log.Lshortfile

	debugOut := io.Discard
	if os.Getenv("APP_DEBUG") != "" {
		debugOut = os.Stdout
	}

	Debug = log.New(debugOut, "[DEBUG] ", flags)
	Info = log.New(os.Stdout, "[INFO] ", flags)
	Warning = log.New(os.Stdout, "[WARN] ", flags)
	Error = log.New(os.Stderr, "[ERROR] ", flags)
	HTTP = log.New(os.Stdout, "[HTTP] ", log.Ldate|log.Ltime)
}
