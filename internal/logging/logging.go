package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFileName is the name of the rotating log file inside the log directory.
const LogFileName = "ecopack-forecast.log"

// Options controls where log output goes.
type Options struct {
	Verbose bool

	// Dir is the directory for the rotating log file. Empty disables the file sink.
	Dir string

	// Console receives human-readable output. Defaults to os.Stderr.
	Console io.Writer
}

// New builds a logger writing to the console and, when Dir is set, a rotating file.
// The returned closer releases the file sink.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	out := opts.Console
	noColor := true
	if out == nil {
		out = os.Stderr
		noColor = !(isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))
	}
	consoleWriter := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}

	if opts.Dir == "" {
		return zerolog.New(consoleWriter).Level(level).With().Timestamp().Logger(), io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("create log directory %q: %w", opts.Dir, err)
	}

	// MkdirAll succeeds on existing read-only directories.
	testFile := filepath.Join(opts.Dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("log directory %q is not writable: %w", opts.Dir, err)
	}
	_ = os.Remove(testFile)

	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, LogFileName),
		MaxSize:    16, // megabytes
		MaxBackups: 32,
		MaxAge:     365, // days
		Compress:   true,
	}

	multi := zerolog.MultiLevelWriter(io.Writer(consoleWriter), fileWriter)
	logger := zerolog.New(multi).Level(level).With().Timestamp().Logger()
	return logger, fileWriter, nil
}

// Init initializes the global logger with dual sinks: os.Stderr and a rotating file.
// It runs before config.Load, so it resolves LOGS_FOLDER on its own.
func Init(verbose bool) {
	exePath, err := os.Executable()
	if err == nil {
		_ = godotenv.Load(filepath.Join(filepath.Dir(exePath), ".env"))
	}

	logDir := os.Getenv("LOGS_FOLDER")
	if logDir == "" {
		switch {
		case os.Getenv("DATA_PATH") != "":
			logDir = filepath.Join(os.Getenv("DATA_PATH"), "logs")
		case err == nil:
			logDir = filepath.Join(filepath.Dir(exePath), "logs")
		default:
			logDir = "logs"
		}
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	logger, _, err := New(Options{Verbose: verbose, Dir: logDir})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.Logger = logger
}
