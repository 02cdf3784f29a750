// pattern: Imperative Shell
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	flag "github.com/spf13/pflag"

	"projmux/internal/config"
	"projmux/internal/discovery"
	"projmux/internal/label"
	"projmux/internal/launcher"
	"projmux/internal/lock"
	"projmux/internal/logging"
	"projmux/internal/picker"
	"projmux/internal/tmux"
)

var version = "dev"

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	configDir string
	depth     int
	width     int
	socket    string
	theme     string
	logLevel  string
	verbose   bool
	list      bool
	query     string
	version   bool
}

func newFlagSet(opts *options, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("projmux", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVarP(&opts.configDir, "config-dir", "c", "", "config directory (default: ~/.config/projmux)")
	fs.IntVar(&opts.depth, "depth", 0, "maximum scan depth below the root")
	fs.IntVar(&opts.width, "width", 0, "session label width")
	fs.StringVar(&opts.socket, "socket", "", "tmux server socket path")
	fs.StringVar(&opts.theme, "theme", "", "picker theme: latte, frappe, macchiato or mocha")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "also log to stderr")
	fs.BoolVarP(&opts.list, "list", "l", false, "print the selectable lines and exit")
	fs.StringVarP(&opts.query, "query", "q", "", "initial picker query")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "Usage: projmux [flags] <root>\n\n")
		_, _ = fmt.Fprintf(stderr, "Scan <root> for git projects, pick one or a live tmux session, and switch to it.\n\n")
		fs.PrintDefaults()
	}
	return fs
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var opts options
	fs := newFlagSet(&opts, stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if opts.version {
		_, _ = fmt.Fprintf(stdout, "projmux %s\n", version)
		return exitOK
	}

	if fs.NArg() != 1 {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n\n", launcher.UsageError("expected exactly one root directory, got %d", fs.NArg()))
		fs.Usage()
		return exitUsage
	}

	cfg, err := loadConfig(opts.configDir)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Warning: failed to load config: %v\n", err)
	}
	applyFlags(&cfg, fs, opts)

	if err := cfg.Validate(); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: invalid configuration: %v\n", err)
		return exitUsage
	}

	root, err := config.ExpandHome(fs.Arg(0))
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	dataDir := config.ResolveDataDir(opts.configDir)
	logManager, err := logging.NewManager(logging.Config{
		FilePath:   filepath.Join(dataDir, "projmux.log"),
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Level:      cfg.LogLevel,
		Verbose:    opts.verbose,
		Console:    stderr,
	})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Failed to initialize logging: %v\n", err)
		return exitError
	}
	defer func() { _ = logManager.Close() }()

	appLogger := logManager.For("app")
	appLogger.Info("projmux starting", "version", version, "root", root, "list", opts.list)

	l, err := buildLauncher(cfg, opts, dataDir, logManager)
	if err != nil {
		appLogger.Error("setup failed", "error", err)
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	if opts.list {
		err = l.List(ctx, root, stdout)
	} else {
		err = l.Run(ctx, root)
	}
	return exitCode(err, appLogger, stderr)
}

// loadConfig loads the configuration from the specified directory or default location.
func loadConfig(configDir string) (config.Config, error) {
	if configDir != "" {
		return config.LoadFromDir(configDir)
	}
	return config.Load()
}

// applyFlags lets explicitly set flags override the config file.
func applyFlags(cfg *config.Config, fs *flag.FlagSet, opts options) {
	if fs.Changed("depth") {
		cfg.Scan.MaxDepth = opts.depth
	}
	if fs.Changed("width") {
		cfg.LabelWidth = opts.width
	}
	if fs.Changed("socket") {
		cfg.Tmux.Socket = opts.socket
	}
	if fs.Changed("theme") {
		cfg.Theme = opts.theme
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
}

func buildLauncher(cfg config.Config, opts options, dataDir string, logs *logging.Manager) (*launcher.Launcher, error) {
	tmuxPath, err := cfg.DetectedTmux()
	if err != nil {
		return nil, err
	}
	tmuxCfg := cfg.Tmux
	tmuxCfg.Binary = tmuxPath

	compressor, err := label.NewCompressor(cfg.LabelWidth)
	if err != nil {
		return nil, err
	}

	scanner := discovery.NewScanner(
		discovery.WithMaxDepth(cfg.Scan.MaxDepth),
		discovery.WithMarker(cfg.Scan.Marker),
		discovery.WithLogger(logs.For("discovery")),
	)
	sessions := tmux.NewClient(tmuxCfg, logs.For("tmux"))
	pick := picker.New(cfg.Theme,
		picker.WithQuery(opts.query),
		picker.WithLogger(logs.For("picker")),
	)

	return launcher.New(scanner, sessions, consoleHoldingPicker{picker: pick, console: logs}, compressor,
		launcher.WithLocker(lock.New(dataDir, lock.DefaultTimeout)),
		launcher.WithLogger(logs.For("launcher")),
	), nil
}

// consoleHolder pauses verbose console logging.
type consoleHolder interface {
	HoldConsole() func()
}

// consoleHoldingPicker keeps verbose log lines out of the picker's screen;
// they are printed once the picker exits.
type consoleHoldingPicker struct {
	picker  launcher.Picker
	console consoleHolder
}

func (p consoleHoldingPicker) Pick(ctx context.Context, candidates []string) ([]string, error) {
	release := p.console.HoldConsole()
	defer release()
	return p.picker.Pick(ctx, candidates)
}

// exitCode reports err and maps it to the process exit status.
func exitCode(err error, logger *logging.ScopedLogger, stderr io.Writer) int {
	if err == nil {
		logger.Info("projmux finished")
		return exitOK
	}
	if errors.Is(err, launcher.ErrAborted) {
		return exitOK
	}

	logger.Error("projmux failed", "error", err)
	_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	if kind, ok := launcher.KindOf(err); ok && kind == launcher.KindUsage {
		return exitUsage
	}
	return exitError
}
