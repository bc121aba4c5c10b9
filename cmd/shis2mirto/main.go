package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/evas-ssec/shis2mirto/internal/config"
	"github.com/evas-ssec/shis2mirto/pkg/logger"
)

// commands lists the available subcommands.
// The order here is the order they appear in the help output.
var commands = []*Command{
	cmdCreateFov,
	cmdCreateFg,
	cmdVersion,
}

var (
	configPath  = flag.String("config", "", "path to TOML configuration file")
	showVersion = flag.Bool("version", false, "print version and exit")
	quiet       = flag.Bool("quiet", false, "log errors only")
	verbose     = flag.Bool("verbose", false, "log informational messages")
	debug       = flag.Bool("debug", false, "log debug messages")
)

// cfg and log are set once in main, before any command runs.
var (
	cfg *config.Config
	log *logger.Logger
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Printf("shis2mirto %s\n", Version)
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		usage()
	}

	if args[0] == "help" {
		help(args[1:])
		return
	}

	var err error
	cfg, err = config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "shis2mirto: failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "shis2mirto: invalid configuration: %v\n", err)
		os.Exit(1)
	}
	applyVerbosityFlags(cfg)

	log, err = logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "shis2mirto: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	atexit(func() { _ = log.Sync() })

	// Flush logs before dying on an interrupt.
	go func() {
		interrupted := make(chan os.Signal, 1)
		signal.Notify(interrupted, os.Interrupt)
		<-interrupted
		log.Warn("interrupted")
		setExitStatus(1)
		exit()
	}()

	for _, cmd := range commands {
		if cmd.Name() == args[0] && cmd.Run != nil {
			cmd.Flag.Usage = func() { cmd.Usage() }
			cmd.Flag.Parse(args[1:])
			cmd.Run(cmd, cmd.Flag.Args())
			exit()
			return
		}
	}

	fmt.Fprintf(os.Stderr, "shis2mirto: unknown subcommand %q\nRun 'shis2mirto help' for usage.\n", args[0])
	setExitStatus(2)
	exit()
}

// applyVerbosityFlags lets the command line override the configured log
// level. The most verbose flag given wins.
func applyVerbosityFlags(cfg *config.Config) {
	switch {
	case *debug:
		cfg.Logging.Level = "debug"
	case *verbose:
		cfg.Logging.Level = "info"
	case *quiet:
		cfg.Logging.Level = "error"
	}
}

// historyLine records how this product was made, for the history
// attribute of the output files.
func historyLine() string {
	return fmt.Sprintf("%s: %s", time.Now().UTC().Format(time.RFC3339), strings.Join(os.Args, " "))
}

var exitStatus = 0
var exitMu sync.Mutex

func setExitStatus(n int) {
	exitMu.Lock()
	if exitStatus < n {
		exitStatus = n
	}
	exitMu.Unlock()
}

var atexitFuncs []func()

func atexit(f func()) {
	atexitFuncs = append(atexitFuncs, f)
}

func exit() {
	for _, f := range atexitFuncs {
		f()
	}
	os.Exit(exitStatus)
}
