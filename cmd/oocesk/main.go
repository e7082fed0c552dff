package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"avenir/internal/ast"
	"avenir/internal/config"
	"avenir/internal/loader"
	"avenir/internal/report"
	"avenir/internal/runtime"
	"avenir/internal/trace"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch cmd := os.Args[1]; cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "help", "-h", "--help":
		usage()
	case "version", "-v", "--version":
		fmt.Println("oocesk", version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`oocesk: an object-oriented CESK abstract machine

Usage:
  oocesk run [flags] <file.ooc> [<file.ooc> ...]
  oocesk help
  oocesk version

Flags (run):
  -v, -verbose        stack-trace-style error detail on failure
  -color              auto|always|never (default auto)
  -trace              none|sqlite|postgres (default none)
  -trace-dsn          data source name for the trace backend
  -config             path to an oocesk.toml configuration file
  -main               override the default main-class selection rule`)
}

func cmdRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var verbose bool
	var colorFlag string
	var traceFlag string
	var traceDSN string
	var configPath string
	var mainOverride string

	fs.BoolVar(&verbose, "v", false, "verbose error detail")
	fs.BoolVar(&verbose, "verbose", false, "verbose error detail")
	fs.StringVar(&colorFlag, "color", "auto", "auto|always|never")
	fs.StringVar(&traceFlag, "trace", "none", "none|sqlite|postgres")
	fs.StringVar(&traceDSN, "trace-dsn", "", "trace backend data source name")
	fs.StringVar(&configPath, "config", "", "path to an oocesk.toml file")
	fs.StringVar(&mainOverride, "main", "", "override main-class selection")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	explicit := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return 1
		}
		// Flags override file values: only adopt a config field when the
		// corresponding flag was left at its default.
		if !explicit["v"] && !explicit["verbose"] && cfg.Verbose {
			verbose = true
		}
		if !explicit["color"] && cfg.Color != "" {
			colorFlag = cfg.Color
		}
		if !explicit["trace"] && cfg.Trace != "" {
			traceFlag = cfg.Trace
		}
		if !explicit["trace-dsn"] && cfg.TraceDSN != "" {
			traceDSN = cfg.TraceDSN
		}
		if !explicit["main"] && cfg.Main != "" {
			mainOverride = cfg.Main
		}
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "error: run: missing input file(s)")
		return 1
	}

	colorMode, err := report.ParseColorMode(colorFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	logger := report.NewLogger(os.Stderr, os.Stderr.Fd(), colorMode)

	backend, err := trace.ParseBackend(traceFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	started := time.Now()

	prog, errs := loader.Load(fs.Args())
	if len(errs) > 0 {
		for _, e := range errs {
			if verbose {
				logger.Error(time.Now(), "%+v", e)
			} else {
				fmt.Fprintln(os.Stderr, "error:", e)
			}
		}
		return 1
	}

	mainClass, err := prog.FindMain(mainOverride)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	if verbose {
		logger.Line(time.Now(), "registered classes: %s", strings.Join(prog.Registry.ClassNames(), ", "))
		for _, name := range prog.Registry.ClassNames() {
			class, _ := prog.Registry.Class(name)
			logger.Line(time.Now(), "%s", ast.DumpClass(class))
		}
	}

	ctx := runtime.NewContext(prog.Registry, os.Stdout)

	if backend != trace.None {
		j, err := trace.Open(backend, traceDSN)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return 1
		}
		defer j.Close()
		ctx.Trace = j
		logger.Line(time.Now(), "trace run %s", j.RunID())
	}

	initial, err := runtime.NewMainState(ctx, mainClass)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	outcome, err := runtime.Run(ctx, initial)
	if err != nil {
		if verbose {
			logger.Error(time.Now(), "%+v", err)
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		return 1
	}

	if verbose {
		logger.Summary(time.Now(), outcome.Steps, started)
		logger.Line(time.Now(), "digest %s", outcome.Digest)
	}

	if !outcome.Halted {
		fmt.Fprintf(os.Stderr, "uncaught exception: %s\n", outcome.Uncaught)
		return 2
	}

	return 0
}
