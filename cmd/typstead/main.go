// Package main is the entry point for the typstead world-inspection tool.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/dshills/typstead/internal/fonts"
	"github.com/dshills/typstead/internal/pkgcache"
	"github.com/dshills/typstead/internal/workspace"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	switch opts.Command {
	case "scan":
		return runScan(opts, logger)
	case "fonts":
		return runFonts(logger)
	case "resolve":
		return runResolve(opts, logger)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", opts.Command)
		flag.Usage()
		return 2
	}
}

// runScan discovers every project under the start directory and prints its
// compilation targets.
func runScan(opts options, logger *slog.Logger) int {
	registry := workspace.NewRegistry(workspace.WithLogger(logger))

	created := registry.DiscoverTree(opts.Dir)
	if created == 0 {
		fmt.Fprintf(os.Stderr, "no compilation targets found under %s\n", opts.Dir)
		return 1
	}

	fmt.Printf("%d compilation target(s)\n", created)
	return 0
}

// runFonts builds the font catalog and prints the ordered font book.
func runFonts(logger *slog.Logger) int {
	catalog := fonts.NewCatalog(fonts.WithLogger(logger))

	book := catalog.Book()
	for i := 0; i < book.Len(); i++ {
		info, _ := book.Info(i)
		fmt.Printf("%4d  %-40s %-8s %d\n", i, info.Family, info.Style, info.Weight)
	}
	fmt.Printf("%d face(s)\n", book.Len())
	return 0
}

// runResolve fetches a package into the local cache and prints its
// directory.
func runResolve(opts options, logger *slog.Logger) int {
	ref, err := pkgcache.ParseSpec(opts.Spec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	cache := pkgcache.New(pkgcache.WithLogger(logger))
	dir, err := cache.Resolve(ref)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Println(dir)
	return 0
}

type options struct {
	Command string
	Dir     string
	Spec    string
	Debug   bool
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.BoolVar(&opts.Debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&opts.Debug, "d", false, "Enable debug logging (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "typstead - Typst compilation-world inspection tool\n\n")
		fmt.Fprintf(os.Stderr, "Usage: typstead [options] <command> [args]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  scan [dir]        Discover compilation targets under a directory\n")
		fmt.Fprintf(os.Stderr, "  fonts             Print the font book (embedded + system faces)\n")
		fmt.Fprintf(os.Stderr, "  resolve <spec>    Fetch a package (e.g. @preview/example:0.1.0)\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("typstead %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	opts.Command = flag.Arg(0)
	switch opts.Command {
	case "scan":
		opts.Dir = flag.Arg(1)
		if opts.Dir == "" {
			opts.Dir = "."
		}
	case "resolve":
		opts.Spec = flag.Arg(1)
		if opts.Spec == "" {
			fmt.Fprintln(os.Stderr, "Error: resolve requires a package spec")
			os.Exit(2)
		}
	}

	return opts
}
