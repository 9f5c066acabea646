package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/jstrip/jstrip/internal/batch"
	"github.com/jstrip/jstrip/internal/config"
	"github.com/jstrip/jstrip/internal/inspect"
	"github.com/jstrip/jstrip/internal/scrub"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.SetFlags(0)
	log.SetOutput(os.Stderr)

	info, err := os.Stat(cfg.InputPath)
	if err != nil {
		log.Fatalf("Cannot access input: %v", err)
	}

	engine := scrub.NewEngine(cfg.MaxFileSize)

	if info.IsDir() {
		os.Exit(runDirectory(cfg, engine))
	}
	os.Exit(runSingleFile(cfg, engine))
}

// runSingleFile cleans one PDF into <stem>_nojs.pdf beside the input.
func runSingleFile(cfg *config.Config, engine *scrub.Engine) int {
	if !inspect.IsPDF(cfg.InputPath) {
		log.Printf("Input is not a PDF: %s", cfg.InputPath)
		return 1
	}

	out := batch.SingleFileOutput(cfg.InputPath)
	outcome, err := engine.CleanFile(cfg.InputPath, out)
	if err != nil {
		log.Printf("Failed to write %s: %v", out, err)
		return 1
	}

	fmt.Printf("%s -> %s [%s]\n", filepath.Base(cfg.InputPath), filepath.Base(out), outcome)
	return 0
}

// runDirectory mirrors the input tree into a sibling JStripped_ folder,
// streaming per-file status while the runner works.
func runDirectory(cfg *config.Config, engine *scrub.Engine) int {
	srcRoot := cfg.InputPath
	outRoot := batch.OutputRoot(srcRoot)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A signal cancels the run between files; the runner still emits its
	// final summary for the work done so far.
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-signalCh
		log.Printf("Received signal: %s, stopping after the current file", sig)
		cancel()
	}()

	runner := batch.NewRunner(engine, inspect.NewScanner(cfg.MaxFileSize), !cfg.SkipNonPDF)
	events, err := runner.Run(ctx, srcRoot, outRoot)
	if err != nil {
		log.Printf("Failed to start: %v", err)
		return 1
	}

	var summary *batch.Summary
	for ev := range events {
		switch ev.Kind {
		case batch.EventMeta:
			fmt.Printf("Mirroring %s -> %s (%d PDFs, %d other files)\n",
				srcRoot, outRoot, ev.PDFs, ev.NonPDFs)
		case batch.EventLog:
			if cfg.Verbose {
				fmt.Println(ev.Message)
			}
		case batch.EventProgress:
			// Per-file log lines already show activity in verbose mode.
		case batch.EventDone:
			summary = ev.Summary
		}
	}

	if summary == nil {
		log.Printf("Run produced no summary")
		return 1
	}

	fmt.Println()
	fmt.Print(summary.String())
	if summary.Cancelled {
		fmt.Println("Run was cancelled before finishing.")
		return 1
	}
	return 0
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("jstrip\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
