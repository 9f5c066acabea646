package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/jstrip/jstrip/internal/config"
	"github.com/jstrip/jstrip/internal/mcp"
	"github.com/jstrip/jstrip/internal/scrub"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging routes the standard logger so it can never corrupt the MCP
// transport: stdout belongs to the protocol in stdio mode, so logs go to
// stderr when debugging and are discarded otherwise. Server mode keeps
// stdout and turns on timestamps plus call sites.
func setupLogging(cfg *config.Config) {
	if cfg.IsStdioMode() {
		if cfg.IsDebug() {
			log.SetOutput(os.Stderr)
		} else {
			log.SetOutput(io.Discard)
		}
		return
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

// runServerMode runs the server until it exits on its own or a shutdown
// signal arrives, whichever comes first.
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.Printf("Received signal: %s, shutting down", sig)
		cancel()
		if err := <-serverErrCh; err != nil {
			log.Printf("Server shutdown with error: %v", err)
			os.Exit(1)
		}
	case err := <-serverErrCh:
		if err != nil {
			log.Printf("Server error: %v", err)
			os.Exit(1)
		}
	}

	log.Println("Server stopped")
}

// runStdioMode lets the parent process own the lifecycle: the server runs
// until stdin closes or fails. Errors surface only under DEBUG so stderr
// noise never confuses a strict MCP client.
func runStdioMode(ctx context.Context, server *mcp.Server) {
	if err := server.Run(ctx); err != nil {
		if os.Getenv("DEBUG") != "" {
			log.Printf("Server error: %v", err)
		}
		os.Exit(1)
	}
}

func main() {
	// Version flags bypass the full flag parse.
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadServerFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() && cfg.IsServerMode() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	engine := scrub.NewEngine(cfg.MaxFileSize)

	server, err := mcp.NewServer(cfg, engine)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsServerMode() {
		runServerMode(ctx, cancel, server)
	} else {
		runStdioMode(ctx, server)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("jstrip MCP server\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
