// Package main is the RuleBot CLI entry point.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/rulebot/internal/cli"
	"github.com/hyperjump/rulebot/internal/config"
	"github.com/hyperjump/rulebot/internal/match"
	"github.com/hyperjump/rulebot/internal/server"
	"github.com/hyperjump/rulebot/internal/storage"
	"github.com/hyperjump/rulebot/internal/watcher"
	"github.com/hyperjump/rulebot/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/rulebot/config.yaml"

// loadConfig loads config from path. When path is the default, it first
// looks for config.yaml in the current directory (for development); if
// that exists it is used. Returns the config and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// debugEnabled resolves the debug toggle once at startup: config value,
// --debug flag, or the RULEBOT_DEBUG=1 environment variable.
func debugEnabled(cfg *config.Config, flagValue bool) bool {
	return cfg.Debug || flagValue || os.Getenv("RULEBOT_DEBUG") == "1"
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "chat":
		runChat()
	case "ask":
		runAsk()
	case "seed":
		runSeed()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("rulebot version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging and per-candidate score details")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := debugEnabled(cfg, *debug)
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer store.Close()

	engine := match.NewEngine(store, &cfg.Match,
		match.WithLogger(logger),
		match.WithDebug(debugMode),
	)

	// Reload the weight profile when the config file changes. A bad file
	// keeps the current profile.
	watch := watcher.NewConfigWatcher(resolvedConfigPath, func() {
		reloaded, loadErr := config.Load(resolvedConfigPath)
		if loadErr != nil {
			logger.Warn("config reload failed, keeping current weights", zap.Error(loadErr))
			return
		}
		engine.SetConfig(&reloaded.Match)
		logger.Info("match weights reloaded", zap.String("config_path", resolvedConfigPath))
	}, watcher.WithLogger(logger))
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watch.Start(watchCtx); err != nil {
		logger.Warn("config watcher disabled", zap.Error(err))
	}

	srv := server.NewServer(engine, store, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// initEngine loads config and opens storage for the direct-access
// subcommands (chat, ask, seed, status).
func initEngine(configPath string, debugFlag bool) (*match.Engine, storage.Storage, *zap.Logger, bool, error) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, nil, false, fmt.Errorf("failed to load config: %w", err)
	}
	debugMode := debugEnabled(cfg, debugFlag)
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		return nil, nil, nil, false, fmt.Errorf("failed to create logger: %w", err)
	}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, nil, nil, false, fmt.Errorf("failed to initialize storage: %w", err)
	}
	engine := match.NewEngine(store, &cfg.Match,
		match.WithLogger(logger),
		match.WithDebug(debugMode),
	)
	return engine, store, logger, debugMode, nil
}

func runChat() {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	botSlug := fs.String("bot", "cozy-cafe", "bot slug to chat with")
	debug := fs.Bool("debug", false, "show scoring details for each reply")
	_ = fs.Parse(os.Args[2:])

	engine, store, logger, debugMode, err := initEngine(*configPath, *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer store.Close()
	defer logger.Sync()

	fmt.Printf("RuleBot CLI — chatting with bot %q. Type 'exit' to quit.\n", *botSlug)
	if debugMode {
		fmt.Println("Debug mode is ON — showing scoring details.")
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println("\nBye!")
			return
		}
		msg := strings.TrimSpace(scanner.Text())
		if msg == "" {
			continue
		}
		if lower := strings.ToLower(msg); lower == "exit" || lower == "quit" {
			fmt.Println("Bye!")
			return
		}
		result, err := engine.MatchRule(context.Background(), *botSlug, msg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Match failed: %v\n", err)
			continue
		}
		fmt.Println(result.Answer)
		if result.Debug != nil {
			fmt.Printf("   [via] exact=%t keywords=%v regex=%v ratio=%.3f\n",
				result.Debug.Exact, result.Debug.MatchedKeywords,
				result.Debug.MatchedRegex, result.Debug.Ratio)
		}
	}
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	botSlug := fs.String("bot", "cozy-cafe", "bot slug to ask")
	outputFormat := fs.String("output", "text", "output format: text or json")
	debug := fs.Bool("debug", false, "include scoring details in the output")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: rulebot ask [flags] <message>")
		os.Exit(1)
	}
	message := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if message == "" {
		fmt.Println("Usage: rulebot ask [flags] <message>")
		os.Exit(1)
	}

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
		format = cli.OutputText
	default:
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	engine, store, logger, _, err := initEngine(*configPath, *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer store.Close()
	defer logger.Sync()

	result, err := engine.MatchRule(context.Background(), *botSlug, message)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Match failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteMatchResult(os.Stdout, result, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runSeed() {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Printf("Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	botID, err := storage.Seed(context.Background(), store)
	if err != nil {
		fmt.Printf("Seed failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Sample bot 'cozy-cafe' ready (id %d)\n", botID)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Printf("Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	bots, err := store.CountBots(ctx)
	if err != nil {
		fmt.Printf("Count bots failed: %v\n", err)
		os.Exit(1)
	}
	qna, err := store.CountQnA(ctx)
	if err != nil {
		fmt.Printf("Count qna failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("bots:  %d\n", bots)
	fmt.Printf("qna:   %d\n", qna)
	fmt.Printf("db:    %s\n", cfg.Storage.DatabasePath)
}

func printUsage() {
	fmt.Println(`rulebot - keyword rule matching chatbot backend

Usage:
  rulebot server [flags]          Start the HTTP server
  rulebot chat [flags]            Chat with a bot interactively
  rulebot ask [flags] <message>   Ask a bot a single question
  rulebot seed [flags]            Create the sample coffee-shop bot
  rulebot status [flags]          Show bot/qna counts
  rulebot version                 Show version
  rulebot help                    Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/rulebot/config.yaml)
  --debug            Enable debug logging and per-candidate score details

Chat/Ask Flags:
  --config string    Config file path
  --bot string       Bot slug (default: cozy-cafe)
  --debug            Show scoring details
  --output string    (ask only) Output format: text or json

Debug mode can also be enabled with RULEBOT_DEBUG=1 or debug: true in the
config file. It only adds observability; it never changes which answer is
selected.

Examples:
  rulebot seed
  rulebot chat --bot cozy-cafe
  rulebot ask --output json "what time do you open"
  rulebot server --debug`)
}
