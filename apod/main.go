package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fpt/go-apod-agent/internal/agent"
	"github.com/fpt/go-apod-agent/internal/apod"
	"github.com/fpt/go-apod-agent/internal/app"
	"github.com/fpt/go-apod-agent/internal/config"
	"github.com/fpt/go-apod-agent/internal/httpapi"
	"github.com/fpt/go-apod-agent/internal/mcpserver"
	pkgLogger "github.com/fpt/go-apod-agent/pkg/logger"
)

const version = "1.0.0"

const (
	modeServe = "serve"
	modeMCP   = "mcp"
	modeCLI   = "cli"
)

// resolveStringFlag returns the non-empty value, preferring short flag over long flag
func resolveStringFlag(shortVal, longVal string) string {
	if shortVal != "" {
		return shortVal
	}
	return longVal
}

func printUsage() {
	fmt.Println("apod - NASA Astronomy Picture of the Day agent with AI image analysis")
	fmt.Println()
	fmt.Println("Modes:")
	fmt.Println("  cli                     Interactive command line (default)")
	fmt.Println("  serve                   HTTP API on the configured port")
	fmt.Println("  mcp                     MCP server over stdio")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  apod                                 # Interactive mode")
	fmt.Println("  apod today --analyze                 # One-shot command")
	fmt.Println("  apod ask \"What is a nebula?\"         # One-shot question")
	fmt.Println("  apod -m serve -p 8080                # HTTP API on port 8080")
	fmt.Println("  apod -m mcp                          # MCP server for desktop clients")
	fmt.Println("  apod --free \"What is a pulsar?\"      # Skip the paid backend")
	fmt.Println()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	var mode = flag.String("m", "", "Run mode (cli, serve, or mcp)")
	var modeLong = flag.String("mode", "", "Run mode (cli, serve, or mcp)")
	var backend = flag.String("b", "", "Paid vision backend (openai, anthropic, or gemini)")
	var backendLong = flag.String("backend", "", "Paid vision backend (openai, anthropic, or gemini)")
	var settingsPath = flag.String("settings", "", "Path to settings file")
	var port = flag.Int("p", 0, "HTTP port for serve mode")
	var portLong = flag.Int("port", 0, "HTTP port for serve mode")
	var free = flag.Bool("free", false, "Use the free agent even when a paid key is configured")
	var logLevelFlag = flag.String("log-level", "", "Log level (trace, debug, info, warn, error)")
	var verbose = flag.Bool("v", false, "Enable verbose logging (debug level)")
	var verboseLong = flag.Bool("verbose", false, "Enable verbose logging (debug level)")
	var help = flag.Bool("h", false, "Show this help message")
	var helpLong = flag.Bool("help", false, "Show this help message")

	flag.Usage = func() {
		printUsage()
		fmt.Println("Flags:")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *help || *helpLong {
		flag.Usage()
		return
	}

	resolvedMode := strings.ToLower(resolveStringFlag(*mode, *modeLong))
	if resolvedMode == "" {
		resolvedMode = modeCLI
	}
	resolvedBackend := resolveStringFlag(*backend, *backendLong)
	resolvedPort := *port
	if resolvedPort == 0 {
		resolvedPort = *portLong
	}
	args := flag.Args()

	settings, err := config.LoadSettings(*settingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Warning: failed to load settings: %v\n", err)
		settings = config.GetDefaultSettings()
		config.ApplyEnv(settings, os.Getenv)
	}

	if resolvedBackend != "" {
		settings.Paid.Backend = resolvedBackend
		settings.Paid.APIKey = os.Getenv(config.PaidKeyEnv(resolvedBackend))
	}
	if resolvedPort != 0 {
		settings.Server.Port = resolvedPort
	}
	if *free {
		settings.Paid.ForceFree = true
	}
	if *logLevelFlag != "" {
		settings.Agent.LogLevel = *logLevelFlag
	}
	if *verbose || *verboseLong {
		settings.Agent.LogLevel = string(pkgLogger.LogLevelDebug)
	}

	logLevel, levelErr := pkgLogger.ParseLogLevel(settings.Agent.LogLevel)
	// Update global logger level so all component loggers use the new level
	pkgLogger.SetGlobalLogLevel(logLevel)
	logger := pkgLogger.NewComponentLogger("main")
	if levelErr != nil {
		logger.WarnWithIcon("⚠️", "Invalid log level, using info", "error", levelErr)
	}

	if err := config.ValidateSettings(settings); err != nil {
		logger.ErrorWithIcon("❌", "Settings validation failed", "error", err)
		os.Exit(1)
	}
	for _, warning := range settings.Validate().Warnings {
		logger.WarnWithIcon("⚠️", warning)
	}

	pictures := apod.New(apod.Options{
		APIKey:  settings.NASA.APIKey,
		BaseURL: settings.NASA.BaseURL,
		PageURL: settings.NASA.PageURL,
	})

	a, err := agent.New(ctx, settings, pictures)
	if err != nil {
		logger.ErrorWithIcon("❌", "Failed to create agent", "error", err)
		os.Exit(1)
	}

	switch resolvedMode {
	case modeServe:
		serveCtx, stopServe := signal.NotifyContext(ctx, os.Interrupt)
		defer stopServe()
		srv := httpapi.NewServer(settings, a, pictures, logger.WithComponent("http"))
		if err := srv.Start(serveCtx); err != nil {
			logger.ErrorWithIcon("❌", "HTTP server failed", "error", err)
			os.Exit(1)
		}
	case modeMCP:
		srv := mcpserver.New(a, pictures, version, logger.WithComponent("mcp"))
		if err := srv.ServeStdio(); err != nil {
			logger.ErrorWithIcon("❌", "MCP server failed", "error", err)
			os.Exit(1)
		}
	case modeCLI:
		shell := app.NewShell(a, pictures, settings, toolInfos(mcpserver.New(a, pictures, version, logger)), os.Stdout)
		if len(args) > 0 {
			// One-shot mode: execute single command and exit
			shell.Execute(ctx, strings.Join(args, " "))
			return
		}
		shell.StartInteractiveMode(ctx)
	default:
		logger.ErrorWithIcon("❌", "Unknown mode", "mode", resolvedMode)
		flag.Usage()
		os.Exit(2)
	}
}

func toolInfos(srv *mcpserver.Server) []app.ToolInfo {
	var infos []app.ToolInfo
	for _, tool := range srv.Tools() {
		infos = append(infos, app.ToolInfo{Name: tool.Name, Description: tool.Description})
	}
	return infos
}
