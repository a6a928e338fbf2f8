// Package app implements the interactive command line for the APOD agent.
package app

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fpt/go-apod-agent/internal/agent"
	"github.com/fpt/go-apod-agent/internal/apod"
	"github.com/fpt/go-apod-agent/internal/config"
)

// searchAnalyzeCount is how many results a CLI search asks for when analyzing
const searchAnalyzeCount = 5

// ToolInfo describes one MCP tool for the tools command
type ToolInfo struct {
	Name        string
	Description string
}

// Command is one CLI command. Commands also answer to a leading "/".
type Command struct {
	Name        string
	Usage       string
	Description string
	Handler     func(ctx context.Context, s *Shell, args []string) bool // Returns true if should exit
}

// Shell executes CLI commands against the agent and the APOD client
type Shell struct {
	agent    *agent.Agent
	pictures *apod.Client
	settings *config.Settings
	tools    []ToolInfo
	out      io.Writer
}

// NewShell creates a shell writing to out
func NewShell(a *agent.Agent, pictures *apod.Client, settings *config.Settings, tools []ToolInfo, out io.Writer) *Shell {
	return &Shell{agent: a, pictures: pictures, settings: settings, tools: tools, out: out}
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) println(args ...any) {
	fmt.Fprintln(s.out, args...)
}

func (s *Shell) printError(err error) {
	s.printf("❌ Error: %v\n", err)
}

// getCommands returns all available commands
func getCommands() []Command {
	return []Command{
		{Name: "today", Usage: "today [--hd] [--analyze]", Description: "Show today's Astronomy Picture of the Day", Handler: cmdToday},
		{Name: "date", Usage: "date <YYYY-MM-DD>", Description: "Show the picture for a specific date", Handler: cmdDate},
		{Name: "search", Usage: "search <start> [end] [--analyze]", Description: "Search pictures in a date range", Handler: cmdSearch},
		{Name: "ask", Usage: "ask <question>", Description: "Ask an astronomy question", Handler: cmdAsk},
		{Name: "analyze", Usage: "analyze <image-url> [question]", Description: "Analyze an image", Handler: cmdAnalyze},
		{Name: "tools", Usage: "tools", Description: "List the MCP tools this agent serves", Handler: cmdTools},
		{Name: "status", Usage: "status", Description: "Show which AI provider is answering", Handler: cmdStatus},
		{Name: "config", Usage: "config", Description: "Show configuration and setup hints", Handler: cmdConfig},
		{Name: "help", Usage: "help", Description: "Show available commands", Handler: cmdHelp},
		{Name: "exit", Usage: "exit", Description: "Exit the interactive session", Handler: cmdExit},
		{Name: "quit", Usage: "quit", Description: "Exit the interactive session (alias for exit)", Handler: cmdExit},
	}
}

func findCommand(name string) (Command, bool) {
	for _, cmd := range getCommands() {
		if cmd.Name == name {
			return cmd, true
		}
	}
	return Command{}, false
}

// Execute runs one input line. Lines that are not commands are asked as
// questions. Returns true when the session should end.
func (s *Shell) Execute(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	parts := strings.Fields(line)
	name := strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	if cmd, ok := findCommand(name); ok {
		return cmd.Handler(ctx, s, parts[1:])
	}

	if strings.HasPrefix(line, "/") {
		s.printf("❌ Unknown command: /%s\n", name)
		s.println("💡 Type 'help' for available commands, or just '/' for a selector.")
		return false
	}
	return cmdAsk(ctx, s, parts)
}

// splitFlags separates --flags from positional arguments
func splitFlags(args []string) (positional []string, flags []string) {
	for _, arg := range args {
		if strings.HasPrefix(arg, "--") {
			flags = append(flags, strings.TrimPrefix(arg, "--"))
			continue
		}
		positional = append(positional, arg)
	}
	return positional, flags
}

func cmdToday(ctx context.Context, s *Shell, args []string) bool {
	_, flags := splitFlags(args)
	hd := slices.Contains(flags, "hd")

	if slices.Contains(flags, "analyze") {
		s.println("🔭 Fetching and analyzing today's picture...")
		result, err := s.agent.ImageOfTheDayWithAnalysis(ctx, "", hd)
		if err != nil {
			s.printError(err)
			return false
		}
		s.println(result.Summary)
		if result.Analysis != "" {
			s.printf("\n🤖 AI Analysis:\n%s\n", result.Analysis)
		}
		return false
	}

	entry, err := s.pictures.Get(ctx, "", hd)
	if err != nil {
		s.printError(err)
		return false
	}
	s.println(apod.FormatToday(entry, hd))
	return false
}

func cmdDate(ctx context.Context, s *Shell, args []string) bool {
	if len(args) == 0 {
		s.println("Usage: date <YYYY-MM-DD>")
		return false
	}
	entry, err := s.pictures.Info(ctx, args[0])
	if err != nil {
		s.printError(err)
		return false
	}
	s.println(apod.FormatInfo(entry))
	return false
}

func cmdSearch(ctx context.Context, s *Shell, args []string) bool {
	positional, flags := splitFlags(args)
	if len(positional) == 0 {
		s.println("Usage: search <start> [end] [--analyze]")
		return false
	}
	start := positional[0]
	var end string
	if len(positional) > 1 {
		end = positional[1]
	}

	if slices.Contains(flags, "analyze") {
		s.println("🔍 Searching and analyzing...")
		result, err := s.agent.SearchAndAnalyze(ctx, start, end, searchAnalyzeCount)
		if err != nil {
			s.printError(err)
			return false
		}
		s.println(result.SearchResults)
		for i, a := range result.Analyses {
			s.printf("\n🤖 Analysis %d (%s):\n%s\n", i+1, a.URL, a.Analysis)
		}
		return false
	}

	payload, err := s.pictures.Search(ctx, start, end, 0)
	if err != nil {
		s.printError(err)
		return false
	}
	s.println(payload.Raw)
	return false
}

func cmdAsk(ctx context.Context, s *Shell, args []string) bool {
	answer, err := s.agent.AnswerQuestion(ctx, strings.Join(args, " "), "")
	if err != nil {
		s.printError(err)
		return false
	}
	s.println(answer)
	return false
}

func cmdAnalyze(ctx context.Context, s *Shell, args []string) bool {
	if len(args) == 0 {
		s.println("Usage: analyze <image-url> [question]")
		return false
	}
	analysis, err := s.agent.AnalyzeImage(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		s.printError(err)
		return false
	}
	s.println(analysis)
	return false
}

func cmdTools(ctx context.Context, s *Shell, args []string) bool {
	s.println("🔧 MCP tools (run with -mode mcp):")
	for _, tool := range s.tools {
		s.printf("  %-22s %s\n", tool.Name, tool.Description)
	}
	return false
}

func cmdStatus(ctx context.Context, s *Shell, args []string) bool {
	info := s.agent.AgentInfo()
	s.println("\n📊 Agent Status:")
	s.printf("  Type:   %s\n", info.Type)
	s.printf("  Status: %s\n", info.Status)
	s.println("  Capabilities:")
	for _, c := range info.Capabilities {
		s.printf("    • %s\n", c)
	}
	return false
}

func cmdConfig(ctx context.Context, s *Shell, args []string) bool {
	s.println("\n⚙️  Configuration:")
	for _, inst := range s.settings.SetupInstructions() {
		s.printf("  %s\n", inst.Message)
		if inst.Action != "" {
			s.printf("    → %s\n", inst.Action)
		}
	}

	report := s.settings.Validate()
	for _, e := range report.Errors {
		s.printf("  ❌ %s\n", e)
	}
	for _, w := range report.Warnings {
		s.printf("  ⚠️  %s\n", w)
	}
	return false
}

func cmdHelp(ctx context.Context, s *Shell, args []string) bool {
	s.println("\n📚 Commands:")
	for _, cmd := range getCommands() {
		s.printf("  %-34s %s\n", cmd.Usage, cmd.Description)
	}
	s.println("\n💡 Commands also work with a leading '/'. Type just '/' for a selector.")
	s.println("💬 Anything else is asked as a question.")
	return false
}

func cmdExit(ctx context.Context, s *Shell, args []string) bool {
	s.println("👋 Goodbye!")
	return true
}
