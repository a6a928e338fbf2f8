package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/manifoldco/promptui"
)

// showCommandSelector shows an interactive command selector using promptui
func (s *Shell) showCommandSelector(ctx context.Context) bool {
	commands := getCommands()

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "▸ {{ .Name | cyan }} - {{ .Description | faint }}",
		Inactive: "  {{ .Name | cyan }} - {{ .Description | faint }}",
		Selected: "{{ .Name | cyan }}",
		Details: `
--------- Command Details ----------
{{ "Usage:" | faint }}\t{{ .Usage }}
{{ "Description:" | faint }}\t{{ .Description }}`,
	}

	searcher := func(input string, index int) bool {
		return strings.Contains(commands[index].Name, strings.ToLower(strings.TrimSpace(input)))
	}

	prompt := promptui.Select{
		Label:     "Choose a command",
		Items:     commands,
		Templates: templates,
		Size:      10,
		Searcher:  searcher,
	}

	i, _, err := prompt.Run()
	if err != nil {
		if err == promptui.ErrInterrupt {
			fmt.Fprintln(s.out, "\nCancelled.")
			return false
		}
		fmt.Fprintf(s.out, "Command selection failed: %v\n", err)
		return false
	}
	return commands[i].Handler(ctx, s, nil)
}

// StartInteractiveMode runs the readline-based REPL until exit or EOF
func (s *Shell) StartInteractiveMode(ctx context.Context) {
	rlCfg := &readline.Config{
		Prompt:              "🌌 apod> ",
		AutoComplete:        createAutoCompleter(),
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		HistoryLimit:        2000,
		FuncFilterInputRune: filterInput,
	}

	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		fmt.Fprintf(s.out, "❌ Failed to initialize interactive mode: %v\n", err)
		return
	}
	defer rl.Close()

	info := s.agent.AgentInfo()
	fmt.Fprintln(s.out, "\n🚀 NASA APOD Agent")
	fmt.Fprintf(s.out, "🧠 %s\n", info.Status)
	fmt.Fprintln(s.out, "💬 Type 'help' for commands; anything else is asked as a question.")
	fmt.Fprintln(s.out, "⌨️ Arrow keys to navigate; Tab for completion; Ctrl+R searches history.")
	fmt.Fprintln(s.out, strings.Repeat("=", 60))

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		}

		if strings.TrimSpace(line) == "/" {
			if s.showCommandSelector(ctx) {
				break
			}
			continue
		}

		if s.executeCancellable(ctx, line) {
			break
		}
	}
}

// executeCancellable runs one line; Ctrl+C cancels the running command
// instead of ending the session.
func (s *Shell) executeCancellable(ctx context.Context, line string) bool {
	execCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(s.out)
			cancel()
		case <-execCtx.Done():
		}
	}()

	exit := s.Execute(execCtx, line)
	if execCtx.Err() == context.Canceled && ctx.Err() == nil {
		fmt.Fprintln(s.out, "🔄 Ready for next command.")
	}
	return exit
}

// createAutoCompleter creates an autocompletion function for readline
func createAutoCompleter() *readline.PrefixCompleter {
	var pcItems []readline.PrefixCompleterInterface
	for _, cmd := range getCommands() {
		var children []readline.PrefixCompleterInterface
		switch cmd.Name {
		case "today":
			children = append(children, readline.PcItem("--hd"), readline.PcItem("--analyze"))
		case "search":
			children = append(children, readline.PcItem("--analyze"))
		}
		pcItems = append(pcItems, readline.PcItem(cmd.Name, children...), readline.PcItem("/"+cmd.Name, children...))
	}
	pcItems = append(pcItems, readline.PcItem("/"))
	return readline.NewPrefixCompleter(pcItems...)
}

// filterInput filters input runes to handle special keys
func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}
