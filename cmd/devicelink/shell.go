package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/devicelink/devicelink-go/cmd/devicelink/commands"
)

// Shell is the interactive devicelink command loop.
type Shell struct {
	env *commands.Env
	dir string
	rl  *readline.Instance
}

// NewShell creates a shell over env. dir is reloaded by the "reload" command.
func NewShell(env *commands.Env, dir string) (*Shell, error) {
	s := &Shell{env: env, dir: dir}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "devicelink> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    s.completer(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	s.rl = rl
	env.Out = rl.Stdout()
	return s, nil
}

// Stderr returns a writer that coordinates with the readline prompt.
func (s *Shell) Stderr() io.Writer {
	return s.rl.Stderr()
}

// Run reads commands until EOF, "quit" or ctx is done.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		if !s.exec(line) {
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return
		}
	}
}

// exec runs one input line. It returns false when the shell should exit.
func (s *Shell) exec(line string) bool {
	parts := splitArgs(strings.TrimSpace(line))
	if len(parts) == 0 {
		return true
	}
	cmd, args := strings.ToLower(parts[0]), parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()
	case "reload":
		if err := s.env.Registry.AddFromDir(s.dir); err != nil {
			fmt.Fprintf(s.env.Out, "Error: %v\n", err)
			break
		}
		fmt.Fprintf(s.env.Out, "%d interfaces\n", s.env.Registry.Len())
	case "quit", "exit", "q":
		return false
	default:
		if err := commands.Run(s.env, cmd, args); err != nil {
			fmt.Fprintf(s.env.Out, "Error: %v\n", err)
		}
	}
	return true
}

func (s *Shell) printHelp() {
	fmt.Fprint(s.env.Out, "\n"+commands.Usage+
		"  reload                                 Reload the interfaces directory\n"+
		"  quit                                   Exit\n\n"+
		"Payloads with spaces need single quotes: validate iface /gps '{\"a\": 1}'\n")
}

func (s *Shell) completer() *readline.PrefixCompleter {
	names := readline.PcItemDynamic(func(string) []string {
		var out []string
		for _, iface := range s.env.Registry.All() {
			out = append(out, iface.Name())
		}
		return out
	})
	return readline.NewPrefixCompleter(
		readline.PcItem("introspection"),
		readline.PcItem("validate", names),
		readline.PcItem("unset", names),
		readline.PcItem("reliability", names),
		readline.PcItem("deviceid"),
		readline.PcItem("backoff"),
		readline.PcItem("events"),
		readline.PcItem("reload"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

// splitArgs splits a line on whitespace, keeping single-quoted runs together.
func splitArgs(line string) []string {
	var (
		args    []string
		cur     strings.Builder
		quoted  bool
		started bool
	)
	for _, r := range line {
		switch {
		case r == '\'':
			quoted = !quoted
			started = true
		case !quoted && (r == ' ' || r == '\t'):
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if started {
		args = append(args, cur.String())
	}
	return args
}
