package main

import (
	"path/filepath"

	"github.com/lunixbochs/readline"
	"github.com/mattn/go-colorable"
	"github.com/shibukawa/configdir"

	"github.com/gomacho/machocore/corefile"
)

// Shell is the interactive console opened by `machocore <core>` when no
// command follows the core path: a
// readline loop dispatching into the command table, one Context per
// session the way debug.Debugger hands one Context per connection.
type Shell struct {
	rl       *readline.Instance
	ctx      *Context
	histPath string
}

// NewShell builds a readline instance over stdio, locating a history file
// under the user's cache directory the way Tui locates its own.
func NewShell(process *corefile.Process) (*Shell, error) {
	configDirs := configdir.New("machocore", "shell")
	cacheDir := configDirs.QueryCacheFolder()
	histPath := ""
	if err := cacheDir.MkdirAll(); err == nil {
		histPath = filepath.Join(cacheDir.Path, "history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "machocore> ",
		HistoryFile:     histPath,
		InterruptPrompt: "^C",
		Stdout:          colorable.NewColorableStdout(),
		Stderr:          colorable.NewColorableStderr(),
	})
	if err != nil {
		return nil, err
	}
	return &Shell{
		rl:       rl,
		ctx:      &Context{Writer: rl.Stdout(), Process: process},
		histPath: histPath,
	}, nil
}

// Run drives the read-eval-print loop until EOF, a read error, or a "quit"/
// "exit" command. An interrupt (^C) discards the current line and the loop
// continues.
func (s *Shell) Run() {
	defer s.rl.Close()
	s.ctx.Printf("mach-o-core shell for %s. Type 'help' for commands, 'quit' to exit.\n",
		s.ctx.Process.Session().Path())
	for {
		line, err := s.rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil {
			return
		}
		switch line {
		case "quit", "exit":
			return
		case "":
			continue
		}
		runLine(s.ctx, line)
	}
}

// RunOneShot executes a single command line non-interactively, writing to
// stdout, for `machocore <core> <command> [args...]` invocations that don't
// want a shell.
func RunOneShot(process *corefile.Process, line string) {
	ctx := &Context{Writer: colorable.NewColorableStdout(), Process: process}
	runLine(ctx, line)
}
