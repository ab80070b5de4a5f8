package main

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/lunixbochs/argjoy"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"github.com/mgutz/ansi"

	"github.com/gomacho/machocore/corefile"
)

// colorEnabled gates ansi escapes on stdout actually being a terminal, so
// piping `machocore core info` into a file or another tool doesn't leave
// raw escape codes in the output.
var colorEnabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

func colorize(code, s string) string {
	if !colorEnabled {
		return s
	}
	return ansi.ColorCode(code) + s + ansi.Reset
}

// Command mirrors a debug-console command registration: a name, a one-line
// description, and a Run func bound reflectively to the parsed argument
// words.
type Command struct {
	Name string
	Desc string
	Run  interface{}
}

var commands = make(map[string]*Command)

func register(c *Command) *Command {
	fn := reflect.ValueOf(c.Run)
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		panic(fmt.Sprintf("Command.Run must be a func: got (%T) %#v\n", c.Run, c.Run))
	}
	commands[c.Name] = c
	return c
}

var aj = argjoy.NewArgjoy()

// splitLine tokenizes a shell line on whitespace. Commands here only ever
// take bare hex/decimal words, so unlike a general shell there is no
// quoting to honor.
func splitLine(line string) []string {
	return strings.Fields(line)
}

// runLine parses and dispatches one line of shell input against the
// registered command table.
func runLine(c *Context, line string) {
	args := splitLine(line)
	if len(args) == 0 {
		return
	}
	name, args := args[0], args[1:]
	cmd, ok := commands[name]
	if !ok {
		c.Printf("%s\n", colorize("red", fmt.Sprintf("command not found: %s", name)))
		return
	}
	out, err := aj.Call(cmd.Run, c, args)
	if err != nil {
		c.Printf("%s\n", colorize("red", fmt.Sprintf("error: %v", err)))
		return
	}
	if len(out) > 0 {
		if err, ok := out[0].(error); ok && err != nil {
			c.Printf("%s\n", colorize("red", fmt.Sprintf("error: %v", err)))
		}
	}
}

var infoCmd = register(&Command{
	Name: "info",
	Desc: "Print plugin identity, architecture and the selected loader image.",
	Run: func(c *Context) error {
		name, desc, version := c.Process.PluginIdentity()
		c.Printf("  plugin:   %s v%d (%s)\n", name, version, desc)
		c.Printf("  arch:     %s\n", c.Process.Session().Architecture())
		c.Printf("  loader:   %s\n", pluginNameOrNone(c.Process.LoaderPluginName()))
		addr := c.Process.ImageInfoAddress()
		if addr == corefile.InvalidAddr {
			c.Printf("  image:    (none found)\n")
		} else {
			c.Printf("  image:    0x%x\n", addr)
		}
		c.Printf("  threads:  %d\n", len(c.Process.Threads()))
		return nil
	},
})

func pluginNameOrNone(name string) string {
	if name == "" {
		return "(none)"
	}
	return name
}

var threadsCmd = register(&Command{
	Name: "threads",
	Desc: "List synthesized thread handles.",
	Run: func(c *Context) error {
		for _, t := range c.Process.Threads() {
			c.Printf("  thread %d\n", t)
		}
		return nil
	},
})

var regionsCmd = register(&Command{
	Name: "regions",
	Desc: "Walk the permission index, printing every mapped and gap region.",
	Run: func(c *Context) error {
		addr := uint64(0)
		for {
			info, err := c.Process.GetRegionInfo(addr)
			if err != nil {
				return nil
			}
			c.Printf("  %s\n", formatRegion(info))
			if info.End <= addr {
				return nil
			}
			addr = info.End
		}
	},
})

func formatRegion(r corefile.RegionInfo) string {
	perm := func(ok bool, ch string) string {
		if ok {
			return ch
		}
		return "-"
	}
	flags := perm(r.Readable, "r") + perm(r.Writable, "w") + perm(r.Executable, "x")
	line := fmt.Sprintf("0x%012x-0x%012x %s", r.Base, r.End, flags)
	if !r.Readable && !r.Writable && !r.Executable {
		return colorize("black+h", line)
	}
	if r.Executable {
		return colorize("green", line)
	}
	return line
}

var readCmd = register(&Command{
	Name: "read",
	Desc: "Hex-dump <size> bytes of process memory starting at <addr>.",
	Run: func(c *Context, addr, size uint64) error {
		if size > 0x10000 {
			return fmt.Errorf("refusing to dump more than 0x10000 bytes at once")
		}
		buf := make([]byte, size)
		n, err := c.Process.Read(addr, buf)
		if n == 0 && err != nil {
			return err
		}
		for _, line := range hexDump(addr, buf[:n], 64) {
			c.Printf("  %s\n", line)
		}
		if uint64(n) < size {
			c.Printf("  (short read: got 0x%x of 0x%x bytes)\n", n, size)
		}
		return nil
	},
})

var helpCmd = register(&Command{
	Name: "help",
	Desc: "List commands.",
	Run: func(c *Context) error {
		for _, name := range []string{"info", "regions", "threads", "read", "help", "quit"} {
			if cmd, ok := commands[name]; ok {
				c.Printf("  %s %s\n", runewidth.FillRight(cmd.Name, 10), cmd.Desc)
			}
		}
		return nil
	},
})
