// Command machocore opens a Mach-O core file and either drops into an
// interactive inspection shell or runs a single command against it.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/gomacho/machocore/corefile"
)

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// printError prints an error and, if one is attached, its stack trace —
// the same two-pass format as cmd.UsercornCmd.PrintError.
func printError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", strings.Repeat("-", 40))
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	if err, ok := err.(stackTracer); ok {
		for _, f := range err.StackTrace() {
			fmt.Fprintf(os.Stderr, "  %+s:%d\n", f, f)
		}
	}
}

func main() {
	corefile.Initialize()

	fs := flag.NewFlagSet("machocore", flag.ExitOnError)
	preferKernel := fs.Bool("prefer-kernel", false, "prefer the kernel image over dyld when both are present")
	verbose := fs.Bool("v", false, "verbose output")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <corefile> [command [args...]]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nWith no command, opens an interactive shell. Commands:\n")
		for _, name := range []string{"info", "regions", "threads", "read"} {
			if cmd, ok := commands[name]; ok {
				fmt.Fprintf(os.Stderr, "  %-10s %s\n", cmd.Name, cmd.Desc)
			}
		}
	}
	fs.Parse(os.Args[1:])

	args := fs.Args()
	if len(args) < 1 {
		fs.Usage()
		os.Exit(1)
	}
	path := args[0]
	rest := args[1:]

	session, err := corefile.Detect(path)
	if err != nil {
		printError(errors.Wrapf(err, "opening %s", path))
		os.Exit(1)
	}
	pref := corefile.PreferUser
	if *preferKernel {
		pref = corefile.PreferKernel
	}
	session.SetConfig(corefile.Config{CorefilePreference: pref, Verbose: *verbose})
	if err := session.Load(); err != nil {
		printError(errors.Wrapf(err, "loading %s", path))
		os.Exit(1)
	}
	defer session.Close()

	process := corefile.NewProcess(session)

	if len(rest) == 0 {
		shell, err := NewShell(process)
		if err != nil {
			printError(err)
			os.Exit(1)
		}
		shell.Run()
		return
	}
	RunOneShot(process, strings.Join(rest, " "))
}
