package main

import (
	"fmt"
	"io"

	"github.com/gomacho/machocore/corefile"
)

// Context is handed to every shell command: output sink plus the process
// the command operates on.
type Context struct {
	io.Writer
	Process *corefile.Process
}

// Printf writes to the context's output sink.
func (c *Context) Printf(format string, a ...interface{}) (n int, err error) {
	return fmt.Fprintf(c, format, a...)
}
