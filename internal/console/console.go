// Package console writes the terse text protocol of a bare-metal serial
// console: raw strings and 32-bit words as eight upper-case hex digits.
package console

import (
	"io"
	"strings"
)

const hexDigits = "0123456789ABCDEF"

// Console writes to an underlying io.Writer. The first write error sticks;
// later writes are dropped and Err reports it.
type Console struct {
	w   io.Writer
	err error
}

// New returns a console writing to w.
func New(w io.Writer) *Console {
	return &Console{w: w}
}

// Puts writes s unchanged.
func (c *Console) Puts(s string) {
	c.write([]byte(s))
}

// Hex writes v as exactly eight upper-case hex digits.
func (c *Console) Hex(v uint32) {
	var b [8]byte
	for i := 7; i >= 0; i-- {
		b[i] = hexDigits[v&0xF]
		v >>= 4
	}
	c.write(b[:])
}

// Line writes the parts followed by a newline.
func (c *Console) Line(parts ...string) {
	c.Puts(strings.Join(parts, "") + "\n")
}

// Write implements io.Writer.
func (c *Console) Write(p []byte) (int, error) {
	c.write(p)
	if c.err != nil {
		return 0, c.err
	}
	return len(p), nil
}

// Err returns the first write error.
func (c *Console) Err() error { return c.err }

func (c *Console) write(p []byte) {
	if c.err != nil || len(p) == 0 {
		return
	}
	_, c.err = c.w.Write(p)
}
