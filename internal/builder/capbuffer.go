package builder

import "bytes"

// capBuffer collects writes up to a byte limit and records overflow instead
// of growing without bound.
type capBuffer struct {
	buf        bytes.Buffer
	remaining  int64
	overflowed bool
}

func newCapBuffer(limit int64) *capBuffer {
	return &capBuffer{remaining: limit}
}

// Write never fails; bytes past the limit are dropped and flagged.
func (c *capBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if int64(n) > c.remaining {
		c.overflowed = true
		p = p[:c.remaining]
	}
	c.buf.Write(p)
	c.remaining -= int64(len(p))
	return n, nil
}

func (c *capBuffer) String() string { return c.buf.String() }

func (c *capBuffer) Overflowed() bool { return c.overflowed }
