package sequence

// Cursor hands out decree sequence numbers within one batch. A number is
// only consumed by Commit, which the caller makes once a decree record holds
// it. An item that fails earlier leaves the number for the next one.
type Cursor struct {
	start     int
	next      int
	committed int
}

func NewCursor(start int) *Cursor {
	if start < 1 {
		start = 1
	}
	return &Cursor{start: start, next: start}
}

// Peek returns the number the current item will get once persisted.
func (c *Cursor) Peek() int { return c.next }

// Commit consumes the current number.
func (c *Cursor) Commit() {
	c.next++
	c.committed++
}

// Committed is the count of numbers consumed so far.
func (c *Cursor) Committed() int { return c.committed }

// Start is the first number of the batch.
func (c *Cursor) Start() int { return c.start }
