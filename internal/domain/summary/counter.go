package summary

// Counter tallies names and remembers the order they were first seen in.
// The zero value is empty and ready to use.
type Counter struct {
	order  []string
	counts map[string]int
}

// Get returns the count recorded for name.
func (c Counter) Get(name string) int { return c.counts[name] }

// Len returns the number of distinct names.
func (c Counter) Len() int { return len(c.order) }

// Names returns names in first-seen order.
func (c Counter) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

func (c *Counter) add(name string, n int) {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	if _, ok := c.counts[name]; !ok {
		c.order = append(c.order, name)
	}
	c.counts[name] += n
}

// Merge returns a new counter holding the sums of c and o. Names new to c
// are appended in o's order.
func (c Counter) Merge(o Counter) Counter {
	var out Counter
	for _, name := range c.order {
		out.add(name, c.counts[name])
	}
	for _, name := range o.order {
		out.add(name, o.counts[name])
	}
	return out
}
