package dataset

import (
	"math"
)

// Kind identifies the value type held by a column.
type Kind int

const (
	// Numeric columns hold float64 values
	Numeric Kind = iota
	// Text columns hold string values
	Text
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// Column is a single named column with a per-cell missing mask.
// Numeric cells that are missing also hold NaN so accidental reads
// stay poisoned instead of looking like real zeros.
type Column struct {
	name string
	kind Kind
	// typed flips once the first concrete value is seen; until then the
	// column only holds missing cells and may still adopt either kind.
	typed bool
	nums  []float64
	strs  []string
	miss  []bool
}

func newColumn(name string, size int) *Column {
	c := &Column{name: name, kind: Numeric}
	for i := 0; i < size; i++ {
		c.appendMissing()
	}
	return c
}

// Name returns the column name
func (c *Column) Name() string { return c.name }

// Kind returns the column value type
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of cells in the column
func (c *Column) Len() int { return len(c.miss) }

// IsMissing reports whether the cell at position i holds no value.
func (c *Column) IsMissing(i int) bool { return c.miss[i] }

// MissingCount returns the number of missing cells
func (c *Column) MissingCount() int {
	n := 0
	for _, m := range c.miss {
		if m {
			n++
		}
	}
	return n
}

// Float returns the numeric value at position i. The second return is
// false when the cell is missing or the column is not numeric.
func (c *Column) Float(i int) (float64, bool) {
	if c.kind != Numeric || c.miss[i] {
		return math.NaN(), false
	}
	return c.nums[i], true
}

// String returns the text value at position i. The second return is
// false when the cell is missing or the column is not text.
func (c *Column) String(i int) (string, bool) {
	if c.kind != Text || c.miss[i] {
		return "", false
	}
	return c.strs[i], true
}

// SetFloat stores a numeric value at position i
func (c *Column) SetFloat(i int, v float64) {
	c.nums[i] = v
	c.miss[i] = false
}

// SetMissing marks the cell at position i as missing
func (c *Column) SetMissing(i int) {
	if c.kind == Numeric {
		c.nums[i] = math.NaN()
	} else {
		c.strs[i] = ""
	}
	c.miss[i] = true
}

// Mean computes the arithmetic mean over all non-missing cells.
// The second return is false when the column is not numeric or every
// cell is missing.
func (c *Column) Mean() (float64, bool) {
	if c.kind != Numeric {
		return math.NaN(), false
	}
	sum := 0.0
	n := 0
	for i, m := range c.miss {
		if m {
			continue
		}
		sum += c.nums[i]
		n++
	}
	if n == 0 {
		return math.NaN(), false
	}
	return sum / float64(n), true
}

// Floats returns a copy of the numeric values (NaN for missing cells).
func (c *Column) Floats() []float64 {
	out := make([]float64, len(c.miss))
	for i := range c.miss {
		if c.miss[i] || c.kind != Numeric {
			out[i] = math.NaN()
			continue
		}
		out[i] = c.nums[i]
	}
	return out
}

func (c *Column) appendMissing() {
	c.nums = append(c.nums, math.NaN())
	c.strs = append(c.strs, "")
	c.miss = append(c.miss, true)
}

func (c *Column) setValue(i int, v any) bool {
	switch val := v.(type) {
	case float64:
		if c.typed && c.kind != Numeric {
			return false
		}
		c.kind = Numeric
		c.typed = true
		c.SetFloat(i, val)
	case string:
		if c.typed && c.kind != Text {
			return false
		}
		c.kind = Text
		c.typed = true
		c.strs[i] = val
		c.miss[i] = false
	default:
		return false
	}
	return true
}

func (c *Column) clone() *Column {
	out := &Column{name: c.name, kind: c.kind, typed: c.typed}
	out.nums = append([]float64(nil), c.nums...)
	out.strs = append([]string(nil), c.strs...)
	out.miss = append([]bool(nil), c.miss...)
	return out
}

func (c *Column) filter(keep []bool) {
	nums := c.nums[:0]
	strs := c.strs[:0]
	miss := c.miss[:0]
	for i, k := range keep {
		if !k {
			continue
		}
		nums = append(nums, c.nums[i])
		strs = append(strs, c.strs[i])
		miss = append(miss, c.miss[i])
	}
	c.nums = nums
	c.strs = strs
	c.miss = miss
}
