package counter

import (
	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

// Winding counts winding-number tuples for a cogwheel cycle with n scans.
//
// Tuples are little-endian mixed-radix numbers: index 0 is the least
// significant digit. The minimum is [1, 0, ..., 0]; the all-zero tuple is
// never produced because it cannot separate any pathways.
type Winding struct {
	n      int
	blocks int
	policy Policy
	reject RejectFunc
}

var _ Counter = (*Winding)(nil)

// NewWinding returns a counter for n scans and the given number of blocks.
// It fails with a RANGE error if n < 2, blocks < 1, or the policy pins the
// last block of a single-block tuple.
func NewWinding(n, blocks int, policy Policy) (*Winding, error) {
	if n < 2 {
		return nil, cerrors.Range("number of scans must be at least 2, got %d", n)
	}
	if blocks < 1 {
		return nil, cerrors.Range("number of blocks must be at least 1, got %d", blocks)
	}
	if policy.LastZero && blocks < 2 {
		return nil, cerrors.Range("last_zero needs at least 2 blocks, got %d", blocks)
	}
	return &Winding{n: n, blocks: blocks, policy: policy, reject: policy.Reject()}, nil
}

// WithReject replaces the policy's reject predicate. A nil fn accepts every
// tuple.
func (c *Winding) WithReject(fn RejectFunc) *Winding {
	cp := *c
	cp.reject = fn
	return &cp
}

// Scans returns the scan count N.
func (c *Winding) Scans() int { return c.n }

// Policy returns the counting policy.
func (c *Winding) Policy() Policy { return c.policy }

// Width returns the number of blocks.
func (c *Winding) Width() int { return c.blocks }

// Init writes [1, 0, ..., 0].
func (c *Winding) Init(w []int) error {
	if err := checkWidth(w, c.blocks); err != nil {
		return err
	}
	c.reset(w)
	return nil
}

func (c *Winding) reset(w []int) {
	clear(w)
	w[0] = 1
}

// Next advances w to the next tuple accepted by the reject predicate.
func (c *Winding) Next(w []int) (Status, error) {
	if err := checkWidth(w, c.blocks); err != nil {
		return Continue, err
	}
	for {
		st, err := c.step(w)
		if err != nil || st == Wrapped {
			return st, err
		}
		if c.reject == nil || !c.reject(c.n, w) {
			return Continue, nil
		}
	}
}

// counted is the number of digits that take part in counting.
func (c *Winding) counted() int {
	if c.policy.LastZero {
		return c.blocks - 1
	}
	return c.blocks
}

// step is one raw mixed-radix increment.
//
// Under NoInverse the digits from the topmost one that is not
// self-inverse (neither 0 nor (N+1)/2) upward count only to N/2. Digits
// below it use the full range. A digit above its limit means w was not
// produced by this counter.
func (c *Winding) step(w []int) (Status, error) {
	m := c.counted()
	if c.policy.LastZero && w[m] != 0 {
		return Continue, cerrors.Internal("last_zero tuple has final winding %d", w[m])
	}

	split := m
	if c.policy.NoInverse {
		half := (c.n + 1) / 2
		split = 0
		for i := m - 1; i >= 0; i-- {
			if w[i] != 0 && w[i] != half {
				split = i
				break
			}
		}
	}

	for i := 0; i < m; i++ {
		limit := c.n - 1
		if i >= split {
			limit = c.n / 2
		}
		switch {
		case w[i] < 0 || w[i] > limit:
			return Continue, cerrors.Internal("winding %d at block %d outside [0,%d] for N=%d", w[i], i, limit, c.n)
		case w[i] < limit:
			w[i]++
			return Continue, nil
		}
		w[i] = 0
	}
	c.reset(w)
	return Wrapped, nil
}

// Check reports whether w is a well-formed tuple for this counter: right
// width, every component in [0,N), and the last one zero under LastZero.
// It does not apply the reject predicate.
func (c *Winding) Check(w []int) error {
	if err := checkWidth(w, c.blocks); err != nil {
		return err
	}
	for i, v := range w {
		if v < 0 || v >= c.n {
			return cerrors.Internal("winding %d at block %d outside [0,%d)", v, i, c.n)
		}
	}
	if c.policy.LastZero && w[c.blocks-1] != 0 {
		return cerrors.Internal("last_zero tuple has final winding %d", w[c.blocks-1])
	}
	return nil
}
