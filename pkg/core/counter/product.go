package counter

// Product counts the Cartesian product of two counters as an odometer: the
// inner tuple varies fastest and the outer one advances each time the inner
// one wraps. A tuple is the outer tuple followed by the inner tuple.
type Product struct {
	Outer, Inner Counter
}

var _ Counter = Product{}

// Width returns the sum of both widths.
func (p Product) Width() int { return p.Outer.Width() + p.Inner.Width() }

// Split returns the outer and inner views of v.
func (p Product) Split(v []int) (outer, inner []int) {
	w := p.Outer.Width()
	return v[:w], v[w:]
}

// Init initializes both halves.
func (p Product) Init(v []int) error {
	if err := checkWidth(v, p.Width()); err != nil {
		return err
	}
	o, i := p.Split(v)
	if err := p.Outer.Init(o); err != nil {
		return err
	}
	return p.Inner.Init(i)
}

// Next advances the inner tuple, carrying into the outer one on wrap.
func (p Product) Next(v []int) (Status, error) {
	if err := checkWidth(v, p.Width()); err != nil {
		return Continue, err
	}
	o, i := p.Split(v)
	st, err := p.Inner.Next(i)
	if err != nil || st == Continue {
		return st, err
	}
	return p.Outer.Next(o)
}
