package search

import "time"

// Cycle is one accepted phase cycle.
type Cycle struct {
	// NScans is the total number of scans.
	NScans int `json:"n_scans"`

	// Windings holds one winding number per block for a cogwheel cycle.
	Windings []int `json:"windings,omitempty"`

	// Lengths holds the active sub-cycle lengths of a nested or nestcog
	// cycle, in ascending order for nestcog.
	Lengths []int `json:"lengths,omitempty"`

	// Rows holds one winding row per nestcog sub-cycle.
	Rows [][]int `json:"rows,omitempty"`

	// Blocks holds the blocks cycled by each nested sub-cycle.
	Blocks [][]int `json:"blocks,omitempty"`
}

// Stats summarizes the work done by a search.
type Stats struct {
	Candidates int64         `json:"candidates"`
	Fills      int           `json:"fills"`
	MinScans   int           `json:"n_scans_min"`
	LastScans  int           `json:"n_scans_last"` // last scan count visited
	Workers    int           `json:"workers"`
	Capacity   int           `json:"capacity"`
	Duration   time.Duration `json:"duration"`
}

// Result is the outcome of a search.
type Result struct {
	Family   Family  `json:"family"`
	Cycles   []Cycle `json:"cycles"`
	NScans   int     `json:"n_scans"` // zero when exhausted
	LastZero bool    `json:"last_zero"`

	// Exhausted reports that no scan count up to the maximum admits a
	// cycle. It is not an error.
	Exhausted bool  `json:"exhausted"`
	Stats     Stats `json:"stats"`
}

// Found reports whether any cycle was found.
func (r *Result) Found() bool { return len(r.Cycles) > 0 }

// Windings returns the winding tuples of cogwheel cycles.
func (r *Result) Windings() [][]int {
	out := make([][]int, len(r.Cycles))
	for i, c := range r.Cycles {
		out[i] = c.Windings
	}
	return out
}

// ScanCounts returns the scan count of every cycle.
func (r *Result) ScanCounts() []int {
	out := make([]int, len(r.Cycles))
	for i, c := range r.Cycles {
		out[i] = c.NScans
	}
	return out
}

// Event says what a Progress report marks.
type Event string

const (
	EventScan  Event = "scan"  // a scan count was started
	EventFill  Event = "fill"  // a buffer was filled and checked
	EventFound Event = "found" // the search stopped with cycles
	EventDone  Event = "done"  // a scan count was exhausted
)

// Progress is reported to Options.Progress.
type Progress struct {
	Family     Family `json:"family"`
	Event      Event  `json:"event"`
	NScans     int    `json:"n_scans"`
	MaxScans   int    `json:"n_scans_max"`
	Factors    []int  `json:"factors,omitempty"` // nested: current factorization
	Filled     int    `json:"filled"`            // last fill
	Candidates int64  `json:"candidates"`        // total so far
	Found      int    `json:"found"`
}
