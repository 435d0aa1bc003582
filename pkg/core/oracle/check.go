package oracle

import "sync"

// minChunk keeps goroutines from being spawned for a handful of candidates.
const minChunk = 256

// Check evaluates candidates 0..len(out)-1 with eval and stores the
// verdicts in out. Candidates are split into at most workers contiguous
// chunks, one goroutine each; workers <= 1 runs inline.
func Check(out []Verdict, workers int, eval func(i int) Verdict) {
	n := len(out)
	if workers <= 1 || n <= minChunk {
		for i := range out {
			out[i] = eval(i)
		}
		return
	}
	chunk := max(minChunk, (n+workers-1)/workers)

	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				out[i] = eval(i)
			}
		}()
	}
	wg.Wait()
}

// Count returns the number of Valid verdicts in v.
func Count(v []Verdict) int {
	n := 0
	for _, x := range v {
		if x == Valid {
			n++
		}
	}
	return n
}
