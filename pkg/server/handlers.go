package server

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"runtime"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/cyclesearch/pkg/archive"
	"github.com/matzehuels/cyclesearch/pkg/buildinfo"
	"github.com/matzehuels/cyclesearch/pkg/core/search"
	"github.com/matzehuels/cyclesearch/pkg/core/stream"
	"github.com/matzehuels/cyclesearch/pkg/count"
	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
	"github.com/matzehuels/cyclesearch/pkg/pipeline"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string         `json:"status"`
		Build  buildinfo.Info `json:"build"`
	}{"ok", buildinfo.Get()})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	f, err := search.ParseFamily(chi.URLParam(r, "family"))
	if err != nil {
		writeError(w, err)
		return
	}

	// Decode over the family defaults so omitted options keep them.
	opts := pipeline.NewOptions(f, nil)
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		writeError(w, cerrors.Wrap(cerrors.ErrCodeInvalidFormat, err, "invalid request body: %v", err))
		return
	}
	opts.Family = f
	if opts.Search.MaxScans > s.maxScans {
		writeError(w, cerrors.Range("n_scans_max %d exceeds the server limit %d", opts.Search.MaxScans, s.maxScans))
		return
	}
	s.limitResources(&opts.Search)

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	res, err := s.runner.Execute(ctx, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// limitResources lowers the worker count, capacity and buffer size of a
// request to the server limits. Results do not depend on any of them.
// Negative values are left for validation to reject.
func (s *Server) limitResources(o *search.Options) {
	if procs := runtime.GOMAXPROCS(0); o.Workers > procs {
		o.Workers = procs
	}
	if o.BufferBytes == 0 {
		o.BufferBytes = min(search.DefaultBufferBytes, s.maxBuffer)
	}
	if o.BufferBytes > s.maxBuffer {
		o.BufferBytes = s.maxBuffer
	}
	if limit := stream.CapacityFor(s.maxBuffer, 1); o.Capacity > limit {
		o.Capacity = limit
	}
}

// countResponse carries the count as a decimal string; it routinely
// exceeds the float64 integer range.
type countResponse struct {
	Family  string `json:"family"`
	NScans  int    `json:"n_scans,omitempty"`
	Lengths []int  `json:"lengths,omitempty"`
	Blocks  int    `json:"blocks"`
	Count   string `json:"count"`
}

func (s *Server) handleCount(w http.ResponseWriter, r *http.Request) {
	f, err := search.ParseFamily(chi.URLParam(r, "family"))
	if err != nil {
		writeError(w, err)
		return
	}
	q := query{r: r}
	n := q.integer("n", 0)
	blocks := q.integer("blocks", 0)
	lastZero := q.boolean("last_zero", false)
	noInverse := q.boolean("no_inverse", true)
	lengths := q.list("lengths")
	maxFactors := q.integer("max_factors", 0)
	if q.err != nil {
		writeError(w, q.err)
		return
	}
	if err := s.checkCount(n, blocks, lengths); err != nil {
		writeError(w, err)
		return
	}

	var c *big.Int
	switch f {
	case search.FamilyCogwheel:
		c, err = count.Cogwheels(n, blocks, lastZero, noInverse)
	case search.FamilyNested:
		c, err = count.Nested(n, blocks)
	case search.FamilyNestcog:
		if len(lengths) > 0 {
			c, err = count.Nestcogs(lengths, blocks, lastZero, noInverse)
			n = 0
		} else {
			c, err = count.NestcogsTotal(n, blocks, lastZero, noInverse, maxFactors)
		}
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{
		Family:  string(f),
		NScans:  n,
		Lengths: lengths,
		Blocks:  blocks,
		Count:   c.String(),
	})
}

// checkCount applies the server limits to a count request.
func (s *Server) checkCount(n, blocks int, lengths []int) error {
	if n > s.maxScans {
		return cerrors.Range("n %d exceeds the server limit %d", n, s.maxScans)
	}
	if blocks > s.maxBlocks {
		return cerrors.Range("blocks %d exceeds the server limit %d", blocks, s.maxBlocks)
	}
	if len(lengths) > s.maxBlocks {
		return cerrors.Range("%d sub-cycle lengths exceed the server limit %d", len(lengths), s.maxBlocks)
	}
	for _, l := range lengths {
		if l > s.maxScans {
			return cerrors.Range("sub-cycle length %d exceeds the server limit %d", l, s.maxScans)
		}
	}
	return nil
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	q := query{r: r}
	p0 := q.list("p0")
	pmax := q.list("pmax")
	symmetrical := q.boolean("symmetrical", false)
	if q.err != nil {
		writeError(w, q.err)
		return
	}
	p, err := count.PredictCogwheel(p0, pmax, symmetrical)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, cerrors.New(cerrors.ErrCodeUnavailable, "run archive is not configured"))
		return
	}
	q := query{r: r}
	filter := archive.Filter{
		Family:         r.URL.Query().Get("family"),
		DescriptorHash: r.URL.Query().Get("hash"),
		Limit:          q.integer("limit", 20),
	}
	if q.err != nil {
		writeError(w, q.err)
		return
	}
	runs, err := s.archive.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if runs == nil {
		runs = []*archive.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, cerrors.New(cerrors.ErrCodeUnavailable, "run archive is not configured"))
		return
	}
	rec, err := s.archive.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := cerrors.GetCode(err)
	switch {
	case code != "":
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		code = cerrors.ErrCodeUnavailable
	default:
		code = cerrors.ErrCodeInternal
	}
	writeJSON(w, statusFor(err), map[string]errorBody{
		"error": {Code: string(code), Message: cerrors.UserMessage(err)},
	})
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	switch cerrors.GetCode(err) {
	case cerrors.ErrCodeShape, cerrors.ErrCodeRange,
		cerrors.ErrCodeInvalidInput, cerrors.ErrCodeInvalidFormat,
		cerrors.ErrCodeInvalidFamily, cerrors.ErrCodeInvalidUnit:
		return http.StatusBadRequest
	case cerrors.ErrCodeNotFound, cerrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case cerrors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// =============================================================================
// Query parsing
// =============================================================================

// query reads typed query parameters and keeps the first error.
type query struct {
	r   *http.Request
	err error
}

func (q *query) get(name string) string { return q.r.URL.Query().Get(name) }

func (q *query) fail(name, v string, err error) {
	if q.err == nil {
		q.err = cerrors.Wrap(cerrors.ErrCodeInvalidInput, err, "invalid %s %q", name, v)
	}
}

func (q *query) integer(name string, def int) int {
	v := q.get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		q.fail(name, v, err)
	}
	return n
}

func (q *query) boolean(name string, def bool) bool {
	v := q.get(name)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		q.fail(name, v, err)
	}
	return b
}

// list parses a comma-separated list of integers.
func (q *query) list(name string) []int {
	v := q.get(name)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			q.fail(name, v, err)
			return nil
		}
		out[i] = n
	}
	return out
}
