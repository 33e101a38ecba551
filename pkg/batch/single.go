package batch

import (
	"context"
	"errors"
	"net/http"
)

// Wave executes a batch and applies facade classification to every
// record: 2xx and 4xx become successful Results with the body under
// Output, while 5xx and unresolved 1xx/3xx statuses surface as a
// per-descriptor *StatusError so one descriptor's server error does
// not discard its siblings. A transport failure still fails the whole
// wave.
func (e *Executor) Wave(ctx context.Context, batch []Descriptor) ([]Outcome, error) {
	records, err := e.Do(ctx, batch)
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, len(records))
	for i, rec := range records {
		outcomes[i] = e.classify(rec)
	}
	return outcomes, nil
}

// classify turns a record into its facade outcome. Status metadata is
// not echoed back on success; the body moves under Output.
func (e *Executor) classify(rec Record) Outcome {
	switch Classify(rec.Status) {
	case ClassSuccess, ClassClient:
		return Outcome{Result: Result{
			Descriptor: rec.Descriptor,
			Status:     rec.Status,
			Output:     rec.Body,
		}}
	default:
		err := &StatusError{
			URL:    rec.URL,
			Status: rec.Status,
			Class:  Classify(rec.Status),
		}
		e.logger.Error().
			Str("url", rec.URL).
			Int("status", rec.Status).
			Str("error_class", string(err.Class)).
			Msg("Request failed")
		return Outcome{Err: err}
	}
}

// FetchOne executes exactly one descriptor through the batch executor
// and classifies the single record. A 404 is a successful return with
// Output populated; only a transport failure or a "not 2xx/4xx"
// status is an error.
func (e *Executor) FetchOne(ctx context.Context, d Descriptor) (Result, error) {
	outcomes, err := e.Wave(ctx, []Descriptor{d})
	if err != nil {
		return Result{}, err
	}
	oc := outcomes[0]
	if oc.Err != nil {
		return Result{}, oc.Err
	}
	return oc.Result, nil
}

// Invoke performs one call and maps its outcome to a process exit
// status (see ExitCode). The record is returned alongside the code so
// a caller can still inspect the body; on transport failure the
// record is zero.
func (e *Executor) Invoke(ctx context.Context, d Descriptor) (Record, int) {
	records, err := e.Do(ctx, []Descriptor{d})
	if err != nil {
		return Record{}, ExitCode(0, err)
	}
	rec := records[0]
	return rec, ExitCode(rec.Status, nil)
}

// IsNotFound reports whether a facade result carries a 404 status.
// Callers gating a pipeline on existence use it instead of re-parsing
// the body.
func IsNotFound(res Result) bool {
	return res.Status == http.StatusNotFound
}

// AsStatusError unwraps a *StatusError from err, or returns nil.
func AsStatusError(err error) *StatusError {
	var se *StatusError
	if errors.As(err, &se) {
		return se
	}
	return nil
}
