// Package paginate drives pagination loops over the batch executor.
//
// Two modes exist. The heuristic paginator handles page-number APIs
// with no known upper bound: it requests pages in waves, continues a
// resource only while every page in its last wave came back full, and
// escalates to a larger look-ahead wave once continuation is
// confirmed. The bounded-range paginator handles offset/size APIs
// whose responses declare the total element count: it probes offset
// zero, computes the exact set of remaining offsets, and fires them
// all in one further wave.
//
// Example usage:
//
//	exec := batch.New(batch.DefaultConfig(), logger)
//	pager := paginate.NewHeuristic(exec, paginate.DefaultHeuristicConfig(), logger)
//	err := pager.Run(ctx, seeds, func(res batch.Result) error {
//		// one result per fetched page, emitted as it arrives
//		return nil
//	})
//
// Waves are strictly sequential: the next wave is never built until
// the previous wave's pages are classified, because the continuation
// decision depends on the full wave. Within a call, resources with
// different URLs are independent pipelines; one resource's failure
// never blocks its siblings.
package paginate
