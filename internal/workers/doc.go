/*
Package workers sizes the intake worker pool.

Decoding and re-encoding previews is CPU bound, so the pool follows
runtime.GOMAXPROCS(0), which honours container CPU limits, rather than
runtime.NumCPU(), which reports the host.

	n := workers.ForCPU(batch.MaxImages) // never more workers than files

The INTAKE_WORKERS environment variable overrides the computed value; the
limit still applies to the override.
*/
package workers
