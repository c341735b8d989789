/*
Package memory keeps the service inside its container memory limit.

Every uploaded original is held in memory until the batch is cleared, and
RAW files are up to 50 MiB each. Two mechanisms keep that in check.

# Soft limit

ConfigureFromEnv sets the Go soft memory limit (GOMEMLIMIT) from a container
limit passed in MEMORY_LIMIT, so the garbage collector works harder before
the kernel OOM killer steps in. An explicit GOMEMLIMIT always wins.

	MEMORY_LIMIT=2147483648  # 2 GiB, usually from the Downward API
	MEMORY_RATIO=0.85        # heap share, the rest is left for libvips

# Intake backpressure

A Monitor samples heap usage. Above the pause mark it forces a collection and
makes Wait block, which the intake pipeline calls before reading each file.
Intake resumes once usage falls below the resume mark:

	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()
	defer monitor.Stop()

	pipeline := intake.New(extractor, intake.Options{Gate: monitor})

Usage and pause state are exported as sku_renamer_memory_* metrics.
*/
package memory
