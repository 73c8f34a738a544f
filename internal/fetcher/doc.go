// Package fetcher is the resumable download engine.
//
// Each task goes through a fixed state machine: precheck (skip files that
// already exist), probe (measure the .part sidecar to find the resume
// offset), request (ranged GET when resuming), validate (status code and
// size headers), stream (append to the sidecar in fixed-size chunks,
// emitting progress), finalize (atomic rename once the sidecar reaches
// the expected size).
//
// Resumability is derived purely from the sidecar's size on disk; no
// transfer state is persisted. An interrupted transfer simply leaves its
// sidecar behind and the next invocation resumes from there with a
// Range request.
//
// # Coordinator
//
// Run drains a task list either sequentially with a fixed inter-task
// delay, or through a bounded worker pool. Per-task failures are isolated;
// they never abort sibling tasks.
//
//	f := fetcher.New(fetcher.Options{Emitter: em})
//	outcomes := f.Run(ctx, tasks, cred, fetcher.RunOptions{
//	    Policy:  fetcher.PolicyPool,
//	    Workers: 3,
//	})
package fetcher
