// Package mount commits save payloads to a storage medium.
//
// Direct writes every save immediately below an application-data directory.
// Throttled serves write-constrained console volumes: saves are queued, one
// entry per path, and committed in cycles bounded by a byte budget and a
// write-count budget. After each cycle a cooldown starts; it is short when
// the queue drained and long when work remains.
//
//	mp, _ := mount.NewThrottled(provider, "rytmos",
//		mount.WithBudget(mount.Budget{MaxWrites: 8}),
//		mount.WithExitGuard(guard),
//	)
//	go mp.Run(ctx, time.Second) // drains when ctx is cancelled
//
// Three flush modes exist. FlushDue respects the cooldown, FlushForce skips
// it but keeps the budget, and FlushDrain writes everything. Close and Run
// drain on shutdown so queued saves are never dropped.
package mount
