// Package snapsync provides a durability sidecar for a single mutable
// database file that lives on fast, ephemeral local storage.
//
// On start it restores the latest snapshot from a remote durable store into
// the local workspace. While running it periodically checkpoints and copies
// the database file back to the store, approximating atomic replacement with
// a temp-object-then-replace pattern. On shutdown it drains any in-flight
// sync and performs one final synchronous sync before the process exits.
//
// Remote state lags local state by at most one sync interval; losing up to
// one interval of writes on a hard kill is an accepted trade-off, not a bug.
// This is not a replication protocol: single writer, last sync wins, no
// history.
//
// Example usage:
//
//	cfg := snapsync.DefaultConfig()
//	cfg.WorkspaceDir = "/var/lib/myapp"
//	cfg.RemoteURL = "gs://my-bucket/myapp"
//
//	s, err := snapsync.New(cfg, snapsync.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := s.Start(ctx); err != nil { // restores before returning
//	    log.Fatal(err)
//	}
//	launchWriter() // safe: restore has completed
//	...
//	if err := s.Stop(); err != nil { // drains, then one final sync
//	    log.Fatal(err)
//	}
package snapsync
