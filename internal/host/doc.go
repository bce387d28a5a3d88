// Package host runs a workbench on a single goroutine.
//
// A reactive runtime must not be shared between goroutines, so every
// operation on the workbench is posted to the host loop with Do and runs
// there. The loop also owns a snapshot effect: whenever any signal that
// contributes to the snapshot changes, the new snapshot is pushed to all
// subscribers. Subscribers that fall behind lose intermediate snapshots
// but always receive the latest one.
//
// With watching enabled, the host reloads open text documents when they
// change on disk.
package host
