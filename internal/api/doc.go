// Package api carries reconciliation requests between the CLI and a backend.
//
// A Service is either Local, which runs the sync engine in-process against
// the SQLite catalogue, or Client, which talks JSON over HTTP to a Server
// running the same engine. Both produce identical results for the same
// batch and remote state.
package api
