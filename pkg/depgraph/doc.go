// Package depgraph tracks observers of observables as a directed acyclic
// graph and batches change notifications per tick.
//
// Observables are registered once; edges (an observer watching a source)
// are added and removed explicitly. Cycles are rejected at registration
// time rather than detected lazily, so the graph is acyclic by
// construction and a plain depth-first walk is always sufficient for
// reachability queries.
package depgraph
