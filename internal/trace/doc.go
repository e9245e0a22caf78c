// Package trace records begin/end spans of the compile pipeline so that slow
// or hung tool runs can be found.
//
//	gramc compile --trace=- --trace-level=detail grammar/Expr.jjt
//
// Levels select scopes: phase shows commands and per-grammar compiles, detail
// adds pipeline stages, debug adds every process launch. Events go to a
// stream (written at once), a ring (the last N events, written when the
// tracer closes) or both.
//
// External tools run without a timeout. A Heartbeat lists the spans that are
// still open at each tick, which names the tool run that never returned.
package trace
