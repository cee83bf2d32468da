// Package ingest reads exploration results CSV files into a session.
//
// A results file has a header row naming its columns, then one row per
// evaluated design:
//
//	Method,Iteration,Latency,AREA,DSP
//	FU,1,120,5400,12
//	FU,1,95,6100,16
//	Ant,1,100,5000,9
//
// Method, Iteration and the two configured objective columns must be present.
// Fields are separated by commas; empty fields are dropped before the row is
// matched against the header, so "a,,b" has two fields.
//
// The exploration tool appends to the file while it runs. A Reader remembers
// how many lines it has consumed and a later Scan only feeds the new rows. A
// trailing line without a newline is left for the next Scan.
package ingest
