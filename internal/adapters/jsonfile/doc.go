// Package jsonfile reads and writes the pipeline's JSON contracts: run
// logs, the presentation manifest, review batches, reviewer corrections
// and prior-run classification plans.
//
// Domain types carry no JSON tags; each contract has its own document type
// here so wire names stay stable when domain fields move.
package jsonfile
