// Package commands defines the dseframe CLI.
//
// Commands
//
//   - analyze   Load a results file, score every group, print a table
//   - watch     Follow a results file as the exploration tool appends to it
//   - run       Launch the exploration tool and optionally follow its results
//   - columns   List the objective columns of a results file
//
// # Configuration
//
// Objective columns and the malformed-record policy come from, in increasing
// precedence: the axes remembered from the last run, the --config YAML file,
// DSEFRAME_* environment variables, and the --x-var, --y-var and --policy
// flags.
//
// A results file given to analyze or watch is remembered; both commands fall
// back to it when called without an argument.
package commands
