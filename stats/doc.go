// Package stats reduces a layer-differential series to its summary
// statistics.
package stats
