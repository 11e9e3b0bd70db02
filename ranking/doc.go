// Package ranking assembles per-variant summary records into a table
// ordered by impact.
package ranking
