// Package report renders and persists scan results. The scanner core
// only exposes the sorted table and the top-K view; everything here is
// caller-side formatting.
package report
