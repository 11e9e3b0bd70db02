// Package embedding defines the in-memory representation of per-position
// embedding matrices loaded from a language model checkpoint.
package embedding
