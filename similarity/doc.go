// Package similarity computes position-wise cosine similarity between
// embedding matrices and the per-position differential between two
// network layers.
package similarity
