// Package mutscan ranks codon variants of a gene by how much they shift
// the sequence's relationship to its source embedding between a shallow
// and a deep layer of a protein language model.
//
// For every variant the scanner computes position-wise cosine similarity
// to the source at both layers, takes the per-position deep − shallow
// differential, reduces it to seven summary statistics and finally sorts
// all variants by mean absolute differential, descending.
package mutscan
