// Package npy reads tensors from NumPy .npy files.
//
// Only the subset of the format produced by the embedding export is
// supported: format versions 1.0 and 2.0, little-endian float32/float64
// payloads, C (row-major) order. The reader exists so that the comparison
// engine itself never depends on an array-serialization format; callers
// go through the embedding store.
package npy
