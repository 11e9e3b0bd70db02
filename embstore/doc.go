// Package embstore resolves subject/gene/layer keys to embedding
// matrices backed by a blobstore.
package embstore
