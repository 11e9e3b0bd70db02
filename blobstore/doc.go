// Package blobstore abstracts read access to embedding blobs.
//
// Embedding exports land either on the local filesystem or in object
// storage (S3 or any S3-compatible endpoint via MinIO). The store only
// needs to open whole blobs for sequential reading and to list blob
// names under a prefix; there is no write path in the scanner.
package blobstore
