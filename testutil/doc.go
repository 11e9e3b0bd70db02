// Package testutil provides seeded random data generators for tests.
package testutil
