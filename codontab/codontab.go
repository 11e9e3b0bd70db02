// Package codontab loads the codon → amino-acid lookup table.
//
// The table is a CSV file with a `codon,aa` header, loaded once at
// startup and immutable for the duration of a run.
package codontab

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// UnknownCodonError is returned when a codon has no table entry.
// An unmapped codon must never silently become a blank label.
type UnknownCodonError struct {
	Codon string
}

func (e *UnknownCodonError) Error() string {
	return fmt.Sprintf("codontab: unknown codon %q", e.Codon)
}

// Table maps codons to amino-acid labels.
type Table struct {
	aa map[string]string
}

// Load reads a codon table from CSV with columns `codon,aa`.
func Load(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("codontab: read header: %w", err)
	}

	codonCol, aaCol := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(strings.ToLower(col)) {
		case "codon":
			codonCol = i
		case "aa":
			aaCol = i
		}
	}
	if codonCol < 0 || aaCol < 0 {
		return nil, fmt.Errorf("codontab: header %v missing codon/aa columns", header)
	}

	aa := make(map[string]string)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("codontab: read row: %w", err)
		}
		codon := strings.ToUpper(strings.TrimSpace(row[codonCol]))
		aa[codon] = strings.TrimSpace(row[aaCol])
	}
	if len(aa) == 0 {
		return nil, fmt.Errorf("codontab: table is empty")
	}

	return &Table{aa: aa}, nil
}

// LoadFile reads a codon table from the named CSV file.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("codontab: open %s: %w", path, err)
	}
	defer f.Close()

	return Load(f)
}

// Len returns the number of codons in the table.
func (t *Table) Len() int {
	return len(t.aa)
}

// Lookup resolves a codon to its amino-acid label.
// Lookup is case-insensitive on the codon.
func (t *Table) Lookup(codon string) (string, error) {
	aa, ok := t.aa[strings.ToUpper(codon)]
	if !ok {
		return "", &UnknownCodonError{Codon: codon}
	}
	return aa, nil
}
