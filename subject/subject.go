// Package subject resolves per-subject metadata.
//
// The metadata file is a CSV with one row per subject. It is read once
// per run to build the SubjectContext used for storage keys; the
// comparison math never touches it.
package subject

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// NotFoundError is returned when the requested subject id has no row.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("subject: id %q not found", e.ID)
}

// Context is the read-only per-subject record resolved once per run.
type Context struct {
	ID          string
	Gene        string
	Position    int
	RegionStart int
	RegionEnd   int
	SourceCodon string
}

var required = []string{"subject_id", "gene", "position", "region_start", "region_end", "source_codon"}

// Load reads subject metadata from CSV and returns the context for id.
func Load(r io.Reader, id string) (Context, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return Context{}, fmt.Errorf("subject: read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, col := range header {
		cols[strings.TrimSpace(strings.ToLower(col))] = i
	}
	for _, col := range required {
		if _, ok := cols[col]; !ok {
			return Context{}, fmt.Errorf("subject: header %v missing column %q", header, col)
		}
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Context{}, fmt.Errorf("subject: read row: %w", err)
		}
		if strings.TrimSpace(row[cols["subject_id"]]) != id {
			continue
		}

		ctx := Context{
			ID:          id,
			Gene:        strings.TrimSpace(row[cols["gene"]]),
			SourceCodon: strings.ToUpper(strings.TrimSpace(row[cols["source_codon"]])),
		}
		if ctx.Position, err = atoi(row[cols["position"]], "position"); err != nil {
			return Context{}, err
		}
		if ctx.RegionStart, err = atoi(row[cols["region_start"]], "region_start"); err != nil {
			return Context{}, err
		}
		if ctx.RegionEnd, err = atoi(row[cols["region_end"]], "region_end"); err != nil {
			return Context{}, err
		}
		return ctx, nil
	}

	return Context{}, &NotFoundError{ID: id}
}

// LoadFile reads subject metadata from the named CSV file.
func LoadFile(path, id string) (Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return Context{}, fmt.Errorf("subject: open %s: %w", path, err)
	}
	defer f.Close()

	return Load(f, id)
}

func atoi(s, field string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("subject: bad %s %q: %w", field, s, err)
	}
	return v, nil
}
