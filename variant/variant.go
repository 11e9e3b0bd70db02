// Package variant derives variant identity from embedding file names.
//
// Variant files follow the export convention
// `{gene}_{position}_{codon}_L{layer}.npy`; the codon sits at a fixed
// byte offset in the base name and the layer token distinguishes the
// shallow and deep exports of the same variant. Keeping the string
// coupling here means storage-layout changes never reach the
// statistics engine.
package variant

import (
	"fmt"
	"path"
	"strings"
)

// codonLen is the fixed length of the extracted code.
const codonLen = 3

// CodonFromFile extracts the 3-letter codon at the given byte offset of
// the file's base name.
func CodonFromFile(name string, offset int) (string, error) {
	base := path.Base(name)
	if offset < 0 {
		return "", fmt.Errorf("variant: negative codon offset %d", offset)
	}
	if len(base) < offset+codonLen {
		return "", fmt.Errorf("variant: file name %q too short for codon at offset %d", base, offset)
	}
	return strings.ToUpper(base[offset : offset+codonLen]), nil
}

// CompanionFile derives the deep-layer companion of a shallow-layer
// variant file by substituting the layer token. Only the final
// `_L{shallow}` token before the extension is replaced, so codes that
// happen to contain digits are never corrupted.
func CompanionFile(name string, shallowLayer, deepLayer int) (string, error) {
	shallowTok := fmt.Sprintf("_L%d", shallowLayer)
	deepTok := fmt.Sprintf("_L%d", deepLayer)

	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	if !strings.HasSuffix(stem, shallowTok) {
		return "", fmt.Errorf("variant: file %q does not carry layer token %q", name, shallowTok)
	}
	return strings.TrimSuffix(stem, shallowTok) + deepTok + ext, nil
}

// Label builds the composite display label "{aminoAcid}_{codon}".
func Label(aminoAcid, codon string) string {
	return aminoAcid + "_" + codon
}
