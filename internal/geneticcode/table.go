// Package geneticcode provides codon translation tables.
package geneticcode

import (
	"errors"
	"fmt"
	"strings"
)

// BasesPerCodon is the number of nucleotides in a codon.
const BasesPerCodon = 3

// Amino acid symbols with special meaning during inference.
const (
	Methionine = 'M'
	Stop       = '*'
)

// ErrUnknownCodon is returned when a triplet has no entry in the table.
var ErrUnknownCodon = errors.New("unknown codon")

// UnknownCodonError reports the codon that could not be translated.
type UnknownCodonError struct {
	Codon  string
	Offset int // 0-based offset of the codon in the translated sequence
}

func (e *UnknownCodonError) Error() string {
	return fmt.Sprintf("%s %q at offset %d", ErrUnknownCodon, e.Codon, e.Offset)
}

func (e *UnknownCodonError) Unwrap() error {
	return ErrUnknownCodon
}

// standardCode is NCBI translation table 1.
var standardCode = map[string]byte{
	"TTT": 'F', "TTC": 'F', "TTA": 'L', "TTG": 'L',
	"TCT": 'S', "TCC": 'S', "TCA": 'S', "TCG": 'S',
	"TAT": 'Y', "TAC": 'Y', "TAA": '*', "TAG": '*',
	"TGT": 'C', "TGC": 'C', "TGA": '*', "TGG": 'W',

	"CTT": 'L', "CTC": 'L', "CTA": 'L', "CTG": 'L',
	"CCT": 'P', "CCC": 'P', "CCA": 'P', "CCG": 'P',
	"CAT": 'H', "CAC": 'H', "CAA": 'Q', "CAG": 'Q',
	"CGT": 'R', "CGC": 'R', "CGA": 'R', "CGG": 'R',

	"ATT": 'I', "ATC": 'I', "ATA": 'I', "ATG": 'M',
	"ACT": 'T', "ACC": 'T', "ACA": 'T', "ACG": 'T',
	"AAT": 'N', "AAC": 'N', "AAA": 'K', "AAG": 'K',
	"AGT": 'S', "AGC": 'S', "AGA": 'R', "AGG": 'R',

	"GTT": 'V', "GTC": 'V', "GTA": 'V', "GTG": 'V',
	"GCT": 'A', "GCC": 'A', "GCA": 'A', "GCG": 'A',
	"GAT": 'D', "GAC": 'D', "GAA": 'E', "GAG": 'E',
	"GGT": 'G', "GGC": 'G', "GGA": 'G', "GGG": 'G',
}

// Table maps codons to single-letter amino acids.
// A Table is read-only after construction and safe for concurrent use.
type Table struct {
	codons map[string]byte
}

// New creates a table from a codon to amino acid mapping.
// Codons are matched case-sensitively, exactly as given.
func New(codons map[string]byte) *Table {
	t := &Table{codons: make(map[string]byte, len(codons))}
	for codon, aa := range codons {
		t.codons[codon] = aa
	}
	return t
}

// Standard returns the standard genetic code.
func Standard() *Table {
	return New(standardCode)
}

// Len returns the number of codons in the table.
func (t *Table) Len() int {
	return len(t.codons)
}

// Lookup returns the amino acid for a codon.
func (t *Table) Lookup(codon string) (byte, bool) {
	aa, ok := t.codons[codon]
	return aa, ok
}

// Translate translates a nucleotide sequence into amino acids, reading
// triplets from the first base. A trailing partial codon is ignored.
// Reverse-strand sequence must already be reverse complemented.
func (t *Table) Translate(seq string) (string, error) {
	n := (len(seq) / BasesPerCodon) * BasesPerCodon

	var result strings.Builder
	result.Grow(n / BasesPerCodon)

	for i := 0; i < n; i += BasesPerCodon {
		codon := seq[i : i+BasesPerCodon]
		aa, ok := t.Lookup(codon)
		if !ok {
			return "", &UnknownCodonError{Codon: codon, Offset: i}
		}
		result.WriteByte(aa)
	}

	return result.String(), nil
}
