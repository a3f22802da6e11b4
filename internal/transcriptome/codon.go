package transcriptome

import (
	"cmp"
	"fmt"
)

// CodonKind distinguishes start codons from stop codons.
type CodonKind uint8

const (
	StartCodon CodonKind = iota
	StopCodon
)

func (k CodonKind) String() string {
	if k == StopCodon {
		return "stop_codon"
	}
	return "start_codon"
}

// Codon is an annotated start or stop codon.
type Codon struct {
	TranscriptID string
	ExonID       ExonID // Exon the codon belongs to
	Kind         CodonKind
	Chrom        string
	Start        int64 // 1-based
	Stop         int64 // 1-based, inclusive
	Strand       int8
}

// CodonKey identifies a codon within its transcript.
type CodonKey struct {
	ExonID ExonID
	Kind   CodonKind
}

// Key returns the codon's key within its transcript.
func (c *Codon) Key() CodonKey {
	return CodonKey{ExonID: c.ExonID, Kind: c.Kind}
}

func (c *Codon) String() string {
	return fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%d\t%d", c.TranscriptID, c.ExonID, c.Kind, c.Chrom, StrandString(c.Strand), c.Start, c.Stop)
}

// CompareCodons orders codons by exon id, start before stop within the
// same exon, then by position.
func CompareCodons(a, b *Codon) int {
	if c := cmp.Compare(a.ExonID, b.ExonID); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	return comparePosition(a.Start, a.Stop, b.Start, b.Stop)
}
