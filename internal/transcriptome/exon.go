// Package transcriptome provides the transcript, exon and codon model
// shared by the reference and target annotations.
package transcriptome

import (
	"cmp"
	"fmt"
	"strconv"
)

// Unset marks a derived exon field that has not been computed.
const Unset = -100

// Strand values.
const (
	Forward int8 = 1
	Reverse int8 = -1
)

// StrandString renders a strand as "+" or "-".
func StrandString(strand int8) string {
	if strand == Reverse {
		return "-"
	}
	return "+"
}

// ExonID identifies an exon within a transcript. Original exons carry
// integer ids; UTR pieces split off during inference get id+0.1 so that
// they sort between their integer neighbours.
type ExonID float64

// ParseExonID parses an exon number such as "3" or "2.1".
func ParseExonID(s string) (ExonID, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse exon id %q: %w", s, err)
	}
	return ExonID(v), nil
}

func (id ExonID) String() string {
	return strconv.FormatFloat(float64(id), 'f', -1, 64)
}

// Locus is the structural identity of an exon. Two exons are the same
// exon when their loci are equal, whatever transcript they belong to.
type Locus struct {
	Chrom  string
	Strand int8
	Start  int64
	Stop   int64
}

// Exon is a contiguous region of a transcript.
type Exon struct {
	TranscriptID string
	ID           ExonID
	Chrom        string
	Start        int64 // 1-based
	Stop         int64 // 1-based, inclusive
	Strand       int8  // +1 or -1

	// Derived by Transcript.Update; Unset until then.
	Score       int   // -1 non-coding, 0 start/stop boundary, 1 coding
	Frame       int   // Coding frame (0, 1 or 2)
	StartAnchor int64 // First base of the start codon as read on the strand
	StopAnchor  int64 // Last base of the stop codon as read on the strand
}

// NewExon creates an exon with no derived annotation.
func NewExon(transcriptID string, id ExonID, chrom string, start, stop int64, strand int8) *Exon {
	return &Exon{
		TranscriptID: transcriptID,
		ID:           id,
		Chrom:        chrom,
		Start:        start,
		Stop:         stop,
		Strand:       strand,
		Score:        Unset,
		Frame:        Unset,
		StartAnchor:  Unset,
		StopAnchor:   Unset,
	}
}

// Clone copies the identity and coordinates of the exon.
// Derived fields are reset.
func (e *Exon) Clone() *Exon {
	return NewExon(e.TranscriptID, e.ID, e.Chrom, e.Start, e.Stop, e.Strand)
}

// Locus returns the structural identity of the exon.
func (e *Exon) Locus() Locus {
	return Locus{Chrom: e.Chrom, Strand: e.Strand, Start: e.Start, Stop: e.Stop}
}

// Len returns the number of bases in the exon.
func (e *Exon) Len() int64 {
	return e.Stop - e.Start + 1
}

func (e *Exon) IsForward() bool { return e.Strand == Forward }

func (e *Exon) HasScore() bool       { return e.Score != Unset }
func (e *Exon) HasFrame() bool       { return e.Frame != Unset }
func (e *Exon) HasStartAnchor() bool { return e.StartAnchor != Unset }
func (e *Exon) HasStopAnchor() bool  { return e.StopAnchor != Unset }

// SetStartAnchor records where translation begins within the exon.
func (e *Exon) SetStartAnchor(c *Codon) {
	if e.IsForward() {
		e.StartAnchor = c.Start
	} else {
		e.StartAnchor = c.Stop
	}
}

// SetStopAnchor records where translation ends within the exon.
func (e *Exon) SetStopAnchor(c *Codon) {
	if e.IsForward() {
		e.StopAnchor = c.Stop
	} else {
		e.StopAnchor = c.Start
	}
}

func (e *Exon) String() string {
	return fmt.Sprintf("%s\t%s\t%s\t%s\t%d\t%d", e.TranscriptID, e.ID, e.Chrom, StrandString(e.Strand), e.Start, e.Stop)
}

// CompareExons orders exons by id, then by position when ids tie.
func CompareExons(a, b *Exon) int {
	if c := cmp.Compare(a.ID, b.ID); c != 0 {
		return c
	}
	return comparePosition(a.Start, a.Stop, b.Start, b.Stop)
}

// comparePosition orders intervals only when one lies strictly left of the other.
func comparePosition(aStart, aStop, bStart, bStop int64) int {
	switch {
	case aStart < bStart && aStop < bStop:
		return -1
	case aStart > bStart && aStop > bStop:
		return 1
	default:
		return 0
	}
}
