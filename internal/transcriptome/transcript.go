package transcriptome

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aidantay/TranscriptCoder/internal/genome"
)

// BasesPerCodon is the number of nucleotides in a codon.
const BasesPerCodon = 3

// ErrNoCodons is returned when a coding query is made on a transcript
// without start and stop codons.
var ErrNoCodons = errors.New("transcript has no start and stop codons")

// Transcript is a single isoform with its exons and codons.
type Transcript struct {
	ID     string // Transcript ID (e.g., ENST00000311936.8)
	Chrom  string
	Origin string // Source column of the annotation
	Start  int64  // 1-based
	Stop   int64  // 1-based, inclusive
	Strand int8   // +1 or -1

	Exons  map[ExonID]*Exon
	Codons map[CodonKey]*Codon
}

// NewTranscript creates a transcript with no exons or codons.
func NewTranscript(id, chrom, origin string, start, stop int64, strand int8) *Transcript {
	return &Transcript{
		ID:     id,
		Chrom:  chrom,
		Origin: origin,
		Start:  start,
		Stop:   stop,
		Strand: strand,
		Exons:  make(map[ExonID]*Exon),
		Codons: make(map[CodonKey]*Codon),
	}
}

// Clone copies the transcript identity and its exon coordinates.
// Codons and derived exon annotation are not copied.
func (t *Transcript) Clone() *Transcript {
	c := NewTranscript(t.ID, t.Chrom, t.Origin, t.Start, t.Stop, t.Strand)
	for _, e := range t.Exons {
		c.AddExon(e.Clone())
	}
	return c
}

func (t *Transcript) IsForward() bool { return t.Strand == Forward }

// Rename changes the transcript id, along with the owner id of its
// exons and codons.
func (t *Transcript) Rename(id string) {
	t.ID = id
	for _, e := range t.Exons {
		e.TranscriptID = id
	}
	for _, c := range t.Codons {
		c.TranscriptID = id
	}
}

// AddExon adds an exon, replacing any exon with the same id.
func (t *Transcript) AddExon(e *Exon) {
	t.Exons[e.ID] = e
}

// AddCodon adds a codon, replacing any codon of the same kind in the same exon.
func (t *Transcript) AddCodon(c *Codon) {
	t.Codons[c.Key()] = c
}

// Exon returns the exon with the given id, or nil.
func (t *Transcript) Exon(id ExonID) *Exon {
	return t.Exons[id]
}

// HasExon reports whether an exon with the given id exists.
func (t *Transcript) HasExon(id ExonID) bool {
	_, ok := t.Exons[id]
	return ok
}

// OrderedExons returns the exons in transcript order.
func (t *Transcript) OrderedExons() []*Exon {
	exons := slices.Collect(maps.Values(t.Exons))
	slices.SortStableFunc(exons, CompareExons)
	return exons
}

// OrderedCodons returns the codons in transcript order.
func (t *Transcript) OrderedCodons() []*Codon {
	codons := slices.Collect(maps.Values(t.Codons))
	slices.SortStableFunc(codons, CompareCodons)
	return codons
}

// StartCodon returns the first codon in transcript order, or nil.
func (t *Transcript) StartCodon() *Codon {
	codons := t.OrderedCodons()
	if len(codons) == 0 {
		return nil
	}
	return codons[0]
}

// StopCodon returns the last codon in transcript order, or nil.
func (t *Transcript) StopCodon() *Codon {
	codons := t.OrderedCodons()
	if len(codons) == 0 {
		return nil
	}
	return codons[len(codons)-1]
}

func (t *Transcript) hasCodonKind(kind CodonKind) bool {
	for key := range t.Codons {
		if key.Kind == kind {
			return true
		}
	}
	return false
}

// IsValid reports whether the transcript has both a start and a stop
// codon, or neither.
func (t *Transcript) IsValid() bool {
	return t.hasCodonKind(StartCodon) == t.hasCodonKind(StopCodon)
}

// IsCoding reports whether the transcript has codons.
func (t *Transcript) IsCoding() bool {
	return len(t.Codons) > 0
}

// Update scores each exon, assigns coding frames and records the codon
// anchors on the exons that own them. Transcripts without codons are
// left untouched.
func (t *Transcript) Update() {
	startCodon := t.StartCodon()
	stopCodon := t.StopCodon()
	if startCodon == nil || stopCodon == nil {
		return
	}

	startID := startCodon.ExonID
	stopID := stopCodon.ExonID

	var prev *Exon
	for _, e := range t.OrderedExons() {
		switch {
		case e.ID == startID || e.ID == stopID:
			e.Score = 0
		case e.ID > startID && e.ID < stopID:
			e.Score = 1
		default:
			e.Score = -1
		}

		switch {
		case e.ID == startID && e.ID == stopID:
			e.Frame = 0
			e.SetStartAnchor(startCodon)
			e.SetStopAnchor(stopCodon)
		case e.ID == startID:
			e.Frame = t.startFrame(e, startCodon)
			e.SetStartAnchor(startCodon)
		case e.ID == stopID:
			e.SetStopAnchor(stopCodon)
		case e.Score == 1 && prev != nil && prev.HasFrame():
			e.Frame = continuedFrame(e, prev)
		}
		prev = e
	}
}

// startFrame is the number of bases left over at the end of the start
// exon once whole codons have been read from the start codon.
func (t *Transcript) startFrame(e *Exon, startCodon *Codon) int {
	n := e.Stop - startCodon.Start + 1
	if !t.IsForward() {
		n = startCodon.Stop - e.Start + 1
	}
	return int(abs(n) % BasesPerCodon)
}

// continuedFrame carries the frame of the previous exon across the splice.
func continuedFrame(e, prev *Exon) int {
	carried := int64((BasesPerCodon - prev.Frame) % BasesPerCodon)
	return int(abs(e.Len()-carried) % BasesPerCodon)
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// ExonSequences returns the sequence of each exon in transcript order,
// as read on the transcript's strand.
func (t *Transcript) ExonSequences(seq *genome.Sequence) ([]string, error) {
	exons := t.OrderedExons()
	result := make([]string, 0, len(exons))
	for _, e := range exons {
		s, err := seq.Stranded(e.Start, e.Stop, t.Strand)
		if err != nil {
			return nil, fmt.Errorf("exon %s of %s: %w", e.ID, t.ID, err)
		}
		result = append(result, s)
	}
	return result, nil
}

// CodingSequence returns the concatenated sequence of the exons from the
// start codon exon through the stop codon exon.
func (t *Transcript) CodingSequence(seq *genome.Sequence) (string, error) {
	startCodon := t.StartCodon()
	stopCodon := t.StopCodon()
	if startCodon == nil || stopCodon == nil {
		return "", fmt.Errorf("%s: %w", t.ID, ErrNoCodons)
	}

	exons := t.OrderedExons()
	first := slices.IndexFunc(exons, func(e *Exon) bool { return e.ID == startCodon.ExonID })
	last := slices.IndexFunc(exons, func(e *Exon) bool { return e.ID == stopCodon.ExonID })
	if first < 0 || last < 0 || first > last {
		return "", fmt.Errorf("%s: codon exons %s and %s not found in order", t.ID, startCodon.ExonID, stopCodon.ExonID)
	}

	sequences, err := t.ExonSequences(seq)
	if err != nil {
		return "", err
	}
	return strings.Join(sequences[first:last+1], ""), nil
}

func (t *Transcript) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\t%s\t%s\t%s\t%d\t%d\n", t.ID, t.Chrom, t.Origin, StrandString(t.Strand), t.Start, t.Stop)
	for _, e := range t.OrderedExons() {
		fmt.Fprintf(&b, "\t%s\n", e)
	}
	for _, c := range t.OrderedCodons() {
		fmt.Fprintf(&b, "\t\t%s\n", c)
	}
	return b.String()
}

// CompareTranscripts orders transcripts by chromosome (case-insensitive),
// start position and id.
func CompareTranscripts(a, b *Transcript) int {
	if c := strings.Compare(strings.ToLower(a.Chrom), strings.ToLower(b.Chrom)); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Start, b.Start); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}
