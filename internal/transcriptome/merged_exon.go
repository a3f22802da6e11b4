package transcriptome

import "slices"

// MergedExon aggregates the annotation of structurally equal exons drawn
// from several reference transcripts.
type MergedExon struct {
	Exon // Coordinates of the first member

	Frames       []int   // Distinct coding frames, ascending
	StartAnchors []int64 // Distinct start codon anchors, ascending
	StopAnchors  []int64 // Distinct stop codon anchors, ascending
	Members      int
}

// NewMergedExon merges exons that share one locus. The score is the sum
// of the members' scores, or Unset when no member is scored.
func NewMergedExon(exons []*Exon) *MergedExon {
	if len(exons) == 0 {
		return nil
	}

	first := exons[0]
	m := &MergedExon{
		Exon:    *NewExon(first.TranscriptID, first.ID, first.Chrom, first.Start, first.Stop, first.Strand),
		Members: len(exons),
	}

	for _, e := range exons {
		if e.HasScore() {
			if m.HasScore() {
				m.Score += e.Score
			} else {
				m.Score = e.Score
			}
		}
		if e.HasFrame() {
			m.Frames = append(m.Frames, e.Frame)
		}
		if e.HasStartAnchor() {
			m.StartAnchors = append(m.StartAnchors, e.StartAnchor)
		}
		if e.HasStopAnchor() {
			m.StopAnchors = append(m.StopAnchors, e.StopAnchor)
		}
	}

	m.Frames = distinct(m.Frames)
	m.StartAnchors = distinct(m.StartAnchors)
	m.StopAnchors = distinct(m.StopAnchors)
	return m
}

func distinct[T int | int64](values []T) []T {
	slices.Sort(values)
	return slices.Compact(values)
}

func (m *MergedExon) HasFrames() bool       { return len(m.Frames) > 0 }
func (m *MergedExon) HasStartAnchors() bool { return len(m.StartAnchors) > 0 }
func (m *MergedExon) HasStopAnchors() bool  { return len(m.StopAnchors) > 0 }

// IsUnambiguous reports whether the merged annotation pins down a single
// coding frame together with both codon anchors.
func (m *MergedExon) IsUnambiguous() bool {
	return len(m.Frames) == 1 && m.HasStartAnchors() && m.HasStopAnchors()
}
