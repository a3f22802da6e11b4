// Package infer transfers coding annotation from reference transcripts
// onto target transcripts that share exons with them.
package infer

import (
	"slices"

	"go.uber.org/zap"

	"github.com/aidantay/TranscriptCoder/internal/transcriptome"
)

// minAnchorSpan is the shortest start-to-stop span an anchor may carry
// (a start codon immediately followed by a stop codon).
const minAnchorSpan = 2 * transcriptome.BasesPerCodon

// ExonFinder locates the reference exon best suited to anchor the coding
// frame of a target transcript.
// An ExonFinder is read-only after construction and safe for concurrent use.
type ExonFinder struct {
	clusters map[transcriptome.Locus]*cluster
	logger   *zap.Logger
}

// cluster holds reference exons sharing one locus.
type cluster struct {
	order  int // Position of the first member in discovery order
	exons  []*transcriptome.Exon
	merged *transcriptome.MergedExon
}

// NewExonFinder indexes the exons of the reference transcripts of one
// chromosome. Discovery order follows the order of references, then the
// transcript order of each reference's exons.
func NewExonFinder(references []*transcriptome.Transcript) *ExonFinder {
	f := &ExonFinder{
		clusters: make(map[transcriptome.Locus]*cluster),
		logger:   zap.NewNop(),
	}

	order := 0
	for _, ref := range references {
		for _, e := range ref.OrderedExons() {
			key := e.Locus()
			c, ok := f.clusters[key]
			if !ok {
				c = &cluster{order: order}
				f.clusters[key] = c
			}
			c.exons = append(c.exons, e)
			order++
		}
	}

	for _, c := range f.clusters {
		c.merged = transcriptome.NewMergedExon(c.exons)
	}
	return f
}

// SetLogger sets the logger for transcripts without a usable anchor.
func (f *ExonFinder) SetLogger(logger *zap.Logger) {
	f.logger = logger
}

// ClosestKnownExon returns the best anchor among the reference exons
// structurally equal to an exon of target, or nil when none qualifies.
func (f *ExonFinder) ClosestKnownExon(target *transcriptome.Transcript) *transcriptome.MergedExon {
	var best *transcriptome.MergedExon
	for _, candidate := range f.Candidates(target) {
		if !IsValidAnchor(candidate) {
			continue
		}
		best = BetterExon(best, candidate)
	}

	if best == nil {
		f.logger.Warn("no usable exon in reference, transcript needs 3/6-frame translation",
			zap.String("transcript", target.ID))
	}
	return best
}

// Candidates returns the merged reference exons that match an exon of
// target, in discovery order.
func (f *ExonFinder) Candidates(target *transcriptome.Transcript) []*transcriptome.MergedExon {
	var matched []*cluster
	for _, e := range target.OrderedExons() {
		c, ok := f.clusters[e.Locus()]
		if !ok || slices.Contains(matched, c) {
			continue
		}
		matched = append(matched, c)
	}

	slices.SortFunc(matched, func(a, b *cluster) int { return a.order - b.order })

	candidates := make([]*transcriptome.MergedExon, len(matched))
	for i, c := range matched {
		candidates[i] = c.merged
	}
	return candidates
}

// IsValidAnchor reports whether a merged exon pins down the coding frame
// unambiguously enough to be used for inference.
func IsValidAnchor(m *transcriptome.MergedExon) bool {
	if !m.HasFrames() {
		return false
	}

	if len(m.StartAnchors) > 1 || len(m.StopAnchors) > 1 {
		return false
	}

	// A stop without a start leaves the first M undetermined
	if !m.HasStartAnchors() && m.HasStopAnchors() {
		return false
	}

	if m.HasStartAnchors() && m.HasStopAnchors() {
		start, stop := m.StartAnchors[0], m.StopAnchors[0]
		if m.IsForward() && start > stop {
			return false
		}
		if !m.IsForward() && start < stop {
			return false
		}

		span := stop - start
		if span < 0 {
			span = -span
		}
		span++
		if span < minAnchorSpan || span%transcriptome.BasesPerCodon != 0 {
			return false
		}
	}
	return true
}

// BetterExon picks between the current best anchor and the next
// candidate. Ties keep prev.
func BetterExon(prev, curr *transcriptome.MergedExon) *transcriptome.MergedExon {
	if prev == nil {
		return curr
	}
	if curr.Score > prev.Score {
		return curr
	}
	if curr.HasStartAnchors() && !prev.HasStartAnchors() {
		return curr
	}
	if len(curr.StopAnchors) > len(prev.StopAnchors) {
		return curr
	}
	return prev
}
