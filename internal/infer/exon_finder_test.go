package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/aidantay/TranscriptCoder/internal/transcriptome"
)

func TestExonFinder_CandidatesInDiscoveryOrder(t *testing.T) {
	refA := makeTranscript("REFA", fwd,
		[]span{{1, 1, 30}, {2, 41, 70}},
		span{1, 10, 12}, span{2, 50, 52})
	refB := makeTranscript("REFB", fwd,
		[]span{{1, 41, 70}, {2, 81, 99}},
		span{1, 44, 46}, span{2, 90, 92})

	target := makeTranscript("TX", fwd, []span{{1, 1, 30}, {2, 41, 70}, {3, 81, 99}, {4, 200, 230}})

	f := NewExonFinder([]*transcriptome.Transcript{refA, refB})
	candidates := f.Candidates(target)
	require.Len(t, candidates, 3)

	assert.Equal(t, int64(1), candidates[0].Start)
	assert.Equal(t, int64(41), candidates[1].Start)
	assert.Equal(t, int64(81), candidates[2].Start)

	// Exon 41-70 is the stop exon of REFA and the start exon of REFB
	shared := candidates[1]
	assert.Equal(t, 2, shared.Members)
	assert.Equal(t, "REFA", shared.TranscriptID)
	assert.Equal(t, 0, shared.Score)
	assert.Equal(t, []int64{44}, shared.StartAnchors)
	assert.Equal(t, []int64{52}, shared.StopAnchors)
}

func TestExonFinder_ClosestKnownExon(t *testing.T) {
	// REF1 codes across three exons, so its middle exon scores 1
	ref1 := makeTranscript("REF1", fwd,
		[]span{{1, 1, 30}, {2, 41, 70}, {3, 81, 99}},
		span{1, 10, 12}, span{3, 85, 87})
	ref2 := makeTranscript("REF2", fwd,
		[]span{{1, 1, 30}, {2, 41, 60}},
		span{1, 10, 12}, span{2, 50, 52})

	target := makeTranscript("TX", fwd, []span{{1, 1, 30}, {2, 41, 70}})

	f := NewExonFinder([]*transcriptome.Transcript{ref1, ref2})
	best := f.ClosestKnownExon(target)
	require.NotNil(t, best)
	assert.Equal(t, int64(41), best.Start, "coding exon outscores the start exon")
	assert.Equal(t, 1, best.Score)
}

func TestExonFinder_NoMatch(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	ref := makeTranscript("REF", fwd,
		[]span{{1, 1, 30}, {2, 41, 70}},
		span{1, 10, 12}, span{2, 50, 52})
	target := makeTranscript("TX", fwd, []span{{1, 2, 30}, {2, 41, 71}})

	f := NewExonFinder([]*transcriptome.Transcript{ref})
	f.SetLogger(zap.New(core))

	assert.Empty(t, f.Candidates(target))
	assert.Nil(t, f.ClosestKnownExon(target))
	assert.Equal(t, 1, logs.FilterField(zap.String("transcript", "TX")).Len())
}

func TestExonFinder_StrandIsPartOfIdentity(t *testing.T) {
	ref := makeTranscript("REF", fwd,
		[]span{{1, 1, 30}, {2, 41, 70}},
		span{1, 10, 12}, span{2, 50, 52})
	target := makeTranscript("TX", rev, []span{{1, 41, 70}, {2, 1, 30}})

	f := NewExonFinder([]*transcriptome.Transcript{ref})
	assert.Nil(t, f.ClosestKnownExon(target))
}

func TestIsValidAnchor(t *testing.T) {
	tests := []struct {
		name  string
		exon  *transcriptome.MergedExon
		valid bool
	}{
		{"no frame", mergedExon(1, 30, fwd, nil, []int64{10}, nil), false},
		{"two starts", mergedExon(1, 30, fwd, []int{0}, []int64{10, 13}, nil), false},
		{"two stops", mergedExon(1, 30, fwd, []int{0}, []int64{10}, []int64{21, 24}), false},
		{"stop without start", mergedExon(1, 30, fwd, []int{0}, nil, []int64{21}), false},
		{"forward start after stop", mergedExon(1, 30, fwd, []int{0}, []int64{21}, []int64{10}), false},
		{"reverse start before stop", mergedExon(1, 30, rev, []int{0}, []int64{10}, []int64{21}), false},
		{"span shorter than two codons", mergedExon(1, 30, fwd, []int{0}, []int64{10}, []int64{12}), false},
		{"span not a multiple of three", mergedExon(1, 30, fwd, []int{0}, []int64{10}, []int64{16}), false},
		{"shortest span", mergedExon(1, 30, fwd, []int{0}, []int64{10}, []int64{15}), true},
		{"reverse span", mergedExon(1, 30, rev, []int{0}, []int64{21}, []int64{10}), true},
		{"start only", mergedExon(1, 30, fwd, []int{0, 2}, []int64{10}, nil), true},
		{"frame only", mergedExon(1, 30, fwd, []int{1}, nil, nil), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidAnchor(tt.exon))
		})
	}
}

func TestBetterExon(t *testing.T) {
	scored := func(score int, starts, stops []int64) *transcriptome.MergedExon {
		m := mergedExon(1, 30, fwd, []int{0}, starts, stops)
		m.Score = score
		return m
	}

	a := scored(1, nil, nil)
	assert.Same(t, a, BetterExon(nil, a))

	higher := scored(2, nil, nil)
	assert.Same(t, higher, BetterExon(a, higher))
	assert.Same(t, higher, BetterExon(higher, a))

	withStart := scored(1, []int64{10}, nil)
	assert.Same(t, withStart, BetterExon(a, withStart))
	assert.Same(t, withStart, BetterExon(withStart, a))

	withStop := scored(1, []int64{10}, []int64{21})
	assert.Same(t, withStop, BetterExon(withStart, withStop))

	// Ties keep the earlier candidate
	tie := scored(1, []int64{10}, []int64{21})
	assert.Same(t, withStop, BetterExon(withStop, tie))
}
