package transcriptome

import (
	"maps"
	"slices"

	"go.uber.org/zap"
)

// Transcriptome is a set of transcripts keyed by id.
type Transcriptome struct {
	Transcripts map[string]*Transcript
}

// New creates an empty transcriptome.
func New() *Transcriptome {
	return &Transcriptome{Transcripts: make(map[string]*Transcript)}
}

// Add adds a transcript, replacing any transcript with the same id.
func (tr *Transcriptome) Add(t *Transcript) {
	tr.Transcripts[t.ID] = t
}

// Get returns a transcript by id, or nil.
func (tr *Transcriptome) Get(id string) *Transcript {
	return tr.Transcripts[id]
}

// Len returns the number of transcripts.
func (tr *Transcriptome) Len() int {
	return len(tr.Transcripts)
}

// All returns every transcript in CompareTranscripts order.
func (tr *Transcriptome) All() []*Transcript {
	transcripts := slices.Collect(maps.Values(tr.Transcripts))
	slices.SortFunc(transcripts, CompareTranscripts)
	return transcripts
}

// ByChromosome groups the transcripts by chromosome, each group in
// CompareTranscripts order.
func (tr *Transcriptome) ByChromosome() map[string][]*Transcript {
	groups := make(map[string][]*Transcript)
	for _, t := range tr.All() {
		groups[t.Chrom] = append(groups[t.Chrom], t)
	}
	return groups
}

// Chromosomes returns the chromosome names in CompareTranscripts order.
func (tr *Transcriptome) Chromosomes() []string {
	var chroms []string
	seen := make(map[string]bool)
	for _, t := range tr.All() {
		if !seen[t.Chrom] {
			seen[t.Chrom] = true
			chroms = append(chroms, t.Chrom)
		}
	}
	return chroms
}

// Verify removes transcripts that have only one of a start and a stop
// codon and runs Update on the rest. It returns the ids removed.
func (tr *Transcriptome) Verify(logger *zap.Logger) []string {
	if logger == nil {
		logger = zap.NewNop()
	}

	var removed []string
	for _, t := range tr.All() {
		if !t.IsValid() {
			logger.Warn("transcript has a missing start or stop codon, removing",
				zap.String("transcript", t.ID))
			delete(tr.Transcripts, t.ID)
			removed = append(removed, t.ID)
			continue
		}
		t.Update()
	}
	return removed
}
