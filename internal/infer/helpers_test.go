package infer

import (
	"strings"

	"github.com/aidantay/TranscriptCoder/internal/genome"
	"github.com/aidantay/TranscriptCoder/internal/transcriptome"
)

const (
	fwd = transcriptome.Forward
	rev = transcriptome.Reverse
)

// makeGenome fills a chromosome with C (CCC translates to P, never M or
// a stop) and writes each motif at its 1-based position.
func makeGenome(length int, motifs map[int]string) *genome.Sequence {
	b := []byte(strings.Repeat("C", length))
	for pos, motif := range motifs {
		copy(b[pos-1:], motif)
	}
	return genome.NewSequence("chr1", string(b))
}

type span struct {
	id          transcriptome.ExonID
	start, stop int64
}

// makeTranscript builds a transcript from exon spans and optional
// start/stop codons given as (exon id, start, stop).
func makeTranscript(id string, strand int8, exons []span, codons ...span) *transcriptome.Transcript {
	tx := transcriptome.NewTranscript(id, "chr1", "test", exons[0].start, exons[len(exons)-1].stop, strand)
	if strand == rev {
		tx.Start, tx.Stop = exons[len(exons)-1].start, exons[0].stop
	}
	for _, e := range exons {
		tx.AddExon(transcriptome.NewExon(id, e.id, "chr1", e.start, e.stop, strand))
	}
	for i, c := range codons {
		kind := transcriptome.StartCodon
		if i == 1 {
			kind = transcriptome.StopCodon
		}
		tx.AddCodon(&transcriptome.Codon{
			TranscriptID: id,
			ExonID:       c.id,
			Kind:         kind,
			Chrom:        "chr1",
			Start:        c.start,
			Stop:         c.stop,
			Strand:       strand,
		})
	}
	tx.Update()
	return tx
}

func exonSpans(tx *transcriptome.Transcript) []span {
	var spans []span
	for _, e := range tx.OrderedExons() {
		spans = append(spans, span{e.ID, e.Start, e.Stop})
	}
	return spans
}

func mergedExon(start, stop int64, strand int8, frames []int, starts, stops []int64) *transcriptome.MergedExon {
	return &transcriptome.MergedExon{
		Exon:         *transcriptome.NewExon("REF", 1, "chr1", start, stop, strand),
		Frames:       frames,
		StartAnchors: starts,
		StopAnchors:  stops,
		Members:      1,
	}
}
