package infer

import (
	"fmt"

	"github.com/aidantay/TranscriptCoder/internal/transcriptome"
)

// placeStartCodon adds a start codon utr bases into the transcript and
// moves the 5' boundary of its exon onto the codon. The part of the exon
// left outside becomes a UTR exon numbered id-1+0.1.
func placeStartCodon(tx *transcriptome.Transcript, utr int64) error {
	codon, err := locateStartCodon(tx, utr)
	if err != nil {
		return err
	}
	tx.AddCodon(codon)

	e := tx.Exon(codon.ExonID)
	if tx.IsForward() {
		if e.Start != codon.Start {
			piece := e.Clone()
			piece.Stop = codon.Start - 1
			piece.ID = e.ID - 1 + utrExonOffset
			tx.AddExon(piece)
		}
		e.Start = codon.Start
		e.StartAnchor = codon.Start
	} else {
		if e.Stop != codon.Stop {
			piece := e.Clone()
			piece.Start = codon.Stop + 1
			piece.ID = e.ID - 1 + utrExonOffset
			tx.AddExon(piece)
		}
		e.Stop = codon.Stop
		e.StartAnchor = codon.Stop
	}
	return nil
}

// placeStopCodon adds a stop codon utr bases before the transcript end
// and moves the 3' boundary of its exon onto the codon. The part of the
// exon left outside becomes a UTR exon numbered id+0.1.
func placeStopCodon(tx *transcriptome.Transcript, utr int64) error {
	codon, err := locateStopCodon(tx, utr)
	if err != nil {
		return err
	}
	tx.AddCodon(codon)

	e := tx.Exon(codon.ExonID)
	if tx.IsForward() {
		if e.Stop != codon.Stop {
			piece := e.Clone()
			piece.Start = codon.Stop + 1
			piece.ID = e.ID + utrExonOffset
			tx.AddExon(piece)
		}
		e.Stop = codon.Stop
		e.StopAnchor = codon.Stop
	} else {
		if e.Start != codon.Start {
			piece := e.Clone()
			piece.Stop = codon.Start - 1
			piece.ID = e.ID + utrExonOffset
			tx.AddExon(piece)
		}
		e.Start = codon.Start
		e.StopAnchor = codon.Start
	}
	return nil
}

// locateStartCodon walks the exons from the 5' end until utr bases
// have been consumed.
func locateStartCodon(tx *transcriptome.Transcript, utr int64) (*transcriptome.Codon, error) {
	if utr < 0 {
		return nil, fmt.Errorf("UTR of %d bases: %w", utr, ErrCodonOutOfRange)
	}

	remaining := utr
	for _, e := range tx.OrderedExons() {
		if remaining < e.Len() {
			if e.IsForward() {
				return leftCodon(e, remaining, transcriptome.StartCodon), nil
			}
			return rightCodon(e, remaining, transcriptome.StartCodon), nil
		}
		remaining -= e.Len()
	}
	return nil, fmt.Errorf("UTR of %d bases: %w", utr, ErrCodonOutOfRange)
}

// locateStopCodon walks the exons from the 3' end until utr bases have
// been consumed.
func locateStopCodon(tx *transcriptome.Transcript, utr int64) (*transcriptome.Codon, error) {
	if utr < 0 {
		return nil, fmt.Errorf("UTR of %d bases: %w", utr, ErrCodonOutOfRange)
	}

	exons := tx.OrderedExons()
	remaining := utr
	for i := len(exons) - 1; i >= 0; i-- {
		e := exons[i]
		if remaining < e.Len() {
			if e.IsForward() {
				return rightCodon(e, remaining, transcriptome.StopCodon), nil
			}
			return leftCodon(e, remaining, transcriptome.StopCodon), nil
		}
		remaining -= e.Len()
	}
	return nil, fmt.Errorf("UTR of %d bases: %w", utr, ErrCodonOutOfRange)
}

// leftCodon builds a codon starting offset bases after the exon start.
// It is clipped to the exon stop.
func leftCodon(e *transcriptome.Exon, offset int64, kind transcriptome.CodonKind) *transcriptome.Codon {
	start := e.Start + offset
	stop := min(start+transcriptome.BasesPerCodon-1, e.Stop)
	return newCodon(e, kind, start, stop)
}

// rightCodon builds a codon ending offset bases before the exon stop.
// It is clipped to the exon start.
func rightCodon(e *transcriptome.Exon, offset int64, kind transcriptome.CodonKind) *transcriptome.Codon {
	stop := e.Stop - offset
	start := max(stop-transcriptome.BasesPerCodon+1, e.Start)
	return newCodon(e, kind, start, stop)
}

func newCodon(e *transcriptome.Exon, kind transcriptome.CodonKind, start, stop int64) *transcriptome.Codon {
	return &transcriptome.Codon{
		TranscriptID: e.TranscriptID,
		ExonID:       e.ID,
		Kind:         kind,
		Chrom:        e.Chrom,
		Start:        start,
		Stop:         stop,
		Strand:       e.Strand,
	}
}
