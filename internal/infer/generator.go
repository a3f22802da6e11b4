package infer

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aidantay/TranscriptCoder/internal/geneticcode"
	"github.com/aidantay/TranscriptCoder/internal/genome"
	"github.com/aidantay/TranscriptCoder/internal/transcriptome"
)

var (
	// ErrAnchorNotFound is returned when the target has no exon at the anchor locus.
	ErrAnchorNotFound = errors.New("anchor exon not found in transcript")

	// ErrCodonOutOfRange is returned when an inferred UTR does not fit in the transcript.
	ErrCodonOutOfRange = errors.New("inferred codon outside transcript")
)

// utrExonOffset is added to an exon id to name the UTR piece split off it.
const utrExonOffset = 0.1

// FrameError reports why inference failed for one coding frame.
type FrameError struct {
	Frame int
	Kind  transcriptome.CodonKind // Codon being inferred when the failure occurred
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d: could not infer %s: %v", e.Frame, e.Kind, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// Generator infers start and stop codons for target transcripts from a
// reference anchor exon.
// A Generator holds no per-transcript state and is safe for concurrent use.
type Generator struct {
	table  *geneticcode.Table
	logger *zap.Logger
}

// NewGenerator creates a generator translating with the given table.
func NewGenerator(table *geneticcode.Table) *Generator {
	return &Generator{table: table, logger: zap.NewNop()}
}

// SetLogger sets the logger for dropped frames and transcripts.
func (g *Generator) SetLogger(logger *zap.Logger) {
	g.logger = logger
}

// Infer derives the coding structure of target from anchor. It returns
// one transcript per viable frame, renamed <id>_1 .. <id>_N. The target
// itself is not modified.
//
// An empty result with a nil error means no frame produced a transcript.
// When every attempted frame failed with an error, the errors are joined.
func (g *Generator) Infer(target *transcriptome.Transcript, anchor *transcriptome.MergedExon, seq *genome.Sequence) ([]*transcriptome.Transcript, error) {
	var inferred []*transcriptome.Transcript

	if anchor.IsUnambiguous() {
		tx, err := g.projectAnchor(target, anchor)
		if err != nil {
			return nil, fmt.Errorf("transcript %s: %w", target.ID, err)
		}
		inferred = append(inferred, tx)
	} else {
		var frameErrs []error
		for _, frame := range anchor.Frames {
			tx, err := g.inferFrame(target, anchor, seq, frame)
			if err != nil {
				g.logger.Debug("coding frame failed",
					zap.String("transcript", target.ID),
					zap.Int("frame", frame),
					zap.Error(err))
				frameErrs = append(frameErrs, err)
				continue
			}
			if tx == nil {
				continue
			}
			inferred = append(inferred, tx)
		}

		if len(inferred) == 0 && len(frameErrs) > 0 && len(frameErrs) == len(anchor.Frames) {
			return nil, fmt.Errorf("transcript %s: %w", target.ID, errors.Join(frameErrs...))
		}
	}

	if len(inferred) == 0 {
		g.logger.Warn("no appropriate coding frame, transcript needs 3/6-frame translation",
			zap.String("transcript", target.ID))
		return nil, nil
	}

	for i, tx := range inferred {
		tx.Rename(fmt.Sprintf("%s_%d", target.ID, i+1))
	}
	return inferred, nil
}

// projectAnchor places the anchor's known codons on a copy of target.
// The UTR on each side spans from the anchor exon boundary to the codon
// plus every exon further out on that side.
func (g *Generator) projectAnchor(target *transcriptome.Transcript, anchor *transcriptome.MergedExon) (*transcriptome.Transcript, error) {
	tx := target.Clone()
	exons := tx.OrderedExons()
	idx := indexOfLocus(exons, anchor.Locus())
	if idx < 0 {
		return nil, ErrAnchorNotFound
	}
	middle := exons[idx]

	startAnchor, stopAnchor := anchor.StartAnchors[0], anchor.StopAnchors[0]

	startUTR := startAnchor - middle.Start
	stopUTR := middle.Stop - stopAnchor
	if !tx.IsForward() {
		startUTR = middle.Stop - startAnchor
		stopUTR = stopAnchor - middle.Start
	}

	for _, e := range exons[:idx] {
		startUTR += e.Len()
	}
	for _, e := range exons[idx+1:] {
		stopUTR += e.Len()
	}

	if err := placeStartCodon(tx, startUTR); err != nil {
		return nil, fmt.Errorf("%s: %w", transcriptome.StartCodon, err)
	}
	if err := placeStopCodon(tx, stopUTR); err != nil {
		return nil, fmt.Errorf("%s: %w", transcriptome.StopCodon, err)
	}
	return tx, nil
}

// inferFrame infers both codons on a copy of target by translating in
// the given frame. It returns nil without error when the frame has no
// start codon.
func (g *Generator) inferFrame(target *transcriptome.Transcript, anchor *transcriptome.MergedExon, seq *genome.Sequence, frame int) (*transcriptome.Transcript, error) {
	tx := target.Clone()

	exons := tx.OrderedExons()
	idx := indexOfLocus(exons, anchor.Locus())
	if idx < 0 {
		return nil, &FrameError{Frame: frame, Kind: transcriptome.StartCodon, Err: ErrAnchorNotFound}
	}

	sequences, err := tx.ExonSequences(seq)
	if err != nil {
		return nil, &FrameError{Frame: frame, Kind: transcriptome.StartCodon, Err: err}
	}

	startUTR, found, err := g.startUTRLength(strings.Join(sequences[:idx+1], ""), frame)
	if err != nil {
		return nil, &FrameError{Frame: frame, Kind: transcriptome.StartCodon, Err: err}
	}
	if !found {
		return nil, nil
	}
	if err := placeStartCodon(tx, startUTR); err != nil {
		return nil, &FrameError{Frame: frame, Kind: transcriptome.StartCodon, Err: err}
	}

	// Exons changed when the start exon was split
	exons = tx.OrderedExons()
	startID := tx.StartCodon().ExonID
	first := 0
	for i, e := range exons {
		if e.ID == startID {
			first = i
			break
		}
	}

	sequences, err = tx.ExonSequences(seq)
	if err != nil {
		return nil, &FrameError{Frame: frame, Kind: transcriptome.StopCodon, Err: err}
	}

	stopUTR, err := g.stopUTRLength(strings.Join(sequences[first:], ""))
	if err != nil {
		return nil, &FrameError{Frame: frame, Kind: transcriptome.StopCodon, Err: err}
	}
	if err := placeStopCodon(tx, stopUTR); err != nil {
		return nil, &FrameError{Frame: frame, Kind: transcriptome.StopCodon, Err: err}
	}
	return tx, nil
}

// startUTRLength finds the 5' UTR length of a sequence ending in the
// anchor exon. The chosen start is the first M after the last stop.
func (g *Generator) startUTRLength(nuc string, frame int) (int64, bool, error) {
	if frame > len(nuc) {
		return 0, false, nil
	}
	nuc = nuc[:len(nuc)-frame]

	trimmed := len(nuc) % transcriptome.BasesPerCodon
	nuc = nuc[trimmed:]

	aa, err := g.table.Translate(nuc)
	if err != nil {
		return 0, false, err
	}

	lastStop := strings.LastIndexByte(aa, geneticcode.Stop)
	if lastStop < 0 {
		lastStop = 0
	}
	m := strings.IndexByte(aa[lastStop:], geneticcode.Methionine)
	if m < 0 {
		return 0, false, nil
	}

	consumed := lastStop + m
	return int64(trimmed + consumed*transcriptome.BasesPerCodon), true, nil
}

// stopUTRLength finds the 3' UTR length of a sequence starting at the
// start codon exon. The chosen stop is the first one in frame; without
// one, translation runs to the end.
func (g *Generator) stopUTRLength(nuc string) (int64, error) {
	trimmed := len(nuc) % transcriptome.BasesPerCodon
	nuc = nuc[:len(nuc)-trimmed]

	aa, err := g.table.Translate(nuc)
	if err != nil {
		return 0, err
	}

	idx := strings.IndexByte(aa, geneticcode.Stop)
	if idx < 0 {
		idx = len(aa) - 1
	}
	after := len(aa) - (idx + 1)
	return int64(trimmed + after*transcriptome.BasesPerCodon), nil
}

func indexOfLocus(exons []*transcriptome.Exon, locus transcriptome.Locus) int {
	for i, e := range exons {
		if e.Locus() == locus {
			return i
		}
	}
	return -1
}
