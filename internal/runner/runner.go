// Package runner drives inference over whole transcriptomes: one genome
// load per chromosome, parallel inference within it, translation of the
// inferred transcripts.
package runner

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aidantay/TranscriptCoder/internal/geneticcode"
	"github.com/aidantay/TranscriptCoder/internal/genome"
	"github.com/aidantay/TranscriptCoder/internal/infer"
	"github.com/aidantay/TranscriptCoder/internal/output"
	"github.com/aidantay/TranscriptCoder/internal/transcriptome"
)

// Runner infers coding regions for a target transcriptome.
type Runner struct {
	genome         genome.Source
	table          *geneticcode.Table
	workers        int
	chromosomeJobs int
	logger         *zap.Logger
}

// New creates a runner reading chromosome sequences from source.
func New(source genome.Source, table *geneticcode.Table) *Runner {
	return &Runner{
		genome:         source,
		table:          table,
		chromosomeJobs: 1,
		logger:         zap.NewNop(),
	}
}

// SetLogger sets the logger passed down to the finder, the generator
// and used for dropped transcripts.
func (r *Runner) SetLogger(logger *zap.Logger) {
	r.logger = logger
}

// SetWorkers sets the number of transcript workers per chromosome.
// 0 means runtime.NumCPU().
func (r *Runner) SetWorkers(n int) {
	r.workers = n
}

// SetChromosomeJobs sets how many chromosomes are processed at once.
func (r *Runner) SetChromosomeJobs(n int) {
	r.chromosomeJobs = max(n, 1)
}

// Run infers and translates every target transcript that has an anchor
// in reference. Records are returned in transcript order. Transcripts
// that cannot be inferred or translated are logged and left out; a
// chromosome sequence that cannot be loaded fails the run.
func (r *Runner) Run(ctx context.Context, reference, target *transcriptome.Transcriptome) ([]*output.Record, error) {
	refByChrom := reference.ByChromosome()
	targetByChrom := target.ByChromosome()
	chroms := target.Chromosomes()

	perChrom := make([][]*output.Record, len(chroms))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.chromosomeJobs)

	for i, chrom := range chroms {
		refs := refByChrom[chrom]
		if len(refs) == 0 {
			r.logger.Warn("no reference transcripts on chromosome",
				zap.String("chrom", chrom),
				zap.Int("targets", len(targetByChrom[chrom])))
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records, err := r.runChromosome(gctx, chrom, refs, targetByChrom[chrom])
			if err != nil {
				return err
			}
			perChrom[i] = records
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var records []*output.Record
	for _, rs := range perChrom {
		records = append(records, rs...)
	}
	slices.SortStableFunc(records, func(a, b *output.Record) int {
		return transcriptome.CompareTranscripts(a.Transcript, b.Transcript)
	})
	return records, nil
}

func (r *Runner) runChromosome(ctx context.Context, chrom string, refs, targets []*transcriptome.Transcript) ([]*output.Record, error) {
	seq, err := r.genome.Load(chrom)
	if err != nil {
		return nil, fmt.Errorf("load chromosome %s: %w", chrom, err)
	}

	finder := infer.NewExonFinder(refs)
	finder.SetLogger(r.logger)
	generator := infer.NewGenerator(r.table)
	generator.SetLogger(r.logger)
	inferencer := infer.NewInferencer(finder, generator, seq)

	r.logger.Info("inferring chromosome",
		zap.String("chrom", chrom),
		zap.Int("references", len(refs)),
		zap.Int("targets", len(targets)))

	items := make(chan infer.WorkItem, 2*max(r.workers, 1))
	go func() {
		defer close(items)
		for i, t := range targets {
			items <- infer.WorkItem{Seq: i, Target: t}
		}
	}()

	var records []*output.Record
	err = infer.OrderedCollect(inferencer.ParallelInfer(ctx, items, r.workers), func(res infer.WorkResult) error {
		if res.Err != nil {
			if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) {
				return res.Err
			}
			r.logger.Warn("inference failed",
				zap.String("transcript", res.Target.ID),
				zap.Error(res.Err))
			return nil
		}

		for _, tx := range res.Inferred {
			protein, err := r.translate(tx, seq)
			if err != nil {
				r.logger.Warn("translation failed, transcript dropped",
					zap.String("transcript", tx.ID),
					zap.Error(err))
				continue
			}
			records = append(records, &output.Record{Transcript: tx, Protein: protein})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("chromosome done",
		zap.String("chrom", chrom),
		zap.Int("inferred", len(records)))
	return records, nil
}

func (r *Runner) translate(tx *transcriptome.Transcript, seq *genome.Sequence) (string, error) {
	coding, err := tx.CodingSequence(seq)
	if err != nil {
		return "", err
	}
	return r.table.Translate(coding)
}

// Write writes records to w, header first, then flushes.
func Write(w output.TranscriptWriter, records []*output.Record) error {
	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write %s: %w", rec.Transcript.ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}
