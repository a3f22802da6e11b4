package infer

import (
	"context"
	"runtime"
	"sync"

	"github.com/aidantay/TranscriptCoder/internal/genome"
	"github.com/aidantay/TranscriptCoder/internal/transcriptome"
)

// Inferencer runs anchor search and generation for the transcripts of a
// single chromosome.
type Inferencer struct {
	finder    *ExonFinder
	generator *Generator
	seq       *genome.Sequence
}

// NewInferencer binds a finder and generator to a chromosome sequence.
func NewInferencer(finder *ExonFinder, generator *Generator, seq *genome.Sequence) *Inferencer {
	return &Inferencer{finder: finder, generator: generator, seq: seq}
}

// Infer returns the transcripts inferred for target. A target with no
// usable anchor yields no transcripts and no error.
func (in *Inferencer) Infer(target *transcriptome.Transcript) ([]*transcriptome.Transcript, error) {
	anchor := in.finder.ClosestKnownExon(target)
	if anchor == nil {
		return nil, nil
	}
	return in.generator.Infer(target, anchor, in.seq)
}

// WorkItem holds a target transcript queued for inference.
type WorkItem struct {
	Seq    int
	Target *transcriptome.Transcript
}

// WorkResult holds the inference output for a single target.
type WorkResult struct {
	Seq      int
	Target   *transcriptome.Transcript
	Inferred []*transcriptome.Transcript
	Err      error
}

// ParallelInfer processes work items using a pool of workers.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used. Once ctx is done, remaining
// items are drained and reported with the context error.
func (in *Inferencer) ParallelInfer(ctx context.Context, items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				r := WorkResult{Seq: item.Seq, Target: item.Target}
				if err := ctx.Err(); err != nil {
					r.Err = err
				} else {
					r.Inferred, r.Err = in.Infer(item.Target)
				}
				results <- r
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
