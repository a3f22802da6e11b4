package infer

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidantay/TranscriptCoder/internal/geneticcode"
	"github.com/aidantay/TranscriptCoder/internal/transcriptome"
)

func newTestInferencer() *Inferencer {
	ref := makeTranscript("REF", fwd, []span{{1, 1, 60}}, span{1, 10, 12}, span{1, 49, 51})
	finder := NewExonFinder([]*transcriptome.Transcript{ref})
	return NewInferencer(finder, NewGenerator(geneticcode.Standard()), makeGenome(120, nil))
}

// makeItems alternates targets that match the reference with ones that do not.
func makeItems(n int) <-chan WorkItem {
	ch := make(chan WorkItem, n)
	for i := range n {
		start := int64(1)
		if i%2 == 1 {
			start = 2
		}
		ch <- WorkItem{
			Seq:    i,
			Target: makeTranscript(fmt.Sprintf("TX%d", i), fwd, []span{{1, start, 60}}),
		}
	}
	close(ch)
	return ch
}

func TestParallelInfer_OrderPreservation(t *testing.T) {
	in := newTestInferencer()

	results := in.ParallelInfer(context.Background(), makeItems(200), 8)

	var collected []int
	err := OrderedCollect(results, func(r WorkResult) error {
		require.NoError(t, r.Err)
		if r.Seq%2 == 0 {
			require.Len(t, r.Inferred, 1)
			assert.Equal(t, r.Target.ID+"_1", r.Inferred[0].ID)
		} else {
			assert.Empty(t, r.Inferred)
		}
		collected = append(collected, r.Seq)
		return nil
	})
	require.NoError(t, err)

	assert.Len(t, collected, 200)
	for i, seq := range collected {
		assert.Equal(t, i, seq, "result %d out of order", i)
	}
}

func TestParallelInfer_SingleWorker(t *testing.T) {
	in := newTestInferencer()

	var collected []int
	err := OrderedCollect(in.ParallelInfer(context.Background(), makeItems(50), 1), func(r WorkResult) error {
		collected = append(collected, r.Seq)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, collected, 50)
}

func TestParallelInfer_CancelledContext(t *testing.T) {
	in := newTestInferencer()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	count := 0
	err := OrderedCollect(in.ParallelInfer(ctx, makeItems(10), 2), func(r WorkResult) error {
		assert.ErrorIs(t, r.Err, context.Canceled)
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}

func TestOrderedCollect_StopsOnError(t *testing.T) {
	in := newTestInferencer()

	calls := 0
	err := OrderedCollect(in.ParallelInfer(context.Background(), makeItems(20), 4), func(r WorkResult) error {
		calls++
		if r.Seq == 4 {
			return fmt.Errorf("stop at %d", r.Seq)
		}
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 5, calls)
}
