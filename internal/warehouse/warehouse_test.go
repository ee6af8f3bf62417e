package warehouse

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// recordingPut is a fake putFunc that records every batch it was called
// with, optionally failing on a configured call index.
type recordingPut struct {
	batches [][]valueSaverRow
	failAt  int // -1 means never fail
}

func (p *recordingPut) call(ctx context.Context, batch []valueSaverRow) error {
	if p.failAt == len(p.batches) {
		p.batches = append(p.batches, batch)
		return errors.New("put: transient failure")
	}
	p.batches = append(p.batches, batch)
	return nil
}

func noopObserve(int, time.Duration) {}

func rowWithPayloadLen(id string, n int) Row {
	return Row{InsertID: id, JSON: map[string]string{"k": string(make([]byte, n))}}
}

func TestBatchInsertFlushesAtCeiling(t *testing.T) {
	// Every row marshals to the identical 8-byte `{"k":""}`; rowOverhead=4
	// makes each row's accounted size exactly 12, so with maxBytes=25 the
	// third row can't fit alongside the first two (24+12=36>25) and forces
	// a flush of [a,b] before starting a fresh batch with [c,d].
	rows := []Row{
		rowWithPayloadLen("a", 0),
		rowWithPayloadLen("b", 0),
		rowWithPayloadLen("c", 0),
		rowWithPayloadLen("d", 0),
	}
	put := &recordingPut{failAt: -1}

	err := batchInsert(context.Background(), rows, 25, 4, put.call, noopObserve)
	require.NoError(t, err)

	require.Len(t, put.batches, 2)
	require.Len(t, put.batches[0], 2)
	require.Len(t, put.batches[1], 2)
}

func TestBatchInsertFlushesOversizedRowAlone(t *testing.T) {
	rows := []Row{
		rowWithPayloadLen("a", 0),
		rowWithPayloadLen("b", 0),
		rowWithPayloadLen("c", 0),
	}
	// maxBytes=1 puts every row's size (8 + rowOverhead) over the ceiling,
	// so each takes the oversized-alone path: one Put call per row, never
	// batched together.
	put := &recordingPut{failAt: -1}

	err := batchInsert(context.Background(), rows, 1, 12, put.call, noopObserve)
	require.NoError(t, err)

	require.Len(t, put.batches, 3)
	for _, b := range put.batches {
		require.Len(t, b, 1)
	}
}

func TestBatchInsertPropagatesPutError(t *testing.T) {
	rows := []Row{
		rowWithPayloadLen("a", 0),
		rowWithPayloadLen("b", 0),
	}
	put := &recordingPut{failAt: 0}

	err := batchInsert(context.Background(), rows, 100, 12, put.call, noopObserve)
	require.Error(t, err)
	require.Contains(t, err.Error(), "transient failure")
}

func TestBatchInsertNoopOnEmptyRows(t *testing.T) {
	put := &recordingPut{failAt: -1}

	err := batchInsert(context.Background(), nil, 100, 12, put.call, noopObserve)
	require.NoError(t, err)
	require.Empty(t, put.batches)
}

func TestBatchInsertRejectsNonObjectPayload(t *testing.T) {
	rows := []Row{{InsertID: "bad", JSON: 42}}
	put := &recordingPut{failAt: -1}

	err := batchInsert(context.Background(), rows, 100, 12, put.call, noopObserve)
	require.Error(t, err)
	require.Empty(t, put.batches)
}
