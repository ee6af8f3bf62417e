package rpcclient

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/lgingerich/evm-indexer/internal/models"
)

// traceChunkSize is the number of transactions fetched concurrently per
// chunk; chunks themselves are processed sequentially (spec §4.5).
const traceChunkSize = 10

// TxRef identifies a transaction to trace.
type TxRef struct {
	Hash  string
	Index uint64
}

// GetCallTraces fetches debug_traceTransaction for every ref, in chunks of
// traceChunkSize with all calls in a chunk issued concurrently and awaited
// together. An individual -32008 failure is recorded as a CallOutcome
// error and does not fail the chunk; any other per-tx error fails the
// whole chunk (and is surfaced to the caller).
func (c *Client) GetCallTraces(ctx context.Context, refs []TxRef) ([]models.CallOutcome, error) {
	outcomes := make([]models.CallOutcome, len(refs))

	for start := 0; start < len(refs); start += traceChunkSize {
		end := start + traceChunkSize
		if end > len(refs) {
			end = len(refs)
		}
		chunk := refs[start:end]

		g, gctx := errgroup.WithContext(ctx)
		for i, ref := range chunk {
			i, ref := i, ref
			g.Go(func() error {
				frame, err := c.debugTraceTransaction(gctx, ref.Hash)
				if err == ErrTraceTooLarge {
					outcomes[start+i] = models.CallOutcome{TxHash: ref.Hash, Success: false, ErrMsg: err.Error()}
					return nil
				}
				if err != nil {
					return fmt.Errorf("trace chunk [%d:%d): tx %s: %w", start, end, ref.Hash, err)
				}
				outcomes[start+i] = models.CallOutcome{TxHash: ref.Hash, Success: true, Root: rawFrameToModel(frame)}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	return outcomes, nil
}

func rawFrameToModel(f *RawCallFrame) *models.CallFrame {
	if f == nil {
		return nil
	}
	out := &models.CallFrame{
		Type:    f.Type,
		From:    f.From,
		To:      f.To,
		Gas:     mustHexUint(f.Gas),
		GasUsed: mustHexUint(f.GasUsed),
		Input:   f.Input,
		Output:  f.Output,
		Error:   f.Error,
	}
	if f.Value != "" {
		out.Value = hexToBigInt(f.Value)
	}
	out.Calls = make([]models.CallFrame, len(f.Calls))
	for i := range f.Calls {
		out.Calls[i] = *rawFrameToModel(&f.Calls[i])
	}
	return out
}
