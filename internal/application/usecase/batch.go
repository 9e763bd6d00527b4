// Package usecase implements the engine's units of work. Each public
// operation acquires the per-account lock, runs inside one database
// transaction, and publishes its domain events only after commit. Batch
// orchestrations fan out over account ids with bounded parallelism and one
// transaction per account.
package usecase

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/apperr"
)

// AccountError is one failed account inside a batch.
type AccountError struct {
	AccountID uuid.UUID `json:"account_id"`
	Error     string    `json:"error"`
	Kind      string    `json:"kind"`
}

// BatchResult aggregates a fan-out run.
type BatchResult struct {
	Processed int            `json:"processed"`
	Succeeded int            `json:"succeeded"`
	Failed    []AccountError `json:"failed"`
}

// Merge folds another result into this one.
func (r *BatchResult) Merge(other BatchResult) {
	r.Processed += other.Processed
	r.Succeeded += other.Succeeded
	r.Failed = append(r.Failed, other.Failed...)
}

// runAccountBatch executes fn for every account id with at most workers
// goroutines. One account's failure is recorded and does not poison the
// others; a Fatal error aborts the remainder, as does context cancellation,
// returning the partial result.
func runAccountBatch(ctx context.Context, ids []uuid.UUID, workers int, fn func(ctx context.Context, id uuid.UUID) error) BatchResult {
	if workers <= 0 {
		workers = 8
	}

	var (
		mu     sync.Mutex
		result BatchResult
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for _, id := range ids {
		if groupCtx.Err() != nil {
			break
		}
		id := id
		group.Go(func() error {
			err := fn(groupCtx, id)

			mu.Lock()
			defer mu.Unlock()
			result.Processed++
			if err == nil {
				result.Succeeded++
				return nil
			}
			result.Failed = append(result.Failed, AccountError{
				AccountID: id,
				Error:     err.Error(),
				Kind:      apperr.KindOf(err).String(),
			})
			if apperr.IsFatal(err) {
				// Corruption aborts the batch; plain per-account errors do not.
				return err
			}
			return nil
		})
	}

	// The group error, if any, is already captured in the result.
	_ = group.Wait() //nolint:errcheck

	return result
}
