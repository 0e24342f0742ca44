package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/capacitanet/internal/common"
)

// retryOnConflict runs a read-modify-write until it stops failing with a
// version conflict, bounded by attempts. Conflicts only occur when the
// repositories run in optimistic mode; otherwise fn runs once.
func retryOnConflict(ctx context.Context, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if !errors.Is(err, common.ErrVersionConflict) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", attempts, err)
}
