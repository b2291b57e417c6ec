package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/charlesng35/accountd/internal/store"
)

// freshRecoveryID generates a recovery id not currently held by any record.
// Collisions are vanishingly unlikely, but the lookup-before-use loop is a
// correctness requirement, so it is not capped at a fixed attempt count.
func freshRecoveryID(ctx context.Context, identities store.IdentityStore) (string, error) {
	for {
		candidate := uuid.NewString()

		_, err := identities.FindByRecoveryID(ctx, candidate)
		if errors.Is(err, store.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("generate recovery id: %w", err)
		}
	}
}
