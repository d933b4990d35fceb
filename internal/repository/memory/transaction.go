package memory

import (
	"context"

	"sitetree/internal/domain/repositories"
)

// TransactionManager runs fn directly. Each PageRepository call is atomic on
// its own; multi-call units are not isolated from concurrent writers.
type TransactionManager struct{}

// NewTransactionManager creates a pass-through transaction manager
func NewTransactionManager() repositories.TransactionManager {
	return TransactionManager{}
}

func (TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}
