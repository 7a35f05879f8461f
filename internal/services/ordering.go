package services

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/ashmitsharp/payledger-api/internal/models"
	"github.com/google/uuid"
)

// OrderKeyGap is the spacing between consecutive order keys.
const OrderKeyGap = 10

// OrderingEngine maintains the manual display order of an account's
// transactions. A larger key sorts earlier in the register.
type OrderingEngine struct {
	store Store
}

// NewOrderingEngine creates an ordering engine over store.
func NewOrderingEngine(store Store) *OrderingEngine {
	return &OrderingEngine{store: store}
}

// NextOrderIndex returns the key for a newly added transaction: the current
// maximum plus the gap, or the gap itself for an empty account.
func NextOrderIndex(ctx context.Context, store TransactionStore, accountID uuid.UUID) (int64, error) {
	maxKey, ok, err := store.MaxOrderKey(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to read max order key: %w", err)
	}
	if !ok {
		return OrderKeyGap, nil
	}
	return maxKey + OrderKeyGap, nil
}

// NextOrderIndex is NextOrderIndex bound to the engine's store.
func (o *OrderingEngine) NextOrderIndex(ctx context.Context, accountID uuid.UUID) (int64, error) {
	return NextOrderIndex(ctx, o.store, accountID)
}

// MoveUp swaps the transaction with its nearest neighbour above it in the
// register. It reports false, without error, when the transaction is already first.
func (o *OrderingEngine) MoveUp(ctx context.Context, accountID, txnID uuid.UUID) (bool, error) {
	return o.move(ctx, accountID, txnID, func(tx Store, key int64) (models.Transaction, bool, error) {
		return tx.NextOrderKeyAbove(ctx, accountID, key)
	})
}

// MoveDown swaps the transaction with its nearest neighbour below it in the
// register. It reports false, without error, when the transaction is already last.
func (o *OrderingEngine) MoveDown(ctx context.Context, accountID, txnID uuid.UUID) (bool, error) {
	return o.move(ctx, accountID, txnID, func(tx Store, key int64) (models.Transaction, bool, error) {
		return tx.NextOrderKeyBelow(ctx, accountID, key)
	})
}

func (o *OrderingEngine) move(
	ctx context.Context,
	accountID, txnID uuid.UUID,
	neighbour func(tx Store, key int64) (models.Transaction, bool, error),
) (bool, error) {
	moved := false
	err := o.store.WithTx(ctx, func(tx Store) error {
		txn, err := accountTransaction(ctx, tx, accountID, txnID)
		if err != nil {
			return err
		}
		if err := checkAccountWritable(ctx, tx, accountID); err != nil {
			return err
		}
		next, ok, err := neighbour(tx, txn.OrderKey)
		if err != nil {
			return fmt.Errorf("failed to find neighbour: %w", err)
		}
		if !ok {
			return nil
		}
		if err := tx.SwapOrderKeys(ctx, txn.ID, next.ID); err != nil {
			return fmt.Errorf("failed to swap order keys: %w", err)
		}
		moved = true
		return nil
	})
	return moved, err
}

// MoveBefore repositions txnID so it sits directly above targetID in the
// register, shifting the transactions in between by one place. The set of
// keys in the account is unchanged.
func (o *OrderingEngine) MoveBefore(ctx context.Context, accountID, txnID, targetID uuid.UUID) error {
	if txnID == targetID {
		return nil
	}
	return o.store.WithTx(ctx, func(tx Store) error {
		if _, err := accountTransaction(ctx, tx, accountID, targetID); err != nil {
			return err
		}
		if err := checkAccountWritable(ctx, tx, accountID); err != nil {
			return err
		}
		for {
			cur, err := accountTransaction(ctx, tx, accountID, txnID)
			if err != nil {
				return err
			}
			target, err := tx.GetTransaction(ctx, targetID)
			if err != nil {
				return err
			}

			if cur.OrderKey > target.OrderKey {
				below, ok, err := tx.NextOrderKeyBelow(ctx, accountID, cur.OrderKey)
				if err != nil {
					return err
				}
				if !ok || below.ID == target.ID {
					return nil
				}
				if err := tx.SwapOrderKeys(ctx, cur.ID, below.ID); err != nil {
					return err
				}
				continue
			}

			above, ok, err := tx.NextOrderKeyAbove(ctx, accountID, cur.OrderKey)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			if err := tx.SwapOrderKeys(ctx, cur.ID, above.ID); err != nil {
				return err
			}
			if above.ID == target.ID {
				return nil
			}
		}
	})
}

func accountTransaction(ctx context.Context, store TransactionStore, accountID, txnID uuid.UUID) (models.Transaction, error) {
	txn, err := store.GetTransaction(ctx, txnID)
	if err != nil {
		return models.Transaction{}, err
	}
	if txn.AccountID != accountID {
		return models.Transaction{}, fmt.Errorf("transaction %s in account %s: %w", txnID, accountID, ErrNotFound)
	}
	return txn, nil
}

// RegisterLess orders register rows by order key, then date, then id, all descending.
func RegisterLess(a, b models.Transaction) bool {
	if a.OrderKey != b.OrderKey {
		return a.OrderKey > b.OrderKey
	}
	if !a.OccurredOn.Equal(b.OccurredOn) {
		return a.OccurredOn.After(b.OccurredOn)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) > 0
}

// SortRegister sorts rows into register order in place.
func SortRegister(rows []models.TransactionRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return RegisterLess(rows[i].Transaction, rows[j].Transaction)
	})
}
