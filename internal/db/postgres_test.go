package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/academia/internal/pkg/apperrors"
)

// fakeTx embeds pgx.Tx so only the methods WithTransaction calls are implemented.
type fakeTx struct {
	pgx.Tx
	committed   bool
	rolledBack  bool
	commitErr   error
	rollbackErr error
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return t.commitErr
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rolledBack = true
	return t.rollbackErr
}

type fakeBeginner struct {
	tx  *fakeTx
	err error
}

func (b *fakeBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.tx, nil
}

func TestWithTransaction_Commit(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}

	err := WithTransaction(context.Background(), b, func(ctx context.Context, tx pgx.Tx) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, b.tx.committed)
	assert.False(t, b.tx.rolledBack)
}

func TestWithTransaction_RollbackKeepsDomainError(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}

	err := WithTransaction(context.Background(), b, func(ctx context.Context, tx pgx.Tx) error {
		return apperrors.ErrPrerequisitesNotMet
	})
	assert.ErrorIs(t, err, apperrors.ErrPrerequisitesNotMet)
	assert.True(t, b.tx.rolledBack)
	assert.False(t, b.tx.committed)

	b = &fakeBeginner{tx: &fakeTx{rollbackErr: errors.New("conn closed")}}
	err = WithTransaction(context.Background(), b, func(ctx context.Context, tx pgx.Tx) error {
		return apperrors.ErrCycleDetected
	})
	assert.ErrorIs(t, err, apperrors.ErrCycleDetected)
	assert.ErrorContains(t, err, "conn closed")
}

func TestWithTransaction_InfrastructureFailures(t *testing.T) {
	err := WithTransaction(context.Background(), &fakeBeginner{err: errors.New("pool exhausted")},
		func(ctx context.Context, tx pgx.Tx) error { return nil })
	assert.ErrorIs(t, err, apperrors.ErrDatabase)

	b := &fakeBeginner{tx: &fakeTx{commitErr: errors.New("serialization failure")}}
	err = WithTransaction(context.Background(), b, func(ctx context.Context, tx pgx.Tx) error { return nil })
	assert.ErrorIs(t, err, apperrors.ErrDatabase)
}

func TestWithTransaction_PanicRollsBack(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}

	assert.Panics(t, func() {
		_ = WithTransaction(context.Background(), b, func(ctx context.Context, tx pgx.Tx) error {
			panic("boom")
		})
	})
	assert.True(t, b.tx.rolledBack)
}
