package usecase_test

import (
	"context"

	"go.uber.org/mock/gomock"

	"github.com/iho/ourllet/internal/usecase/mocks"
)

// passthroughRetrier runs the operation exactly once.
func passthroughRetrier(ctrl *gomock.Controller) *mocks.MockRetrier {
	r := mocks.NewMockRetrier(ctrl)
	r.EXPECT().Retry(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, op func() error) error { return op() },
	).AnyTimes()
	return r
}

// committingTxManager hands out a transaction that expects a commit.
func committingTxManager(ctrl *gomock.Controller) (*mocks.MockTransactionManager, *mocks.MockTransaction) {
	tx := mocks.NewMockTransaction(ctrl)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()

	txm := mocks.NewMockTransactionManager(ctrl)
	txm.EXPECT().Begin(gomock.Any()).Return(tx, nil).AnyTimes()

	return txm, tx
}

func strPtr(s string) *string { return &s }
