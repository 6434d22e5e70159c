package blob

import (
	"context"

	"github.com/cmlabs-hris/attendance-analytics/internal/domain/transaction"
	"github.com/cmlabs-hris/attendance-analytics/internal/pkg/storage"
)

type feedRepository struct {
	store storage.BlobStore
}

// NewFeedRepository reads the transaction feed from a globally scoped store.
func NewFeedRepository(store storage.BlobStore) transaction.FeedRepository {
	return &feedRepository{store: store}
}

// List implements transaction.FeedRepository.
func (f *feedRepository) List(ctx context.Context) ([]transaction.PurchaseTransaction, error) {
	return readList[transaction.PurchaseTransaction](ctx, f.store, TransactionsKey)
}
