package transaction

import "context"

// FeedRepository reads the global transaction feed. Transactions are not
// workspace scoped.
type FeedRepository interface {
	List(ctx context.Context) ([]PurchaseTransaction, error)
}
