package usecases

import (
	"time"

	"github.com/merehead/crypto-tx-notifier/internal/entities"
	"github.com/shopspring/decimal"
)

// ResolveRealTransactionID finds the customer-facing transaction id for a
// crypto withdrawal or deposit row. The crypto tables carry no foreign key
// to core.project_transactions, so rows are matched by exact equality of
// amount, owner merchant id and creation timestamp against the most recent
// public transactions. When several rows share all three fields the first
// (newest) match wins; the caller treats a miss as "skip this cycle".
func ResolveRealTransactionID(
	amount decimal.Decimal,
	ownerMerchantID int64,
	createdAt time.Time,
	recent []entities.PublicTransaction,
) (int64, bool) {
	for _, tx := range recent {
		if tx.OwnerMerchantID == ownerMerchantID &&
			tx.Amount.Equal(amount) &&
			tx.CreatedAt.Equal(createdAt) {
			return tx.ID, true
		}
	}
	return 0, false
}
