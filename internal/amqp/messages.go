package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Refresh reasons.
const (
	ReasonTransactionAdded   = "transaction_added"
	ReasonTransactionDeleted = "transaction_deleted"
	ReasonImport             = "import"
	ReasonManual             = "manual"
)

// RefreshMessage asks workers to recompute the ledger snapshot. It carries no
// ledger data; the worker reads the current transactions from storage.
type RefreshMessage struct {
	ID            string    `json:"id"`
	Reason        string    `json:"reason"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewRefreshMessage(reason, transactionID string) *RefreshMessage {
	return &RefreshMessage{
		ID:            uuid.NewString(),
		Reason:        reason,
		TransactionID: transactionID,
		Timestamp:     time.Now(),
	}
}

func (m *RefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RefreshMessageFromJSON(data []byte) (*RefreshMessage, error) {
	var msg RefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
