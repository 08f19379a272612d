package storage

type Transaction struct {
	ID            string
	AccountNumber string
	Date          string
	Description   string
	Amount        string
	SyncStatus    string
	CreatedAt     int64
}

type Account struct {
	Number    string
	Name      string
	Balance   string
	UpdatedAt int64
}

type SyncQueue struct {
	ID            int64
	TransactionID string
	Operation     string
	Status        string
	Attempts      int64
	LastError     string
	TxDate        string
	TxDescription string
	TxAmount      string
	NextAttemptAt int64
	CreatedAt     int64
	UpdatedAt     int64
}
