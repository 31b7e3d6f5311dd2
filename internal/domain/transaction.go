package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifica um lançamento da carteira
type TransactionKind string

const (
	TxDeposit   TransactionKind = "deposit"
	TxBetPlaced TransactionKind = "bet_placed"
	TxBetWon    TransactionKind = "bet_won"
	TxBetLost   TransactionKind = "bet_lost"
)

// Transaction é um lançamento imutável; Balance é o saldo após aplicar Amount
type Transaction struct {
	ID          string          `json:"id"`
	Kind        TransactionKind `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Timestamp   time.Time       `json:"timestamp"`
	Balance     decimal.Decimal `json:"balance"`
}

// WalletState é o blob persistido da carteira (transações mais recentes primeiro)
// InitialBalance permite reconstituir cada saldo a partir do log
type WalletState struct {
	InitialBalance decimal.Decimal `json:"initialBalance"`
	Balance        decimal.Decimal `json:"balance"`
	Transactions   []Transaction   `json:"transactions"`
}
