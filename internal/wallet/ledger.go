package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/playmoney-sportsbook/internal/domain"
	"github.com/radieske/playmoney-sportsbook/internal/store"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrAuditMismatch = errors.New("ledger audit mismatch")
)

// BalanceGauge expõe o saldo atual; registrado pelo main
var BalanceGauge = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "wallet_balance",
	Help: "Saldo atual da carteira (play money)",
})

// Debit é um débito de aposta a ser lançado no ledger
type Debit struct {
	Amount      decimal.Decimal
	Description string
}

// Ledger mantém um único saldo e o log de transações (mais recentes primeiro).
// Toda mutação gera exatamente uma transação por lançamento e grava o estado inteiro no store.
type Ledger struct {
	mu    sync.Mutex
	state domain.WalletState
	store store.Store
	log   *zap.Logger
	now   func() time.Time
}

// Open carrega o estado persistido ou cria uma carteira nova com o saldo inicial
func Open(ctx context.Context, st store.Store, log *zap.Logger, starting decimal.Decimal) (*Ledger, error) {
	l := &Ledger{store: st, log: log, now: time.Now}

	err := st.Load(ctx, store.KeyWalletState, &l.state)
	switch {
	case errors.Is(err, store.ErrNotFound):
		l.state = domain.WalletState{InitialBalance: starting, Balance: starting}
		if err := l.persist(ctx); err != nil {
			return nil, err
		}
		log.Info("wallet created", zap.String("balance", starting.String()))
	case err != nil:
		return nil, fmt.Errorf("load wallet: %w", err)
	default:
		log.Info("wallet loaded",
			zap.String("balance", l.state.Balance.String()),
			zap.Int("transactions", len(l.state.Transactions)),
		)
	}

	BalanceGauge.Set(l.state.Balance.InexactFloat64())
	return l, nil
}

// Balance retorna o saldo atual
func (l *Ledger) Balance() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Balance
}

// Transactions retorna uma cópia do log (mais recentes primeiro)
func (l *Ledger) Transactions() []domain.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Transaction(nil), l.state.Transactions...)
}

// State retorna uma cópia do estado completo
func (l *Ledger) State() domain.WalletState {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.state
	s.Transactions = append([]domain.Transaction(nil), l.state.Transactions...)
	return s
}

// AddFunds credita o saldo e lança um depósito
func (l *Ledger) AddFunds(ctx context.Context, amount decimal.Decimal) (domain.Transaction, error) {
	if !amount.IsPositive() {
		return domain.Transaction{}, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tx := l.apply(domain.TxDeposit, amount, fmt.Sprintf("Deposit of %s", amount.StringFixed(2)))
	l.save(ctx)
	return tx, nil
}

// PlaceBet debita amount se houver saldo; caso contrário retorna false sem alterar nada
func (l *Ledger) PlaceBet(ctx context.Context, amount decimal.Decimal, description string) bool {
	return l.PlaceBets(ctx, []Debit{{Amount: amount, Description: description}})
}

// PlaceBets debita todos os valores ou nenhum: se a soma exceder o saldo nada é lançado
func (l *Ledger) PlaceBets(ctx context.Context, debits []Debit) bool {
	total := decimal.Zero
	for _, d := range debits {
		if d.Amount.IsNegative() {
			return false
		}
		total = total.Add(d.Amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if total.GreaterThan(l.state.Balance) {
		return false
	}
	for _, d := range debits {
		l.apply(domain.TxBetPlaced, d.Amount.Neg(), d.Description)
	}
	l.save(ctx)
	return true
}

// SettleBet lança o resultado de uma aposta.
// Vitória credita amount (bet_won); derrota lança bet_lost com valor zero e saldo inalterado,
// já que o stake foi debitado na colocação.
func (l *Ledger) SettleBet(ctx context.Context, amount decimal.Decimal, won bool, description string) domain.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	var tx domain.Transaction
	if won {
		tx = l.apply(domain.TxBetWon, amount, description)
	} else {
		tx = l.apply(domain.TxBetLost, decimal.Zero, description)
	}
	l.save(ctx)
	return tx
}

// Verify refaz o log do mais antigo para o mais recente e confere cada saldo gravado
func (l *Ledger) Verify() error {
	return Verify(l.State())
}

// Verify confere se os valores do log, aplicados sobre o saldo inicial, reproduzem cada saldo gravado
func Verify(s domain.WalletState) error {
	bal := s.InitialBalance
	for i := len(s.Transactions) - 1; i >= 0; i-- {
		tx := s.Transactions[i]
		bal = bal.Add(tx.Amount)
		if !bal.Equal(tx.Balance) {
			return fmt.Errorf("%w: tx %s expected %s got %s", ErrAuditMismatch, tx.ID, bal, tx.Balance)
		}
	}
	if !bal.Equal(s.Balance) {
		return fmt.Errorf("%w: final balance expected %s got %s", ErrAuditMismatch, bal, s.Balance)
	}
	return nil
}

// apply altera o saldo e insere a transação no início do log; exige l.mu
func (l *Ledger) apply(kind domain.TransactionKind, amount decimal.Decimal, description string) domain.Transaction {
	l.state.Balance = l.state.Balance.Add(amount)
	tx := domain.Transaction{
		ID:          uuid.NewString(),
		Kind:        kind,
		Amount:      amount,
		Description: description,
		Timestamp:   l.now(),
		Balance:     l.state.Balance,
	}
	l.state.Transactions = append([]domain.Transaction{tx}, l.state.Transactions...)
	BalanceGauge.Set(l.state.Balance.InexactFloat64())

	l.log.Debug("wallet transaction",
		zap.String("kind", string(kind)),
		zap.String("amount", amount.String()),
		zap.String("balance", l.state.Balance.String()),
	)
	return tx
}

// save grava o estado; falha de persistência não desfaz a mutação em memória
func (l *Ledger) save(ctx context.Context) {
	if err := l.persist(ctx); err != nil {
		l.log.Warn("wallet persist failed", zap.Error(err))
	}
}

func (l *Ledger) persist(ctx context.Context) error {
	return l.store.Save(ctx, store.KeyWalletState, l.state)
}
