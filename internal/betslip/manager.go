package betslip

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/playmoney-sportsbook/internal/domain"
	"github.com/radieske/playmoney-sportsbook/internal/session"
	"github.com/radieske/playmoney-sportsbook/internal/wallet"
	"github.com/radieske/playmoney-sportsbook/pkg/contracts/events"
)

var (
	ErrUnauthenticated   = errors.New("no user signed in")
	ErrEmptySlip         = errors.New("bet slip is empty")
	ErrInvalidStake      = errors.New("every selection needs a stake greater than zero")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidMarket     = errors.New("invalid market")
	ErrInvalidOdds       = errors.New("odds must be at least 1.0")
	ErrMissingLine       = errors.New("market requires a line")
	ErrNotInSlip         = errors.New("game not in slip")
)

// Wallet é o que o slip precisa do ledger
type Wallet interface {
	Balance() decimal.Decimal
	PlaceBets(ctx context.Context, debits []wallet.Debit) bool
}

// BetStore recebe as apostas colocadas
type BetStore interface {
	Append(ctx context.Context, placed ...domain.PlacedBet) error
}

// EventPublisher publica bet_placed (Kafka ou Nop)
type EventPublisher interface {
	PublishBetPlaced(ctx context.Context, e events.BetPlaced) error
}

type slip struct {
	items  []domain.BetSlipItem
	recent []domain.PlacedBet
}

// Manager mantém um slip por usuário logado e promove os itens a apostas de forma atômica.
type Manager struct {
	session session.Provider
	wallet  Wallet
	bets    BetStore
	pub     EventPublisher
	log     *zap.Logger
	now     func() time.Time
	newID   func() string

	mu    sync.Mutex
	slips map[string]*slip
}

func NewManager(sp session.Provider, w Wallet, bets BetStore, pub EventPublisher, log *zap.Logger) *Manager {
	return &Manager{
		session: sp,
		wallet:  w,
		bets:    bets,
		pub:     pub,
		log:     log,
		now:     time.Now,
		newID:   uuid.NewString,
		slips:   make(map[string]*slip),
	}
}

// current retorna o slip do usuário logado; chamar com mu travado
func (m *Manager) current() (session.User, *slip, error) {
	u, ok := m.session.CurrentUser()
	if !ok {
		return session.User{}, nil, ErrUnauthenticated
	}
	s, ok := m.slips[u.ID]
	if !ok {
		s = &slip{}
		m.slips[u.ID] = s
	}
	return u, s, nil
}

// Add seleciona um mercado do jogo. Uma seleção existente para o mesmo jogo é substituída; stake volta a zero.
func (m *Manager) Add(game domain.Game, market domain.Market, odds float64, line *float64) (domain.BetSlipItem, error) {
	if !market.Valid() {
		return domain.BetSlipItem{}, ErrInvalidMarket
	}
	if odds < 1.0 {
		return domain.BetSlipItem{}, ErrInvalidOdds
	}
	if market.NeedsLine() && line == nil {
		return domain.BetSlipItem{}, ErrMissingLine
	}
	if !market.NeedsLine() {
		line = nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	_, s, err := m.current()
	if err != nil {
		return domain.BetSlipItem{}, err
	}

	item := domain.BetSlipItem{
		GameID:   game.ID,
		Sport:    game.Sport,
		HomeTeam: game.HomeTeam,
		AwayTeam: game.AwayTeam,
		Market:   market,
		Odds:     odds,
		Stake:    decimal.Zero,
	}
	if line != nil {
		item.Line = domain.Float(*line)
	}

	for i := range s.items {
		if s.items[i].GameID == game.ID {
			s.items[i] = item
			return item, nil
		}
	}
	s.items = append(s.items, item)
	return item, nil
}

// UpdateStake define o valor do item; o limite é checado só na colocação
func (m *Manager) UpdateStake(gameID string, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, s, err := m.current()
	if err != nil {
		return err
	}
	for i := range s.items {
		if s.items[i].GameID == gameID {
			s.items[i].Stake = amount
			return nil
		}
	}
	return ErrNotInSlip
}

func (m *Manager) Remove(gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, s, err := m.current()
	if err != nil {
		return err
	}
	for i := range s.items {
		if s.items[i].GameID == gameID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return ErrNotInSlip
}

func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, s, err := m.current()
	if err != nil {
		return err
	}
	s.items = nil
	return nil
}

// Items retorna uma cópia do slip do usuário logado (vazio sem usuário)
func (m *Manager) Items() []domain.BetSlipItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, s, err := m.current()
	if err != nil {
		return nil
	}
	return copyItems(s.items)
}

func (m *Manager) TotalStake() decimal.Decimal {
	return sumStake(m.Items())
}

// PotentialPayout soma stake × odds de cada item
func (m *Manager) PotentialPayout() decimal.Decimal {
	total := decimal.Zero
	for _, it := range m.Items() {
		total = total.Add(it.Stake.Mul(decimal.NewFromFloat(it.Odds)))
	}
	return total.Round(2)
}

// RecentlyPlaced retorna as apostas da última colocação bem-sucedida
func (m *Manager) RecentlyPlaced() []domain.PlacedBet {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, s, err := m.current()
	if err != nil {
		return nil
	}
	return append([]domain.PlacedBet(nil), s.recent...)
}

// PlaceAll promove todos os itens a apostas, ou nenhum.
// Qualquer falha de pré-condição deixa slip, carteira e apostas intactos.
func (m *Manager) PlaceAll(ctx context.Context) ([]domain.PlacedBet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, s, err := m.current()
	if err != nil {
		return nil, err
	}
	if len(s.items) == 0 {
		return nil, ErrEmptySlip
	}
	for _, it := range s.items {
		if !it.Stake.IsPositive() {
			return nil, ErrInvalidStake
		}
	}
	if sumStake(s.items).GreaterThan(m.wallet.Balance()) {
		return nil, ErrInsufficientFunds
	}

	at := m.now()
	placed := make([]domain.PlacedBet, len(s.items))
	debits := make([]wallet.Debit, len(s.items))
	for i, it := range s.items {
		placed[i] = domain.PlacedBet{
			BetSlipItem: it,
			ID:          m.newID(),
			UserID:      u.ID,
			PlacedAt:    at,
			Status:      domain.BetPending,
		}
		debits[i] = wallet.Debit{Amount: it.Stake, Description: it.Description()}
	}

	// o ledger checa o saldo de novo sob o próprio lock
	if !m.wallet.PlaceBets(ctx, debits) {
		return nil, ErrInsufficientFunds
	}
	if err := m.bets.Append(ctx, placed...); err != nil {
		m.log.Error("bets placed but not persisted", zap.String("user_id", u.ID), zap.Error(err))
	}

	for _, b := range placed {
		e := events.BetPlaced{
			BetID:    b.ID,
			UserID:   b.UserID,
			GameID:   b.GameID,
			Market:   string(b.Market),
			Stake:    b.Stake.String(),
			OddValue: b.Odds,
			TsUnixMs: at.UnixMilli(),
		}
		if b.Line != nil {
			e.Line = *b.Line
		}
		if err := m.pub.PublishBetPlaced(ctx, e); err != nil {
			m.log.Warn("bet_placed publish failed", zap.String("bet_id", b.ID), zap.Error(err))
		}
	}

	s.items = nil
	s.recent = placed
	m.log.Info("bet slip placed",
		zap.String("user_id", u.ID),
		zap.Int("bets", len(placed)),
		zap.String("total_stake", sumStake(debitItems(placed)).String()),
	)
	return append([]domain.PlacedBet(nil), placed...), nil
}

func sumStake(items []domain.BetSlipItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Stake)
	}
	return total
}

func debitItems(bets []domain.PlacedBet) []domain.BetSlipItem {
	out := make([]domain.BetSlipItem, len(bets))
	for i, b := range bets {
		out[i] = b.BetSlipItem
	}
	return out
}

func copyItems(items []domain.BetSlipItem) []domain.BetSlipItem {
	out := make([]domain.BetSlipItem, len(items))
	for i, it := range items {
		out[i] = it
		if it.Line != nil {
			out[i].Line = domain.Float(*it.Line)
		}
	}
	return out
}
