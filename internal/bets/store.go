package bets

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/playmoney-sportsbook/internal/domain"
	"github.com/radieske/playmoney-sportsbook/internal/store"
)

var (
	ErrNotFound       = errors.New("bet not found")
	ErrAlreadySettled = errors.New("bet already settled")
	ErrInvalidStatus  = errors.New("invalid settlement status")
)

// Store guarda todas as apostas colocadas do processo, de todos os usuários locais.
// Leituras por usuário sempre filtram por UserID.
type Store struct {
	mu    sync.RWMutex
	bets  []domain.PlacedBet
	index map[string]int
	kv    store.Store
	log   *zap.Logger
}

// Open carrega as apostas persistidas
func Open(ctx context.Context, kv store.Store, log *zap.Logger) (*Store, error) {
	s := &Store{kv: kv, log: log, index: make(map[string]int)}
	err := kv.Load(ctx, store.KeyPlacedBets, &s.bets)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load bets: %w", err)
	}
	for i, b := range s.bets {
		s.index[b.ID] = i
	}
	log.Info("bets loaded", zap.Int("count", len(s.bets)))
	return s, nil
}

// Append adiciona as apostas e grava o conjunto inteiro
func (s *Store) Append(ctx context.Context, placed ...domain.PlacedBet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range placed {
		s.index[b.ID] = len(s.bets)
		s.bets = append(s.bets, b)
	}
	return s.persistLocked(ctx)
}

// ForUser retorna as apostas de um usuário, mais recentes primeiro
func (s *Store) ForUser(userID string) []domain.PlacedBet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.PlacedBet
	for i := len(s.bets) - 1; i >= 0; i-- {
		if s.bets[i].UserID == userID {
			out = append(out, s.bets[i])
		}
	}
	return out
}

// Pending retorna todas as apostas ainda não liquidadas
func (s *Store) Pending() []domain.PlacedBet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.PlacedBet
	for _, b := range s.bets {
		if b.Status == domain.BetPending {
			out = append(out, b)
		}
	}
	return out
}

// Get busca uma aposta pelo id
func (s *Store) Get(id string) (domain.PlacedBet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return domain.PlacedBet{}, ErrNotFound
	}
	return s.bets[i], nil
}

// Resolve aplica a única transição pending → won|lost em memória; a gravação fica para Save
func (s *Store) Resolve(id string, status domain.BetStatus, payout *decimal.Decimal, at time.Time) error {
	if status != domain.BetWon && status != domain.BetLost {
		return ErrInvalidStatus
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return ErrNotFound
	}
	b := &s.bets[i]
	if b.Status != domain.BetPending {
		return ErrAlreadySettled
	}
	b.Status = status
	b.Payout = payout
	b.SettledAt = &at
	return nil
}

// Save grava o conjunto inteiro de apostas
func (s *Store) Save(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistLocked(ctx)
}

func (s *Store) persistLocked(ctx context.Context) error {
	if err := s.kv.Save(ctx, store.KeyPlacedBets, s.bets); err != nil {
		return fmt.Errorf("persist bets: %w", err)
	}
	return nil
}
