package board

import (
	"sort"
	"sync"

	"github.com/radieske/playmoney-sportsbook/internal/domain"
)

// Board guarda a cópia exibida dos jogos.
// O refresh substitui tudo de uma vez; o simulador altera campos entre refreshes.
type Board struct {
	mu    sync.RWMutex
	games map[string]*domain.Game
}

func New() *Board { return &Board{games: make(map[string]*domain.Game)} }

// Replace troca o conjunto inteiro de jogos
func (b *Board) Replace(games []domain.Game) {
	next := make(map[string]*domain.Game, len(games))
	for _, g := range games {
		c := g.Clone()
		next[g.ID] = &c
	}
	b.mu.Lock()
	b.games = next
	b.mu.Unlock()
}

// Snapshot retorna cópias ordenadas por horário de início
func (b *Board) Snapshot() []domain.Game {
	b.mu.RLock()
	out := make([]domain.Game, 0, len(b.games))
	for _, g := range b.games {
		out = append(out, g.Clone())
	}
	b.mu.RUnlock()
	SortByStart(out)
	return out
}

// Get retorna uma cópia do jogo
func (b *Board) Get(id string) (domain.Game, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	g, ok := b.games[id]
	if !ok {
		return domain.Game{}, false
	}
	return g.Clone(), true
}

func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.games)
}

// Mutate executa fn com o lock de escrita; fn roda até o fim antes de outra tarefa ver o board
func (b *Board) Mutate(fn func(games map[string]*domain.Game)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b.games)
}

// SortByStart ordena por início ascendente, com id como desempate
func SortByStart(games []domain.Game) {
	sort.SliceStable(games, func(i, j int) bool {
		if games[i].StartTime.Equal(games[j].StartTime) {
			return games[i].ID < games[j].ID
		}
		return games[i].StartTime.Before(games[j].StartTime)
	})
}
