package session

import (
	"errors"
	"strings"
	"sync"
)

var ErrInvalidUser = errors.New("user id required")

// User é a identidade fornecida pelo provedor de sessão
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Provider informa o usuário logado; ausência de usuário nunca é substituída por um default
type Provider interface {
	CurrentUser() (User, bool)
}

// Local guarda a sessão de um único cliente em memória
type Local struct {
	mu   sync.RWMutex
	user *User
}

func NewLocal() *Local { return &Local{} }

func (l *Local) CurrentUser() (User, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.user == nil {
		return User{}, false
	}
	return *l.user, true
}

func (l *Local) SignIn(id, email string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrInvalidUser
	}
	u := User{ID: id, Email: strings.TrimSpace(email)}
	l.mu.Lock()
	l.user = &u
	l.mu.Unlock()
	return u, nil
}

func (l *Local) SignOut() {
	l.mu.Lock()
	l.user = nil
	l.mu.Unlock()
}
