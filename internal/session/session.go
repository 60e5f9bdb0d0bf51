// Package session tient l'identité de l'administrateur connecté pour un navigateur.
package session

import (
	"context"
	"errors"
	"sync"

	"joyeria_admin/internal/apperr"
	"joyeria_admin/internal/models"
)

// Authenticator est la partie de l'API distante dont la session a besoin
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
}

// Session est construite explicitement et passée à qui en a besoin (shell, client gateway).
// Elle implémente gateway.TokenSource.
type Session struct {
	id    string
	store Store
	auth  Authenticator

	mu    sync.RWMutex
	token string
	user  *models.User
}

func New(id string, store Store, auth Authenticator) *Session {
	return &Session{id: id, store: store, auth: auth}
}

func (s *Session) ID() string { return s.id }

// Init lit une seule fois l'état persisté ; absence de données = non connecté
func (s *Session) Init(ctx context.Context) error {
	p, err := s.store.Load(ctx, s.id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if p.Token == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	user := p.User
	s.token = p.Token
	s.user = &user
	return nil
}

// Login authentifie auprès de l'API ; seul le rôle admin ouvre une session
func (s *Session) Login(ctx context.Context, email, password string) (*models.User, error) {
	resp, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !resp.User.IsAdmin() {
		return nil, apperr.UnauthorizedErr("Accès non autorisé")
	}
	if err := s.store.Save(ctx, s.id, Persisted{Token: resp.Token, User: resp.User}); err != nil {
		return nil, apperr.Wrap(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	user := resp.User
	s.token = resp.Token
	s.user = &user
	return &user, nil
}

// Logout efface la mémoire puis le stockage
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	return s.store.Delete(ctx, s.id)
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}
