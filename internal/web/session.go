package web

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoSession indica sessão inexistente ou expirada
var ErrNoSession = errors.New("sessão não encontrada")

// Flash é uma mensagem exibida uma única vez na próxima página
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Session são os dados do usuário logado
type Session struct {
	UserID  int64   `json:"user_id,omitempty"`
	Email   string  `json:"email,omitempty"`
	IsAdmin bool    `json:"is_admin,omitempty"`
	Flashes []Flash `json:"flashes,omitempty"`
}

// LoggedIn informa se a sessão pertence a um usuário
func (s *Session) LoggedIn() bool {
	return s.UserID > 0
}

// AddFlash enfileira uma mensagem para a próxima página
func (s *Session) AddFlash(category, message string) {
	s.Flashes = append(s.Flashes, Flash{Category: category, Message: message})
}

// Clear faz logout mantendo as mensagens pendentes
func (s *Session) Clear() {
	s.UserID = 0
	s.Email = ""
	s.IsAdmin = false
}

// popFlashes devolve e remove as mensagens pendentes
func (s *Session) popFlashes() []Flash {
	f := s.Flashes
	s.Flashes = nil
	return f
}

// SessionStore guarda sessões por ID
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, id string, s *Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	session Session
	expires time.Time
}

// MemoryStore guarda sessões no processo. Serve para uma única instância.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNoSession
	}
	if m.now().After(e.expires) {
		delete(m.sessions, id)
		return nil, ErrNoSession
	}
	s := e.session
	s.Flashes = append([]Flash(nil), e.session.Flashes...)
	return &s, nil
}

func (m *MemoryStore) Save(ctx context.Context, id string, s *Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *s
	copied.Flashes = append([]Flash(nil), s.Flashes...)
	m.sessions[id] = memoryEntry{session: copied, expires: m.now().Add(ttl)}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// RedisStore guarda sessões no Redis como JSON com expiração
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "dealradar:session:"}
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, r.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, id string, s *Session, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.prefix+id, data, ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.prefix+id).Err()
}
