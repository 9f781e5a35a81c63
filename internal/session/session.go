package session

import (
	"sync"
	"time"

	"empower/pkg/models"
	"empower/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Session struct {
	ID        string
	User      models.User
	StartTime time.Time
	EndTime   time.Time
	idle      *utils.Timer
}

// Manager tracks logged-in sessions. With a non-zero ttl a session ends
// after ttl without a Touch.
type Manager struct {
	sessions map[string]*Session
	ttl      time.Duration
	mu       sync.RWMutex
	logger   *zap.Logger
}

func NewManager(ttl time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		logger:   logger,
	}
}

func (m *Manager) CreateSession(user models.User) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	session := &Session{
		ID:        uuid.New().String(),
		User:      user,
		StartTime: time.Now(),
	}
	if m.ttl > 0 {
		id := session.ID
		session.idle = utils.NewTimer(m.ttl, func() {
			m.logger.Info("Session expired", zap.String("sessionID", id))
			m.EndSession(id)
		}, m.logger)
		session.idle.Start()
	}

	m.sessions[session.ID] = session
	m.logger.Info("Created new session", zap.String("sessionID", session.ID), zap.String("username", user.Username))

	return session
}

func (m *Manager) GetSession(sessionID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[sessionID]
	return session, ok
}

// Touch keeps a session alive. It reports whether the session still exists.
func (m *Manager) Touch(sessionID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[sessionID]
	if ok && session.idle != nil {
		session.idle.Reset()
	}
	return ok
}

func (m *Manager) EndSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, ok := m.sessions[sessionID]; ok {
		session.EndTime = time.Now()
		if session.idle != nil {
			session.idle.Stop()
		}
		m.logger.Info("Ended session", zap.String("sessionID", sessionID), zap.String("username", session.User.Username))
		delete(m.sessions, sessionID)
	}
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}
