// Package state keeps the per-user input state of multi-step dialogs
// (style creation, admin demo setup). State lives in memory only.
package state

import (
	"sync"
	"time"
)

type State string

const (
	None State = ""

	PersonalStyleName   State = "personal_style_name"
	PersonalStylePrompt State = "personal_style_prompt"
	GroupStyleName      State = "group_style_name"
	GroupStylePrompt    State = "group_style_prompt"

	AdminBroadcast      State = "admin_broadcast"
	AdminGroupBroadcast State = "admin_group_broadcast"

	DemoUserID    State = "demo_user_id"
	DemoTrigger   State = "demo_trigger"
	DemoResponses State = "demo_responses"

	SimpleDemoUserID   State = "simple_demo_user_id"
	SimpleDemoTrigger  State = "simple_demo_trigger"
	SimpleDemoResponse State = "simple_demo_response"
)

const DefaultTTL = 30 * time.Minute

type entry struct {
	state     State
	data      map[string]string
	updatedAt time.Time
}

type Manager struct {
	entries map[int64]*entry
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
}

func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		entries: make(map[int64]*entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Set moves the user to s, keeping previously collected data.
func (m *Manager) Set(userID int64, s State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, exists := m.entries[userID]
	if !exists || m.expired(e) {
		e = &entry{data: make(map[string]string)}
		m.entries[userID] = e
	}
	e.state = s
	e.updatedAt = m.now()
}

// Get returns the current state; abandoned dialogs expire after the TTL.
func (m *Manager) Get(userID int64) State {
	m.mu.RLock()
	e, exists := m.entries[userID]
	m.mu.RUnlock()

	if !exists {
		return None
	}
	if m.expired(e) {
		m.Clear(userID)
		return None
	}
	return e.state
}

func (m *Manager) Put(userID int64, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, exists := m.entries[userID]
	if !exists {
		e = &entry{data: make(map[string]string)}
		m.entries[userID] = e
	}
	e.data[key] = value
	e.updatedAt = m.now()
}

func (m *Manager) Data(userID int64) map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, exists := m.entries[userID]
	if !exists {
		return map[string]string{}
	}
	data := make(map[string]string, len(e.data))
	for k, v := range e.data {
		data[k] = v
	}
	return data
}

func (m *Manager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, userID)
}

func (m *Manager) expired(e *entry) bool {
	return m.now().Sub(e.updatedAt) > m.ttl
}
