package state

import "sync"

// Conversation states. A chat in None treats free text as a medication name to check.
const (
	None                         = "none"
	WaitingForCheckPhoto         = "waiting_for_check_photo"
	WaitingForPrescriptionPhoto  = "waiting_for_prescription_photo"
	WaitingForMedicationName     = "waiting_for_medication_name"
	WaitingForMedicationSchedule = "waiting_for_medication_schedule"
)

// Keys for values carried between the steps of the add-medication flow.
const (
	KeyMedicationName   = "medication_name"
	KeyMedicationDosage = "medication_dosage"
)

// StateManager tracks per-chat conversation state between updates.
type StateManager interface {
	SetUserState(userID int64, state string)
	GetUserState(userID int64) string
	ClearUserState(userID int64)
	SetTempData(userID int64, key string, value string)
	GetTempData(userID int64, key string) (string, bool)
	ClearTempData(userID int64)
}

type session struct {
	state string
	data  map[string]string
}

func (s *session) empty() bool {
	return s.state == "" && len(s.data) == 0
}

// Manager keeps sessions in process memory. It is used when Redis is not configured.
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]*session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[int64]*session)}
}

// update runs fn on the user's session and drops the session once it holds nothing.
func (m *Manager) update(userID int64, fn func(s *session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		s = &session{}
		m.sessions[userID] = s
	}
	fn(s)
	if s.empty() {
		delete(m.sessions, userID)
	}
}

func (m *Manager) SetUserState(userID int64, state string) {
	m.update(userID, func(s *session) { s.state = state })
}

func (m *Manager) GetUserState(userID int64) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[userID]; ok && s.state != "" {
		return s.state
	}
	return None
}

func (m *Manager) ClearUserState(userID int64) {
	m.update(userID, func(s *session) { s.state = "" })
}

func (m *Manager) SetTempData(userID int64, key string, value string) {
	m.update(userID, func(s *session) {
		if s.data == nil {
			s.data = make(map[string]string)
		}
		s.data[key] = value
	})
}

func (m *Manager) GetTempData(userID int64, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	if !ok {
		return "", false
	}
	value, ok := s.data[key]
	return value, ok
}

func (m *Manager) ClearTempData(userID int64) {
	m.update(userID, func(s *session) { s.data = nil })
}
