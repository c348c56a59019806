// Package state holds the application state container: an in-memory mirror
// of the events, registrations and feedback last acknowledged by the store.
package state

import (
	"slices"
	"sync"

	"github.com/Eursukkul/campus-events/internal/models"
)

type Mirror struct {
	mu            sync.RWMutex
	events        []models.Event
	registrations []models.Registration
	feedback      []models.Feedback
}

func NewMirror() *Mirror {
	return &Mirror{}
}

// Snapshot is a consistent copy of the mirror.
type Snapshot struct {
	Events        []models.Event
	Registrations []models.Registration
	Feedback      []models.Feedback
}

func (m *Mirror) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		Events:        slices.Clone(m.events),
		Registrations: slices.Clone(m.registrations),
		Feedback:      slices.Clone(m.feedback),
	}
}

func (m *Mirror) Events() []models.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.events)
}

func (m *Mirror) ReplaceEvents(events []models.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = slices.Clone(events)
}

func (m *Mirror) ReplaceRegistrations(regs []models.Registration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registrations = slices.Clone(regs)
}

func (m *Mirror) ReplaceFeedback(fb []models.Feedback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedback = slices.Clone(fb)
}

func (m *Mirror) Event(id string) (models.Event, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.eventIndex(id)
	if i < 0 {
		return models.Event{}, false
	}
	return m.events[i], true
}

// PutEvent inserts or replaces the event with the same id.
func (m *Mirror) PutEvent(e models.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.eventIndex(e.ID); i >= 0 {
		m.events[i] = e
		return
	}
	m.events = append(m.events, e)
}

func (m *Mirror) RemoveEvent(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = slices.DeleteFunc(m.events, func(e models.Event) bool { return e.ID == id })
}

// SetAttendees records the store's attendee count for an event.
func (m *Mirror) SetAttendees(eventID string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.eventIndex(eventID); i >= 0 {
		m.events[i].CurrentAttendees = n
	}
}

func (m *Mirror) eventIndex(id string) int {
	return slices.IndexFunc(m.events, func(e models.Event) bool { return e.ID == id })
}

func (m *Mirror) Registration(eventID, userID string) (models.Registration, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.registrationIndex(eventID, userID)
	if i < 0 {
		return models.Registration{}, false
	}
	return m.registrations[i], true
}

func (m *Mirror) RegistrationsByEvent(eventID string) []models.Registration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Registration
	for _, r := range m.registrations {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out
}

// PutRegistration inserts or replaces the registration with the same id.
func (m *Mirror) PutRegistration(r models.Registration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := slices.IndexFunc(m.registrations, func(x models.Registration) bool { return x.ID == r.ID }); i >= 0 {
		m.registrations[i] = r
		return
	}
	m.registrations = append(m.registrations, r)
}

func (m *Mirror) RemoveRegistration(eventID, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registrations = slices.DeleteFunc(m.registrations, func(r models.Registration) bool {
		return r.EventID == eventID && r.UserID == userID
	})
}

func (m *Mirror) registrationIndex(eventID, userID string) int {
	return slices.IndexFunc(m.registrations, func(r models.Registration) bool {
		return r.EventID == eventID && r.UserID == userID
	})
}

func (m *Mirror) AddFeedback(fb models.Feedback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedback = append(m.feedback, fb)
}
