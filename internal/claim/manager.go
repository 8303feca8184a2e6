package claim

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"backend-landgrab/internal/stream"
	"backend-landgrab/internal/territory"

	"github.com/google/uuid"
)

// TerritoryStore is the persistence collaborator: finalized claims go out,
// the foreign-territory roster comes in.
type TerritoryStore interface {
	Save(ctx context.Context, t territory.Territory) (territory.Territory, error)
	Roster(ctx context.Context, excludeOwner string) ([]territory.Territory, error)
}

// Manager owns at most one session per user and drives the per-session
// sampling tick and the shared roster refresher.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	thresholds   Thresholds
	store        TerritoryStore
	hub          *stream.Hub
	detector     *CollisionDetector
	tickInterval time.Duration

	refreshDone chan struct{}
	refreshOnce sync.Once
}

func NewManager(t Thresholds, store TerritoryStore, hub *stream.Hub, tickInterval time.Duration) *Manager {
	return &Manager{
		sessions:     map[string]*Session{},
		thresholds:   t,
		store:        store,
		hub:          hub,
		detector:     NewCollisionDetector(t),
		tickInterval: tickInterval,
		refreshDone:  make(chan struct{}),
	}
}

func (m *Manager) Detector() *CollisionDetector {
	return m.detector
}

// RefreshRoster pulls the current foreign-territory roster. A failed pull
// keeps the last good roster; staleness is tolerated.
func (m *Manager) RefreshRoster(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	roster, err := m.store.Roster(ctx, "")
	if err != nil {
		log.Printf("roster refresh failed: %v", err)
		return err
	}
	m.detector.SetRoster(roster)
	return nil
}

// StartRosterRefresh launches the background pull loop.
func (m *Manager) StartRosterRefresh(interval time.Duration) {
	m.refreshOnce.Do(func() {
		go func() {
			_ = m.RefreshRoster(context.Background())
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					_ = m.RefreshRoster(context.Background())
				case <-m.refreshDone:
					return
				}
			}
		}()
	})
}

func (m *Manager) Close() {
	close(m.refreshDone)
	m.mu.Lock()
	defer m.mu.Unlock()
	for userID, sess := range m.sessions {
		close(sess.done)
		delete(m.sessions, userID)
	}
}

// Start creates the user's tracking session. Exactly one session may be
// active per user at a time.
func (m *Manager) Start(userID string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[userID]; exists {
		return Snapshot{}, ErrSessionActive
	}

	sess := newSession(uuid.NewString(), userID, m.thresholds, m.detector)
	m.sessions[userID] = sess

	if m.tickInterval > 0 {
		go m.runTick(sess)
	}
	return sess.Snapshot(), nil
}

func (m *Manager) runTick(sess *Session) {
	ticker := time.NewTicker(m.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if snap, ok := sess.Tick(); ok {
				m.broadcast(sess.id, snap)
			}
		case <-sess.done:
			return
		}
	}
}

// Ingest feeds one fix into the user's session. If a sustained speed
// violation forced the session to finalize and the path still validated,
// the claim is persisted exactly as on a manual stop.
func (m *Manager) Ingest(ctx context.Context, userID string, fix Fix) (Snapshot, error) {
	sess, err := m.session(userID)
	if err != nil {
		return Snapshot{}, err
	}

	snap := sess.Ingest(fix)
	if snap.ForcedStop && snap.Result != nil && snap.Result.IsValid {
		if _, err := m.persist(ctx, userID, sess, *snap.Result); err != nil {
			return snap, err
		}
		snap = sess.Snapshot()
	}
	m.broadcast(sess.id, snap)
	return snap, nil
}

func (m *Manager) Snapshot(userID string) (Snapshot, error) {
	sess, err := m.session(userID)
	if err != nil {
		return Snapshot{}, err
	}
	return sess.Snapshot(), nil
}

// Stop finalizes the session. A valid claim is handed to the persistence
// collaborator and the session ends; an invalid one stays resumable.
func (m *Manager) Stop(ctx context.Context, userID string) (ValidationResult, *territory.Territory, error) {
	sess, err := m.session(userID)
	if err != nil {
		return ValidationResult{}, nil, err
	}

	result, snap := sess.Stop()
	m.broadcast(sess.id, snap)

	if !result.IsValid {
		return result, nil, nil
	}

	saved, err := m.persist(ctx, userID, sess, result)
	if err != nil {
		return result, nil, err
	}
	return result, saved, nil
}

func (m *Manager) persist(ctx context.Context, userID string, sess *Session, result ValidationResult) (*territory.Territory, error) {
	record := territory.Territory{
		OwnerID:     userID,
		Polygon:     sess.Path(),
		AreaSqm:     result.AreaSqm,
		StartedAt:   sess.StartedAt(),
		CompletedAt: time.Now(),
	}

	if m.store != nil {
		saved, err := m.store.Save(ctx, record)
		if err != nil {
			return nil, err
		}
		record = saved
	}

	m.remove(userID)
	return &record, nil
}

func (m *Manager) Reset(userID string) (Snapshot, error) {
	sess, err := m.session(userID)
	if err != nil {
		return Snapshot{}, err
	}
	snap := sess.Reset()
	m.broadcast(sess.id, snap)
	return snap, nil
}

// Abandon discards the session without finalizing.
func (m *Manager) Abandon(userID string) error {
	if _, err := m.session(userID); err != nil {
		return err
	}
	m.remove(userID)
	return nil
}

func (m *Manager) session(userID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[userID]
	if !ok {
		return nil, ErrNoSession
	}
	return sess, nil
}

func (m *Manager) remove(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[userID]; ok {
		close(sess.done)
		delete(m.sessions, userID)
	}
}

func (m *Manager) broadcast(sessionID string, snap Snapshot) {
	if m.hub == nil {
		return
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return
	}
	m.hub.Broadcast(sessionID, payload)
}
