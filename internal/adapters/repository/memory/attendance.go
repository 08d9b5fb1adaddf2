package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
)

type AttendanceRepository struct {
	s *Store
}

func (r *AttendanceRepository) IsPresentOn(_ context.Context, userID uuid.UUID, date time.Time) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	day := date.Format(time.DateOnly)
	for key, rec := range r.s.attendance {
		if key.userID != userID || !rec.Present {
			continue
		}
		if session, ok := r.s.sessions[key.sessionID]; ok && session.SessionDate.Format(time.DateOnly) == day {
			return true, nil
		}
	}
	return false, nil
}

func (r *AttendanceRepository) IsPresentInSession(_ context.Context, userID, sessionID uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.attendance[attendanceKey{userID: userID, sessionID: sessionID}]
	return ok && rec.Present, nil
}

func (r *AttendanceRepository) StartSession(_ context.Context, session *domain.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, existing := range r.s.sessions {
		if existing.Active {
			closedAt := session.CreatedAt
			existing.Active = false
			existing.ClosedAt = &closedAt
			r.s.sessions[id] = existing
		}
	}

	stored := *session
	stored.Active = true
	r.s.sessions[session.ID] = stored

	for _, user := range r.s.users {
		if !user.IsActive {
			continue
		}
		r.s.attendance[attendanceKey{userID: user.ID, sessionID: session.ID}] = domain.AttendanceRecord{
			UserID:    user.ID,
			SessionID: session.ID,
			Present:   false,
			UpdatedAt: session.CreatedAt,
		}
	}
	return nil
}

func (r *AttendanceRepository) CloseActiveSession(_ context.Context, closedAt time.Time) (*domain.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, session := range r.s.sessions {
		if session.Active {
			session.Active = false
			session.ClosedAt = &closedAt
			r.s.sessions[id] = session
			return &session, nil
		}
	}
	return nil, domain.ErrNoActiveSession
}

func (r *AttendanceRepository) ActiveSession(_ context.Context) (*domain.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, session := range r.s.sessions {
		if session.Active {
			return &session, nil
		}
	}
	return nil, domain.ErrNoActiveSession
}

func (r *AttendanceRepository) GetSession(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	session, ok := r.s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (r *AttendanceRepository) ToggleAttendance(_ context.Context, sessionID, userID uuid.UUID, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := attendanceKey{userID: userID, sessionID: sessionID}
	rec, ok := r.s.attendance[key]
	if !ok {
		rec = domain.AttendanceRecord{UserID: userID, SessionID: sessionID, Present: true}
	} else {
		rec.Present = !rec.Present
	}
	rec.UpdatedAt = now
	r.s.attendance[key] = rec
	return rec.Present, nil
}

func (r *AttendanceRepository) MarkPresent(_ context.Context, sessionID, userID uuid.UUID, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.attendance[attendanceKey{userID: userID, sessionID: sessionID}] = domain.AttendanceRecord{
		UserID:    userID,
		SessionID: sessionID,
		Present:   true,
		UpdatedAt: now,
	}
	return nil
}

func (r *AttendanceRepository) ListSessions(_ context.Context) ([]*domain.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sessions := make([]*domain.Session, 0, len(r.s.sessions))
	for _, session := range r.s.sessions {
		sessions = append(sessions, &session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].SessionDate.Equal(sessions[j].SessionDate) {
			return sessions[i].SessionDate.After(sessions[j].SessionDate)
		}
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

func (r *AttendanceRepository) ListPresent(_ context.Context, sessionID uuid.UUID) ([]domain.AttendanceRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var records []domain.AttendanceRecord
	for key, rec := range r.s.attendance {
		if key.sessionID == sessionID && rec.Present {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].UpdatedAt.Before(records[j].UpdatedAt) })
	return records, nil
}
