package negotiation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"estatepro/database/kv"
	"estatepro/models"
)

var (
	errStaleDecision = errors.New("newer snapshot moved the meeting out of waiting")
	errNothingToDo   = errors.New("meeting absent from current snapshot")
)

// storedSnapshot is the last full listing seen for one user and role.
type storedSnapshot struct {
	FetchedAt time.Time        `json:"fetchedAt"`
	Meetings  []models.Meeting `json:"meetings"`
}

func (s *storedSnapshot) find(meetingID string) (int, bool) {
	for i, m := range s.Meetings {
		if m.RequestID == meetingID {
			return i, true
		}
	}
	return -1, false
}

// StateStore keeps the negotiation state that outlives a single HTTP call:
// meeting snapshots, per-meeting in-flight markers and ranking sessions.
type StateStore struct {
	kv          kv.Store
	snapshotTTL time.Duration
	sessionTTL  time.Duration
	inFlightTTL time.Duration
}

func NewStateStore(store kv.Store, snapshotTTL, sessionTTL, inFlightTTL time.Duration) *StateStore {
	return &StateStore{
		kv:          store,
		snapshotTTL: snapshotTTL,
		sessionTTL:  sessionTTL,
		inFlightTTL: inFlightTTL,
	}
}

func snapshotKey(userID string, role models.Role) string {
	return fmt.Sprintf("snapshot:%s:%s", role, userID)
}

func inFlightKey(meetingID string) string {
	return "inflight:" + meetingID
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

// ReplaceSnapshot stores meetings as the authoritative listing, dropping
// whatever was held before.
func (s *StateStore) ReplaceSnapshot(ctx context.Context, userID string, role models.Role, meetings []models.Meeting, at time.Time) error {
	data, err := json.Marshal(storedSnapshot{FetchedAt: at, Meetings: meetings})
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return s.kv.Set(ctx, snapshotKey(userID, role), data, s.snapshotTTL)
}

func (s *StateStore) loadSnapshot(ctx context.Context, userID string, role models.Role) (*storedSnapshot, error) {
	data, err := s.kv.Get(ctx, snapshotKey(userID, role))
	if err != nil {
		return nil, err
	}
	var snap storedSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return &snap, nil
}

// FindMeeting returns the meeting as last listed. kv.ErrNotFound means no
// snapshot is held for the user; a NotFound NegotiationError means the
// snapshot does not contain the meeting.
func (s *StateStore) FindMeeting(ctx context.Context, userID string, role models.Role, meetingID string) (models.Meeting, error) {
	snap, err := s.loadSnapshot(ctx, userID, role)
	if err != nil {
		return models.Meeting{}, err
	}
	i, ok := snap.find(meetingID)
	if !ok {
		return models.Meeting{}, NewNotFoundError("meeting %s is not among your meetings", meetingID)
	}
	return snap.Meetings[i], nil
}

// ApplyDecision writes updated into the held snapshot unless a newer
// listing already shows the meeting outside Waiting, in which case the
// decision is reported as discarded and nothing is written.
func (s *StateStore) ApplyDecision(ctx context.Context, userID string, role models.Role, updated models.Meeting) (bool, error) {
	err := s.kv.Update(ctx, snapshotKey(userID, role), s.snapshotTTL, func(current []byte) ([]byte, error) {
		if current == nil {
			return nil, errNothingToDo
		}
		var snap storedSnapshot
		if err := json.Unmarshal(current, &snap); err != nil {
			return nil, fmt.Errorf("failed to parse snapshot: %w", err)
		}
		i, ok := snap.find(updated.RequestID)
		if !ok {
			return nil, errNothingToDo
		}
		if Classify(snap.Meetings[i].RawStatus) != models.StatusWaiting {
			return nil, errStaleDecision
		}
		snap.Meetings[i] = updated
		return json.Marshal(snap)
	})
	switch {
	case errors.Is(err, errStaleDecision):
		return true, nil
	case errors.Is(err, errNothingToDo):
		return false, nil
	}
	return false, err
}

// AcquireInFlight marks meetingID as having a decision outstanding. It
// reports false when another decision already holds the marker.
func (s *StateStore) AcquireInFlight(ctx context.Context, meetingID string) (bool, error) {
	return s.kv.SetNX(ctx, inFlightKey(meetingID), []byte("1"), s.inFlightTTL)
}

func (s *StateStore) ReleaseInFlight(ctx context.Context, meetingID string) error {
	return s.kv.Del(ctx, inFlightKey(meetingID))
}

// InFlight returns the subset of meetingIDs with a decision outstanding.
func (s *StateStore) InFlight(ctx context.Context, meetingIDs []string) ([]string, error) {
	out := []string{}
	for _, id := range meetingIDs {
		ok, err := s.kv.Exists(ctx, inFlightKey(id))
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *StateStore) SaveSession(ctx context.Context, session models.RankingSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal ranking session: %w", err)
	}
	return s.kv.Set(ctx, sessionKey(session.SessionID), data, s.sessionTTL)
}

func (s *StateStore) LoadSession(ctx context.Context, sessionID string) (*models.RankingSession, error) {
	data, err := s.kv.Get(ctx, sessionKey(sessionID))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, NewNotFoundError("ranking session %s not found or expired", sessionID)
	}
	if err != nil {
		return nil, err
	}
	var session models.RankingSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to parse ranking session: %w", err)
	}
	return &session, nil
}

func (s *StateStore) DeleteSession(ctx context.Context, sessionID string) error {
	return s.kv.Del(ctx, sessionKey(sessionID))
}
