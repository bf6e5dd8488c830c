package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// sessionTTL is a Redis-side backstop only. The authoritative expiry is the
// explicit idle check in Load, which also clears state server-side.
const sessionTTL = 48 * time.Hour

const (
	SessionActive    = "active"
	SessionExpired   = "expired"
	SessionCompleted = "completed"
)

// Session is the cross-turn context row. CurrentDate, once set, is cleared
// when the session idles past maxIdle, when the stored date has passed, or
// when an appointment commits.
type Session struct {
	ID              string     `json:"id"`
	BarbershopID    uuid.UUID  `json:"barbershop_id"`
	CurrentDate     *time.Time `json:"current_date,omitempty"`
	LastMessageAt   time.Time  `json:"last_message_at"`
	ClientPhone     string     `json:"client_phone,omitempty"`
	ClientName      string     `json:"client_name,omitempty"`
	ClientProfileID *uuid.UUID `json:"client_profile_id,omitempty"`
	Status          string     `json:"status"`
}

// SessionStore persists sessions in Redis, keyed session:{id}.
type SessionStore struct {
	redis   *redis.Client
	maxIdle time.Duration
	loc     *time.Location
	tracer  trace.Tracer
}

// NewSessionStore builds a store with the given idle cutoff and business
// timezone for "today" comparisons.
func NewSessionStore(rdb *redis.Client, maxIdle time.Duration, loc *time.Location) *SessionStore {
	if rdb == nil {
		panic("conversation: redis client cannot be nil")
	}
	if maxIdle <= 0 {
		maxIdle = 24 * time.Hour
	}
	if loc == nil {
		loc = BusinessLocation("")
	}
	return &SessionStore{
		redis:   rdb,
		maxIdle: maxIdle,
		loc:     loc,
		tracer:  otel.Tracer("barber.internal.conversation.session"),
	}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Load fetches a session and applies the expiry rules before returning it.
// A missing session degrades to nil with no error. A session idle past the
// cutoff has its carried date cleared and status set to expired server-side;
// a carried date that is already in the past (by calendar day in the
// business timezone) is likewise cleared, so the engine never offers to book
// in the past.
func (s *SessionStore) Load(ctx context.Context, id string, now time.Time) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.load_session")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to decode session: %w", err)
	}

	if now.Sub(sess.LastMessageAt) > s.maxIdle {
		sess.CurrentDate = nil
		sess.ClientPhone = ""
		sess.ClientName = ""
		sess.ClientProfileID = nil
		sess.Status = SessionExpired
		if err := s.Save(ctx, &sess); err != nil {
			return nil, err
		}
		return &sess, nil
	}

	if sess.CurrentDate != nil {
		today := startOfDay(now.In(s.loc))
		if sess.CurrentDate.In(s.loc).Before(today) {
			sess.CurrentDate = nil
			if err := s.Save(ctx, &sess); err != nil {
				return nil, err
			}
		}
	}

	return &sess, nil
}

// Save writes the session row with the backstop TTL.
func (s *SessionStore) Save(ctx context.Context, sess *Session) error {
	ctx, span := s.tracer.Start(ctx, "conversation.save_session")
	defer span.End()

	data, err := json.Marshal(sess)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(sess.ID), data, sessionTTL).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to persist session: %w", err)
	}
	return nil
}

// Touch updates LastMessageAt and reactivates an expired session.
func (s *SessionStore) Touch(ctx context.Context, sess *Session, now time.Time) error {
	sess.LastMessageAt = now
	if sess.Status != SessionCompleted {
		sess.Status = SessionActive
	}
	return s.Save(ctx, sess)
}

// SetDate carries a resolved date into the session.
func (s *SessionStore) SetDate(ctx context.Context, sess *Session, date time.Time) error {
	d := startOfDay(date)
	sess.CurrentDate = &d
	return s.Save(ctx, sess)
}

// ClearDate drops the carried date without touching the session status.
func (s *SessionStore) ClearDate(ctx context.Context, sess *Session) error {
	sess.CurrentDate = nil
	return s.Save(ctx, sess)
}

// Complete clears the carried date and marks the session completed after a
// successful commit.
func (s *SessionStore) Complete(ctx context.Context, sess *Session) error {
	sess.CurrentDate = nil
	sess.Status = SessionCompleted
	return s.Save(ctx, sess)
}
