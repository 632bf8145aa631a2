package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Amund211/blacksmith/internal/adapters/feedback"
	"github.com/Amund211/blacksmith/internal/domain"
	"github.com/Amund211/blacksmith/internal/logging"
)

// recorderLimit bounds the feedback kept between two requests of a session
const recorderLimit = 256

type ClockMode string

const (
	// ClockWall advances the game by the wall-clock time between requests
	ClockWall ClockMode = "wall"
	// ClockManual only advances the game through tick actions
	ClockManual ClockMode = "manual"
)

func ParseClockMode(raw string) (ClockMode, error) {
	switch ClockMode(raw) {
	case "", ClockWall:
		return ClockWall, nil
	case ClockManual:
		return ClockManual, nil
	}
	return "", fmt.Errorf("%w: clock mode '%s'", domain.ErrInvalidValue, raw)
}

// Session is a running game as held by the session store
type Session struct {
	mu       sync.Mutex
	game     *Game
	recorder *feedback.Recorder
	clock    ClockMode
	lastSeen time.Time
}

// catchUp maps the wall-clock time since the last request onto virtual time
func (s *Session) catchUp(ctx context.Context, now time.Time) {
	if s.clock == ClockWall {
		if elapsed := now.Sub(s.lastSeen); elapsed > 0 {
			s.game.Advance(ctx, elapsed)
		}
	}
	s.lastSeen = now
}

type sessionStore interface {
	Set(id string, session *Session)
	Get(id string) (*Session, bool)
}

// GameFactory creates the game for a new session
type GameFactory func(sessionID string, feedback FeedbackSink) *Game

type CreateGame func(ctx context.Context, clock ClockMode) (Snapshot, error)

type GetGame func(ctx context.Context, sessionID string) (Snapshot, error)

type ApplyAction func(ctx context.Context, sessionID string, action Action) (Snapshot, []domain.Feedback, error)

type GetSessionHistory func(ctx context.Context, sessionID string) (domain.SessionHistory, error)

func BuildCreateGame(
	store sessionStore,
	newGame GameFactory,
	sink FeedbackSink,
	newID func() string,
	nowFunc func() time.Time,
) CreateGame {
	return func(ctx context.Context, clock ClockMode) (Snapshot, error) {
		if clock != ClockWall && clock != ClockManual {
			return Snapshot{}, fmt.Errorf("%w: clock mode '%s'", domain.ErrInvalidValue, clock)
		}

		sessionID := newID()
		recorder := feedback.NewRecorder(recorderLimit)

		var gameFeedback FeedbackSink = recorder
		if sink != nil {
			gameFeedback = feedback.NewFanout(recorder, sink)
		}

		session := &Session{
			game:     newGame(sessionID, gameFeedback),
			recorder: recorder,
			clock:    clock,
			lastSeen: nowFunc(),
		}
		store.Set(sessionID, session)

		logging.FromContext(ctx).InfoContext(ctx, "Created game", slog.String("sessionID", sessionID), slog.String("clock", string(clock)))

		return session.game.Snapshot(), nil
	}
}

func getSession(store sessionStore, sessionID string) (*Session, error) {
	session, ok := store.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	return session, nil
}

func BuildGetGame(store sessionStore, nowFunc func() time.Time) GetGame {
	return func(ctx context.Context, sessionID string) (Snapshot, error) {
		session, err := getSession(store, sessionID)
		if err != nil {
			return Snapshot{}, err
		}

		session.mu.Lock()
		defer session.mu.Unlock()

		session.catchUp(ctx, nowFunc())
		return session.game.Snapshot(), nil
	}
}

// BuildApplyAction applies an action and returns the feedback emitted since the previous action
func BuildApplyAction(store sessionStore, nowFunc func() time.Time) ApplyAction {
	return func(ctx context.Context, sessionID string, action Action) (Snapshot, []domain.Feedback, error) {
		session, err := getSession(store, sessionID)
		if err != nil {
			return Snapshot{}, nil, err
		}

		session.mu.Lock()
		defer session.mu.Unlock()

		session.catchUp(ctx, nowFunc())

		phaseBefore := session.game.Phase()
		err = session.game.Apply(ctx, action)
		if err != nil {
			return Snapshot{}, nil, fmt.Errorf("failed to apply action: %w", err)
		}

		if phaseAfter := session.game.Phase(); phaseAfter != phaseBefore {
			logging.FromContext(ctx).InfoContext(
				ctx,
				"Phase changed",
				slog.String("action", string(action.Type)),
				slog.String("from", string(phaseBefore)),
				slog.String("to", string(phaseAfter)),
			)
		}

		return session.game.Snapshot(), session.recorder.Drain(), nil
	}
}

type historyReader interface {
	GetHistory(ctx context.Context, sessionID string) (domain.SessionHistory, error)
}

func BuildGetSessionHistory(ledger historyReader) GetSessionHistory {
	return func(ctx context.Context, sessionID string) (domain.SessionHistory, error) {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		history, err := ledger.GetHistory(ctx, sessionID)
		if err != nil {
			// NOTE: historyReader implementations handle their own error reporting
			return domain.SessionHistory{}, fmt.Errorf("failed to get history: %w", err)
		}
		return history, nil
	}
}
