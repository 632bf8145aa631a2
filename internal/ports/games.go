package ports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Amund211/blacksmith/internal/app"
	"github.com/Amund211/blacksmith/internal/domain"
	"github.com/Amund211/blacksmith/internal/logging"
	"github.com/Amund211/blacksmith/internal/ratelimiting"
	"github.com/Amund211/blacksmith/internal/reporting"
	"github.com/Amund211/blacksmith/internal/strutils"
)

// maxBodySize bounds request bodies, actions and create requests are tiny
const maxBodySize = 4 * 1024

func writeErrorResponse(ctx context.Context, w http.ResponseWriter, cause string, statusCode int) {
	logging.FromContext(ctx).InfoContext(ctx, "Returning error response", slog.String("cause", cause), slog.Int("statusCode", statusCode))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(fmt.Appendf(nil, `{"success":false,"cause":%s}`, strconv.Quote(cause)))
}

func writeJSONResponse(w http.ResponseWriter, response []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(response)
}

// statusForError maps errors from the app layer to a response cause and status code
func statusForError(err error) (string, int) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return "session not found", http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownAction):
		return "unknown action", http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidValue):
		return "invalid request", http.StatusBadRequest
	case errors.Is(err, domain.ErrTemporarilyUnavailable):
		return "temporarily unavailable", http.StatusServiceUnavailable
	default:
		return "internal server error", http.StatusInternalServerError
	}
}

func makeOnLimitExceeded(rateLimiter ratelimiting.RequestRateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		logging.FromContext(ctx).InfoContext(ctx, "Rate limit exceeded", slog.String("key", rateLimiter.KeyFor(r)))

		writeErrorResponse(ctx, w, "rate limit exceeded", http.StatusTooManyRequests)
	}
}

func newIPRateLimiter(refillPerSecond ratelimiting.RefillPerSecond, burstSize ratelimiting.BurstSize) ratelimiting.RequestRateLimiter {
	ipLimiter, _ := ratelimiting.NewTokenBucketRateLimiter(refillPerSecond, burstSize)
	return ratelimiting.NewRequestBasedRateLimiter(
		ipLimiter,
		ratelimiting.IPKeyFunc,
	)
}

func buildGameMiddleware(
	port string,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
	rateLimiters ...ratelimiting.RequestRateLimiter,
) func(http.HandlerFunc) http.HandlerFunc {
	middlewares := []func(http.HandlerFunc) http.HandlerFunc{
		buildMetricsMiddleware(port),
		logging.NewRequestLoggerMiddleware(rootLogger),
		sentryMiddleware,
		reporting.NewAddMetaMiddleware(port),
		BuildCORSMiddleware(allowedOrigins),
	}
	for _, rateLimiter := range rateLimiters {
		middlewares = append(middlewares, NewRateLimitMiddleware(rateLimiter, makeOnLimitExceeded(rateLimiter)))
	}
	return ComposeMiddlewares(middlewares...)
}

// sessionIDFromRequest normalizes the session id path value and adds it to the logging and reporting meta
//
// The session is reported as the Sentry user.
func sessionIDFromRequest(ctx context.Context, r *http.Request) (context.Context, string, error) {
	rawSessionID := r.PathValue("sessionID")

	sessionID, err := strutils.NormalizeSessionID(rawSessionID)
	if err != nil {
		return ctx, "", fmt.Errorf("%w: %w", domain.ErrInvalidValue, err)
	}

	ctx = logging.AddMetaToContext(ctx, slog.String("sessionID", sessionID))
	ctx = reporting.AddExtrasToContext(ctx, map[string]string{
		"sessionID": sessionID,
	})
	ctx = reporting.SetUserIDInContext(ctx, sessionID)

	return ctx, sessionID, nil
}

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("%w: request body too large", domain.ErrInvalidValue)
	}
	return body, nil
}

func MakeCreateGameHandler(
	createGame app.CreateGame,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildGameMiddleware(
		"create_game",
		allowedOrigins,
		rootLogger,
		sentryMiddleware,
		newIPRateLimiter(ratelimiting.RefillPerSecond(1), ratelimiting.BurstSize(30)),
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		body, err := readBody(r)
		if err != nil {
			reporting.Report(ctx, err)
			writeErrorResponse(ctx, w, "invalid request body", http.StatusBadRequest)
			return
		}

		clock, err := ClockModeFromRequest(body)
		if err != nil {
			writeErrorResponse(ctx, w, "invalid clock mode", http.StatusBadRequest)
			return
		}

		snapshot, err := createGame(ctx, clock)
		if err != nil {
			cause, statusCode := statusForError(err)
			if statusCode == http.StatusInternalServerError {
				reporting.Report(ctx, fmt.Errorf("failed to create game: %w", err))
			}
			writeErrorResponse(ctx, w, cause, statusCode)
			return
		}

		ctx = logging.AddMetaToContext(ctx, slog.String("sessionID", snapshot.SessionID))

		response, err := CreatedGameToResponse(snapshot)
		if err != nil {
			reporting.Report(ctx, fmt.Errorf("failed to create success response: %w", err))
			writeErrorResponse(ctx, w, "internal server error", http.StatusInternalServerError)
			return
		}

		writeJSONResponse(w, response)
	}

	return middleware(handler)
}

func MakeGetGameHandler(
	getGame app.GetGame,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildGameMiddleware(
		"get_game",
		allowedOrigins,
		rootLogger,
		sentryMiddleware,
		newIPRateLimiter(ratelimiting.RefillPerSecond(30), ratelimiting.BurstSize(300)),
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx, sessionID, err := sessionIDFromRequest(r.Context(), r)
		if err != nil {
			writeErrorResponse(ctx, w, "invalid session id", http.StatusBadRequest)
			return
		}

		snapshot, err := getGame(ctx, sessionID)
		if err != nil {
			cause, statusCode := statusForError(err)
			if statusCode == http.StatusInternalServerError {
				reporting.Report(ctx, fmt.Errorf("failed to get game: %w", err))
			}
			writeErrorResponse(ctx, w, cause, statusCode)
			return
		}

		response, err := SnapshotToResponse(snapshot)
		if err != nil {
			reporting.Report(ctx, fmt.Errorf("failed to create success response: %w", err))
			writeErrorResponse(ctx, w, "internal server error", http.StatusInternalServerError)
			return
		}

		writeJSONResponse(w, response)
	}

	return middleware(handler)
}

func MakeApplyActionHandler(
	applyAction app.ApplyAction,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	sessionLimiter, _ := ratelimiting.NewTokenBucketRateLimiter(
		ratelimiting.RefillPerSecond(60),
		ratelimiting.BurstSize(240),
	)
	sessionRateLimiter := ratelimiting.NewRequestBasedRateLimiter(
		// NOTE: Rate limiting based on user controlled value
		sessionLimiter,
		ratelimiting.SessionIDKeyFunc,
	)

	middleware := buildGameMiddleware(
		"apply_action",
		allowedOrigins,
		rootLogger,
		sentryMiddleware,
		newIPRateLimiter(ratelimiting.RefillPerSecond(120), ratelimiting.BurstSize(600)),
		sessionRateLimiter,
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx, sessionID, err := sessionIDFromRequest(r.Context(), r)
		if err != nil {
			writeErrorResponse(ctx, w, "invalid session id", http.StatusBadRequest)
			return
		}

		body, err := readBody(r)
		if err != nil {
			reporting.Report(ctx, err)
			writeErrorResponse(ctx, w, "invalid request body", http.StatusBadRequest)
			return
		}

		action, err := ActionFromRequest(body)
		if err != nil {
			cause, statusCode := statusForError(err)
			writeErrorResponse(ctx, w, cause, statusCode)
			return
		}

		ctx = logging.AddMetaToContext(ctx, slog.String("action", string(action.Type)))

		snapshot, feedback, err := applyAction(ctx, sessionID, action)
		if err != nil {
			cause, statusCode := statusForError(err)
			if statusCode == http.StatusInternalServerError {
				reporting.Report(ctx, fmt.Errorf("failed to apply action: %w", err), map[string]string{
					"action": string(action.Type),
				})
			}
			writeErrorResponse(ctx, w, cause, statusCode)
			return
		}

		response, err := ActionResultToResponse(snapshot, feedback)
		if err != nil {
			reporting.Report(ctx, fmt.Errorf("failed to create success response: %w", err))
			writeErrorResponse(ctx, w, "internal server error", http.StatusInternalServerError)
			return
		}

		writeJSONResponse(w, response)
	}

	return middleware(handler)
}

func MakeGetHistoryHandler(
	getSessionHistory app.GetSessionHistory,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildGameMiddleware(
		"get_history",
		allowedOrigins,
		rootLogger,
		sentryMiddleware,
		newIPRateLimiter(ratelimiting.RefillPerSecond(2), ratelimiting.BurstSize(60)),
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx, sessionID, err := sessionIDFromRequest(r.Context(), r)
		if err != nil {
			writeErrorResponse(ctx, w, "invalid session id", http.StatusBadRequest)
			return
		}

		history, err := getSessionHistory(ctx, sessionID)
		if err != nil {
			// NOTE: GetSessionHistory implementations handle their own error reporting
			writeErrorResponse(ctx, w, "internal server error", http.StatusInternalServerError)
			return
		}

		response, err := HistoryToResponse(sessionID, history)
		if err != nil {
			reporting.Report(ctx, fmt.Errorf("failed to create success response: %w", err), map[string]string{
				"crafts": strconv.Itoa(len(history.Crafts)),
				"days":   strconv.Itoa(len(history.Days)),
			})
			writeErrorResponse(ctx, w, "internal server error", http.StatusInternalServerError)
			return
		}

		logging.FromContext(ctx).InfoContext(ctx, "Returning history", slog.Int("crafts", len(history.Crafts)))

		writeJSONResponse(w, response)
	}

	return middleware(handler)
}
