package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-sales-service/internal/auth"
	"github.com/fekuna/omnipos-sales-service/pkg/i18n"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

var ErrInvalidRequest = errors.New("invalid request")

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type Page struct {
	Data  interface{} `json:"data"`
	Total int         `json:"total"`
	Page  int         `json:"page"`
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error maps err to a status and a localized message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	m := Classify(err)
	JSON(w, m.Status, ErrorResponse{
		Error:   m.Code,
		Message: LocalizerFrom(r.Context()).T(m.MessageID, m.Data),
	})
}

// Fail is Error plus a log line for server-side failures.
func Fail(log logger.ZapLogger, w http.ResponseWriter, r *http.Request, msg string, err error) {
	if Classify(err).Status >= http.StatusInternalServerError {
		log.Error(msg, zap.Error(err), zap.String("request_id", chimw.GetReqID(r.Context())))
	}
	Error(w, r, err)
}

func Decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return ErrInvalidRequest
	}
	return nil
}

func IDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidRequest
	}
	return id, nil
}

func IntQuery(r *http.Request, name string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// RequireSession rejects requests that carry no user.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.FromContext(r.Context()).Authenticated() {
			Error(w, r, auth.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type localizerKey struct{}

// Locale binds a localizer for the request's Accept-Language.
func Locale(tr *i18n.Translator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loc := tr.Localizer(r.Header.Get("Accept-Language"))
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), localizerKey{}, loc)))
		})
	}
}

// LocalizerFrom returns nil when no Locale middleware ran; a nil localizer prints ids.
func LocalizerFrom(ctx context.Context) *i18n.Localizer {
	loc, _ := ctx.Value(localizerKey{}).(*i18n.Localizer)
	return loc
}
