package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/leganyst/weekly-schedule/internal/service"
)

// Server — REST-слой над ScheduleService: JSON поверх HTTP,
// вся доменная логика остаётся в сервисе.
type Server struct {
	svc  *service.ScheduleService
	log  zerolog.Logger
	cors string
}

func NewServer(svc *service.ScheduleService, log zerolog.Logger, corsOrigin string) *Server {
	if corsOrigin == "" {
		corsOrigin = "*"
	}
	return &Server{svc: svc, log: log, cors: corsOrigin}
}

// Handler собирает маршрутизатор со всеми эндпоинтами ядра.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/create-common-tasks", s.handleCreateCommonTask)
	mux.HandleFunc("/api/get-common-tasks", s.handleGetCommonTasks)
	mux.HandleFunc("/api/get-effective-slots", s.handleGetEffectiveSlots)
	mux.HandleFunc("/api/create-exception-tasks", s.handleCreateExceptionTask)
	mux.HandleFunc("/api/get-exception-tasks", s.handleGetExceptionTasks)
	mux.HandleFunc("/api/list-exception-tasks", s.handleListExceptionTasks)
	mux.HandleFunc("/api/delete-exception-tasks", s.handleDeleteExceptionTask)
	mux.HandleFunc("/", s.handleRoot)

	return s.withCORS(s.withLogging(mux))
}

// Корень отвечает текстом для liveness-проверок; всё остальное,
// что не попало в зарегистрированные пути, — JSON 404.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "Route not found")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("API is running..."))
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.cors)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(started)).
			Msg("http request")
	})
}
