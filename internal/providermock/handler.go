package providermock

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// RequestsServed conta requisições por endpoint; registrado pelo main
var RequestsServed = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "provider_mock_requests_total",
	Help: "Requisições atendidas pelo mock do provedor de odds",
}, []string{"endpoint"})

// Server imita os endpoints v4 do provedor a partir de um Catalog
type Server struct {
	catalog *Catalog
	apiKey  string // vazio aceita qualquer chave
	log     *zap.Logger
	now     func() time.Time
}

func NewServer(c *Catalog, apiKey string, log *zap.Logger) *Server {
	return &Server{catalog: c, apiKey: apiKey, log: log, now: time.Now}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v4/sports/{sport}/odds", s.odds)
	r.Get("/v4/sports/{sport}/scores", s.scores)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// check valida chave e esporte; escreve a resposta de erro quando falha
func (s *Server) check(w http.ResponseWriter, r *http.Request) (string, bool) {
	if s.apiKey != "" && r.URL.Query().Get("apiKey") != s.apiKey {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid api key"})
		return "", false
	}
	sport := chi.URLParam(r, "sport")
	if !s.catalog.Known(sport) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "unknown sport"})
		return "", false
	}
	return sport, true
}

func (s *Server) odds(w http.ResponseWriter, r *http.Request) {
	sport, ok := s.check(w, r)
	if !ok {
		return
	}
	RequestsServed.WithLabelValues("odds").Inc()
	events := s.catalog.Odds(sport, s.now())
	s.log.Debug("odds served", zap.String("sport", sport), zap.Int("events", len(events)))
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) scores(w http.ResponseWriter, r *http.Request) {
	sport, ok := s.check(w, r)
	if !ok {
		return
	}
	RequestsServed.WithLabelValues("scores").Inc()
	writeJSON(w, http.StatusOK, s.catalog.Scores(sport, s.now()))
}
