package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/playmoney-sportsbook/internal/betslip"
	"github.com/radieske/playmoney-sportsbook/internal/bets"
	"github.com/radieske/playmoney-sportsbook/internal/board"
	"github.com/radieske/playmoney-sportsbook/internal/session"
	"github.com/radieske/playmoney-sportsbook/internal/wallet"
	"github.com/radieske/playmoney-sportsbook/pkg/contracts/events"
)

// RequestsTotal conta requisições por rota e status; registrado pelo main
var RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "sportsbook_http_requests_total",
	Help: "Requisições HTTP por rota e status",
}, []string{"method", "route", "status"})

// ChangeSource expõe as marcações de mudança ainda visíveis
type ChangeSource interface {
	Changes() map[string]events.OddsChange
}

// API expõe o sportsbook em REST + WebSocket
type API struct {
	Board   *board.Board
	Changes ChangeSource
	Session *session.Local
	Slip    *betslip.Manager
	Bets    *bets.Store
	Wallet  *wallet.Ledger
	Hub     *Hub
	Log     *zap.Logger
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(withCORS)
	r.Use(countRequests)

	r.Get("/v1/games", a.listGames)
	r.Get("/v1/games/changes", a.listChanges)

	r.Post("/v1/session", a.signIn)
	r.Delete("/v1/session", a.signOut)

	r.Get("/v1/slip", a.getSlip)
	r.Post("/v1/slip", a.addSelection)
	r.Delete("/v1/slip", a.clearSlip)
	r.Put("/v1/slip/{gameId}/stake", a.updateStake)
	r.Delete("/v1/slip/{gameId}", a.removeSelection)
	r.Post("/v1/slip/place", a.placeSlip)

	r.Get("/v1/bets", a.listBets)

	r.Get("/v1/wallet", a.getWallet)
	r.Post("/v1/wallet/deposit", a.deposit)

	if a.Hub != nil {
		r.Get("/ws", a.Hub.HandleWS)
	}
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

// statusFor traduz erros de domínio em status HTTP
func statusFor(err error) int {
	switch {
	case errors.Is(err, betslip.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, betslip.ErrNotInSlip):
		return http.StatusNotFound
	case errors.Is(err, betslip.ErrInsufficientFunds):
		return http.StatusConflict
	case errors.Is(err, betslip.ErrEmptySlip),
		errors.Is(err, betslip.ErrInvalidStake),
		errors.Is(err, betslip.ErrInvalidMarket),
		errors.Is(err, betslip.ErrInvalidOdds),
		errors.Is(err, betslip.ErrMissingLine):
		return http.StatusUnprocessableEntity
	case errors.Is(err, wallet.ErrInvalidAmount), errors.Is(err, session.ErrInvalidUser):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (a *API) listGames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Board.Snapshot())
}

func (a *API) listChanges(w http.ResponseWriter, r *http.Request) {
	if a.Changes == nil {
		writeJSON(w, http.StatusOK, map[string]events.OddsChange{})
		return
	}
	writeJSON(w, http.StatusOK, a.Changes.Changes())
}

func (a *API) signIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	u, err := a.Session.SignIn(req.UserID, req.Email)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	a.Log.Info("user signed in", zap.String("user_id", u.ID))
	writeJSON(w, http.StatusOK, u)
}

func (a *API) signOut(w http.ResponseWriter, r *http.Request) {
	a.Session.SignOut()
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) slipResponse() SlipResponse {
	return SlipResponse{
		Items:           a.Slip.Items(),
		TotalStake:      a.Slip.TotalStake(),
		PotentialPayout: a.Slip.PotentialPayout(),
		RecentlyPlaced:  a.Slip.RecentlyPlaced(),
	}
}

func (a *API) getSlip(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.Session.CurrentUser(); !ok {
		writeError(w, http.StatusUnauthorized, betslip.ErrUnauthenticated)
		return
	}
	writeJSON(w, http.StatusOK, a.slipResponse())
}

func (a *API) addSelection(w http.ResponseWriter, r *http.Request) {
	var req AddSelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	g, ok := a.Board.Get(req.GameID)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "game not found"})
		return
	}
	odds, line, ok := g.Selection(req.Market)
	if !ok {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "market not offered for this game"})
		return
	}
	item, err := a.Slip.Add(g, req.Market, odds, line)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (a *API) updateStake(w http.ResponseWriter, r *http.Request) {
	var req StakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := a.Slip.UpdateStake(chi.URLParam(r, "gameId"), req.Stake); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, a.slipResponse())
}

func (a *API) removeSelection(w http.ResponseWriter, r *http.Request) {
	if err := a.Slip.Remove(chi.URLParam(r, "gameId")); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) clearSlip(w http.ResponseWriter, r *http.Request) {
	if err := a.Slip.Clear(); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) placeSlip(w http.ResponseWriter, r *http.Request) {
	placed, err := a.Slip.PlaceAll(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, placed)
}

func (a *API) listBets(w http.ResponseWriter, r *http.Request) {
	u, ok := a.Session.CurrentUser()
	if !ok {
		writeError(w, http.StatusUnauthorized, betslip.ErrUnauthenticated)
		return
	}
	writeJSON(w, http.StatusOK, a.Bets.ForUser(u.ID))
}

func (a *API) getWallet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Wallet.State())
}

func (a *API) deposit(w http.ResponseWriter, r *http.Request) {
	var req DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	tx, err := a.Wallet.AddFunds(r.Context(), req.Amount)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
	})
}
