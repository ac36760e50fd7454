package ledgerxgo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
)

var (
	statusOK = []byte(`{"status":"OK"}`)
)

type balanceJSONResp struct {
	Balance decimal.Decimal `json:"balance"`
}

func NewHTTPHandler(svc Service, log *zerolog.Logger) http.Handler {
	hndlr := &httpHandler{
		Svc: svc,
		Log: log,
	}
	mux := chi.NewMux()
	mux.Use(RequestID)
	mux.NotFound(HTTPNotFound)
	mux.Post("/accounts", hndlr.CreateAccount)
	mux.Get("/accounts", hndlr.Accounts)
	mux.Route("/accounts/{acctID}", func(rr chi.Router) {
		rr.Post("/deposit", hndlr.Deposit)
		rr.Post("/withdraw", hndlr.Withdraw)
		rr.Get("/balance", hndlr.Balance)
	})
	mux.Post("/transfers", hndlr.Transfer)
	mux.Get("/snapshot", hndlr.Snapshot)
	mux.Get("/report", hndlr.Report)

	return mux
}

type ctxKeyRequestID struct{}

// RequestID tags every request with a fresh id, echoed in the
// X-Request-Id header and attached to handler log events.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := uuid.NewString()
		w.Header().Set("X-Request-Id", rid)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID{}, rid)))
	})
}

func requestIDFrom(ctx context.Context) string {
	rid, _ := ctx.Value(ctxKeyRequestID{}).(string)
	return rid
}

type httpHandler struct {
	Svc Service
	Log *zerolog.Logger
}

func (h *httpHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	buf, err := io.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		h.logErr(r, err, "create_account", "error reading HTTP request")
		WriteHTTPError(w, ErrInternalServer)
		return
	}
	var req CreateAccountReq
	if err = json.Unmarshal(buf, &req); err != nil {
		h.logErr(r, err, "create_account", "error unmarshalling JSON")
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{"request body": "malformed JSON"}})
		return
	}
	acct, err := h.Svc.CreateAccount(req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err = json.NewEncoder(w).Encode(acct); err != nil {
		h.logErr(r, err, "create_account", "error encoding response")
	}
}

func (h *httpHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	req, ok := h.chargeReq(w, r, "deposit")
	if !ok {
		return
	}
	bal, err := h.Svc.Deposit(req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	h.writeBalance(w, r, "deposit", bal)
}

func (h *httpHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	req, ok := h.chargeReq(w, r, "withdraw")
	if !ok {
		return
	}
	bal, err := h.Svc.Withdraw(req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	h.writeBalance(w, r, "withdraw", bal)
}

func (h *httpHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	buf, err := io.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		h.logErr(r, err, "transfer", "error reading HTTP request")
		WriteHTTPError(w, ErrInternalServer)
		return
	}
	var req TransferReq
	if err = json.Unmarshal(buf, &req); err != nil {
		h.logErr(r, err, "transfer", "error unmarshalling JSON")
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{"request body": "malformed JSON"}})
		return
	}
	if err = h.Svc.Transfer(req); err != nil {
		WriteHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err = w.Write(statusOK); err != nil {
		h.logErr(r, err, "transfer", "error writing response")
	}
}

func (h *httpHandler) Balance(w http.ResponseWriter, r *http.Request) {
	req := BalanceReq{AcctID: chi.URLParam(r, "acctID")}
	bal, err := h.Svc.Balance(req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	h.writeBalance(w, r, "balance", bal)
}

func (h *httpHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	accts := h.Svc.Accounts()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(accts); err != nil {
		h.logErr(r, err, "accounts", "error encoding response")
	}
}

func (h *httpHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.Svc.Snapshot(&buf); err != nil {
		h.logErr(r, err, "snapshot", "error writing snapshot")
		WriteHTTPError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logErr(r, err, "snapshot", "error writing response")
	}
}

func (h *httpHandler) Report(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.Svc.Report(&buf); err != nil {
		h.logErr(r, err, "report", "error rendering report")
		WriteHTTPError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logErr(r, err, "report", "error writing response")
	}
}

func (h *httpHandler) chargeReq(w http.ResponseWriter, r *http.Request, method string) (ChargeReq, bool) {
	var req ChargeReq
	buf, err := io.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		h.logErr(r, err, method, "error reading HTTP request")
		WriteHTTPError(w, ErrInternalServer)
		return req, false
	}
	if err = json.Unmarshal(buf, &req); err != nil {
		h.logErr(r, err, method, "error unmarshalling JSON")
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{"request body": "malformed JSON"}})
		return req, false
	}
	req.AcctID = chi.URLParam(r, "acctID")
	return req, true
}

func (h *httpHandler) writeBalance(w http.ResponseWriter, r *http.Request, method string, bal *decimal.Decimal) {
	resp := balanceJSONResp{Balance: *bal}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logErr(r, err, method, "error encoding response")
	}
}

func (h *httpHandler) logErr(r *http.Request, err error, method, msg string) {
	h.Log.Err(err).
		Str("method", method).
		Str("req_id", requestIDFrom(r.Context())).
		Msg(msg)
}

func WriteHTTPError(w http.ResponseWriter, err error) {
	var ne error
	defer func() {
		if ne != nil {
			log.Error().
				Err(ne).
				Msg("error response encoding failed")
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	errnf := &ErrNotFound{}
	errbr := &ErrBadRequest{}
	errinv := &ErrInvalidAmount{}
	errisf := &ErrInsufficientFunds{}
	switch {
	case errors.As(err, errnf):
		w.WriteHeader(http.StatusNotFound)
		ne = json.NewEncoder(w).Encode(errnf)
	case errors.As(err, errbr):
		w.WriteHeader(http.StatusBadRequest)
		ne = json.NewEncoder(w).Encode(errbr)
	case errors.As(err, errinv):
		w.WriteHeader(http.StatusBadRequest)
		ne = json.NewEncoder(w).Encode(errinv)
	case errors.As(err, errisf):
		w.WriteHeader(http.StatusConflict)
		ne = json.NewEncoder(w).Encode(errisf)
	case errors.Is(err, ErrOverCapacity),
		errors.Is(err, gobreaker.ErrOpenState),
		errors.Is(err, gobreaker.ErrTooManyRequests):
		w.WriteHeader(http.StatusServiceUnavailable)
		ne = json.NewEncoder(w).Encode(map[string]string{"message": "try again later"})
	default:
		w.WriteHeader(http.StatusInternalServerError)
		ne = json.NewEncoder(w).Encode(map[string]string{"message": "server error"})
	}
}

func HTTPNotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	w.Header().Set("Content-Type", "application/json")
	resp := map[string]string{
		"path": r.URL.Path,
	}
	json.NewEncoder(w).Encode(resp)
}
