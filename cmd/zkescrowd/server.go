package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"

	"github.com/gametrade/zkescrow/internal/funds"
	"github.com/gametrade/zkescrow/modules/attestation"
	escrowkeeper "github.com/gametrade/zkescrow/modules/escrow/keeper"
	escrowtypes "github.com/gametrade/zkescrow/modules/escrow/types"
	resolverkeeper "github.com/gametrade/zkescrow/modules/resolver/keeper"
	resolvertypes "github.com/gametrade/zkescrow/modules/resolver/types"
)

type server struct {
	logger   log.Logger
	bank     *funds.Ledger
	ledger   *escrowkeeper.Keeper
	resolver resolverkeeper.Keeper
}

func newRouter(logger log.Logger, bank *funds.Ledger, ledger *escrowkeeper.Keeper, resolver resolverkeeper.Keeper) http.Handler {
	s := &server{
		logger:   logger.With("module", "server"),
		bank:     bank,
		ledger:   ledger,
		resolver: resolver,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/trades", s.handleListTrades).Methods(http.MethodGet)
	v1.HandleFunc("/trades", s.handleCreateTrade).Methods(http.MethodPost)
	v1.HandleFunc("/trades/{id:[0-9]+}", s.handleGetTrade).Methods(http.MethodGet)
	v1.HandleFunc("/trades/{id:[0-9]+}/acknowledge", s.tradeAction(s.acknowledge)).Methods(http.MethodPost)
	v1.HandleFunc("/trades/{id:[0-9]+}/cancel", s.tradeAction(s.cancel)).Methods(http.MethodPost)
	v1.HandleFunc("/trades/{id:[0-9]+}/reclaim", s.tradeAction(s.reclaim)).Methods(http.MethodPost)
	v1.HandleFunc("/trades/{id:[0-9]+}/claim", s.tradeAction(s.claim)).Methods(http.MethodPost)
	v1.HandleFunc("/trades/{id:[0-9]+}/proof", s.handleSubmitProof).Methods(http.MethodPost)

	v1.HandleFunc("/bank/mint", s.handleMint).Methods(http.MethodPost)
	v1.HandleFunc("/bank/approve", s.handleApprove).Methods(http.MethodPost)
	v1.HandleFunc("/bank/{account}", s.handleBalance).Methods(http.MethodGet)

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createTradeRequest struct {
	Buyer      string `json:"buyer"`
	Seller     string `json:"seller"`
	GoodID     uint64 `json:"goodId"`
	DeliveryID string `json:"deliveryId"`
	Amount     string `json:"amount"`
}

func (s *server) handleCreateTrade(w http.ResponseWriter, r *http.Request) {
	var req createTradeRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	buyer, err := parseAddress(req.Buyer)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	seller, err := parseAddress(req.Seller)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	amount, ok := sdkmath.NewIntFromString(req.Amount)
	if !ok {
		writeError(w, http.StatusBadRequest, errors.New("amount is not an integer"))
		return
	}

	id, err := s.ledger.CreateTrade(buyer, seller, req.GoodID, req.DeliveryID, amount)
	if err != nil {
		s.writeKeeperError(w, err)
		return
	}

	trade, _ := s.ledger.GetTrade(id)
	writeJSON(w, http.StatusCreated, trade)
}

func (s *server) handleGetTrade(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	trade, found := s.ledger.GetTrade(id)
	if !found {
		writeError(w, http.StatusNotFound, escrowtypes.ErrTradeNotFound)
		return
	}

	writeJSON(w, http.StatusOK, trade)
}

func (s *server) handleListTrades(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.GetAllTrades())
}

type tradeActionRequest struct {
	Caller string `json:"caller"`
}

func (s *server) tradeAction(action func(caller common.Address, id uint64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		var req tradeActionRequest
		if err := decodeJSON(r.Body, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		caller, err := parseAddress(req.Caller)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		if err := action(caller, id); err != nil {
			s.writeKeeperError(w, err)
			return
		}

		trade, _ := s.ledger.GetTrade(id)
		writeJSON(w, http.StatusOK, trade)
	}
}

func (s *server) acknowledge(caller common.Address, id uint64) error {
	return s.ledger.Acknowledge(caller, id)
}

func (s *server) cancel(caller common.Address, id uint64) error {
	return s.ledger.CancelTrade(caller, id)
}

func (s *server) reclaim(caller common.Address, id uint64) error {
	return s.ledger.ReclaimExpired(caller, id)
}

func (s *server) claim(caller common.Address, id uint64) error {
	return s.ledger.ClaimAfterWindow(caller, id)
}

// handleSubmitProof accepts an attestation bundle from anyone and attempts
// proof-based resolution of the trade.
func (s *server) handleSubmitProof(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	bundle, err := attestation.ParseBundle(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.resolver.VerifyAndResolve(id, bundle); err != nil {
		s.writeKeeperError(w, err)
		return
	}

	trade, _ := s.ledger.GetTrade(id)
	writeJSON(w, http.StatusOK, trade)
}

type bankRequest struct {
	Account string `json:"account"`
	Amount  string `json:"amount"`
}

func (s *server) handleMint(w http.ResponseWriter, r *http.Request) {
	account, amount, err := decodeBankRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.bank.Mint(account, amount)
	writeJSON(w, http.StatusOK, map[string]string{"balance": s.bank.BalanceOf(account).String()})
}

func (s *server) handleApprove(w http.ResponseWriter, r *http.Request) {
	account, amount, err := decodeBankRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.bank.Approve(account, amount)
	writeJSON(w, http.StatusOK, map[string]string{"allowance": amount.String()})
}

func (s *server) handleBalance(w http.ResponseWriter, r *http.Request) {
	account, err := parseAddress(mux.Vars(r)["account"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"balance": s.bank.BalanceOf(account).String()})
}

func decodeBankRequest(r *http.Request) (common.Address, sdkmath.Int, error) {
	var req bankRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		return common.Address{}, sdkmath.Int{}, err
	}

	account, err := parseAddress(req.Account)
	if err != nil {
		return common.Address{}, sdkmath.Int{}, err
	}

	amount, ok := sdkmath.NewIntFromString(req.Amount)
	if !ok || !amount.IsPositive() {
		return common.Address{}, sdkmath.Int{}, errors.New("amount must be a positive integer")
	}

	return account, amount, nil
}

// writeKeeperError maps module sentinel errors onto HTTP status codes.
func (s *server) writeKeeperError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, escrowtypes.ErrTradeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, escrowtypes.ErrInvalidInput),
		errors.Is(err, escrowtypes.ErrInvalidStakePercent),
		errors.Is(err, attestation.ErrInvalidBundle):
		status = http.StatusBadRequest
	case errors.Is(err, escrowtypes.ErrUnauthorized),
		errors.Is(err, attestation.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, escrowtypes.ErrInvalidState),
		errors.Is(err, escrowtypes.ErrTimeNotElapsed):
		status = http.StatusConflict
	case errors.Is(err, attestation.ErrInvalidSignature),
		errors.Is(err, attestation.ErrInvalidServerName),
		errors.Is(err, resolvertypes.ErrTimestampBeforeAck),
		errors.Is(err, resolvertypes.ErrTimestampAfterWindow),
		errors.Is(err, resolvertypes.ErrTimestampInFuture):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, escrowtypes.ErrTransferFailed):
		status = http.StatusBadGateway
	}

	s.logger.Debug("request failed", "err", err)
	writeError(w, status, err)
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.New("invalid hex address: " + s)
	}
	return common.HexToAddress(s), nil
}

func decodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
