package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	mediabuyservice "adbroker/contexts/ad-sales/media-buy-service"
	httpadapter "adbroker/contexts/ad-sales/media-buy-service/adapters/http"
	mediabuyerrors "adbroker/contexts/ad-sales/media-buy-service/domain/errors"
	mediabuyhttp "adbroker/contexts/ad-sales/media-buy-service/transport/http"
	_ "adbroker/internal/platform/httpserver/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	mediaBuy mediabuyservice.Module
}

func New(mediaBuy mediabuyservice.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		mediaBuy: mediaBuy,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /v1/media-buys", s.handleCreateMediaBuy)
	s.mux.HandleFunc("POST /v1/media-buys/{media_buy_id}/update", s.handleUpdateMediaBuy)
	s.mux.HandleFunc("POST /v1/media-buys/{media_buy_id}/creatives", s.handleAddCreatives)
	s.mux.HandleFunc("GET /v1/media-buys/{media_buy_id}/status", s.handleStatus)
	s.mux.HandleFunc("GET /v1/media-buys/{media_buy_id}/delivery", s.handleDelivery)
	s.mux.HandleFunc("GET /v1/media-buys/{media_buy_id}/workflow-steps", s.handlePendingSteps)

	s.mux.HandleFunc("GET /v1/workflow-steps/{step_id}", s.handleGetStep)
	s.mux.HandleFunc("POST /v1/workflow-steps/{step_id}/resolve", s.handleResolveStep)
}

// handleCreateMediaBuy creates a media buy.
//
//	@Summary	Create a media buy
//	@Tags		media-buys
//	@Accept		json
//	@Produce	json
//	@Param		request	body		http.CreateMediaBuyRequest	true	"media buy order"
//	@Success	200		{object}	http.CreateMediaBuyResponse
//	@Failure	422		{object}	http.TargetingRejectionResponse
//	@Router		/v1/media-buys [post]
func (s *Server) handleCreateMediaBuy(w http.ResponseWriter, r *http.Request) {
	var req mediabuyhttp.CreateMediaBuyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMediaBuyError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", nil)
		return
	}

	resp, err := s.mediaBuy.Handler.CreateMediaBuyHandler(r.Context(), req)
	if err != nil {
		writeMediaBuyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleUpdateMediaBuy applies one update action to a buy.
//
//	@Summary	Update a media buy
//	@Tags		media-buys
//	@Accept		json
//	@Produce	json
//	@Param		media_buy_id	path		string	true	"media buy id"
//	@Param		request			body		http.UpdateMediaBuyRequest	true	"update action"
//	@Success	200				{object}	http.UpdateMediaBuyResponse
//	@Router		/v1/media-buys/{media_buy_id}/update [post]
func (s *Server) handleUpdateMediaBuy(w http.ResponseWriter, r *http.Request) {
	var req mediabuyhttp.UpdateMediaBuyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMediaBuyError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", nil)
		return
	}

	resp, err := s.mediaBuy.Handler.UpdateMediaBuyHandler(r.Context(), r.PathValue("media_buy_id"), req)
	if err != nil {
		writeMediaBuyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddCreatives(w http.ResponseWriter, r *http.Request) {
	var req mediabuyhttp.AddCreativesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMediaBuyError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", nil)
		return
	}

	resp, err := s.mediaBuy.Handler.AddCreativesHandler(r.Context(), r.PathValue("media_buy_id"), req)
	if err != nil {
		writeMediaBuyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.mediaBuy.Handler.StatusHandler(r.Context(), r.PathValue("media_buy_id"))
	if err != nil {
		writeMediaBuyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDelivery(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	start, err := time.Parse(time.RFC3339, query.Get("start"))
	if err != nil {
		writeMediaBuyError(w, http.StatusBadRequest, "invalid_period", "start must be RFC3339", nil)
		return
	}
	end, err := time.Parse(time.RFC3339, query.Get("end"))
	if err != nil {
		writeMediaBuyError(w, http.StatusBadRequest, "invalid_period", "end must be RFC3339", nil)
		return
	}

	resp, err := s.mediaBuy.Handler.DeliveryHandler(r.Context(), r.PathValue("media_buy_id"), start, end)
	if err != nil {
		writeMediaBuyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePendingSteps(w http.ResponseWriter, r *http.Request) {
	resp, err := s.mediaBuy.Handler.PendingStepsHandler(r.Context(), r.PathValue("media_buy_id"))
	if err != nil {
		writeMediaBuyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetStep(w http.ResponseWriter, r *http.Request) {
	resp, err := s.mediaBuy.Handler.GetStepHandler(r.Context(), r.PathValue("step_id"))
	if err != nil {
		writeMediaBuyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResolveStep(w http.ResponseWriter, r *http.Request) {
	var req mediabuyhttp.ResolveStepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMediaBuyError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", nil)
		return
	}

	resp, err := s.mediaBuy.Handler.ResolveStepHandler(r.Context(), r.PathValue("step_id"), req)
	if err != nil {
		writeMediaBuyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeMediaBuyDomainError(w http.ResponseWriter, err error) {
	var rejection *httpadapter.TargetingRejection
	if errors.As(err, &rejection) {
		violations := make([]mediabuyhttp.TargetingViolation, 0, len(rejection.Violations))
		for _, violation := range rejection.Violations {
			violations = append(violations, mediabuyhttp.TargetingViolation{
				Dimension: violation.Dimension,
				System:    violation.System,
				Message:   violation.Message,
			})
		}
		writeJSON(w, http.StatusUnprocessableEntity, mediabuyhttp.TargetingRejectionResponse{
			Code:       "targeting_rejected",
			Message:    "one or more targeting systems are not supported by this backend",
			Violations: violations,
		})
		return
	}

	var adapterErr *mediabuyerrors.AdapterError
	if errors.As(err, &adapterErr) {
		writeMediaBuyError(w, adapterErrorStatus(adapterErr.Code), adapterErr.Code, adapterErr.Message, adapterErr.Details)
		return
	}

	switch {
	case errors.Is(err, mediabuyerrors.ErrInvalidRequest):
		writeMediaBuyError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
	case errors.Is(err, mediabuyerrors.ErrPackageNotFound),
		errors.Is(err, mediabuyerrors.ErrNoPackagesFound),
		errors.Is(err, mediabuyerrors.ErrWorkflowStepNotFound):
		writeMediaBuyError(w, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, mediabuyerrors.ErrStepTerminal):
		writeMediaBuyError(w, http.StatusConflict, "step_terminal", err.Error(), nil)
	case errors.Is(err, mediabuyerrors.ErrUnknownBackend):
		writeMediaBuyError(w, http.StatusBadRequest, "unknown_backend", err.Error(), nil)
	default:
		writeMediaBuyError(w, http.StatusInternalServerError, "internal_error", "internal server error", nil)
	}
}

func adapterErrorStatus(code string) int {
	switch code {
	case mediabuyerrors.CodeUnsupportedAction,
		mediabuyerrors.CodeMissingPackageID,
		mediabuyerrors.CodeMissingBudget,
		mediabuyerrors.CodeMissingImpressions,
		mediabuyerrors.CodeInvalidProductSetup,
		mediabuyerrors.CodeNoZonesConfigured:
		return http.StatusBadRequest
	case mediabuyerrors.CodePackageNotFound, mediabuyerrors.CodeNoPackagesFound:
		return http.StatusNotFound
	case mediabuyerrors.CodePartialFailure, mediabuyerrors.CodeAPIUpdateFailed:
		return http.StatusBadGateway
	case mediabuyerrors.CodeBackendUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeMediaBuyError(w http.ResponseWriter, status int, code string, message string, details map[string]any) {
	writeJSON(w, status, mediabuyhttp.ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
