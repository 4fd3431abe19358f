package facilitator

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/stellar-x402/x402-go"
	"github.com/stellar-x402/x402-go/discovery"
)

// Server exposes a Service over HTTP: POST /verify, POST /settle,
// GET /supported, and the discovery resource catalog.
type Server struct {
	Service *Service
	Logger  *slog.Logger
}

// NewServer wires an http.Handler around svc. Logger defaults to
// slog.Default() if nil.
func NewServer(svc *Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{Service: svc, Logger: logger}
}

// Handler builds the route table. Callers mount it directly or wrap it with
// their own auth/logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /verify", s.handleVerify)
	mux.HandleFunc("POST /settle", s.handleSettle)
	mux.HandleFunc("GET /supported", s.handleSupported)
	mux.HandleFunc("GET /discovery/resources", s.handleListResources)
	mux.HandleFunc("POST /discovery/resources", s.handleRegisterResource)
	mux.HandleFunc("DELETE /discovery/resources", s.handleUnregisterResource)
	return mux
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req x402.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	result, err := s.Service.Verify(r.Context(), req.PaymentPayload, req.PaymentRequirements)
	if err != nil {
		s.Logger.Error("verify failed", "error", err)
		writeJSON(w, http.StatusOK, x402.VerifyResult{
			IsValid:       false,
			InvalidReason: x402.ReasonUnexpectedVerifyError.String(),
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSettle(w http.ResponseWriter, r *http.Request) {
	var req x402.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	result, err := s.Service.Settle(r.Context(), req.PaymentPayload, req.PaymentRequirements)
	if err != nil {
		s.Logger.Error("settle failed", "error", err)
		writeJSON(w, http.StatusOK, x402.SettleResult{
			Success:     false,
			ErrorReason: x402.ReasonUnexpectedSettleError.String(),
			Network:     req.PaymentRequirements.Network,
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSupported(w http.ResponseWriter, r *http.Request) {
	supported, err := s.Service.Supported(r.Context())
	if err != nil {
		s.Logger.Error("supported failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not load supported kinds")
		return
	}
	writeJSON(w, http.StatusOK, supported)
}

func (s *Server) handleListResources(w http.ResponseWriter, r *http.Request) {
	typeFilter := r.URL.Query().Get("type")
	offset := parseIntOrDefault(r.URL.Query().Get("offset"), 0)
	limit := parseIntOrDefault(r.URL.Query().Get("limit"), discovery.DefaultPageSize)

	page, err := s.Service.ListResources(r.Context(), typeFilter, offset, limit)
	if err != nil {
		s.Logger.Error("list resources failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not list resources")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleRegisterResource(w http.ResponseWriter, r *http.Request) {
	var entry x402.DiscoveryEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if entry.Resource == "" {
		writeJSONError(w, http.StatusBadRequest, "resource is required")
		return
	}
	if err := s.Service.RegisterResource(r.Context(), entry); err != nil {
		s.Logger.Error("register resource failed", "error", err, "resource", entry.Resource)
		writeJSONError(w, http.StatusInternalServerError, "could not register resource")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUnregisterResource(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Resource string `json:"resource"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Resource == "" {
		writeJSONError(w, http.StatusBadRequest, "resource is required")
		return
	}
	if err := s.Service.UnregisterResource(r.Context(), req.Resource); err != nil {
		s.Logger.Error("unregister resource failed", "error", err, "resource", req.Resource)
		writeJSONError(w, http.StatusInternalServerError, "could not unregister resource")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func parseIntOrDefault(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
