package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	approvalengine "weldvault/contexts/document-approval/approval-engine"
	accesscontrol "weldvault/contexts/identity-access/access-control"
	"weldvault/contexts/document-approval/approval-engine/ports"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "weldvault/internal/platform/httpserver/docs"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	access   accesscontrol.Module
	approval approvalengine.Module
}

func New(
	access accesscontrol.Module,
	approval approvalengine.Module,
	logger *slog.Logger,
	addr string,
) *Server {
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
		access:   access,
		approval: approval,
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

	s.registerAccessControlRoutes()
	s.registerApprovalRoutes()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func requestUserID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-Id"))
}

func parsePage(r *http.Request) (ports.Page, bool) {
	query := r.URL.Query()
	page := ports.Page{}
	if raw := query.Get("page"); raw != "" {
		number, err := strconv.Atoi(raw)
		if err != nil {
			return ports.Page{}, false
		}
		page.Number = number
	}
	if raw := query.Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return ports.Page{}, false
		}
		page.Size = size
	}
	return page, true
}
