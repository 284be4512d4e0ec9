package listen

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/hannesrauhe/autoconnect/autoconnect"
	"github.com/hannesrauhe/autoconnect/connectors/store"
	"github.com/hannesrauhe/autoconnect/utils"
	log "github.com/sirupsen/logrus"
)

// HttpConfig configures the status API
type HttpConfig struct {
	Enabled bool
	Addr    string
}

// DefaultHttpConfig serves on :8080 but is disabled
var DefaultHttpConfig = HttpConfig{Enabled: false, Addr: ":8080"}

// StatusHttp serves the content of the status store as JSON
type StatusHttp struct {
	store  *store.StatusStore
	srv    *http.Server
	logger log.FieldLogger
}

// NewStatusHttp creates the router, call Start to listen
func NewStatusHttp(logger log.FieldLogger, cfg HttpConfig, st *store.StatusStore) *StatusHttp {
	s := &StatusHttp{store: st, logger: logger.WithField("component", "http")}
	s.srv = &http.Server{
		Handler:      s.Router(),
		Addr:         cfg.Addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	return s
}

// Router returns the handler for all routes
func (s *StatusHttp) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/devices", s.handleDevices).Methods(http.MethodGet)
	r.HandleFunc("/devices/{address}", s.handleDevice).Methods(http.MethodGet)
	r.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)
	return r
}

// Start listens in the background
func (s *StatusHttp) Start() {
	go func() {
		s.logger.Infof("Starting HTTP Server on %v", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("HTTP Server stopped: %v", err)
		}
	}()
}

// Shutdown stops the server, waiting for open requests until ctx is done
func (s *StatusHttp) Shutdown(ctx context.Context) {
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Errorf("HTTP Server shutdown: %v", err)
	}
}

func (s *StatusHttp) writeJSON(w http.ResponseWriter, code int, obj interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(obj); err != nil {
		s.logger.Errorf("Cannot write response: %v", err)
	}
}

func (s *StatusHttp) handleDevices(w http.ResponseWriter, req *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.GetAll())
}

func (s *StatusHttp) handleDevice(w http.ResponseWriter, req *http.Request) {
	addr := autoconnect.ParseAddress(mux.Vars(req)["address"])
	st, ok := s.store.Get(addr)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown device " + addr.String()})
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

func (s *StatusHttp) handleVersion(w http.ResponseWriter, req *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"version": utils.BuildFullVersion(),
		"uptime":  time.Since(utils.StartTimestamp).Truncate(time.Second).String(),
	})
}
