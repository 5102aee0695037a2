package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rapidmidiex/rmxpiano/pianostate"
	"github.com/rapidmidiex/rmxpiano/vpiano"
)

type (
	Server struct {
		hub    *Hub
		store  *pianostate.Store
		log    *zap.Logger
		router *mux.Router

		upgrader websocket.Upgrader

		mu       sync.RWMutex
		keyboard vpiano.Keys
	}

	stateResp struct {
		Size    int             `json:"size"`
		Pressed []string        `json:"pressed"`
		State   map[string]bool `json:"state"`
	}

	keyResp struct {
		Name       string `json:"name"`
		MIDI       int    `json:"midi"`
		Accidental bool   `json:"accidental"`
		// null for placeholder slots
		KeyCode    *int   `json:"keyCode"`
		KeyBinding string `json:"keyBinding,omitempty"`
	}

	keysResp struct {
		Keys []keyResp `json:"keys"`
	}
)

func NewServer(store *pianostate.Store, keyboard vpiano.Keys, log *zap.Logger) *Server {
	s := &Server{
		hub:      NewHub(store, log),
		store:    store,
		log:      log,
		router:   mux.NewRouter(),
		keyboard: keyboard,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The feed only exposes local key state.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/state", s.handleState()).Methods(http.MethodGet)
	api.HandleFunc("/keys", s.handleKeys()).Methods(http.MethodGet)
	api.HandleFunc("/reset", s.handleReset()).Methods(http.MethodPost)
	s.router.HandleFunc("/ws", s.handleWS())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetKeyboard replaces the keyboard reported by /api/v1/keys.
func (s *Server) SetKeyboard(keys vpiano.Keys) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keyboard = keys
}

// Clients returns the number of connected websocket clients.
func (s *Server) Clients() int {
	return s.hub.Clients()
}

// Close disconnects all websocket clients and stops following the store.
func (s *Server) Close() {
	s.hub.Close()
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("feed listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.respond(w, stateResp{
			Size:    s.store.Len(),
			Pressed: s.store.Pressed(),
			State:   s.store.Snapshot(),
		}, http.StatusOK)
	}
}

func (s *Server) handleKeys() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		keys := make([]keyResp, 0, len(s.keyboard))
		for _, k := range s.keyboard {
			kr := keyResp{
				Name:       k.Name,
				MIDI:       k.MIDI,
				Accidental: k.IsAccidental,
				KeyBinding: k.KeyBinding,
			}
			if k.KeyCode.Mapped {
				code := int(k.KeyCode.Code)
				kr.KeyCode = &code
			}
			keys = append(keys, kr)
		}
		s.mu.RUnlock()

		s.respond(w, keysResp{Keys: keys}, http.StatusOK)
	}
}

func (s *Server) handleReset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.hub.Reset()
		s.log.Info("reset requested", zap.String("remote", r.RemoteAddr))
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleWS() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.Warn("upgrade", zap.Error(err))
			return
		}
		s.hub.Serve(conn)
	}
}

func (s *Server) respond(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("encode response", zap.Error(err))
	}
}
