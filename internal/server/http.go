package server

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

type Instance struct {
	lg         *log.Logger
	httpServer *http.Server
}

func NewInstance() *Instance {

	s := &Instance{
		lg:         log.StandardLogger(),
		httpServer: &http.Server{},
	}
	s.lg.Println("...initiating new Instance of HTTP server...")

	return s
}

func (s *Instance) Start(addr string, endp http.Handler) error {

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: endp,
	}

	err := s.httpServer.ListenAndServe() // Blocks!
	if err != http.ErrServerClosed {
		s.lg.Errorf("http server stopped unexpected: %v", err)
		s.Shutdown()
	} else {
		s.lg.Infof("http server stopped: %v", err)
	}
	return err
}

func (s *Instance) Shutdown() {
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := s.httpServer.Shutdown(ctx)
		if err != nil {
			s.lg.Errorf("failed to shutdown http server gracefully: %v", err)
		} else {
			s.httpServer = nil
		}
	}
}
