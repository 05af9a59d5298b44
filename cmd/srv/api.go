package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/urfave/cli/v2"
)

func (s *srv) startSrv(*cli.Context) error {
	s.loadConfig()
	s.loadDatabase()
	s.loadRedis()
	s.loadRepos()
	s.loadDomains()

	// Re-arm timers and resolve anything that came due while the
	// service was down, before accepting traffic.
	if err := s.registry.ReconcileOnStartup(s.ctx); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	addr := fmt.Sprintf("%s:%s", s.configs.Server.Host, s.configs.Server.Port)
	log.Printf("Starting server on %s\n", addr)
	return http.ListenAndServe(addr, mux)
}
