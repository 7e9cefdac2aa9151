// Command edisd is the standalone server binary: it parses flags, opens the
// sharded keyspace, and serves RESP until SIGINT/SIGTERM.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/guateandrew/edis/config"
	"github.com/guateandrew/edis/log"
	"github.com/guateandrew/edis/respserver"
	"github.com/guateandrew/edis/router"
)

func main() {
	cfg := config.Parse()

	switch {
	case cfg.VeryVerbose:
		log.SetLevel(log.DEBUG)
	case cfg.Verbose:
		log.SetLevel(log.INFO)
	case cfg.Quiet:
		log.SetLevel(-1)
	default:
		log.SetLevel(log.NOTICE)
	}

	r, err := router.New(cfg.DataDir, cfg.Databases)
	if err != nil {
		log.Critical(err.Error())
		os.Exit(1)
	}
	defer r.Close()

	srv := respserver.New(cfg.Host, cfg.Port, r)

	go handleSignals(srv)

	log.Noticef("edisd: listening on %s:%d, %d shards under %s", cfg.Host, cfg.Port, cfg.Databases, cfg.DataDir)
	if err := srv.ListenAndServe(); err != nil {
		log.Critical(err.Error())
		os.Exit(1)
	}
}

func handleSignals(srv *respserver.RespServer) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	for s := range sigs {
		switch s {
		case syscall.SIGINT, syscall.SIGTERM:
			log.Notice("edisd: shutting down")
			srv.Shutdown()
			return
		}
	}
}
