package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"

	"banqi/internal/game"
	"banqi/internal/handlers"
	"banqi/internal/logging"
	"banqi/internal/storage"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	dsn := flag.String("dsn", os.Getenv("BANQI_DSN"), "postgres DSN for the archive store (empty disables archiving)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()
	logging.Setup(*debug)

	var store *storage.Store
	if *dsn != "" {
		db, err := storage.New(*dsn)
		if err != nil {
			log.Fatal().Err(err).Msg("archive store init failed")
		}
		store = storage.NewStore(db)
	}

	hub := game.NewHub(store)
	h := handlers.NewHandler(hub, store)

	http.HandleFunc("/new", h.HandleNew)
	http.HandleFunc("/state/", h.HandleState)
	http.HandleFunc("/sse/", h.HandleSSE)
	http.HandleFunc("/ws/", h.HandleWS)
	http.HandleFunc("/reveal/", h.HandleReveal)
	http.HandleFunc("/move/", h.HandleMove)
	http.HandleFunc("/reset/", h.HandleReset)
	http.HandleFunc("/stats", h.HandleStats)
	http.HandleFunc("/health", h.HandleHealth)

	log.Info().Str("addr", *addr).Str("commit", commit).Msg("banqi server listening")
	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
