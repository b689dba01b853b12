package main

import (
	"log"
	"net/http"

	"chunkforge/internal/api"
	"chunkforge/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	h := api.NewServer(cfg)
	log.Printf("chunkforge api listening on %s strategy=%s llm_providers=%q", cfg.APIAddr, cfg.DefaultStrategy, cfg.LLMProviders)
	if err := http.ListenAndServe(cfg.APIAddr, h.Routes()); err != nil {
		log.Fatal(err)
	}
}
