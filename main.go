package main

import (
	"log"

	"starterkit/config"
	"starterkit/models"
	"starterkit/web"

	"github.com/rohanthewiz/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	logger.SetLogLevel(cfg.LogLevel)

	if err := models.InitDB(cfg.DBPath); err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}
	defer models.CloseDB()

	srv := web.NewServer(cfg)
	if err := web.Run(srv, cfg); err != nil {
		logger.LogErr(err, "server stopped")
	}
}
