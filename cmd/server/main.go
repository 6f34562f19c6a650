package main

import (
	"fmt"
	"log"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/Dipeshkhadgi/hamrospace/internal/auth"
	"github.com/Dipeshkhadgi/hamrospace/internal/blob"
	"github.com/Dipeshkhadgi/hamrospace/internal/config"
	"github.com/Dipeshkhadgi/hamrospace/internal/server"
	"github.com/Dipeshkhadgi/hamrospace/internal/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	gin.SetMode(cfg.GinMode)
	logger := slog.Default()

	db, err := store.Open(cfg.DataDir)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	blobs, err := blob.NewDiskStore(cfg.UploadDir)
	if err != nil {
		log.Fatal(err)
	}

	tokenCfg := auth.TokenConfig{
		Secret: cfg.JWTSecret,
		Expiry: cfg.TokenExpiry,
		Issuer: "hamrospace",
	}

	router := server.NewRouter(server.Deps{
		Store:       store.New(db, logger),
		Blobs:       blobs,
		TokenConfig: tokenCfg,
		Log:         logger,
		UploadDir:   cfg.UploadDir,
	})
	log.Printf("listening on %s", fmt.Sprintf(":%d", cfg.Port))
	log.Fatal(server.Run(cfg, router))
}
