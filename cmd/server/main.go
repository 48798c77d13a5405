package main

import (
	"context"
	"log"

	"github.com/instashare/instashare/internal/server"
	"github.com/instashare/instashare/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg, server.ModeAPI)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
