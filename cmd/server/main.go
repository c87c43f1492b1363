package main

import (
	"context"
	"log"

	"github.com/linkup-social/linkup/internal/server"
	"github.com/linkup-social/linkup/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
