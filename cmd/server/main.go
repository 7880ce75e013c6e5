// Package main runs the UNO game server: websocket listener, room
// orchestration, and the game engine behind them.
package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/unoverse/unoserver/internal/config"
	"github.com/unoverse/unoserver/internal/gameserver"
	"github.com/unoverse/unoserver/internal/observability"
	"github.com/unoverse/unoserver/internal/server"
	"github.com/unoverse/unoserver/internal/transport/ws"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting uno server",
		zap.String("addr", cfg.Server.Addr()),
		zap.Int("max_rooms", cfg.Game.MaxRooms),
	)

	wsServer := ws.NewServer(cfg.Server, cfg.Websocket, logger)
	orch := gameserver.New(cfg.Game, wsServer, logger)
	wsServer.SetHandler(orch)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("websocket", wsServer)

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
