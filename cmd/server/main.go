package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/bale2838/Tetris/internal/config"
	"github.com/bale2838/Tetris/internal/transport/ws"
	"github.com/bale2838/Tetris/internal/usecase/game"
	"github.com/bale2838/Tetris/internal/usecase/hub"
	"github.com/bale2838/Tetris/internal/usecase/session"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	cfgPath := flag.String("config", "./config.yml", "path to config")
	flag.Parse()
	cfg, err := config.New(*cfgPath)
	if err != nil {
		logger.Fatal(err.Error())
	}
	logger.Info("loaded config", zap.Any("rules", cfg.Game), zap.Any("session", cfg.Session))
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	var (
		games    = game.NewFactory(cfg.Game, logger)
		sessions = session.NewFactory(games, cfg.Session.UpdatesBuffer, logger)
		hub      = hub.New(sessions, cfg.Session, logger)
		server   = ws.New(cfg.Server.Addr, hub, logger)
	)
	errGroup, ctx := errgroup.WithContext(context.Background())
	errGroup.Go(func() error {
		select {
		case s := <-sigChan:
			return errors.Errorf("captured signal: %v", s)
		case <-ctx.Done():
			return nil
		}
	})
	errGroup.Go(func() error {
		if err := server.ListenAndServe(); err != nil {
			return errors.WithMessage(err, "listen and serve")
		}
		return nil
	})
	errGroup.Go(func() error {
		<-ctx.Done()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Info("failed to shutdown http server: " + err.Error())
		}
		return nil
	})
	if err := errGroup.Wait(); err != nil {
		logger.Info("gracefully shutting down the server: " + err.Error())
	}
}
