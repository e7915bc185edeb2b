// cmd/tryoutsbot/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/osu-tryouts/tryoutsbot/internal/bot"
	"github.com/osu-tryouts/tryoutsbot/internal/config"
	"github.com/osu-tryouts/tryoutsbot/internal/irc"
	"github.com/osu-tryouts/tryoutsbot/internal/sheets"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := sheets.Connect(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to connect to sheets: %v", err)
	}

	mappool, err := store.GetMappool(ctx)
	if err != nil {
		log.Fatalf("failed to load mappool: %v", err)
	}
	if len(mappool) == 0 {
		log.Fatalf("mappool is empty")
	}

	// A reduced rotation keeps test runs short.
	if cfg.Environment == "testing" && len(mappool) > 4 {
		mappool = mappool[:4]
	}

	b := bot.New(cfg, settings, mappool, store, logger)
	client := irc.NewClient(cfg.IRCAddr, cfg.IRCNick, cfg.IRCPassword, cfg.SendInterval, b, logger)
	b.AttachSender(client)

	errc := make(chan error, 1)
	go func() {
		errc <- client.Run(ctx)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errc:
		logger.WithError(err).Error("Transport exited")
	case sig := <-sigs:
		logger.Infof("Terminating: %v", sig)
		// Close every active lobby and give the rate limiter time to
		// flush the close commands before tearing the connection down.
		active := b.Sessions().Len()
		b.Shutdown()
		time.Sleep(time.Duration(active+1) * cfg.SendInterval)
	}
}
