package main

import (
	"context"
	"os"
	"os/signal"

	"concierge/app/api"
	"concierge/app/config"
	"concierge/app/service/action"
	"concierge/app/service/dialogue"
	"concierge/app/service/nlu"
	"concierge/app/service/store"
	"concierge/app/util/mylog"
	"log/slog"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, store.New)
	do.Provide(di, nlu.New)
	do.Provide(di, func(di *do.Injector) (nlu.Backend, error) {
		return do.MustInvoke[*nlu.Service](di), nil
	})
	do.Provide(di, action.New)
	do.Provide(di, dialogue.New)
	do.Provide(di, api.NewServer)
	do.Provide(di, api.NewMCPServer)

	slog.Info("Service started")

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	do.MustInvoke[*nlu.Service](di).Probe(appCtx)

	group, groupCtx := errgroup.WithContext(appCtx)

	group.Go(func() error {
		return do.MustInvoke[*api.Server](di).Run(groupCtx)
	})

	if cfg.Server.MCP {
		group.Go(func() error {
			return do.MustInvoke[*api.MCPServer](di).Run(groupCtx)
		})
	}

	if err = group.Wait(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
