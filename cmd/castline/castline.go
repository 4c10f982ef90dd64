package main

import (
	"context"
	"flag"
	"os"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/logging"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vmetanov/castline/configs/config"
	"github.com/vmetanov/castline/internal/data/firestoredb"
	"github.com/vmetanov/castline/internal/fishing"
	"github.com/vmetanov/castline/internal/server"
	"github.com/vmetanov/castline/internal/server/router"
	"github.com/vmetanov/castline/internal/services"
	"github.com/vmetanov/castline/pkg/gopool"
	"github.com/vmetanov/castline/tools"
)

func main() {
	var (
		debug   = flag.Bool("debug", false, "debug mode")
		vers    = flag.Bool("version", false, "prints version")
		workers = flag.Int("workers", 0, "max workers count")
		queue   = flag.Int("queue", 0, "workers task queue size")
		cfgfn   = flag.String("config", "configs/config.yaml", "--config=<file_name> configuration file name. Default is configs/config.yaml")
	)

	flag.Parse()
	ctx := context.Background()

	// Request to print out the build version
	if *vers {
		tools.PrintVersion()
		os.Exit(0)
	}

	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	// Load the configuration file
	cfg, err := config.LoadConfig(*cfgfn)
	if err != nil {
		log.Fatalf("error loading configuration file %s: %v", *cfgfn, err)
	}

	// The goroutine pool handling the websocket connections. Its sizing
	// comes from the config file first, runtime flags second, defaults
	// last.
	if cfg.PoolMaxWorkers < 1 {
		if *workers < 1 {
			cfg.PoolMaxWorkers = 128
		} else {
			cfg.PoolMaxWorkers = *workers
		}
	}
	if cfg.PoolQueue < 1 {
		if *queue < 1 {
			cfg.PoolQueue = 1
		} else {
			cfg.PoolQueue = *queue
		}
	}
	pool := gopool.NewPool(cfg.PoolMaxWorkers, cfg.PoolQueue, 1)

	// Inventory repository: firestore when a project is configured,
	// otherwise in-process.
	var repo fishing.InventoryRepo
	prj := cfg.GetProjectID()
	if prj != "" {
		clientFrst, err := firestore.NewClient(ctx, prj)
		if err != nil {
			log.Fatalf("firestore client init error %s. Exit: unable to proceed.", err.Error())
		}
		defer clientFrst.Close()

		repo, err = firestoredb.NewInventoryRepository(clientFrst, cfg.GetInventoryCollectionName())
		if err != nil {
			log.Fatalf("firestore repository init error %s. Exit: unable to proceed.", err.Error())
		}
	} else {
		log.Warn("no firestore project configured, inventories are held in-process only")
		repo = fishing.NewMemoryRepo()
	}

	// Optional cloud logger for connection lifecycle events
	var clgr *logging.Logger
	if cfg.CloudLoggingEnabled && prj != "" {
		clientLgr, err := logging.NewClient(ctx, prj)
		if err != nil {
			log.Errorf("error while initializing cloud logging, the service will run without it: %v", err)
		} else {
			defer clientLgr.Close()
			clgr = clientLgr.Logger("castline-cnn")
		}
	}

	session := services.NewSession(pool, cfg, clgr)
	game := fishing.NewGame(repo)
	session.AttachGame(game)

	httpServer := server.NewInstance()
	hdlr := router.NewHandler(session, cfg)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Infof("...starting %s instance at %s...", cfg.GetName(), addr)
		err := httpServer.Start(addr, hdlr)
		session.Limiter().Stop()
		return err
	})
	g.Go(func() error {
		// periodic rate-limiter sweep, decoupled from request handling
		session.Limiter().Run()
		return nil
	})

	log.Errorf("castline http server terminated! %v", g.Wait())
}
