package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cbodonnell/snek/pkg/api"
	"github.com/cbodonnell/snek/pkg/game"
	"github.com/cbodonnell/snek/pkg/game/constants"
	"github.com/cbodonnell/snek/pkg/log"
	"github.com/cbodonnell/snek/pkg/network"
	"github.com/cbodonnell/snek/pkg/repositories"
	"github.com/cbodonnell/snek/pkg/state"
	"github.com/cbodonnell/snek/pkg/version"
	"github.com/cbodonnell/snek/pkg/workers"
	"golang.org/x/sync/errgroup"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8080", "Address to listen on")
	side := flag.Uint("side", constants.GridSide, "Side length of the square grid")
	startLength := flag.Uint("start-length", constants.SnakeStartLength, "Length of a new snake")
	tickInterval := flag.Duration("tick-interval", constants.TickInterval, "Time between game ticks")
	directionPolicy := flag.String("direction-policy", game.DirectionPolicyRandom.String(), "How queued directions are resolved: random or latest")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	if *side < constants.MinGridSide {
		panic(fmt.Sprintf("Side must be at least %d, got %d", constants.MinGridSide, *side))
	}
	if *startLength < 1 || *startLength >= *side {
		panic(fmt.Sprintf("Start length must be between 1 and %d, got %d", *side-1, *startLength))
	}
	if *tickInterval <= 0 {
		panic(fmt.Sprintf("Tick interval must be positive, got %s", *tickInterval))
	}
	parsedDirectionPolicy, err := game.ParseDirectionPolicy(*directionPolicy)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse direction policy: %v", err))
	}

	var tlsConfig *api.TLSConfig
	certFile, keyFile := os.Getenv("SNEK_TLS_CERT_FILE"), os.Getenv("SNEK_TLS_KEY_FILE")
	if certFile != "" || keyFile != "" {
		if certFile == "" || keyFile == "" {
			panic("SNEK_TLS_CERT_FILE and SNEK_TLS_KEY_FILE must be set together")
		}
		tlsConfig = &api.TLSConfig{CertFile: certFile, KeyFile: keyFile}
	}

	log.Info("Starting server version %s", version.Get())
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repository, err := repositories.Open(ctx, os.Getenv("SNEK_DATABASE_URL"))
	if err != nil {
		panic(fmt.Sprintf("Failed to open repository: %v", err))
	}
	defer repository.Close(context.Background())

	stateManager := state.NewInMemoryStateManager(game.NewGame(game.NewGameOptions{
		Side:            *side,
		StartLength:     *startLength,
		DirectionPolicy: parsedDirectionPolicy,
	}))
	hub := network.NewHub(network.NewHubOptions{})

	frameChannelSize := 10
	frameChan := make(chan *game.Game, frameChannelSize)
	saveRunChannelSize := 100
	saveRunChan := make(chan workers.SaveRunRequest, saveRunChannelSize)

	tickWorker := workers.NewTickWorker(workers.NewTickWorkerOptions{
		StateManager: stateManager,
		Interval:     *tickInterval,
		FrameChan:    frameChan,
		SaveRunChan:  saveRunChan,
	})
	frameBroadcastWorker := workers.NewFrameBroadcastWorker(workers.NewFrameBroadcastWorkerOptions{
		Broadcaster: hub,
		FrameChan:   frameChan,
	})
	saveRunWorker := workers.NewSaveRunWorker(workers.NewSaveRunWorkerOptions{
		Repository:  repository,
		SaveRunChan: saveRunChan,
	})

	apiServer := api.NewAPIServer(api.NewAPIServerOptions{
		Addr:         *addr,
		TLS:          tlsConfig,
		StateManager: stateManager,
		Repository:   repository,
		Hub:          hub,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Starting tick worker with interval %s", *tickInterval)
		tickWorker.Start(gctx)
		return nil
	})
	g.Go(func() error {
		frameBroadcastWorker.Start(gctx)
		return nil
	})
	g.Go(func() error {
		saveRunWorker.Start(gctx)
		return nil
	})
	g.Go(func() error {
		return apiServer.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return apiServer.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error: %v", err)
		os.Exit(1)
	}
	log.Info("Server stopped")
}
