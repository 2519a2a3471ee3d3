package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/NLihtnov/banking-notifications/api"
	"github.com/NLihtnov/banking-notifications/internal/alert"
	"github.com/NLihtnov/banking-notifications/internal/coordinator"
	"github.com/NLihtnov/banking-notifications/internal/event"
	"github.com/NLihtnov/banking-notifications/internal/notification"
	"github.com/NLihtnov/banking-notifications/internal/pushchannel"
	"github.com/NLihtnov/banking-notifications/internal/simulator"
	"github.com/NLihtnov/banking-notifications/internal/token"
	"github.com/NLihtnov/banking-notifications/internal/util"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configurations
	config, err := util.LoadConfig("./app.env")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config file 😣")
	}
	log.Info().Msg("configurations loaded successfully ✅")

	broker := event.NewBroker()

	server, err := api.NewServer(&config, broker)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gateway server 😣")
	}

	generator, err := simulator.NewGenerator(broker, "user:1", config.SimulationInterval)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event simulator 😣")
	}
	if err = generator.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start event simulator 😣")
	}
	defer generator.Stop()

	go runDemoClient(&config)

	if err = server.Start(config.HTTPServerAddress); err != nil {
		log.Fatal().Err(err).Msg("failed to start gateway server 😣")
	}
}

// runDemoClient opens a live notification session against the local gateway
// and logs what the store accumulates, exercising the full subsystem.
func runDemoClient(config *util.Config) {
	// Give the HTTP server a moment to come up.
	time.Sleep(500 * time.Millisecond)

	tokenMaker, err := token.NewJWTMaker(config.TokenSecretKey)
	if err != nil {
		log.Error().Err(err).Msg("demo client: failed to create token maker")
		return
	}
	sessionToken, _, err := tokenMaker.CreateToken("1", config.TokenDuration)
	if err != nil {
		log.Error().Err(err).Msg("demo client: failed to create session token")
		return
	}

	store := notification.NewStore()
	channel := pushchannel.New(config.WSBaseURL)
	coord := coordinator.New(store, channel,
		coordinator.WithAlerter(alert.NewLog(log.Logger)),
		coordinator.WithAccount(coordinator.NewMemoryAccount(2500)),
	)

	if err = coord.Start(context.Background(), sessionToken); err != nil {
		log.Error().Err(err).Msg("demo client: failed to open push channel")
		return
	}
	log.Info().Msg("demo client connected ✅")

	for range time.Tick(30 * time.Second) {
		connected, lastErr := store.ConnectionStatus()
		log.Info().
			Bool("connected", connected).
			Str("last_error", lastErr).
			Int("notifications", store.Len()).
			Int("unread", store.UnreadCount()).
			Msg("demo client store snapshot")
	}
}
