// Package simulator emits randomized banking events into the broker so the
// notification subsystem can be exercised end to end without a real backend.
package simulator

import (
	"math/rand"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/NLihtnov/banking-notifications/internal/event"
	"github.com/NLihtnov/banking-notifications/internal/protocol"
	"github.com/NLihtnov/banking-notifications/internal/util"
)

// Generator periodically publishes synthetic transaction, balance and
// security events on a user topic.
type Generator struct {
	sender    event.Sender
	topic     string
	interval  time.Duration
	scheduler gocron.Scheduler
	balance   float64
}

// NewGenerator creates a generator publishing to the given user topic.
func NewGenerator(sender event.Sender, topic string, interval time.Duration) (*Generator, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	return &Generator{
		sender:    sender,
		topic:     topic,
		interval:  interval,
		scheduler: scheduler,
		balance:   2500,
	}, nil
}

// Start begins the periodic emission job.
func (g *Generator) Start() error {
	_, err := g.scheduler.NewJob(
		gocron.DurationJob(g.interval),
		gocron.NewTask(
			func() {
				g.emit()
			},
		),
	)
	if err != nil {
		return err
	}

	g.scheduler.Start()
	log.Info().
		Str("topic", g.topic).
		Dur("interval", g.interval).
		Msg("event simulator started")
	return nil
}

// Stop shuts the scheduler down.
func (g *Generator) Stop() {
	_ = g.scheduler.Shutdown()
}

func (g *Generator) emit() {
	var env protocol.Envelope
	var err error

	switch rand.Intn(3) {
	case 0:
		amount := float64(rand.Intn(90000)+1000) / 100
		env, err = protocol.NewEnvelope(protocol.TypeTransactionUpdate, protocol.TransactionPayload{
			TransactionID: util.NewNotificationID(),
			Type:          pickTransferKind(),
			Amount:        amount,
			RecipientName: pickRecipient(),
		})
	case 1:
		delta := float64(rand.Intn(40000)-20000) / 100
		g.balance += delta
		env, err = protocol.NewEnvelope(protocol.TypeBalanceUpdate, protocol.BalancePayload{
			NewBalance: g.balance,
		})
	default:
		env, err = protocol.NewEnvelope(protocol.TypeNotification, protocol.NotificationPayload{
			ID:       util.NewNotificationID(),
			Type:     "security_alert",
			Title:    "Novo acesso detectado",
			Message:  "Um novo acesso à sua conta foi detectado. Se não foi você, altere sua senha.",
			Priority: "high",
		})
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to build simulated event")
		return
	}

	g.sender.Publish(g.topic, env)
}

func pickTransferKind() string {
	if rand.Intn(2) == 0 {
		return "TED"
	}
	return "PIX"
}

func pickRecipient() string {
	names := []string{"Maria", "João", "Ana", "Carlos", "Beatriz"}
	return names[rand.Intn(len(names))]
}
