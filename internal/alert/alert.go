// Package alert abstracts the platform system-notification capability
// (browser Notification API and friends) behind a small interface so
// platforms without it get a safe no-op.
package alert

import (
	"context"

	"github.com/rs/zerolog"
)

// Alerter raises system-level alerts for high-priority notifications.
type Alerter interface {
	// RequestPermission asks the platform for permission to alert. It
	// returns false when the capability is absent or denied.
	RequestPermission(ctx context.Context) (bool, error)

	// Alert surfaces a system-level notification.
	Alert(title, body string) error
}

// Nop discards alerts; used when the platform has no alert capability.
type Nop struct{}

var _ Alerter = (*Nop)(nil)

func (n *Nop) RequestPermission(ctx context.Context) (bool, error) { return false, nil }

func (n *Nop) Alert(title, body string) error { return nil }

// Log writes alerts to the log, standing in for a real system surface in
// headless environments.
type Log struct {
	logger zerolog.Logger
}

var _ Alerter = (*Log)(nil)

// NewLog creates a log-backed alerter.
func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger.With().Str("component", "alert").Logger()}
}

func (l *Log) RequestPermission(ctx context.Context) (bool, error) { return true, nil }

func (l *Log) Alert(title, body string) error {
	l.logger.Info().Str("title", title).Str("body", body).Msg("system alert")
	return nil
}
