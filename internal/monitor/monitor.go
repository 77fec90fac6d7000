// Package monitor samples LibreCAL telemetry on an interval, logs it
// to SQLite and exports it as Prometheus metrics.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/EhsanBagheri/LibreCAL/caldevice"
	"github.com/EhsanBagheri/LibreCAL/internal/logging"
)

// Connector establishes a device session. The monitor calls it again,
// with exponential backoff, whenever the session dies.
type Connector func() (*caldevice.Device, error)

// Monitor drives the sampling loop.
type Monitor struct {
	connect   Connector
	store     *Store
	collector *Collector
	interval  time.Duration
	log       logging.Logger
}

// New assembles a monitor. store and collector may be nil to disable
// persistence or metrics respectively.
func New(connect Connector, store *Store, collector *Collector, interval time.Duration, log logging.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if log == nil {
		log = logging.Default()
	}
	return &Monitor{
		connect:   connect,
		store:     store,
		collector: collector,
		interval:  interval,
		log:       log,
	}
}

// Run samples until ctx is cancelled. A dead connection is
// re-established with exponential backoff; sampling resumes on the
// new session.
func (m *Monitor) Run(ctx context.Context) error {
	for {
		dev, err := m.dial(ctx)
		if err != nil {
			return err
		}
		m.log.Info("device connected",
			logging.Field{Key: "serial", Value: dev.Serial()},
			logging.Field{Key: "firmware", Value: dev.Firmware()})

		err = m.sample(ctx, dev)
		dev.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		m.log.Warn("device session lost, reconnecting", logging.Field{Key: "err", Value: err})
		if m.collector != nil {
			m.collector.Reconnects.Inc()
		}
	}
}

func (m *Monitor) dial(ctx context.Context) (*caldevice.Device, error) {
	var dev *caldevice.Device
	op := func() error {
		var err error
		dev, err = m.connect()
		if err != nil {
			m.log.Debug("connect attempt failed", logging.Field{Key: "err", Value: err})
		}
		return err
	}
	b := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return dev, nil
}

func (m *Monitor) sample(ctx context.Context, dev *caldevice.Device) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := dev.Ping(); err != nil {
			return err
		}
		s := Sample{
			Time:        time.Now(),
			Temperature: dev.GetTemperature(),
			HeaterPower: dev.GetHeaterPower(),
			Stable:      dev.TemperatureStable(),
		}
		if m.collector != nil {
			m.collector.Observe(s)
		}
		if m.store != nil {
			if err := m.store.Insert(s); err != nil {
				m.log.Error("persist sample failed", logging.Field{Key: "err", Value: err})
			}
		}
		m.log.Debug("telemetry sample",
			logging.Field{Key: "temp", Value: s.Temperature},
			logging.Field{Key: "heater", Value: s.HeaterPower},
			logging.Field{Key: "stable", Value: s.Stable})
	}
}
