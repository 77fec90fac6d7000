// librecal-monitor samples LibreCAL telemetry on an interval, logs
// it to SQLite and serves Prometheus metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EhsanBagheri/LibreCAL/caldevice"
	"github.com/EhsanBagheri/LibreCAL/internal/logging"
	"github.com/EhsanBagheri/LibreCAL/internal/monitor"
	"github.com/EhsanBagheri/LibreCAL/internal/transport"
)

func main() {
	var (
		addr     = flag.String("addr", "", "TCP address of a network-bridged device (host:port)")
		serial   = flag.String("serial", "", "serial port of a USB-attached device")
		baud     = flag.Int("baud", transport.DefaultBaudRate, "serial baud rate")
		timeout  = flag.Duration("timeout", transport.DefaultTimeout, "per-exchange timeout")
		interval = flag.Duration("interval", 10*time.Second, "sampling interval")
		dbPath   = flag.String("db", "librecal-telemetry.db", "SQLite database path (empty disables)")
		listen   = flag.String("listen", ":9834", "metrics listen address (empty disables)")
		logLevel = flag.String("log-level", "info", "log level")
		logJSON  = flag.Bool("log-json", false, "log as JSON lines")
	)
	flag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := logging.New(level, *logJSON, os.Stderr)
	logging.SetDefault(log)

	if *addr == "" && *serial == "" {
		fmt.Fprintln(os.Stderr, "no device given: use -serial or -addr")
		os.Exit(2)
	}

	connect := func() (*caldevice.Device, error) {
		var (
			conn *transport.Conn
			err  error
		)
		if *serial != "" {
			conn, err = transport.OpenSerial(*serial, *baud, *timeout)
		} else {
			conn, err = transport.Dial(*addr, *timeout)
		}
		if err != nil {
			return nil, err
		}
		dev, err := caldevice.New(conn)
		if err != nil {
			conn.Close()
			return nil, err
		}
		return dev, nil
	}

	var store *monitor.Store
	if *dbPath != "" {
		store, err = monitor.OpenStore(*dbPath)
		if err != nil {
			log.Error("open telemetry store", logging.Field{Key: "err", Value: err})
			os.Exit(1)
		}
		defer store.Close()
	}

	var collector *monitor.Collector
	if *listen != "" {
		collector, err = monitor.NewCollector(nil)
		if err != nil {
			log.Error("register metrics", logging.Field{Key: "err", Value: err})
			os.Exit(1)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		go func() {
			log.Info("serving metrics", logging.Field{Key: "addr", Value: *listen})
			if err := http.ListenAndServe(*listen, mux); err != nil {
				log.Error("metrics server", logging.Field{Key: "err", Value: err})
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := monitor.New(connect, store, collector, *interval, log)
	if err := m.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("monitor stopped", logging.Field{Key: "err", Value: err})
		os.Exit(1)
	}
}
