// librecal-sim serves a simulated LibreCAL device over TCP, with a
// synthetic factory coefficient set. Useful for developing clients
// without hardware on the bench.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/EhsanBagheri/LibreCAL/internal/logging"
	"github.com/EhsanBagheri/LibreCAL/internal/simulator"
)

func main() {
	var (
		listen   = flag.String("listen", ":19542", "listen address")
		ports    = flag.Int("ports", 4, "number of calibration ports")
		points   = flag.Int("points", 201, "frequency points per coefficient")
		fMax     = flag.Float64("fmax", 40.0, "maximum coefficient frequency in GHz")
		temp     = flag.Float64("temp", 35.0, "reported temperature in C")
		logLevel = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := logging.New(level, false, os.Stderr)
	logging.SetDefault(log)

	sim := simulator.New(simulator.Config{
		Serial:      "SIM0001",
		Firmware:    "1.0.0-sim",
		Ports:       *ports,
		Temperature: *temp,
		HeaterPower: 0.25,
		Stable:      true,
	})
	sim.AddCoefficientSet(simulator.FactorySet(*ports, *points, *fMax))

	l, err := net.Listen("tcp", *listen)
	if err != nil {
		log.Error("listen", logging.Field{Key: "err", Value: err})
		os.Exit(1)
	}
	log.Info("simulated device listening",
		logging.Field{Key: "addr", Value: *listen},
		logging.Field{Key: "ports", Value: *ports})

	if err := sim.Serve(l, log); err != nil {
		log.Error("serve", logging.Field{Key: "err", Value: err})
		os.Exit(1)
	}
}
