// librecal-cli talks to a LibreCAL calibration standard from the
// command line: discovery, identification, switch control, telemetry
// and coefficient download.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/EhsanBagheri/LibreCAL/caldevice"
	"github.com/EhsanBagheri/LibreCAL/internal/discovery"
	"github.com/EhsanBagheri/LibreCAL/internal/logging"
	"github.com/EhsanBagheri/LibreCAL/internal/transport"
	"github.com/EhsanBagheri/LibreCAL/internal/tui"
)

var (
	addr     = flag.String("addr", "", "TCP address of a network-bridged device (host:port)")
	serial   = flag.String("serial", "", "serial port of a USB-attached device (e.g. /dev/ttyACM0)")
	baud     = flag.Int("baud", transport.DefaultBaudRate, "serial baud rate")
	timeout  = flag.Duration("timeout", transport.DefaultTimeout, "per-exchange timeout")
	logLevel = flag.String("log-level", "info", "log level (debug, info, warn, error)")
	logJSON  = flag.Bool("log-json", false, "log as JSON lines")
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: librecal-cli [flags] <command> [args]

Commands:
  discover                  browse for network-bridged devices via mDNS
  info                      print identification, ports and telemetry
  standard get <port>       print the standard at a port
  standard set <port> <std> switch a port (OPEN SHORT LOAD THROUGH NONE)
  temp                      print temperature, stability and heater power
  coeff                     download all coefficient sets with progress
  export <dir>              download and write touchstone files to <dir>

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logging.SetDefault(logging.New(level, *logJSON, os.Stderr))

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	switch flag.Arg(0) {
	case "discover":
		cmdDiscover()
	case "info":
		cmdInfo(connect())
	case "standard":
		cmdStandard(flag.Args()[1:])
	case "temp":
		cmdTemp(connect())
	case "coeff":
		cmdCoeff(connect())
	case "export":
		if flag.NArg() != 2 {
			usage()
			os.Exit(2)
		}
		cmdExport(connect(), flag.Arg(1))
	default:
		usage()
		os.Exit(2)
	}
}

func connect() *caldevice.Device {
	var (
		conn *transport.Conn
		err  error
	)
	switch {
	case *serial != "":
		conn, err = transport.OpenSerial(*serial, *baud, *timeout)
	case *addr != "":
		conn, err = transport.Dial(*addr, *timeout)
	default:
		fmt.Fprintln(os.Stderr, "no device given: use -serial or -addr")
		os.Exit(2)
	}
	if err != nil {
		fatal(err)
	}
	dev, err := caldevice.New(conn)
	if err != nil {
		conn.Close()
		fatal(err)
	}
	return dev
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func cmdDiscover() {
	bridges, err := discovery.Browse(3 * time.Second)
	if err != nil {
		fatal(err)
	}
	if len(bridges) == 0 {
		fmt.Println("no devices found")
		return
	}
	for _, b := range bridges {
		fmt.Printf("%-30s %s\n", b.Instance, b.Addr())
	}
}

func cmdInfo(dev *caldevice.Device) {
	defer dev.Close()
	fmt.Printf("Serial:      %s\n", dev.Serial())
	fmt.Printf("Firmware:    %s\n", dev.Firmware())
	fmt.Printf("Ports:       %d\n", dev.NumPorts())
	for port := 1; port <= dev.NumPorts(); port++ {
		fmt.Printf("  Port %d:    %s\n", port, dev.GetStandard(port))
	}
	fmt.Printf("Temperature: %.2f C\n", dev.GetTemperature())
}

func cmdStandard(args []string) {
	if len(args) < 2 {
		usage()
		os.Exit(2)
	}
	port, err := strconv.Atoi(args[1])
	if err != nil {
		fatal(fmt.Errorf("bad port %q", args[1]))
	}
	dev := connect()
	defer dev.Close()
	switch args[0] {
	case "get":
		fmt.Println(dev.GetStandard(port))
	case "set":
		if len(args) != 3 {
			usage()
			os.Exit(2)
		}
		if !dev.SetStandard(port, caldevice.ParseStandard(args[2])) {
			fatal(fmt.Errorf("device rejected standard change"))
		}
	default:
		usage()
		os.Exit(2)
	}
}

func cmdTemp(dev *caldevice.Device) {
	defer dev.Close()
	fmt.Printf("Temperature: %.2f C\n", dev.GetTemperature())
	fmt.Printf("Stable:      %v\n", dev.TemperatureStable())
	fmt.Printf("Heater:      %.3f W\n", dev.GetHeaterPower())
}

func cmdCoeff(dev *caldevice.Device) {
	defer dev.Close()
	res, err := tui.RunRetrieval(dev)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("retrieved %d coefficient set(s)\n", res.Sets)
	for _, set := range dev.CoefficientSets() {
		points := 0
		for _, group := range [][]caldevice.Coefficient{set.Opens, set.Shorts, set.Loads, set.Throughs} {
			for i := range group {
				points += len(group[i].Data.Points())
			}
		}
		fmt.Printf("  %-12s %d ports, %d points\n", set.Name, set.Ports, points)
	}
}

func cmdExport(dev *caldevice.Device, dir string) {
	defer dev.Close()
	res, err := tui.RunRetrieval(dev)
	if err != nil {
		fatal(err)
	}
	if res.Sets == 0 {
		fatal(fmt.Errorf("nothing to export"))
	}
	for _, set := range dev.CoefficientSets() {
		setDir := filepath.Join(dir, set.Name)
		if err := os.MkdirAll(setDir, 0o755); err != nil {
			fatal(err)
		}
		write := func(base string, c *caldevice.Coefficient) {
			path := filepath.Join(setDir, c.Data.Filename(base))
			f, err := os.Create(path)
			if err != nil {
				fatal(err)
			}
			if err := c.Data.Write(f); err != nil {
				f.Close()
				fatal(err)
			}
			if err := f.Close(); err != nil {
				fatal(err)
			}
		}
		for port := 1; port <= set.Ports; port++ {
			write(fmt.Sprintf("P%d_OPEN", port), &set.Opens[port-1])
			write(fmt.Sprintf("P%d_SHORT", port), &set.Shorts[port-1])
			write(fmt.Sprintf("P%d_LOAD", port), &set.Loads[port-1])
			for p2 := port + 1; p2 <= set.Ports; p2++ {
				write(fmt.Sprintf("P%d%d_THROUGH", port, p2), set.Through(port, p2))
			}
		}
		fmt.Printf("wrote %s\n", setDir)
	}
}
