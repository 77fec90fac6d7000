// Package discovery finds LibreCAL network bridges via mDNS. A
// bridge publishes itself as a _librecal._tcp service and forwards
// the line protocol to the device's USB port.
package discovery

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const service = "_librecal._tcp"

// Bridge is one discovered network-attached device.
type Bridge struct {
	Instance  string // advertised name, e.g. "LibreCAL on bench-pi"
	Hostname  string // DNS hostname, e.g. "bench-pi.local."
	Addresses []net.IP
	Port      int
	TXT       []string
}

// Addr returns a dialable host:port for the bridge, preferring the
// first resolved address over the hostname.
func (b Bridge) Addr() string {
	host := strings.TrimSuffix(b.Hostname, ".")
	if len(b.Addresses) > 0 {
		host = b.Addresses[0].String()
	}
	return fmt.Sprintf("%s:%d", host, b.Port)
}

// Browse performs a blocking mDNS browse for the given duration and
// returns deduplicated bridge entries.
func Browse(timeout time.Duration) ([]Bridge, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("resolver error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	found := make(map[string]Bridge)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case e, ok := <-entries:
				if !ok {
					return
				}
				if e == nil {
					continue
				}
				addrs := make([]net.IP, 0, len(e.AddrIPv4)+len(e.AddrIPv6))
				addrs = append(addrs, e.AddrIPv4...)
				addrs = append(addrs, e.AddrIPv6...)
				key := fmt.Sprintf("%s|%d", e.HostName, e.Port)
				found[key] = Bridge{
					Instance:  strings.ReplaceAll(e.Instance, `\ `, " "),
					Hostname:  e.HostName,
					Addresses: addrs,
					Port:      e.Port,
					TXT:       append([]string{}, e.Text...),
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, service, "local.", entries); err != nil {
		return nil, fmt.Errorf("browse error: %w", err)
	}

	<-done

	out := make([]Bridge, 0, len(found))
	for _, b := range found {
		out = append(out, b)
	}
	return out, nil
}
