// Package caldevice implements the host-side client for LibreCAL
// multi-port calibration standards: identification, switch control,
// temperature telemetry and coefficient set retrieval over a
// line-oriented command channel.
package caldevice

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// ErrIdentification is returned by New when the connected device does
// not answer *IDN? with a LibreCAL identity. The connection is not
// usable; there is no point in retrying on the same channel.
var ErrIdentification = errors.New("not a LibreCAL device")

// ErrRetrievalRunning is returned by UpdateCoefficientSets while a
// previous retrieval is still walking the device. Requests are
// rejected rather than queued: the channel is busy for the whole
// multi-query sequence and a silent queue would hide that.
var ErrRetrievalRunning = errors.New("coefficient retrieval already in progress")

const idnPrefix = "LibreCAL_"

// Device is the host-side client for one LibreCAL calibration
// standard. All exchanges go through a serialized channel so that
// foreground queries never interleave with an in-flight coefficient
// retrieval.
type Device struct {
	ch       *SerializedChannel
	closer   io.Closer
	serial   string
	firmware string
	numPorts int

	store coefficientStore

	mu        sync.Mutex
	retrieval *retrievalTask

	// notification channels of the current retrieval attempt;
	// replaced wholesale when a new attempt starts
	progress chan int
	done     chan RetrievalResult
}

// New identifies the device on ch and reads its firmware version and
// port count. An identification mismatch fails construction; a port
// count that does not parse leaves the device usable with zero ports
// (identification and telemetry still work).
func New(ch Channel) (*Device, error) {
	d := &Device{
		ch:       Serialize(ch),
		progress: make(chan int, progressBuffer),
		done:     make(chan RetrievalResult, 1),
	}
	if c, ok := ch.(io.Closer); ok {
		d.closer = c
	}

	idn, err := d.ch.Query("*IDN?")
	if err != nil {
		return nil, fmt.Errorf("identification query: %w", err)
	}
	if !strings.HasPrefix(idn, idnPrefix) {
		return nil, fmt.Errorf("%w: got %q", ErrIdentification, idn)
	}
	d.serial = strings.TrimPrefix(idn, idnPrefix)

	d.firmware, _ = d.ch.Query(":FIRMWARE?")

	ports, _ := d.ch.Query(":PORTS?")
	if n, err := strconv.Atoi(strings.TrimSpace(ports)); err == nil {
		d.numPorts = n
	}

	return d, nil
}

// Close joins an in-flight coefficient retrieval, then closes the
// underlying channel when it supports closing. Tearing the device
// down never leaks a background task still talking on the channel,
// nor the transport handle behind it.
func (d *Device) Close() {
	d.mu.Lock()
	task := d.retrieval
	d.mu.Unlock()
	if task != nil {
		task.wait()
	}
	if d.closer != nil {
		_ = d.closer.Close()
	}
}

// Ping verifies the channel still answers identification queries.
// Telemetry getters hide channel errors behind their zero defaults;
// supervisors that need to notice a dead link use Ping instead.
func (d *Device) Ping() error {
	_, err := d.ch.Query("*IDN?")
	return err
}

func (d *Device) Serial() string   { return d.serial }
func (d *Device) Firmware() string { return d.firmware }
func (d *Device) NumPorts() int    { return d.numPorts }

// GetStandard queries the standard currently presented at port. A
// garbled response decodes to None.
func (d *Device) GetStandard(port int) Standard {
	resp, err := d.ch.Query(":PORT? " + strconv.Itoa(port))
	if err != nil {
		return None
	}
	return ParseStandard(strings.TrimSpace(resp))
}

// SetStandard switches port to s. The return value reflects the
// device acknowledgement, not a re-read of the switch state.
func (d *Device) SetStandard(port int, s Standard) bool {
	return d.ch.Cmd(":PORT " + strconv.Itoa(port) + " " + s.String())
}

// GetTemperature reads the device temperature in degrees Celsius.
// Telemetry degrades gracefully: a non-numeric response reads as 0.0.
func (d *Device) GetTemperature() float64 {
	return d.queryFloat(":TEMP?")
}

// TemperatureStable reports whether the heater has settled. Only the
// literal TRUE token counts; anything else, malformed included, is
// unstable.
func (d *Device) TemperatureStable() bool {
	resp, err := d.ch.Query(":TEMPerature:STABLE?")
	return err == nil && strings.TrimSpace(resp) == "TRUE"
}

// GetHeaterPower reads the heater power draw in watts, with the same
// degrade-to-zero policy as GetTemperature.
func (d *Device) GetHeaterPower() float64 {
	return d.queryFloat(":HEATER:POWER?")
}

func (d *Device) queryFloat(cmd string) float64 {
	resp, err := d.ch.Query(cmd)
	if err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(resp), 64)
	if err != nil {
		return 0
	}
	return v
}

// AvailableStandards lists what every port can present.
func (d *Device) AvailableStandards() []Standard {
	return AvailableStandards()
}

// CoefficientSets returns a snapshot of the retrieved sets. A
// concurrent retrieval never tears the snapshot: the store is only
// ever replaced wholesale once a retrieval fully completes.
func (d *Device) CoefficientSets() []CoefficientSet {
	return d.store.snapshot()
}

// HasModifiedCoefficients reports whether any retrieved coefficient
// has been edited since retrieval.
func (d *Device) HasModifiedCoefficients() bool {
	return d.store.hasModified()
}

// Progress delivers the percentage stream of the current retrieval
// attempt, de-duplicated and non-decreasing. Read it after
// UpdateCoefficientSets; a later attempt gets fresh channels.
func (d *Device) Progress() <-chan int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.progress
}

// Done fires exactly once per retrieval attempt, whether it completed
// or aborted on the set-list check.
func (d *Device) Done() <-chan RetrievalResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.done
}

// UpdateCoefficientSets starts downloading every named coefficient
// set from the device in the background. The call returns
// immediately; observe Progress and Done for the outcome. While a
// retrieval is running further calls return ErrRetrievalRunning.
func (d *Device) UpdateCoefficientSets() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.retrieval != nil && !d.retrieval.finished() {
		return ErrRetrievalRunning
	}
	// fresh channels per attempt: unread events from an earlier
	// attempt stay on that attempt's channels and never leak into
	// the stream this attempt's consumer reads
	d.progress = make(chan int, progressBuffer)
	d.done = make(chan RetrievalResult, 1)
	d.retrieval = newRetrievalTask(d, d.progress, d.done)
	go d.retrieval.run()
	return nil
}
