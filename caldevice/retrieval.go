package caldevice

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/EhsanBagheri/LibreCAL/internal/touchstone"
)

// RetrievalResult describes the outcome of one coefficient retrieval
// attempt.
type RetrievalResult struct {
	// Sets is the number of coefficient sets now in the store.
	Sets int
	// Aborted is set when the device did not report the factory
	// set in its list response; the store is left untouched.
	Aborted bool
}

// frequencies on the wire are in GHz, the store keeps Hz
const frequencyScale = 1e9

// progressBuffer sizes an attempt's progress channel: at most 100
// distinct percentages can ever be emitted.
const progressBuffer = 128

// retrievalTask walks every named coefficient set on the device,
// every port and port pair, and builds a full replacement collection
// for the store. It owns the channel for one exchange at a time; the
// serialized channel keeps foreground queries from splitting an
// exchange, and the task tolerates them interleaving between points.
type retrievalTask struct {
	dev  *Device
	quit chan struct{}

	// this attempt's notification channels; the task is their only
	// sender, so events from different attempts never share a stream
	progress chan int
	done     chan RetrievalResult

	totalPoints int
	readPoints  int
	lastPercent int
}

func newRetrievalTask(d *Device, progress chan int, done chan RetrievalResult) *retrievalTask {
	return &retrievalTask{
		dev:      d,
		quit:     make(chan struct{}),
		progress: progress,
		done:     done,
	}
}

func (t *retrievalTask) finished() bool {
	select {
	case <-t.quit:
		return true
	default:
		return false
	}
}

func (t *retrievalTask) wait() { <-t.quit }

func (t *retrievalTask) run() {
	defer close(t.quit)

	d := t.dev
	list, err := d.ch.Query(":COEFF:LIST?")
	if err != nil || !strings.HasPrefix(list, "FACTORY") {
		t.complete(RetrievalResult{Aborted: true})
		return
	}
	names := strings.Split(strings.TrimSpace(list), ",")

	// First pass: total point count over all sets and standards,
	// the denominator for the progress percentage. A count that
	// fails to parse contributes nothing.
	for _, name := range names {
		for i := 1; i <= d.numPorts; i++ {
			t.totalPoints += t.pointCount(name, oneParam(i, Open))
			t.totalPoints += t.pointCount(name, oneParam(i, Short))
			t.totalPoints += t.pointCount(name, oneParam(i, Load))
			for j := i + 1; j <= d.numPorts; j++ {
				t.totalPoints += t.pointCount(name, throughParam(i, j))
			}
		}
	}

	sets := make([]CoefficientSet, 0, len(names))
	for _, name := range names {
		set := CoefficientSet{Name: name, Ports: d.numPorts}
		for i := 1; i <= d.numPorts; i++ {
			set.Opens = append(set.Opens, t.fetch(name, oneParam(i, Open), 1))
			set.Shorts = append(set.Shorts, t.fetch(name, oneParam(i, Short), 1))
			set.Loads = append(set.Loads, t.fetch(name, oneParam(i, Load), 1))
			for j := i + 1; j <= d.numPorts; j++ {
				set.Throughs = append(set.Throughs, t.fetch(name, throughParam(i, j), 2))
			}
		}
		sets = append(sets, set)
	}

	d.store.replace(sets)
	t.complete(RetrievalResult{Sets: len(sets)})
}

func oneParam(port int, s Standard) string {
	return fmt.Sprintf("P%d_%s", port, s)
}

func throughParam(port1, port2 int) string {
	return fmt.Sprintf("P%d%d_THROUGH", port1, port2)
}

func (t *retrievalTask) pointCount(set, param string) int {
	resp, err := t.dev.ch.Query(":COEFF:NUM? " + set + " " + param)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(resp))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// fetch downloads one coefficient point by point. ports declares the
// dimensionality of the curve (1 for Open/Short/Load, 2 for a
// through). Malformed numeric fields degrade to zero; a retrieval
// never aborts over a single bad sample.
func (t *retrievalTask) fetch(set, param string, ports int) Coefficient {
	points := t.pointCount(set, param)
	data := touchstone.New(ports)
	for i := 0; i < points; i++ {
		resp, _ := t.dev.ch.Query(fmt.Sprintf(":COEFF:GET? %s %s %d", set, param, i))
		fields := strings.Split(strings.TrimSpace(resp), ",")

		p := touchstone.Datapoint{Frequency: parseField(fields[0]) * frequencyScale}
		for j := 0; j < (len(fields)-1)/2; j++ {
			re := parseField(fields[1+j*2])
			im := parseField(fields[2+j*2])
			p.S = append(p.S, complex(re, im))
		}
		if len(p.S) == 4 {
			// the wire delivers S11 S21 S12 S22, the store
			// keeps touchstone order S11 S12 S21 S22
			p.S[1], p.S[2] = p.S[2], p.S[1]
		}
		data.AddDatapoint(p)
		t.advance()
	}
	return Coefficient{Data: data}
}

func parseField(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// advance recomputes the integer percentage after one ingested point
// and emits it only when it changed. Percentages are monotone within
// an attempt because readPoints only grows.
func (t *retrievalTask) advance() {
	t.readPoints++
	if t.totalPoints == 0 {
		return
	}
	percent := t.readPoints * 100 / t.totalPoints
	if percent == t.lastPercent {
		return
	}
	t.lastPercent = percent
	// a slow consumer misses intermediate percentages rather than
	// stalling the transfer
	select {
	case t.progress <- percent:
	default:
	}
}

// complete emits this attempt's single completion event. The channel
// is fresh per attempt and buffered, so the send never blocks and
// never collides with another attempt's event.
func (t *retrievalTask) complete(res RetrievalResult) {
	t.done <- res
}
