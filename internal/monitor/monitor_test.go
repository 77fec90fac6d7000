package monitor

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStoreRoundTrip(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "telemetry.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	samples := []Sample{
		{Time: base, Temperature: 34.5, HeaterPower: 0.5, Stable: false},
		{Time: base.Add(time.Minute), Temperature: 35.0, HeaterPower: 0.25, Stable: true},
	}
	for _, s := range samples {
		if err := store.Insert(s); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	got, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("%d samples", len(got))
	}
	// newest first
	if !got[0].Stable || got[0].Temperature != 35.0 {
		t.Errorf("newest sample %+v", got[0])
	}
	if got[1].Stable || got[1].HeaterPower != 0.5 {
		t.Errorf("oldest sample %+v", got[1])
	}
	if !got[1].Time.Equal(base) {
		t.Errorf("timestamp %v, want %v", got[1].Time, base)
	}
}

func TestStoreRecentLimit(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "telemetry.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()

	for i := 0; i < 5; i++ {
		if err := store.Insert(Sample{Time: time.Now(), Temperature: float64(i)}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	got, err := store.Recent(3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("%d samples, want 3", len(got))
	}
	if got[0].Temperature != 4 {
		t.Errorf("newest temperature %v, want 4", got[0].Temperature)
	}
}

func TestCollectorObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	c.Observe(Sample{Temperature: 35.25, HeaterPower: 0.125, Stable: true})

	if got := testutil.ToFloat64(c.Temperature); got != 35.25 {
		t.Errorf("temperature gauge %v", got)
	}
	if got := testutil.ToFloat64(c.HeaterPower); got != 0.125 {
		t.Errorf("heater gauge %v", got)
	}
	if got := testutil.ToFloat64(c.Stable); got != 1 {
		t.Errorf("stable gauge %v", got)
	}
	if got := testutil.ToFloat64(c.Samples); got != 1 {
		t.Errorf("samples counter %v", got)
	}

	c.Observe(Sample{Temperature: 20, Stable: false})
	if got := testutil.ToFloat64(c.Stable); got != 0 {
		t.Errorf("stable gauge after unstable sample %v", got)
	}
	if got := testutil.ToFloat64(c.Samples); got != 2 {
		t.Errorf("samples counter %v", got)
	}
}

func TestCollectorDoubleRegisterFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewCollector(reg); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := NewCollector(reg); err == nil {
		t.Fatal("second register on the same registry succeeded")
	}
}
