package caldevice

import "testing"

func TestStandardRoundTrip(t *testing.T) {
	for _, s := range []Standard{Open, Short, Load, Through, None} {
		if got := ParseStandard(s.String()); got != s {
			t.Errorf("round trip %v: got %v", s, got)
		}
	}
}

func TestParseStandardUnknown(t *testing.T) {
	for _, text := range []string{"", "open", "THRU", "garbage", "OPEN ", "42"} {
		if got := ParseStandard(text); got != None {
			t.Errorf("ParseStandard(%q) = %v, want None", text, got)
		}
	}
}

func TestAvailableStandards(t *testing.T) {
	want := []Standard{None, Open, Short, Load, Through}
	got := AvailableStandards()
	if len(got) != len(want) {
		t.Fatalf("got %d standards, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("standard %d: got %v, want %v", i, got[i], want[i])
		}
	}
}
