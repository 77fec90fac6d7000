package caldevice

// Standard identifies what a calibration port electrically presents.
type Standard int

const (
	Open Standard = iota
	Short
	Load
	Through
	None
)

var standardNames = map[Standard]string{
	Open:    "OPEN",
	Short:   "SHORT",
	Load:    "LOAD",
	Through: "THROUGH",
	None:    "NONE",
}

var standardValues = map[string]Standard{
	"OPEN":    Open,
	"SHORT":   Short,
	"LOAD":    Load,
	"THROUGH": Through,
	"NONE":    None,
}

func (s Standard) String() string {
	if name, ok := standardNames[s]; ok {
		return name
	}
	return "NONE"
}

// ParseStandard decodes a device-side standard name. Anything the
// device did not recognizably send maps to None; the firmware uses
// the same sentinel, so the two ends never disagree.
func ParseStandard(s string) Standard {
	if v, ok := standardValues[s]; ok {
		return v
	}
	return None
}

// AvailableStandards lists the standards every LibreCAL port can
// present. This is a fixed device capability, not a query.
func AvailableStandards() []Standard {
	return []Standard{None, Open, Short, Load, Through}
}
