package sensor

// Type identifies one of the sensor feeds the field device reports.
type Type string

const (
	TypePower       Type = "power"
	TypeTemperature Type = "temperature"
	TypePH          Type = "ph"
	TypeTDS         Type = "tds"
	TypePump        Type = "pump"
)

// Types lists every valid sensor type, in reporting order.
func Types() []Type {
	return []Type{TypePower, TypeTemperature, TypePH, TypeTDS, TypePump}
}

// ParseType validates a sensor type from a request path.
func ParseType(s string) (Type, bool) {
	switch Type(s) {
	case TypePower, TypeTemperature, TypePH, TypeTDS, TypePump:
		return Type(s), true
	}
	return "", false
}

// Reading is one sensor payload. Devices send loose JSON; numeric fields are
// normalized per type before storage.
type Reading map[string]any

// numericFields lists the fields zeroed when missing or non-finite.
var numericFields = map[Type][]string{
	TypePower:       {"voltage", "current", "power", "energy", "frequency", "power_factor"},
	TypeTemperature: {"temperature", "humidity", "heat_index"},
	TypePH:          {"ph"},
	TypeTDS:         {"tds", "water_temperature"},
}

// numericDefaults overrides the zero fallback for specific fields.
var numericDefaults = map[string]float64{
	"ph": 7.0,
}
