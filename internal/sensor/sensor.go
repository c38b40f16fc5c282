// Package sensor is the boundary to the two analog transducers. The rest of
// the system treats readings as plain integers; a malfunctioning transducer
// shows up as an out-of-range value, never as an error.
package sensor

// Channel selects one of the two fixed measurement inputs.
type Channel int

const (
	ChannelCO2 Channel = iota
	ChannelHumidity
)

func (c Channel) String() string {
	switch c {
	case ChannelCO2:
		return "co2"
	case ChannelHumidity:
		return "humidity"
	default:
		return "unknown"
	}
}

// Source reads raw counts from the fixed channels.
type Source interface {
	Read(ch Channel) int
}
