package cycle

import (
	"fmt"
	"strconv"
)

// Observation is one cycle's complete derived record. It lives for the
// duration of the cycle that produced it and is then discarded; nothing is
// kept across cycles.
type Observation struct {
	CO2Raw      int
	HumidityRaw int
	Credits     float64
	Emissions   float64
	OffsetOK    bool
	// Timestamp is monotonic milliseconds since boot.
	Timestamp int64
}

// Path is the hierarchical store key for this observation.
func (o Observation) Path() string {
	return fmt.Sprintf("carbon_data/%d", o.Timestamp)
}

// DisplayLines is the panel layout: title, both raw readings, credits and
// the offset verdict.
func (o Observation) DisplayLines() []string {
	offset := "NO"
	if o.OffsetOK {
		offset = "YES"
	}
	return []string{
		"Carbon Credit",
		"CO2: " + strconv.Itoa(o.CO2Raw),
		"Humid: " + strconv.Itoa(o.HumidityRaw),
		"Credits: " + strconv.FormatFloat(o.Credits, 'f', 1, 64),
		"Offset: " + offset,
	}
}
