// Package metrics converts raw sensor counts into the derived carbon
// figures shown on the display and written to the store.
package metrics

// Scaling factors for the derived figures. The scaling is a placeholder
// linear model and is expected to be replaced once calibrated factors exist.
const (
	CreditFactor   = 0.5
	EmissionFactor = 0.2
)

// Derive maps the two raw ADC readings to carbon credits, emissions and the
// offset flag. Pure: no I/O, no state, raw readings are taken as-is without
// clamping.
func Derive(co2Raw, humidityRaw int) (credits, emissions float64, offsetOK bool) {
	credits = float64(co2Raw) * CreditFactor
	emissions = float64(humidityRaw) * EmissionFactor
	return credits, emissions, credits >= emissions
}
