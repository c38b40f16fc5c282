package sensor

import (
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
)

var channelPins = []ads1x15.Channel{
	ads1x15.Channel0,
	ads1x15.Channel1,
	ads1x15.Channel2,
	ads1x15.Channel3,
}

// ADS1115Source reads the CO2 and humidity transducers through an ADS1115
// ADC on the I2C bus.
type ADS1115Source struct {
	co2      ads1x15.PinADC
	humidity ads1x15.PinADC
	logger   *slog.Logger
}

func NewADS1115(bus i2c.Bus, co2Channel, humidityChannel int, logger *slog.Logger) (*ADS1115Source, error) {
	adc, err := ads1x15.NewADS1115(bus, &ads1x15.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("ads1115: %w", err)
	}

	co2Pin, err := adc.PinForChannel(channelPins[co2Channel], 3300*physic.MilliVolt, 1*physic.Hertz, ads1x15.SaveEnergy)
	if err != nil {
		return nil, fmt.Errorf("ads1115 co2 pin: %w", err)
	}
	humidityPin, err := adc.PinForChannel(channelPins[humidityChannel], 3300*physic.MilliVolt, 1*physic.Hertz, ads1x15.SaveEnergy)
	if err != nil {
		return nil, fmt.Errorf("ads1115 humidity pin: %w", err)
	}

	return &ADS1115Source{
		co2:      co2Pin,
		humidity: humidityPin,
		logger:   logger,
	}, nil
}

// Read returns the raw ADC count for the channel. A failed conversion is
// logged and reads as 0, which downstream treats like any other out-of-range
// value.
func (s *ADS1115Source) Read(ch Channel) int {
	pin := s.co2
	if ch == ChannelHumidity {
		pin = s.humidity
	}

	sample, err := pin.Read()
	if err != nil {
		s.logger.Warn("adc read failed", "channel", ch.String(), "error", err)
		return 0
	}
	return int(sample.Raw)
}

func (s *ADS1115Source) Close() error {
	if err := s.co2.Halt(); err != nil {
		return err
	}
	return s.humidity.Halt()
}
