package adc

// Device is the raw analog acquisition surface: one integer ADC code per
// request for a given pin, plus the independently acquired environmental
// readings that ride along on the same link.
type Device interface {
	Connect() error
	Close() error
	// ReadRaw returns the current ADC code for the given analog pin.
	ReadRaw(pin int) (int, error)
	// ReadEnvironment returns ambient temperature (degrees Celsius) and
	// relative humidity (percent).
	ReadEnvironment() (temperature, humidity float64, err error)
	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
