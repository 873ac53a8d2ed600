//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"strconv"

	"tinygo.org/x/drivers/dht"
)

var (
	adcs [len(ADC_PINS)]machine.ADC
	uart = machine.UART0
	env  dht.DummyDevice

	// Serial buffer for reading command lines
	serialBuffer [16]byte
	serialPos    int
)

func main() {
	adcConfig := machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	}
	for i, pin := range ADC_PINS {
		pin.Configure(machine.PinConfig{Mode: machine.PinInput})
		adcs[i] = machine.ADC{Pin: pin}
		adcs[i].Configure(adcConfig)
	}

	env = dht.New(PIN_DHT, dht.DHT11)

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	for {
		processSerial()
	}
}

// processSerial accumulates command bytes and dispatches complete lines.
func processSerial() {
	for uart.Buffered() > 0 {
		b, err := uart.ReadByte()
		if err != nil {
			continue
		}

		if b == '\n' || b == '\r' {
			if serialPos > 0 {
				handleCommand(string(serialBuffer[:serialPos]))
				serialPos = 0
			}
			continue
		}

		if serialPos < len(serialBuffer) {
			serialBuffer[serialPos] = b
			serialPos++
		} else {
			// Overlong garbage, drop the line
			serialPos = 0
		}
	}
}

// handleCommand answers one host request with one reply line.
func handleCommand(cmd string) {
	switch {
	case len(cmd) >= 2 && cmd[0] == 'R':
		pin, err := strconv.Atoi(cmd[1:])
		if err != nil || pin < 0 || pin >= len(ADC_PINS) {
			writeLine("ERR")
			return
		}
		writeLine(strconv.Itoa(readCode(pin)))

	case cmd == "E":
		writeLine(readEnvironment())

	default:
		writeLine("ERR")
	}
}

// readCode performs one conversion on the given tap. The machine ADC always
// reports 16-bit left-justified values; shift down to the configured
// resolution so the host sees classic 10-bit codes.
func readCode(pin int) int {
	v := adcs[pin].Get()
	return int(v >> (16 - ADC_RESOLUTION))
}

// readEnvironment reads the DHT11 and formats "temperature,humidity".
// Sensor errors reply "ERR", which the host treats as no data this cycle.
func readEnvironment() string {
	temperature, err := env.TemperatureFloat(dht.C)
	if err != nil {
		return "ERR"
	}
	humidity, err := env.HumidityFloat()
	if err != nil {
		return "ERR"
	}

	return strconv.FormatFloat(float64(temperature), 'f', 1, 32) +
		"," + strconv.FormatFloat(float64(humidity), 'f', 1, 32)
}

// writeLine sends one reply line.
func writeLine(s string) {
	uart.Write([]byte(s))
	uart.Write([]byte{'\n'})
}
