//go:build tinygo

package main

import "machine"

const (
	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 10   // Match the classic 10-bit converter (0-1023)

	// Serial configuration. The protocol is strictly request/response:
	// "R<n>\n" -> one decimal ADC code, "E\n" -> "temperature,humidity".
	// Replies are short (<16 bytes), so 115200 baud leaves ample headroom
	// even at the fastest sampling cadence the host uses.
	UART_BAUD_RATE = 115200
)

// Analog taps for the MQ sensor board, indexed by the pin number the host
// sends: 0=MQ-2, 1=MQ-7, 2=MQ-9, 3=MQ-135, 4=MQ-8.
var ADC_PINS = [...]machine.Pin{
	machine.A0,
	machine.A1,
	machine.A2,
	machine.A3,
	machine.A4,
}

// DHT11 data pin for the environment query.
const PIN_DHT = machine.D2
