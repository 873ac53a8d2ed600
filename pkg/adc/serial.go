package adc

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the standard baud rate for the sensor bridge MCU.
	DefaultBaudRate = 115200
)

// Serial talks to the sensor bridge MCU over a serial port. The protocol is
// line oriented: "R<pin>\n" is answered with a single decimal ADC code,
// "E\n" with "temperature,humidity".
type Serial struct {
	port      string
	baudRate  int
	fullScale int

	conn      serial.Port
	reader    *bufio.Reader
	mu        sync.Mutex
	connected bool
}

// NewSerial creates a new Serial device for the given port. fullScale is the
// ADC's maximum code, used to validate replies.
func NewSerial(port string, baudRate, fullScale int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}

	return &Serial{
		port:      port,
		baudRate:  baudRate,
		fullScale: fullScale,
	}
}

// Ports returns the names of available serial ports.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}

// Connect opens the serial port.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	mode := &serial.Mode{
		BaudRate: d.baudRate,
	}

	port, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.reader = bufio.NewReader(port)
	d.connected = true

	return nil
}

// Close closes the serial port.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.connected = false
	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			return fmt.Errorf("failed to close serial port: %w", err)
		}
		d.conn = nil
		d.reader = nil
	}

	return nil
}

// IsConnected returns whether the port is currently open.
func (d *Serial) IsConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connected
}

// ReadRaw requests one ADC conversion for the given pin.
func (d *Serial) ReadRaw(pin int) (int, error) {
	line, err := d.roundTrip(fmt.Sprintf("R%d\n", pin))
	if err != nil {
		return 0, err
	}

	return parseCode(line, d.fullScale)
}

// ReadEnvironment requests the bridge's temperature/humidity reading.
func (d *Serial) ReadEnvironment() (float64, float64, error) {
	line, err := d.roundTrip("E\n")
	if err != nil {
		return 0, 0, err
	}

	return parseEnvironment(line)
}

// roundTrip sends one command line and reads one reply line.
func (d *Serial) roundTrip(cmd string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return "", fmt.Errorf("not connected")
	}

	if _, err := d.conn.Write([]byte(cmd)); err != nil {
		return "", fmt.Errorf("failed to send command %q: %w", strings.TrimSpace(cmd), err)
	}

	line, err := d.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read reply for %q: %w", strings.TrimSpace(cmd), err)
	}

	return strings.TrimSpace(line), nil
}

// parseCode parses an ADC code reply and validates its range.
func parseCode(line string, fullScale int) (int, error) {
	code, err := strconv.Atoi(line)
	if err != nil {
		return 0, fmt.Errorf("invalid ADC reply %q: %w", line, err)
	}
	if code < 0 || code > fullScale {
		return 0, fmt.Errorf("ADC code out of range: %d (max %d)", code, fullScale)
	}
	return code, nil
}

// parseEnvironment parses a "temperature,humidity" reply.
func parseEnvironment(line string) (float64, float64, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid environment reply %q: expected 2 comma-separated values", line)
	}

	temperature, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid temperature: %w", err)
	}

	humidity, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid humidity: %w", err)
	}

	return temperature, humidity, nil
}
