package adc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mqsense/pkg/config"
)

func TestMock_ReadRaw(t *testing.T) {
	m := NewMock(&config.MockConfig{
		Codes: map[int]int{0: 511, 3: 300},
	}, 1023)
	require.NoError(t, m.Connect())

	got, err := m.ReadRaw(0)
	require.NoError(t, err)
	assert.Equal(t, 511, got)

	got, err = m.ReadRaw(3)
	require.NoError(t, err)
	assert.Equal(t, 300, got)

	// Unconfigured pins idle at mid scale.
	got, err = m.ReadRaw(9)
	require.NoError(t, err)
	assert.Equal(t, 511, got)
}

func TestMock_NoiseStaysInRange(t *testing.T) {
	m := NewMock(&config.MockConfig{
		Codes: map[int]int{0: 1020},
		Noise: 16,
	}, 1023)
	require.NoError(t, m.Connect())

	for i := 0; i < 100; i++ {
		got, err := m.ReadRaw(0)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, 0)
		assert.LessOrEqual(t, got, 1023)
	}
}

func TestMock_GlitchEvery(t *testing.T) {
	m := NewMock(&config.MockConfig{
		Codes:       map[int]int{0: 500},
		GlitchEvery: 3,
	}, 1023)
	require.NoError(t, m.Connect())

	zeros := 0
	for i := 0; i < 9; i++ {
		got, err := m.ReadRaw(0)
		require.NoError(t, err)
		if got == 0 {
			zeros++
		}
	}
	assert.Equal(t, 3, zeros, "every third read rails to zero")
}

func TestMock_SetCode(t *testing.T) {
	m := NewMock(&config.MockConfig{Codes: map[int]int{0: 500}}, 1023)
	require.NoError(t, m.Connect())

	m.SetCode(0, 250)
	got, err := m.ReadRaw(0)
	require.NoError(t, err)
	assert.Equal(t, 250, got)
}

func TestMock_ConnectionLifecycle(t *testing.T) {
	m := NewMock(nil, 1023)

	_, err := m.ReadRaw(0)
	assert.Error(t, err, "reads before Connect fail")

	require.NoError(t, m.Connect())
	assert.True(t, m.IsConnected())
	assert.Error(t, m.Connect(), "double connect is an error")

	temp, hum, err := m.ReadEnvironment()
	require.NoError(t, err)
	assert.Equal(t, 24.0, temp)
	assert.Equal(t, 40.0, hum)

	require.NoError(t, m.Close())
	assert.False(t, m.IsConnected())
}
