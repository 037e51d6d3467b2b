package vtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYmdHmsUsecRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		ymd      uint32
		hms      uint32
		usec     uint32
		expected string
	}{
		{
			name:     "midday with microseconds",
			ymd:      20220610,
			hms:      162905,
			usec:     123456,
			expected: "20220610:162905.123456",
		},
		{
			name:     "midnight",
			ymd:      20220707,
			hms:      0,
			usec:     0,
			expected: "20220707:000000.000000",
		},
		{
			name:     "end of day",
			ymd:      20991231,
			hms:      235959,
			usec:     999999,
			expected: "20991231:235959.999999",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts, err := YmdHmsUsec(tc.ymd, tc.hms, tc.usec)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, FormatYmdHmsUsec(ts))
			assert.Equal(t, tc.expected, ts.String())
		})
	}
}

func TestYmdMidnight(t *testing.T) {
	ts, err := YmdMidnight(20220707)
	require.NoError(t, err)
	assert.Equal(t, "20220707:000000.000000", ts.String())
}

func TestInvalidDateRejected(t *testing.T) {
	_, err := YmdHms(20221399, 120000)
	assert.Error(t, err)

	_, err = YmdHms(20221215, 250000)
	assert.Error(t, err)
}

func TestOrderingAndArithmetic(t *testing.T) {
	a, err := YmdHms(20220610, 120000)
	require.NoError(t, err)
	b, err := YmdHms(20220610, 120001)
	require.NoError(t, err)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, Duration(0), a.Sub(a))
	assert.Equal(t, a, b.Add(-Duration(1_000_000_000)))
}

func TestEpochIsUnixZero(t *testing.T) {
	assert.Equal(t, "19700101:000000.000000", Epoch.String())
}
