package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, time.June, d.Month())
	assert.Equal(t, 1, d.Day())

	_, err = ParseDate("01/06/2024")
	assert.Error(t, err)
}

func TestStartOfDay(t *testing.T) {
	at := time.Date(2024, 6, 12, 14, 35, 9, 123, time.Local)
	midnight := StartOfDay(at)
	assert.Equal(t, time.Date(2024, 6, 12, 0, 0, 0, 0, time.Local), midnight)
}

func TestGenerateRateLimitKey(t *testing.T) {
	assert.Equal(t, "rl:10.0.0.1:/auth/login", GenerateRateLimitKey("10.0.0.1", "/auth/login"))
}

func TestParseUint(t *testing.T) {
	assert.Equal(t, uint(42), ParseUint("42"))
	assert.Equal(t, uint(0), ParseUint("not-a-number"))
}
