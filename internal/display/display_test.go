package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "¥100000.00", FormatCurrency(100000))
	assert.Equal(t, "¥1688.50", FormatCurrency(1688.5))
	assert.Equal(t, "¥-123.46", FormatCurrency(-123.456))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "12.00%", FormatPercent(12))
	assert.Equal(t, "-3.25%", FormatPercent(-3.254))
	assert.Equal(t, "0.00%", FormatPercent(0))
}
