package kernel_test

import (
	"testing"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurrency(t *testing.T) {
	t.Run("empty code falls back to USD", func(t *testing.T) {
		c, err := kernel.ParseCurrency("")

		require.NoError(t, err)
		assert.Equal(t, "USD", c.Code())
		assert.Equal(t, int32(2), c.Scale())
	})

	t.Run("lower case is accepted", func(t *testing.T) {
		c, err := kernel.ParseCurrency("eur")

		require.NoError(t, err)
		assert.Equal(t, "EUR", c.Code())
	})

	t.Run("currencies without minor units", func(t *testing.T) {
		assert.Equal(t, int32(0), kernel.MustCurrency("JPY").Scale())
	})

	t.Run("unknown code is invalid", func(t *testing.T) {
		_, err := kernel.ParseCurrency("XXQ")

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestCurrency_MinorUnits(t *testing.T) {
	usd := kernel.MustCurrency("USD")

	assert.Equal(t, int64(6930), usd.ToMinorUnits(decimal.RequireFromString("69.30")))
	assert.Equal(t, int64(1235), usd.ToMinorUnits(decimal.RequireFromString("12.345")))
	assert.Equal(t, int64(70), kernel.MustCurrency("JPY").ToMinorUnits(decimal.RequireFromString("69.5")))
	assert.True(t, decimal.RequireFromString("69.3").Equal(usd.FromMinorUnits(6930)))

	minor, err := usd.ParseMinorUnits(" 12.50 ")
	require.NoError(t, err)
	assert.Equal(t, int64(1250), minor)

	_, err = usd.ParseMinorUnits("twelve")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
