package kernel_test

import (
	"math"
	"testing"

	"shipping/internal/core/domain/model/kernel"
	"shipping/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParcel(t *testing.T) {
	t.Run("should compute volume and volumetric weight", func(t *testing.T) {
		p, err := kernel.NewParcel(30, 25, 15, 1)
		require.NoError(t, err)
		require.NoError(t, p.Validate())

		assert.InDelta(t, 11250.0, p.VolumeCm3(), 1e-9)
		vol, err := p.VolumetricWeightKg(5000)
		require.NoError(t, err)
		assert.InDelta(t, 2.25, vol, 1e-9)
	})

	tests := map[string][4]float64{
		"zero length":     {0, 1, 1, 1},
		"negative width":  {1, -1, 1, 1},
		"NaN height":      {1, 1, math.NaN(), 1},
		"infinite weight": {1, 1, 1, math.Inf(1)},
	}
	for name, dims := range tests {
		t.Run("should reject "+name, func(t *testing.T) {
			_, err := kernel.NewParcel(dims[0], dims[1], dims[2], dims[3])

			require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		})
	}

	t.Run("should reject a non positive divisor", func(t *testing.T) {
		p, err := kernel.NewParcel(1, 1, 1, 1)
		require.NoError(t, err)

		_, err = p.VolumetricWeightKg(0)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		var p kernel.Parcel

		require.ErrorIs(t, p.Validate(), kernel.ErrParcelIsNotConstructed)
	})
}
