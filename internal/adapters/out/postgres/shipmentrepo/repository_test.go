package shipmentrepo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"postgres unique violation", &pq.Error{Code: uniqueViolation}, true},
		{"wrapped postgres unique violation", fmt.Errorf("insert: %w", &pq.Error{Code: uniqueViolation}), true},
		{"postgres foreign key violation", &pq.Error{Code: "23503"}, false},
		{"mysql duplicate entry translated by gorm", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"other error", errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDuplicateKey(tt.err))
		})
	}
}
