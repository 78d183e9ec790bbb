package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeConversionError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *TypeConversionError
		expected string
	}{
		{
			name:     "with field",
			err:      NewTypeConversionError("int64", "string", "partner_count"),
			expected: `type conversion error for field "partner_count": expected int64, got string`,
		},
		{
			name:     "without field",
			err:      &TypeConversionError{Expected: "[]*db.Record", Actual: "nil"},
			expected: "type conversion error: expected []*db.Record, got nil",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAsNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  any
		want   float64
		wantOK bool
	}{
		{"float64", 0.95, 0.95, true},
		{"int64", int64(38000), 38000, true},
		{"int", 7, 7, true},
		{"nil", nil, 0, false},
		{"string", "8", 0, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := AsNumber(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestAsStringSlice(t *testing.T) {
	t.Parallel()

	got, ok := AsStringSlice([]any{"lakehouse", 3, "cloud_migration"})
	assert.True(t, ok)
	assert.Equal(t, []string{"lakehouse", "cloud_migration"}, got)

	got, ok = AsStringSlice([]string{"a"})
	assert.True(t, ok)
	assert.Equal(t, []string{"a"}, got)

	_, ok = AsStringSlice("a")
	assert.False(t, ok)
}

func TestMustInt64(t *testing.T) {
	t.Parallel()

	n, err := MustInt64(int64(5), "partner_count")
	assert.NoError(t, err)
	assert.Equal(t, int64(5), n)

	_, err = MustInt64(5.0, "partner_count")
	var tce *TypeConversionError
	require.ErrorAs(t, err, &tce)
	assert.Equal(t, "partner_count", tce.Field)
}
