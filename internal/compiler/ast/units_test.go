package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversionRoundTrip(t *testing.T) {
	for from, row := range conversionFactors {
		for to := range row {
			there, ok := ConversionFactor(from, to)
			require.True(t, ok, "%s -> %s", from, to)
			back, ok := ConversionFactor(to, from)
			require.True(t, ok, "%s -> %s", to, from)

			x := 12.345
			assert.InDelta(t, x, x*there*back, 1e-9, "%s <-> %s", from, to)
		}
	}
}

func TestConversionTableIsComplete(t *testing.T) {
	for unit, group := range unitGroups {
		for other, otherGroup := range unitGroups {
			_, ok := ConversionFactor(unit, other)
			assert.Equal(t, group == otherGroup, ok, "%s -> %s", unit, other)
		}
	}
}

func TestConversionFactors(t *testing.T) {
	tests := []struct {
		from, to string
		want     float64
	}{
		{"in", "px", 96},
		{"in", "cm", 2.54},
		{"pc", "pt", 12},
		{"mm", "cm", 0.1},
		{"turn", "deg", 360},
		{"grad", "deg", 0.9},
		{"s", "ms", 1000},
		{"kHz", "Hz", 1000},
		{"dppx", "dpi", 96},
	}
	for _, tt := range tests {
		f, ok := ConversionFactor(tt.from, tt.to)
		require.True(t, ok)
		assert.InDelta(t, tt.want, f, 1e-12, "%s -> %s", tt.from, tt.to)
	}

	_, ok := ConversionFactor("px", "s")
	assert.False(t, ok)
	_, ok = ConversionFactor("em", "px")
	assert.False(t, ok)
}

func TestNumberNormalize(t *testing.T) {
	t.Run("cancels equal units", func(t *testing.T) {
		n := &Number{Value: 10, Numerators: []string{"px", "em"}, Denominators: []string{"px"}}
		n.Normalize("")
		assert.Equal(t, "em", n.Unit())
		assert.Equal(t, 10.0, n.Value)
	})

	t.Run("converts within a group", func(t *testing.T) {
		n := &Number{Value: 1, Numerators: []string{"in"}, Denominators: []string{"px"}}
		n.Normalize("")
		assert.True(t, n.IsUnitless())
		assert.InDelta(t, 96, n.Value, 1e-9)
	})

	t.Run("leaves other groups alone", func(t *testing.T) {
		n := &Number{Value: 2, Numerators: []string{"px"}, Denominators: []string{"s"}}
		n.Normalize("")
		assert.Equal(t, "px/s", n.Unit())
		assert.Equal(t, 2.0, n.Value)
	})

	t.Run("converts to preferred unit", func(t *testing.T) {
		n := NewNumber(SourceLocation{}, 1, "in")
		n.Normalize("px")
		assert.Equal(t, "px", n.Unit())
		assert.InDelta(t, 96, n.Value, 1e-9)
	})
}

func TestNumberEquivalent(t *testing.T) {
	loc := SourceLocation{}

	eq, err := NewNumber(loc, 2.54, "cm").Equivalent(NewNumber(loc, 1, "in"))
	require.NoError(t, err)
	assert.True(t, eq)

	eq, err = NewNumber(loc, 1, "px").Equivalent(NewNumber(loc, 1, ""))
	require.NoError(t, err)
	assert.False(t, eq)

	eq, err = NewNumber(loc, 1, "em").Equivalent(NewNumber(loc, 1, "rem"))
	require.NoError(t, err)
	assert.False(t, eq)

	_, err = NewNumber(loc, 1, "s").Equivalent(NewNumber(loc, 1, "Hz"))
	var unitErr *UnitError
	require.ErrorAs(t, err, &unitErr)
	assert.Contains(t, err.Error(), "Incompatible units")
}

func TestNewNumberParsesCompoundUnits(t *testing.T) {
	n := NewNumber(SourceLocation{}, 3, "px*em/s")
	assert.Equal(t, []string{"px", "em"}, n.Numerators)
	assert.Equal(t, []string{"s"}, n.Denominators)
	assert.Equal(t, "px*em/s", n.Unit())
}

func TestFormatNumber(t *testing.T) {
	f := Format{Precision: 5}
	assert.Equal(t, "3px", FormatNumber(NewNumber(SourceLocation{}, 3, "px"), f))
	assert.Equal(t, "0.33333", FormatNumber(NewNumber(SourceLocation{}, 1.0/3, ""), f))
	assert.Equal(t, ".5em", FormatNumber(NewNumber(SourceLocation{}, 0.5, "em"), Format{Compressed: true}))
	assert.Equal(t, "0", FormatNumber(NewNumber(SourceLocation{}, -0.000001, ""), f))
	assert.Equal(t, "-1.5", FormatNumber(NewNumber(SourceLocation{}, -1.5, ""), f))
}
