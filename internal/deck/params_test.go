package deck

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParams_OrderAndOverride(t *testing.T) {
	t.Parallel()

	p := NewParams()
	p.Set("POST", "-1")
	p.Set("WTMASS", "0.00259")
	p.Set("AUTOSPC", "YES")
	p.Set("POST", "2")

	require.Equal(t, 3, p.Len())
	require.Equal(t, []string{"POST", "WTMASS", "AUTOSPC"}, p.Names(),
		"reassignment keeps the first-seen position")

	v, ok := p.Int("POST")
	require.True(t, ok)
	require.Equal(t, int64(2), v, "later statements win")

	w, ok := p.Real("WTMASS")
	require.True(t, ok)
	require.InDelta(t, 0.00259, w, 1e-12)

	raw, ok := p.Raw("AUTOSPC")
	require.True(t, ok)
	require.Equal(t, "YES", raw)

	_, ok = p.Int("AUTOSPC")
	require.False(t, ok, "non-numeric value does not parse as integer")
	_, ok = p.Int("MISSING")
	require.False(t, ok)
	_, ok = p.Real("MISSING")
	require.False(t, ok)
}
