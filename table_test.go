package krk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableBasicGetSetDelete(t *testing.T) {
	var tbl Table
	require.Equal(t, 0, tbl.Len())

	inserted := tbl.Set(Int(1), Int(100))
	require.True(t, inserted)
	require.Equal(t, 1, tbl.Len())

	updated := tbl.Set(Int(1), Int(200))
	require.False(t, updated)
	require.Equal(t, 1, tbl.Len())

	v, ok := tbl.Get(Int(1))
	require.True(t, ok)
	require.Equal(t, int64(200), v.AsInt())

	_, ok = tbl.Get(Int(2))
	require.False(t, ok)

	require.True(t, tbl.Delete(Int(1)))
	require.False(t, tbl.Delete(Int(1)))
	require.Equal(t, 0, tbl.Len())
}

func TestTablePreservesInsertionOrder(t *testing.T) {
	var tbl Table
	order := []string{"c", "a", "z", "b"}
	for i, k := range order {
		tbl.Set(hashableString(k), Int(int64(i)))
	}
	require.Equal(t, order, keysAsStrings(t, &tbl))

	// Overwriting an existing key must not move it.
	tbl.Set(hashableString("a"), Int(99))
	require.Equal(t, order, keysAsStrings(t, &tbl))
}

func TestTableCapacityIsPowerOfTwoAndGrowsAtThreeQuarterLoad(t *testing.T) {
	var tbl Table
	// initialTableCap is 8; 3/4 load is 6 entries before it must grow.
	for i := 0; i < 6; i++ {
		tbl.Set(Int(int64(i)), None)
	}
	require.Equal(t, initialTableCap, tbl.cap)

	tbl.Set(Int(6), None)
	require.Equal(t, initialTableCap*2, tbl.cap)
	require.Equal(t, 0, tbl.cap&(tbl.cap-1), "capacity must stay a power of two")
}

func TestTableTombstoneIsReusedAndCompactedOnGrow(t *testing.T) {
	var tbl Table
	for i := 0; i < 5; i++ {
		tbl.Set(Int(int64(i)), Int(int64(i)))
	}
	require.True(t, tbl.Delete(Int(2)))
	require.Equal(t, 4, tbl.Len())

	// Growth must compact away tombstones: post-grow len(entries) should
	// equal the live count, not the historical high-water mark.
	for i := 5; i < 10; i++ {
		tbl.Set(Int(int64(i)), Int(int64(i)))
	}
	require.Equal(t, len(tbl.entries), tbl.used)

	_, ok := tbl.Get(Int(2))
	require.False(t, ok, "deleted key must stay absent across a resize")
}

func keysAsStrings(t *testing.T, tbl *Table) []string {
	t.Helper()
	var out []string
	tbl.Each(func(k, _ Value) {
		out = append(out, Str(k))
	})
	return out
}
