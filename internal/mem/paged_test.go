package mem_test

import (
	"testing"

	"github.com/kuroko-lang/krk/internal/mem"
	"github.com/stretchr/testify/require"
)

func Test_Paged_ints(t *testing.T) {
	var m mem.Paged[int]
	m.PageSize = 4

	val, err := m.Load(0)
	require.NoError(t, err, "unexpected load error")
	require.Equal(t, 0, val, "expected 0 @0")
	require.Equal(t, uint(0), m.Len(), "expected 0 initial length")

	require.NoError(t, m.Stor(0, 9), "must stor @0")
	val, err = m.Load(0)
	require.NoError(t, err, "unexpected load error")
	require.Equal(t, 9, val, "expected 9 @0")

	require.NoError(t, m.Stor(0x9, 1, 2, 3, 4, 5, 6), "must stor @0x9")
	d := m.Dump()
	require.Equal(t, []uint{0x0, 0x8, 0xc}, d.Bases)
	require.Equal(t, [][]int{
		{9, 0, 0, 0},
		{0, 1, 2, 3},
		{4, 5, 6, 0},
	}, d.Pages)
}

func Test_Paged_strings(t *testing.T) {
	var m mem.Paged[string]
	m.PageSize = 2
	require.NoError(t, m.Stor(0, "a", "b", "c"))
	v, err := m.Load(2)
	require.NoError(t, err)
	require.Equal(t, "c", v)
	require.Equal(t, uint(4), m.Len())
}

func Test_Paged_limit(t *testing.T) {
	var m mem.Paged[int]
	m.Limit = 4
	err := m.Stor(3, 1, 2)
	require.Error(t, err)
	var lim mem.LimitError
	require.ErrorAs(t, err, &lim)
}

func Test_Paged_truncate(t *testing.T) {
	var m mem.Paged[int]
	m.PageSize = 4
	require.NoError(t, m.Stor(0, 1, 2, 3, 4, 5, 6))
	m.Truncate(3)
	require.Equal(t, uint(3), m.Len())
	v, _ := m.Load(2)
	require.Equal(t, 3, v)
}
