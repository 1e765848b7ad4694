// Package mem implements growable, sparsely-allocated paged storage.
//
// It generalizes the page-table scheme a FORTH-style interpreter would use
// for its flat address space to any element type, so that a Kuroko List can
// grow to a large size without ever needing a single contiguous reallocation
// of every element it holds.
package mem

import "fmt"

// LimitError indicates that a memory operation, like Load or Stor, exceeded
// a configured Limit.
type LimitError struct {
	Addr uint
	Op   string
}

func (lim LimitError) Error() string {
	return fmt.Sprintf("memory limit exceeded by %v @%v", lim.Op, lim.Addr)
}

// Paged implements paged storage of T, indexed by a uint address. Pages are
// allocated lazily and may not necessarily be the same size, but usually are
// in practice.
//
// The zero Paged is ready to use once PageSize is set (or left 0 to accept
// DefaultPageSize on first Stor).
type Paged[T any] struct {
	// PageSize specifies the length for newly allocated pages.
	PageSize uint

	// Limit specifies a limit, past which any store or load should result
	// in an error. Zero means unlimited.
	Limit uint

	bases []uint
	pages [][]T
}

// DefaultPageSize provides a default for Paged.PageSize.
const DefaultPageSize = 256

// Len returns an address one position higher than the last position in the
// last page allocated so far.
func (m *Paged[T]) Len() uint {
	if i := len(m.bases) - 1; i >= 0 {
		return m.bases[i] + uint(len(m.pages[i]))
	}
	return 0
}

// Load returns a single value from the given address.
// Unallocated pages read as the zero value of T.
func (m *Paged[T]) Load(addr uint) (T, error) {
	var zero T
	if err := m.checkLimit(addr, "load"); err != nil {
		return zero, err
	}
	if m.PageSize == 0 || len(m.pages) == 0 {
		return zero, nil
	}
	pageID := m.findPage(addr)
	base := m.bases[pageID]
	page := m.pages[pageID]
	if i := int(addr) - int(base); 0 <= i && i < len(page) {
		return page[i], nil
	}
	return zero, nil
}

// Stor stores values starting at addr, allocating pages as necessary.
// Returns an error if Limit would be exceeded; no partial store is done.
func (m *Paged[T]) Stor(addr uint, values ...T) error {
	if len(values) == 0 {
		return nil
	}
	end := addr + uint(len(values))
	if err := m.checkLimit(end, "stor"); err != nil {
		return err
	}
	if m.PageSize == 0 {
		m.PageSize = DefaultPageSize
	}
	for pageID := m.findPage(addr); addr < end; pageID++ {
		base, size, page := m.allocPage(pageID, addr)
		if skip := addr - base; skip > 0 {
			if skip >= size {
				continue
			}
			base += skip
			page = page[skip:]
		}
		n := copy(page, values)
		values = values[n:]
		addr += uint(n)
	}
	return nil
}

// Truncate discards any page whose content lies entirely at or past addr,
// trimming the final partially-covered page. Used to implement List pop/del
// shrinking without disturbing lower pages.
func (m *Paged[T]) Truncate(addr uint) {
	pageID := m.findPage(addr)
	if pageID >= len(m.bases) {
		return
	}
	base := m.bases[pageID]
	if addr <= base {
		m.bases = m.bases[:pageID]
		m.pages = m.pages[:pageID]
		return
	}
	if i := int(addr) - int(base); i < len(m.pages[pageID]) {
		m.pages[pageID] = m.pages[pageID][:i]
	}
	m.bases = m.bases[:pageID+1]
	m.pages = m.pages[:pageID+1]
}

func (m *Paged[T]) checkLimit(addr uint, op string) error {
	if maxSize := m.Limit; maxSize != 0 && addr > maxSize {
		return LimitError{addr, op}
	}
	return nil
}

func (m *Paged[T]) findPage(addr uint) int {
	i, j := 0, len(m.bases)
	for i < j {
		h := int(uint(i+j)>>1) + 1
		if h < len(m.bases) && m.bases[h] <= addr {
			i = h
		} else {
			j = h - 1
		}
	}
	return i
}

func (m *Paged[T]) allocPage(pageID int, addr uint) (base, size uint, page []T) {
	if pageID == len(m.bases) {
		base = addr / m.PageSize * m.PageSize
		size = m.PageSize
		if i := len(m.bases) - 1; i >= 0 {
			lastEnd := m.bases[i] + uint(len(m.pages[i]))
			if base < lastEnd {
				size -= lastEnd - base
				base = lastEnd
			}
		}
		page = make([]T, size)
		m.bases = append(m.bases, base)
		m.pages = append(m.pages, page)
		return base, size, page
	}

	base = m.bases[pageID]
	if addr < base {
		size = m.PageSize
		nextBase := base
		base = addr / m.PageSize * m.PageSize
		if gapSize := nextBase - base; size > gapSize {
			size = gapSize
		}
		page = make([]T, size)
		m.bases = append(m.bases, 0)
		m.pages = append(m.pages, nil)
		copy(m.bases[pageID+1:], m.bases[pageID:])
		copy(m.pages[pageID+1:], m.pages[pageID:])
		m.bases[pageID] = base
		m.pages[pageID] = page
		return base, size, page
	}

	return base, uint(len(m.pages[pageID])), m.pages[pageID]
}

// Dump exposes internal layout for tests.
type Dump[T any] struct {
	Bases []uint
	Pages [][]T
}

// Dump returns a snapshot of the page layout, for testing.
func (m *Paged[T]) Dump() Dump[T] {
	return Dump[T]{Bases: m.bases, Pages: m.pages}
}
