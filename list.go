package krk

import (
	"sort"
	"sync"

	"github.com/kuroko-lang/krk/internal/mem"
)

// ObjList is Kuroko's mutable list: an ordered value array backed by paged
// storage (internal/mem.Paged), protected by a reader/writer lock so that
// __repr__ and other builtin methods can hold the read lock across a whole
// render while concurrent mutation from another thread is excluded (§5
// "each list owns a reader-writer lock").
type ObjList struct {
	mu     sync.RWMutex
	items  mem.Paged[Value]
	count int
}

func newListFrom(values []Value) *ObjList {
	l := &ObjList{}
	if len(values) > 0 {
		_ = l.items.Stor(0, values...)
		l.count = len(values)
	}
	return l
}

func (l *ObjList) typeName() string { return "list" }
func (l *ObjList) truthy() bool     { l.mu.RLock(); defer l.mu.RUnlock(); return l.count != 0 }
func (l *ObjList) length() int      { l.mu.RLock(); defer l.mu.RUnlock(); return l.count }

func (l *ObjList) repr() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return reprSeq("[", l.snapshotLocked(), "]", false)
}

func (l *ObjList) walkRefs(mark func(Value)) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, v := range l.snapshotLocked() {
		mark(v)
	}
}

func (l *ObjList) snapshotLocked() []Value {
	out := make([]Value, l.count)
	for i := range out {
		v, _ := l.items.Load(uint(i))
		out[i] = v
	}
	return out
}

// Len returns the current element count.
func (l *ObjList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count
}

// Get returns the element at i, or None if out of range (callers that need
// IndexError do their own bounds check before calling Get).
func (l *ObjList) Get(i int) Value {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 || i >= l.count {
		return None
	}
	v, _ := l.items.Load(uint(i))
	return v
}

// Set overwrites the element at i. Caller must bounds-check.
func (l *ObjList) Set(i int, v Value) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.items.Stor(uint(i), v)
}

// Append adds v to the end of the list.
func (l *ObjList) Append(v Value) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.items.Stor(uint(l.count), v)
	l.count++
}

// Insert places v at index i, shifting subsequent elements up by one.
func (l *ObjList) Insert(i int, v Value) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 {
		i = 0
	}
	if i > l.count {
		i = l.count
	}
	for j := l.count; j > i; j-- {
		prev, _ := l.items.Load(uint(j - 1))
		_ = l.items.Stor(uint(j), prev)
	}
	_ = l.items.Stor(uint(i), v)
	l.count++
}

// Delete removes the element at index i, shifting subsequent elements down.
func (l *ObjList) Delete(i int) Value {
	l.mu.Lock()
	defer l.mu.Unlock()
	removed, _ := l.items.Load(uint(i))
	for j := i; j < l.count-1; j++ {
		next, _ := l.items.Load(uint(j + 1))
		_ = l.items.Stor(uint(j), next)
	}
	l.count--
	l.items.Truncate(uint(l.count))
	return removed
}

// Pop removes and returns the last element.
func (l *ObjList) Pop() Value {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, _ := l.items.Load(uint(l.count - 1))
	l.count--
	l.items.Truncate(uint(l.count))
	return v
}

// Extend appends every element of values.
func (l *ObjList) Extend(values []Value) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.items.Stor(uint(l.count), values...)
	l.count += len(values)
}

// Sort sorts the list in place using less as the comparator.
func (l *ObjList) Sort(less func(a, b Value) bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	buf := l.snapshotLocked()
	sort.SliceStable(buf, func(i, j int) bool { return less(buf[i], buf[j]) })
	_ = l.items.Stor(0, buf...)
}

func (l *ObjList) equalTo(other objData) bool {
	o, ok := other.(*ObjList)
	if !ok {
		return false
	}
	a, b := l.snapshotLocked(), o.snapshotLocked()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
