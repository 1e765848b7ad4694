package krk

// ObjSet is Kuroko's set: a Table whose values are all the sentinel None,
// per §3.2 ("embedded hash table (value = sentinel)").
type ObjSet struct {
	table Table
}

func newSet() *ObjSet { return &ObjSet{} }

func (s *ObjSet) typeName() string { return "set" }
func (s *ObjSet) truthy() bool     { return s.table.Len() != 0 }
func (s *ObjSet) length() int      { return s.table.Len() }

func (s *ObjSet) Add(v Value)          { s.table.Set(v, None) }
func (s *ObjSet) Contains(v Value) bool { _, ok := s.table.Get(v); return ok }
func (s *ObjSet) Remove(v Value) bool  { return s.table.Delete(v) }

func (s *ObjSet) repr() string {
	if s.table.Len() == 0 {
		return "set()"
	}
	out := "{"
	first := true
	s.table.Each(func(k, _ Value) {
		if !first {
			out += ", "
		}
		first = false
		out += Repr(k)
	})
	return out + "}"
}

func (s *ObjSet) walkRefs(mark func(Value)) {
	s.table.Each(func(k, _ Value) { mark(k) })
}

func (s *ObjSet) equalTo(other objData) bool {
	o, ok := other.(*ObjSet)
	if !ok || o.table.Len() != s.table.Len() {
		return false
	}
	equal := true
	s.table.Each(func(k, _ Value) {
		if !o.Contains(k) {
			equal = false
		}
	})
	return equal
}
