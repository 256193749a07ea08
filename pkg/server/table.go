package server

// connTable is a fixed-capacity slot table. A nil slot is free.
type connTable struct {
	slots []*Conn
	n     int
}

func newConnTable(capacity int) *connTable {
	return &connTable{
		slots: make([]*Conn, capacity),
	}
}

// insert puts c into the first free slot. It reports false if the table is full.
func (t *connTable) insert(c *Conn) (slot int, ok bool) {
	for i := range t.slots {
		if t.slots[i] != nil {
			continue
		}
		t.slots[i] = c
		t.n++
		return i, true
	}
	return -1, false
}

func (t *connTable) remove(slot int) (c *Conn) {
	c = t.slots[slot]
	if c != nil {
		t.slots[slot] = nil
		t.n--
	}
	return
}

func (t *connTable) len() int {
	return t.n
}

func (t *connTable) full() bool {
	return t.n >= len(t.slots)
}
