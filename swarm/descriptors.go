package swarm

import "time"

// descriptorReuseAge is how long an unused descriptor slot must sit idle
// before AddSwarm will reuse it instead of appending a fresh one (§4.4
// step 4).
const descriptorReuseAge = 120 * time.Second

// descriptorTable is the integer-descriptor vector (§9 design notes):
// it grows by doubling capacity rather than by one slot at a time, and
// hands out aged-out free slots before growing.
type descriptorTable struct {
	slots []*Record // nil entry means free
	freed []time.Time
}

func newDescriptorTable() *descriptorTable {
	return &descriptorTable{}
}

// alloc returns a descriptor for rec, reusing a slot freed at least
// descriptorReuseAge ago if one exists.
func (d *descriptorTable) alloc(rec *Record, now time.Time) int32 {
	for i, s := range d.slots {
		if s == nil && now.Sub(d.freed[i]) >= descriptorReuseAge {
			d.slots[i] = rec
			return int32(i)
		}
	}
	if len(d.slots) == cap(d.slots) {
		d.grow()
	}
	d.slots = append(d.slots, rec)
	d.freed = append(d.freed, time.Time{})
	return int32(len(d.slots) - 1)
}

func (d *descriptorTable) grow() {
	newCap := cap(d.slots) * 2
	if newCap == 0 {
		newCap = 8
	}
	grown := make([]*Record, len(d.slots), newCap)
	copy(grown, d.slots)
	d.slots = grown
}

func (d *descriptorTable) free(desc int32, now time.Time) {
	if desc < 0 || int(desc) >= len(d.slots) {
		return
	}
	d.slots[desc] = nil
	d.freed[desc] = now
}

func (d *descriptorTable) get(desc int32) *Record {
	if desc < 0 || int(desc) >= len(d.slots) {
		return nil
	}
	return d.slots[desc]
}
