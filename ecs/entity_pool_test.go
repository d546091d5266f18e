package ecs

import "testing"

func TestEntityPoolReservesSlotZero(t *testing.T) {
	p := newEntityPool()

	id := p.create()
	if id.Index() != 1 {
		t.Errorf("expected first index 1, got %d", id.Index())
	}
	if p.isLive(0) {
		t.Error("zero id must never be live")
	}
}

func TestEntityPoolRetireAndRecycle(t *testing.T) {
	p := newEntityPool()
	a := p.create()
	b := p.create()

	if !p.retire(a) {
		t.Fatal("expected retire of a live id to succeed")
	}
	if p.retire(a) {
		t.Error("expected second retire to fail")
	}
	if p.count() != 1 {
		t.Errorf("expected 1 live entity, got %d", p.count())
	}

	// retired but not recycled: the slot is not reused yet
	c := p.create()
	if c.Index() == a.Index() {
		t.Error("retired slot reused before recycle")
	}

	p.recycle(a)
	d := p.create()
	if d.Index() != a.Index() || d.Generation() != a.Generation()+1 {
		t.Errorf("expected slot %d generation %d, got %d/%d", a.Index(), a.Generation()+1, d.Index(), d.Generation())
	}
	if p.isLive(a) {
		t.Error("stale id reported live")
	}

	var live []EntityId
	p.each(func(id EntityId) bool {
		live = append(live, id)
		return true
	})
	if len(live) != 3 || live[0] != d || live[1] != b || live[2] != c {
		t.Errorf("unexpected live set %v", live)
	}
}

func TestEntityPoolRecycleIgnoresLiveIds(t *testing.T) {
	p := newEntityPool()
	a := p.create()

	p.recycle(a)
	if !p.isLive(a) {
		t.Error("recycle must not free a live id")
	}
}
