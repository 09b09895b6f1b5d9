package vm

import (
	"bytes"
	"testing"
)

func TestInternStringReturnsSamePointerForEqualContent(t *testing.T) {
	g := newGC()
	a := g.internString("hello")
	b := g.internString("hello")
	if a != b {
		t.Errorf("expected interned strings with equal content to share a pointer")
	}
	c := g.internString("world")
	if a == c {
		t.Errorf("distinct content should not share a pointer")
	}
}

func TestGCStatsAccumulateAcrossCycles(t *testing.T) {
	g := newGC()
	g.internString("a")
	g.Collect()
	firstCycles := g.Stats.Cycles
	g.internString("b")
	g.Collect()
	if g.Stats.Cycles != firstCycles+1 {
		t.Errorf("got %d cycles, want %d", g.Stats.Cycles, firstCycles+1)
	}
}

func TestStressGCCollectsUnreachableStrings(t *testing.T) {
	var out bytes.Buffer
	machine := New(&out)
	machine.SetStressGC(true)

	errs := machine.Run(`
		var i = 0;
		while (i < 50) {
			var s = "garbage" + "value";
			i = i + 1;
		}
	`, 0)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if machine.gc.Stats.Cycles == 0 {
		t.Errorf("expected stress GC to trigger at least one collection cycle")
	}
}

func TestConfigureOverridesGrowFactorAndThreshold(t *testing.T) {
	var out bytes.Buffer
	machine := New(&out)
	machine.Configure(4, 2048)
	if machine.gc.growFactor != 4 {
		t.Errorf("got growFactor=%d, want 4", machine.gc.growFactor)
	}
	if machine.gc.initialThreshold != 2048 {
		t.Errorf("got initialThreshold=%d, want 2048", machine.gc.initialThreshold)
	}
}

func TestGCStatsStringIsHumanReadable(t *testing.T) {
	s := GCStats{Cycles: 1234, Freed: 5, LiveAfter: 10, BytesLive: 2048}.String()
	if s == "" {
		t.Fatalf("expected a non-empty summary")
	}
	if !bytes.Contains([]byte(s), []byte("1,234")) {
		t.Errorf("expected humanize.Comma formatting in %q", s)
	}
}

func TestCollectReclaimsUnreachableInstances(t *testing.T) {
	var out bytes.Buffer
	machine := New(&out)
	errs := machine.Run(`
		class C {}
		var c = C();
		c = nil;
	`, 0)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	before := machine.gc.count
	machine.gc.Collect()
	if machine.gc.count >= before {
		t.Errorf("expected Collect to free the unreachable instance: before=%d after=%d", before, machine.gc.count)
	}
}
