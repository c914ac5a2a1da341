package topology

import (
	"testing"

	"iotsim/internal/config"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.FixedNodes = 4
	cfg.MobileNodes = 3
	cfg.MaliciousNodes = 2
	cfg.InterferingNodes = 1
	return cfg
}

func TestBuildCountsAndIDs(t *testing.T) {
	nodes, err := Build(testConfig())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(nodes) != 10 {
		t.Fatalf("Build() produced %d nodes, want 10", len(nodes))
	}

	seen := make(map[int]bool)
	for i, n := range nodes {
		if n.ID != i {
			t.Errorf("node %d has ID %d, want ids assigned in order", i, n.ID)
		}
		if seen[n.ID] {
			t.Errorf("duplicate node id %d", n.ID)
		}
		seen[n.ID] = true
	}

	counts := map[Category]int{}
	for _, n := range nodes {
		counts[n.Category]++
	}
	want := map[Category]int{
		CategoryFixed:       4,
		CategoryMobile:      3,
		CategoryMalicious:   2,
		CategoryInterfering: 1,
	}
	for cat, n := range want {
		if counts[cat] != n {
			t.Errorf("category %s count = %d, want %d", cat, counts[cat], n)
		}
	}
}

func TestBuildEnergyCapability(t *testing.T) {
	nodes, err := Build(testConfig())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	for _, n := range nodes {
		hasEnergy := n.Energy != nil
		wantEnergy := n.Category != CategoryInterfering
		if hasEnergy != wantEnergy {
			t.Errorf("node %d (%s): energy capability = %v, want %v", n.ID, n.Category, hasEnergy, wantEnergy)
		}
		if hasEnergy && n.Energy.Remaining() != initialEnergyJ {
			t.Errorf("node %d initial energy = %v, want %v", n.ID, n.Energy.Remaining(), initialEnergyJ)
		}
	}
}

func TestBuildAddresses(t *testing.T) {
	nodes, err := Build(testConfig())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if nodes[0].IP != "192.168.1.1" {
		t.Errorf("first node IP = %q, want 192.168.1.1", nodes[0].IP)
	}
	if nodes[9].IP != "192.168.1.10" {
		t.Errorf("last node IP = %q, want 192.168.1.10", nodes[9].IP)
	}
}

func TestBuildEmptyTopology(t *testing.T) {
	cfg := config.Default()
	cfg.FixedNodes = 0
	cfg.MobileNodes = 0
	cfg.MaliciousNodes = 0
	cfg.InterferingNodes = 0
	if _, err := Build(cfg); err == nil {
		t.Fatal("Build() with zero nodes should fail")
	}
}

func TestRandomWalkStaysInBounds(t *testing.T) {
	cfg := testConfig()
	nodes, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	for _, n := range Select(nodes, CategoryMobile) {
		for now := 1.0; now <= 120; now++ {
			n.UpdatePosition(now)
			p := n.Position
			if p.X < mobileArea.MinX || p.X > mobileArea.MaxX || p.Y < mobileArea.MinY || p.Y > mobileArea.MaxY {
				t.Fatalf("node %d left the walk area at t=%v: %+v", n.ID, now, p)
			}
		}
	}
}

func TestStaticNodesDoNotMove(t *testing.T) {
	nodes, err := Build(testConfig())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	for _, n := range Select(nodes, CategoryFixed) {
		start := n.Position
		n.UpdatePosition(30)
		if n.Position != start {
			t.Errorf("fixed node %d moved from %+v to %+v", n.ID, start, n.Position)
		}
	}
}
