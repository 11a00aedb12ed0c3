package sequencing

import (
	"reflect"
	"testing"
)

func TestLineState_DayCycle(t *testing.T) {
	s := newLineState(3)
	s.inventory = []int{30, 0, 5}
	s.backlog = []int{0, 20, 0}

	needs := s.openDay([]int{50, 10, 5})
	want := []need{
		{product: 0, mandatory: 0, desirable: 20},
		{product: 1, mandatory: 20, desirable: 10},
		{product: 2, mandatory: 0, desirable: 0},
	}
	if !reflect.DeepEqual(needs, want) {
		t.Fatalf("needs %+v", needs)
	}
	if !reflect.DeepEqual(s.inventory, []int{0, 0, 0}) {
		t.Fatalf("inventory after open %v", s.inventory)
	}

	// Mandatory is retired before desirable; the surplus is stocked.
	s.produce(&needs[1], 15)
	if needs[1].mandatory != 5 || needs[1].desirable != 10 {
		t.Fatalf("partial production %+v", needs[1])
	}
	s.produce(&needs[0], 35)
	if needs[0].total() != 0 || s.inventory[0] != 15 || s.last != 0 {
		t.Fatalf("surplus not stocked: need %+v inventory %v last %d", needs[0], s.inventory, s.last)
	}

	lost, total := s.closeDay(needs)
	if total != 5 || !reflect.DeepEqual(lost, []int{0, 5, 0}) {
		t.Fatalf("lost %v total %d", lost, total)
	}
	if !reflect.DeepEqual(s.backlog, []int{0, 10, 0}) {
		t.Fatalf("backlog %v", s.backlog)
	}
}

func TestLineState_CloneIsIndependent(t *testing.T) {
	s := newLineState(2)
	c := s.clone()
	c.inventory[0] = 4
	c.backlog[1] = 3
	c.last = 1
	if s.inventory[0] != 0 || s.backlog[1] != 0 || s.last == 1 {
		t.Fatal("clone shares state with its parent")
	}
}
