package brackets

import (
	"reflect"
	"testing"
)

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func TestScheduleRoundRobinEvenField(t *testing.T) {
	ids := []int{1, 2, 3, 4, 5, 6}
	pairings := ScheduleRoundRobin(ids)

	if len(pairings) != 15 {
		t.Fatalf("expected 15 pairings for 6 participants, got %d", len(pairings))
	}

	seen := make(map[[2]int]int)
	maxRound := 0
	perRound := make(map[int]int)
	for _, p := range pairings {
		if p.P1 == p.P2 {
			t.Fatalf("participant %d paired with itself", p.P1)
		}
		seen[pairKey(p.P1, p.P2)]++
		perRound[p.Round]++
		if p.Round > maxRound {
			maxRound = p.Round
		}
	}
	if maxRound != 5 {
		t.Fatalf("expected 5 rounds, got %d", maxRound)
	}
	for round := 1; round <= maxRound; round++ {
		if perRound[round] != 3 {
			t.Fatalf("round %d has %d fixtures, want 3", round, perRound[round])
		}
	}
	for pair, count := range seen {
		if count != 1 {
			t.Fatalf("pair %v scheduled %d times", pair, count)
		}
	}
	if len(seen) != 15 {
		t.Fatalf("expected every unordered pair once, got %d distinct pairs", len(seen))
	}
}

func TestScheduleRoundRobinOddField(t *testing.T) {
	ids := []int{10, 20, 30, 40, 50}
	pairings := ScheduleRoundRobin(ids)

	// 5 participants pad to 6 ring slots: 5 rounds, one participant idle
	// per round, 10 total fixtures.
	if len(pairings) != 10 {
		t.Fatalf("expected 10 pairings for 5 participants, got %d", len(pairings))
	}

	appearances := make(map[int]map[int]bool)
	for _, p := range pairings {
		for _, id := range []int{p.P1, p.P2} {
			if appearances[id] == nil {
				appearances[id] = make(map[int]bool)
			}
			if appearances[id][p.Round] {
				t.Fatalf("participant %d plays twice in round %d", id, p.Round)
			}
			appearances[id][p.Round] = true
		}
	}
	for _, id := range ids {
		if len(appearances[id]) != 4 {
			t.Fatalf("participant %d plays %d rounds, want 4", id, len(appearances[id]))
		}
	}
}

func TestScheduleRoundRobinTinyFields(t *testing.T) {
	if got := ScheduleRoundRobin([]int{7}); got != nil {
		t.Fatalf("single participant should yield no pairings, got %v", got)
	}
	pairings := ScheduleRoundRobin([]int{7, 8})
	if len(pairings) != 1 || pairings[0].Round != 1 {
		t.Fatalf("two participants should yield one round-1 pairing, got %v", pairings)
	}
}

func TestAssignGroupsSnake(t *testing.T) {
	groups := AssignGroups([]int{1, 2, 3, 4, 5, 6}, 2)
	want := [][]int{{1, 4, 5}, {2, 3, 6}}
	if !reflect.DeepEqual(groups, want) {
		t.Fatalf("got %v, want %v", groups, want)
	}

	groups = AssignGroups([]int{1, 2, 3, 4, 5, 6, 7}, 3)
	want = [][]int{{1, 6, 7}, {2, 5}, {3, 4}}
	if !reflect.DeepEqual(groups, want) {
		t.Fatalf("got %v, want %v", groups, want)
	}

	groups = AssignGroups([]int{1, 2, 3}, 1)
	if len(groups) != 1 || len(groups[0]) != 3 {
		t.Fatalf("single group should hold everyone, got %v", groups)
	}
}
