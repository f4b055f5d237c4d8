package brackets

import "testing"

func TestSeedPositionEight(t *testing.T) {
	want := map[int]int{
		0: 0, 1: 7, 2: 5, 3: 2, 4: 3, 5: 4, 6: 6, 7: 1,
	}
	for seed, slot := range want {
		if got := SeedPosition(seed, 8); got != slot {
			t.Fatalf("SeedPosition(%d, 8) = %d, want %d", seed, got, slot)
		}
	}
}

func TestSeedPositionSixteen(t *testing.T) {
	want := []int{0, 15, 11, 4, 6, 9, 13, 2, 3, 12, 8, 7, 5, 10, 14, 1}
	for seed, slot := range want {
		if got := SeedPosition(seed, 16); got != slot {
			t.Fatalf("SeedPosition(%d, 16) = %d, want %d", seed, got, slot)
		}
	}
}

func TestSeedPositionIsBijective(t *testing.T) {
	for size := 2; size <= 128; size *= 2 {
		seen := make(map[int]bool, size)
		for seed := 0; seed < size; seed++ {
			slot := SeedPosition(seed, size)
			if slot < 0 || slot >= size {
				t.Fatalf("size %d seed %d gave out-of-range slot %d", size, seed, slot)
			}
			if seen[slot] {
				t.Fatalf("size %d seed %d collided on slot %d", size, seed, slot)
			}
			seen[slot] = true
		}
	}
}

// Top 2^k seeds must fall into distinct blocks of size/2^k slots, so they
// cannot meet before the bracket narrows to 2^k survivors.
func TestSeedPositionSeparation(t *testing.T) {
	for size := 4; size <= 64; size *= 2 {
		for block := 2; block < size; block *= 2 {
			regionSize := size / block
			used := make(map[int]int)
			for seed := 0; seed < block; seed++ {
				region := SeedPosition(seed, size) / regionSize
				if prev, ok := used[region]; ok {
					t.Fatalf("size %d: seeds %d and %d share region %d of %d",
						size, prev, seed, region, block)
				}
				used[region] = seed
			}
		}
	}
}

func TestSeedPositionComplementPairing(t *testing.T) {
	for size := 4; size <= 64; size *= 2 {
		for seed := size / 2; seed < size; seed++ {
			slot := SeedPosition(seed, size)
			opponent := SeedPosition(size-1-seed, size)
			if slot/2 != opponent/2 {
				t.Fatalf("size %d: seed %d (slot %d) is not paired with seed %d (slot %d)",
					size, seed, slot, size-1-seed, opponent)
			}
		}
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	cases := map[int]int{0: 2, 1: 2, 2: 2, 3: 4, 5: 8, 8: 8, 9: 16, 33: 64}
	for n, want := range cases {
		if got := NextPowerOfTwo(n); got != want {
			t.Fatalf("NextPowerOfTwo(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestSeededSlotsFivePlayers(t *testing.T) {
	slots := SeededSlots([]int{101, 102, 103, 104, 105})
	if len(slots) != 8 {
		t.Fatalf("expected 8 slots for 5 entries, got %d", len(slots))
	}

	filled := 0
	byID := make(map[int]int)
	for pos, slot := range slots {
		if slot != nil {
			filled++
			byID[*slot] = pos
		}
	}
	if filled != 5 {
		t.Fatalf("expected 5 filled slots, got %d", filled)
	}

	// Seed ranks 0..4 land on slots 0, 7, 5, 2, 3.
	want := map[int]int{101: 0, 102: 7, 103: 5, 104: 2, 105: 3}
	for id, pos := range want {
		if byID[id] != pos {
			t.Fatalf("participant %d at slot %d, want %d", id, byID[id], pos)
		}
	}

	// Top two seeds must sit in opposite halves.
	if byID[101]/4 == byID[102]/4 {
		t.Fatal("top two seeds share a bracket half")
	}
}
