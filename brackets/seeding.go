package brackets

// SeedPosition maps a zero-based seed rank to its slot index in a bracket of
// the given power-of-two size. Round-one matches pair adjacent slots
// (2m, 2m+1) and the winner of match m takes slot m of the next round.
//
// Seed 0 always lands on slot 0 and seed 1 on the last slot, so the top two
// seeds cannot meet before the final; seeds 0..3 occupy distinct quarters,
// and so on recursively. Seeds in the lower half of the field are paired
// against their complement (seed size-1-s meets seed s in round one).
func SeedPosition(seed, bracketSize int) int {
	if bracketSize < 2 || seed <= 0 {
		return 0
	}
	if seed == 1 {
		return bracketSize - 1
	}

	half := bracketSize / 2
	if seed < half {
		// Strong seeds keep their sub-bracket slot, doubled; the survivor
		// of the expanded pair must end up at the sub-slot, and the strong
		// seed sits on the outer edge of its pair.
		sub := SeedPosition(seed, half)
		if sub < half/2 {
			return 2 * sub
		}
		return 2*sub + 1
	}

	// Weak seeds take the remaining slot of their complement's round-one
	// match.
	opponent := SeedPosition(bracketSize-1-seed, bracketSize)
	if opponent%2 == 0 {
		return opponent + 1
	}
	return opponent - 1
}

// SeedOrder returns the slot→seed layout for a power-of-two bracket size.
func SeedOrder(bracketSize int) []int {
	order := make([]int, bracketSize)
	for seed := 0; seed < bracketSize; seed++ {
		order[SeedPosition(seed, bracketSize)] = seed
	}
	return order
}

// NextPowerOfTwo returns the smallest power of two >= n (minimum 2).
func NextPowerOfTwo(n int) int {
	size := 2
	for size < n {
		size *= 2
	}
	return size
}

// SeededSlots places the given participant IDs, ordered by seed rank, into a
// power-of-two slot array. Unfilled slots stay nil and become byes.
func SeededSlots(participantIDs []int) []*int {
	size := NextPowerOfTwo(len(participantIDs))
	slots := make([]*int, size)
	for i := range participantIDs {
		id := participantIDs[i]
		slots[SeedPosition(i, size)] = &id
	}
	return slots
}
