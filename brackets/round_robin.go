package brackets

// Pairing is one round-robin fixture slot produced by the scheduler.
type Pairing struct {
	Round int
	P1    int
	P2    int
}

// byeMarker pads an odd field so the circle method works on an even ring.
const byeMarker = -1

// ScheduleRoundRobin builds all-pairs fixtures for one group with the
// circle method: participant 0 stays fixed while the remaining entries
// rotate one position per round; each round pairs opposite ring positions.
// Fixtures involving the virtual bye are omitted, so every unordered pair
// of real participants appears in exactly one pairing.
func ScheduleRoundRobin(participantIDs []int) []Pairing {
	if len(participantIDs) < 2 {
		return nil
	}

	ring := make([]int, len(participantIDs))
	copy(ring, participantIDs)
	if len(ring)%2 != 0 {
		ring = append(ring, byeMarker)
	}

	n := len(ring)
	rounds := n - 1
	half := n / 2

	pairings := make([]Pairing, 0, rounds*half)
	for round := 1; round <= rounds; round++ {
		for i := 0; i < half; i++ {
			p1 := ring[i]
			p2 := ring[n-1-i]
			if p1 == byeMarker || p2 == byeMarker {
				continue
			}
			pairings = append(pairings, Pairing{Round: round, P1: p1, P2: p2})
		}
		// Rotate everything except the fixed anchor: the tail entry moves
		// to the head of the rotating section.
		last := ring[n-1]
		copy(ring[2:], ring[1:n-1])
		ring[1] = last
	}
	return pairings
}

// AssignGroups distributes seed-ordered participants across numGroups pools
// with a snake draft (0,1,...,G-1,G-1,...,1,0,...) so total seed strength
// stays balanced.
func AssignGroups(seededIDs []int, numGroups int) [][]int {
	if numGroups < 1 {
		numGroups = 1
	}
	groups := make([][]int, numGroups)
	g, step := 0, 1
	for _, id := range seededIDs {
		groups[g] = append(groups[g], id)
		if numGroups == 1 {
			continue
		}
		next := g + step
		if next == numGroups || next < 0 {
			step = -step
		} else {
			g = next
		}
	}
	return groups
}
