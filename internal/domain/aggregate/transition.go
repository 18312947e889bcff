package aggregate

// State is a binary per-period status of one entity. StateMissing marks a
// period with no observation.
type State int

const (
	StateMissing State = iota
	StateA
	StateB
)

// TransitionKind classifies the move between two consecutive periods.
type TransitionKind string

const (
	StaysA  TransitionKind = "stays_a"
	StaysB  TransitionKind = "stays_b"
	AToB    TransitionKind = "a_to_b"
	BToA    TransitionKind = "b_to_a"
	Unknown TransitionKind = "unknown"
)

// TransitionKinds lists every kind in reporting order.
var TransitionKinds = []TransitionKind{StaysA, StaysB, AToB, BToA, Unknown}

// Classify names the transition from one state to the next.
func Classify(from, to State) TransitionKind {
	switch {
	case from == StateMissing || to == StateMissing:
		return Unknown
	case from == StateA && to == StateA:
		return StaysA
	case from == StateB && to == StateB:
		return StaysB
	case from == StateA:
		return AToB
	default:
		return BToA
	}
}

// TransitionCount is the number of entities making one kind of transition
// between two consecutive periods. Percent is relative to the entities whose
// both states are known; Unknown rows always carry a zero percent.
type TransitionCount struct {
	From    string         `json:"from"`
	To      string         `json:"to"`
	Kind    TransitionKind `json:"kind"`
	Count   int            `json:"count"`
	Percent float64        `json:"percent"`
}

// Pair renders "Q1 → Q2".
func (t TransitionCount) Pair() string {
	return t.From + " → " + t.To
}

// TransitionPivot reshapes per-entity, per-period states into one column per
// period and classifies every entity for each consecutive pair of periods.
// Every kind is reported for every pair, zero counts included.
func TransitionPivot(states map[string]map[string]State, periods []string) []TransitionCount {
	out := make([]TransitionCount, 0, len(TransitionKinds)*max(len(periods)-1, 0))
	for i := 0; i+1 < len(periods); i++ {
		from, to := periods[i], periods[i+1]
		counts := make(map[TransitionKind]int, len(TransitionKinds))
		for _, byPeriod := range states {
			counts[Classify(byPeriod[from], byPeriod[to])]++
		}
		known := counts[StaysA] + counts[StaysB] + counts[AToB] + counts[BToA]
		for _, k := range TransitionKinds {
			tc := TransitionCount{From: from, To: to, Kind: k, Count: counts[k]}
			if k != Unknown && known > 0 {
				tc.Percent = RoundTo(100*float64(tc.Count)/float64(known), 2)
			}
			out = append(out, tc)
		}
	}
	return out
}
