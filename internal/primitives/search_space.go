package primitives

// SearchSpace bounds what the Bayesian optimizer may propose: a pool of
// candidate instructions, a pool of candidate demonstrations, and the
// maximum number of demos a single Configuration may draw from that pool.
type SearchSpace struct {
	Instructions       []*Instruction
	Demos              []*Demonstration
	MaxDemosPerConfig  int
}

// NewSearchSpace constructs a SearchSpace. maxDemosPerConfig is clamped to
// at least 0 and at most len(demos).
func NewSearchSpace(instructions []*Instruction, demos []*Demonstration, maxDemosPerConfig int) *SearchSpace {
	if maxDemosPerConfig < 0 {
		maxDemosPerConfig = 0
	}
	if maxDemosPerConfig > len(demos) {
		maxDemosPerConfig = len(demos)
	}
	return &SearchSpace{
		Instructions:      instructions,
		Demos:             demos,
		MaxDemosPerConfig: maxDemosPerConfig,
	}
}

// InstructionByID looks up an instruction candidate by its ID.
func (s *SearchSpace) InstructionByID(id string) (*Instruction, bool) {
	for _, inst := range s.Instructions {
		if inst.InstructionID() == id {
			return inst, true
		}
	}
	return nil, false
}

// DemosByIDs resolves a set of demo IDs back into their Demonstrations, in
// the order the IDs were given. IDs that aren't in the pool are skipped.
func (s *SearchSpace) DemosByIDs(ids []string) []*Demonstration {
	byID := make(map[string]*Demonstration, len(s.Demos))
	for _, d := range s.Demos {
		byID[d.DemoID()] = d
	}
	out := make([]*Demonstration, 0, len(ids))
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Empty reports whether the search space has no instruction candidates or no
// demonstration candidates, in which case no valid Configuration can be
// drawn and the candidate stream must fail closed rather than propose one.
func (s *SearchSpace) Empty() bool {
	return len(s.Instructions) == 0 || len(s.Demos) == 0
}
