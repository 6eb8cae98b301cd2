package kmeans

// State is a step of the engine's iteration loop.
type State int

const (
	StateInitializing State = iota
	StateAssigning
	StateUpdating
	StateCheckingConvergence
	StateConverged
	// StateHalted ends a run that stopped before converging, e.g. because an
	// iteration cap was reached.
	StateHalted
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAssigning:
		return "assigning"
	case StateUpdating:
		return "updating"
	case StateCheckingConvergence:
		return "checking_convergence"
	case StateConverged:
		return "converged"
	case StateHalted:
		return "halted"
	default:
		return "unknown"
	}
}

// Terminal reports whether the engine stops in this state.
func (s State) Terminal() bool {
	return s == StateConverged || s == StateHalted
}

// TransitionPolicy decides where the engine goes after a convergence check.
// Swapping the policy changes how a run ends without touching the steps.
type TransitionPolicy interface {
	AfterCheck(iteration int, totalShift float64, converged bool) State
}

// UntilConverged keeps iterating until the convergence check passes.
type UntilConverged struct{}

// AfterCheck implements TransitionPolicy.
func (UntilConverged) AfterCheck(_ int, _ float64, converged bool) State {
	if converged {
		return StateConverged
	}
	return StateAssigning
}

// Bounded stops after MaxIterations rounds even if the run has not converged.
type Bounded struct {
	MaxIterations int
}

// AfterCheck implements TransitionPolicy.
func (b Bounded) AfterCheck(iteration int, _ float64, converged bool) State {
	if converged {
		return StateConverged
	}
	if b.MaxIterations > 0 && iteration >= b.MaxIterations {
		return StateHalted
	}
	return StateAssigning
}
