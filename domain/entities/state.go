package entities

// State is a position in the purchase scenario. States are strictly ordered;
// each one is the precondition for the next.
type State int

const (
	StateInit State = iota
	StateLanded
	StateSearched
	StateProductSelected
	StateSizeSelected
	StateInCart
	StateAtCart
	StateCheckoutStarted
	StateDone
)

var stateNames = [...]string{
	StateInit:            "Init",
	StateLanded:          "Landed",
	StateSearched:        "Searched",
	StateProductSelected: "ProductSelected",
	StateSizeSelected:    "SizeSelected",
	StateInCart:          "InCart",
	StateAtCart:          "AtCart",
	StateCheckoutStarted: "CheckoutStarted",
	StateDone:            "Done",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// Next returns the state that directly follows s
func (s State) Next() State {
	if s >= StateDone {
		return StateDone
	}
	return s + 1
}

// RunStatus is the outcome of one scenario run
type RunStatus string

const (
	RunStatusPassed RunStatus = "passed"
	RunStatusFailed RunStatus = "failed"
)
