package ledger

// PathStep is a single hop in a payment path.
type PathStep struct {
	Account  string `json:"account,omitempty"`
	Currency string `json:"currency,omitempty"`
	Issuer   string `json:"issuer,omitempty"`
}

// Path is an ordered list of hops from source to destination.
type Path []PathStep

// PathSet is the set of alternative paths attached to a payment.
type PathSet []Path
