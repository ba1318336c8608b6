package transactions

// SignIn is a pseudo transaction used to prove control of an account. It
// carries no TransactionType on the wire, never needs a fee or sequence,
// and is never submitted to the ledger.
type SignIn struct {
	CommonFields
}

func (s *SignIn) EventsLabel() string {
	return "SignIn"
}

func (s *SignIn) IsPseudo() bool {
	return true
}

func (s *SignIn) Validate() error {
	return nil
}
