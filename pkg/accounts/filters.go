package accounts

// Signable returns the accounts that can produce a signature, regardless
// of visibility. Used for sign-in and multi-sign requests, where hidden
// accounts stay eligible.
func Signable(list []*Account) []*Account {
	var out []*Account
	for _, a := range list {
		if a.CanSign() {
			out = append(out, a)
		}
	}
	return out
}

// Spendable returns the accounts that can sign and spend. Hidden accounts
// are excluded unless includeHidden is set, which the controller uses when
// the payload explicitly targets a hidden account.
func Spendable(list []*Account, includeHidden bool) []*Account {
	var out []*Account
	for _, a := range list {
		if !a.CanSign() {
			continue
		}
		if a.Hidden && !includeHidden {
			continue
		}
		out = append(out, a)
	}
	return out
}

// FindByAddress returns the account with the given address, or nil.
func FindByAddress(list []*Account, address string) *Account {
	for _, a := range list {
		if a.Address == address {
			return a
		}
	}
	return nil
}

// FindDefault returns the account flagged as default, or nil.
func FindDefault(list []*Account) *Account {
	for _, a := range list {
		if a.Default {
			return a
		}
	}
	return nil
}
