package pathfinding

import "github.com/XRPL-Labs/Xaman-App-sub000/pkg/ledger/transactions"

// Apply writes a path option onto a payment. SendMax and Paths always move
// together: any previous selection is cleared first, and a native-to-native
// option never writes SendMax.
func Apply(p *transactions.Payment, opt Option) {
	Clear(p)

	if !(opt.SourceAmount.IsNative() && p.Amount.IsNative()) {
		sendMax := opt.SourceAmount
		p.SendMax = &sendMax
	}
	if len(opt.PathsComputed) > 0 {
		p.Paths = opt.PathsComputed
	}
}

// Clear removes any path selection from a payment, leaving neither SendMax
// nor Paths behind.
func Clear(p *transactions.Payment) {
	p.SendMax = nil
	p.Paths = nil
}
