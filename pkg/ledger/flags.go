package ledger

// Payment transaction flags.
const (
	TfNoRippleDirect uint32 = 0x00010000
	TfPartialPayment uint32 = 0x00020000
	TfLimitQuality   uint32 = 0x00040000
)

// AccountSet SetFlag / ClearFlag values.
const (
	AsfRequireDest   uint32 = 1
	AsfRequireAuth   uint32 = 2
	AsfDisallowXRP   uint32 = 3
	AsfDisableMaster uint32 = 4
	AsfNoFreeze      uint32 = 6
	AsfGlobalFreeze  uint32 = 7
	AsfDefaultRipple uint32 = 8
	AsfDepositAuth   uint32 = 9
)

// Account root ledger-entry flags.
const (
	LsfDisableMaster uint32 = 0x00100000
	LsfDepositAuth   uint32 = 0x01000000
)

// TrustSet transaction flags.
const (
	TfSetNoRipple   uint32 = 0x00020000
	TfClearNoRipple uint32 = 0x00040000
	TfSetFreeze     uint32 = 0x00100000
	TfClearFreeze   uint32 = 0x00200000
)
