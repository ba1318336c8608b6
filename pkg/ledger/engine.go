package ledger

import "strings"

// EngineResultClass classifies an engine result code by its prefix.
type EngineResultClass string

const (
	EngineClassSuccess   EngineResultClass = "tes" // applied
	EngineClassClaimed   EngineResultClass = "tec" // fee claimed, transaction failed
	EngineClassRetry     EngineResultClass = "ter" // retriable
	EngineClassLocal     EngineResultClass = "tel" // local error
	EngineClassMalformed EngineResultClass = "tem" // malformed
	EngineClassFailure   EngineResultClass = "tef" // failed, not retriable
	EngineClassUnknown   EngineResultClass = ""
)

// Well-known engine result codes used by the pipeline.
const (
	EngineResultSuccess   = "tesSUCCESS"
	EngineResultLocalFail = "telFAILED"
)

// ClassifyEngineResult returns the prefix class of an engine result code.
func ClassifyEngineResult(code string) EngineResultClass {
	if len(code) < 3 {
		return EngineClassUnknown
	}
	switch strings.ToLower(code[:3]) {
	case "tes":
		return EngineClassSuccess
	case "tec":
		return EngineClassClaimed
	case "ter":
		return EngineClassRetry
	case "tel":
		return EngineClassLocal
	case "tem":
		return EngineClassMalformed
	case "tef":
		return EngineClassFailure
	default:
		return EngineClassUnknown
	}
}

// IsProvisionalAccept reports whether a submit-time engine result counts as
// provisional acceptance. Applied, retriable and local-queue results may
// still make it into a validated ledger, so the pipeline treats them as
// accepted until verification settles the outcome.
func IsProvisionalAccept(code string) bool {
	switch ClassifyEngineResult(code) {
	case EngineClassSuccess, EngineClassRetry, EngineClassLocal:
		return true
	default:
		return false
	}
}
