package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ClassifyEngineResult(t *testing.T) {
	tests := []struct {
		code     string
		expected EngineResultClass
	}{
		{"tesSUCCESS", EngineClassSuccess},
		{"tecPATH_PARTIAL", EngineClassClaimed},
		{"terQUEUED", EngineClassRetry},
		{"telINSUF_FEE_P", EngineClassLocal},
		{"temBAD_FEE", EngineClassMalformed},
		{"tefPAST_SEQ", EngineClassFailure},
		{"", EngineClassUnknown},
		{"ok", EngineClassUnknown},
		{"xyzWHAT", EngineClassUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifyEngineResult(tt.code), "code %q", tt.code)
	}
}

func Test_IsProvisionalAccept(t *testing.T) {
	// Applied, retriable and queued-locally all count until verification
	assert.True(t, IsProvisionalAccept("tesSUCCESS"))
	assert.True(t, IsProvisionalAccept("terQUEUED"))
	assert.True(t, IsProvisionalAccept("telCAN_NOT_QUEUE"))

	assert.False(t, IsProvisionalAccept("tecPATH_DRY"))
	assert.False(t, IsProvisionalAccept("temBAD_AMOUNT"))
	assert.False(t, IsProvisionalAccept("tefMAX_LEDGER"))
	assert.False(t, IsProvisionalAccept(""))
}
