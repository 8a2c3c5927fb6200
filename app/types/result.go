package types

import "strings"

// Raw result codes returned by the gateway. Stored verbatim on ledger rows;
// classification never mutates the row.
const (
	ResultCodeAuthorised       = "Authorised"
	ResultCodeIdentifyShopper  = "IdentifyShopper"
	ResultCodeChallengeShopper = "ChallengeShopper"
	ResultCodeRedirectShopper  = "RedirectShopper"
	ResultCodeReceived         = "Received"
	ResultCodePending          = "Pending"
	ResultCodeRefused          = "Refused"
	ResultCodeError            = "Error"
	ResultCodeCancelled        = "Cancelled"
)

// PSPResult is the classified authentication outcome of a gateway result code.
type PSPResult string

const (
	PSPResultAuthorized       PSPResult = "AUTHORIZED"
	PSPResultPendingIdentify  PSPResult = "PENDING_IDENTIFY_SHOPPER"
	PSPResultPendingChallenge PSPResult = "PENDING_CHALLENGE_SHOPPER"
	PSPResultRefused          PSPResult = "REFUSED"
	PSPResultError            PSPResult = "ERROR"
	PSPResultOtherPending     PSPResult = "OTHER_PENDING"
)

// Pending reports whether the outcome is a non-terminal authentication step.
func (r PSPResult) Pending() bool {
	switch r {
	case PSPResultPendingIdentify, PSPResultPendingChallenge, PSPResultOtherPending:
		return true
	default:
		return false
	}
}

// resultCodes maps every known gateway code, API and hosted-page variants
// alike, to its classified outcome.
var resultCodes = map[string]PSPResult{
	ResultCodeAuthorised:       PSPResultAuthorized,
	"AUTHORISED":               PSPResultAuthorized,
	ResultCodeIdentifyShopper:  PSPResultPendingIdentify,
	ResultCodeChallengeShopper: PSPResultPendingChallenge,
	ResultCodeRedirectShopper:  PSPResultOtherPending,
	ResultCodeReceived:         PSPResultOtherPending,
	"[capture-received]":       PSPResultOtherPending,
	"[refund-received]":        PSPResultOtherPending,
	"[cancel-received]":        PSPResultOtherPending,
	"[cancelOrRefund-received]": PSPResultOtherPending,
	ResultCodePending:          PSPResultOtherPending,
	"PENDING":                  PSPResultOtherPending,
	ResultCodeRefused:          PSPResultRefused,
	"REFUSED":                  PSPResultRefused,
	ResultCodeCancelled:        PSPResultRefused,
	"CANCELLED":                PSPResultRefused,
	ResultCodeError:            PSPResultError,
	"ERROR":                    PSPResultError,
	"[error]":                  PSPResultError,
}

// PSPResultForCode classifies a gateway result code. Total: unknown codes map
// to PSPResultOtherPending, trailing whitespace is tolerated.
func PSPResultForCode(code string) PSPResult {
	if result, ok := resultCodes[strings.TrimSpace(code)]; ok {
		return result
	}
	return PSPResultOtherPending
}
