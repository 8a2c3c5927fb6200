package types

import "testing"

func TestPSPResultForCodeLookups(t *testing.T) {
	// API codes
	if got := PSPResultForCode("Authorised"); got != PSPResultAuthorized {
		t.Fatalf("expected authorized, got %s", got)
	}
	if got := PSPResultForCode("IdentifyShopper"); got != PSPResultPendingIdentify {
		t.Fatalf("expected pending identify, got %s", got)
	}
	if got := PSPResultForCode("ChallengeShopper"); got != PSPResultPendingChallenge {
		t.Fatalf("expected pending challenge, got %s", got)
	}
	if got := PSPResultForCode("[refund-received]"); got != PSPResultOtherPending {
		t.Fatalf("expected other pending, got %s", got)
	}
	if got := PSPResultForCode("[error]"); got != PSPResultError {
		t.Fatalf("expected error, got %s", got)
	}

	// Hosted-page codes
	if got := PSPResultForCode("AUTHORISED"); got != PSPResultAuthorized {
		t.Fatalf("expected authorized, got %s", got)
	}
	if got := PSPResultForCode("REFUSED"); got != PSPResultRefused {
		t.Fatalf("expected refused, got %s", got)
	}
	if got := PSPResultForCode("CANCELLED"); got != PSPResultRefused {
		t.Fatalf("expected refused for cancelled, got %s", got)
	}
	if got := PSPResultForCode("PENDING"); got != PSPResultOtherPending {
		t.Fatalf("expected other pending, got %s", got)
	}
}

func TestPSPResultForCodeToleratesWhitespace(t *testing.T) {
	if got := PSPResultForCode("[refund-received]   "); got != PSPResultOtherPending {
		t.Fatalf("expected other pending with trailing whitespace, got %s", got)
	}
}

func TestPSPResultForCodeIsTotal(t *testing.T) {
	if got := PSPResultForCode("SomethingNew"); got != PSPResultOtherPending {
		t.Fatalf("expected unknown code to classify as other pending, got %s", got)
	}
	if got := PSPResultForCode(""); got != PSPResultOtherPending {
		t.Fatalf("expected empty code to classify as other pending, got %s", got)
	}
}

func TestPSPResultPending(t *testing.T) {
	for _, result := range []PSPResult{PSPResultPendingIdentify, PSPResultPendingChallenge, PSPResultOtherPending} {
		if !result.Pending() {
			t.Fatalf("expected %s to be pending", result)
		}
	}
	for _, result := range []PSPResult{PSPResultAuthorized, PSPResultRefused, PSPResultError} {
		if result.Pending() {
			t.Fatalf("expected %s to be terminal", result)
		}
	}
}
