package types

import (
	"testing"
	"time"
)

func TestProjectTransactionStatusTerminalOutcomes(t *testing.T) {
	now := time.Now().UTC()

	if got := ProjectTransactionStatus(PSPResultAuthorized, true, TransactionTypeAuthorize, now, time.Hour, now); got != TransactionStatusProcessed {
		t.Fatalf("expected processed, got %s", got)
	}
	if got := ProjectTransactionStatus(PSPResultRefused, true, TransactionTypeAuthorize, now, time.Hour, now); got != TransactionStatusDeclined {
		t.Fatalf("expected declined with gateway reference, got %s", got)
	}
	if got := ProjectTransactionStatus(PSPResultError, false, TransactionTypeAuthorize, now, time.Hour, now); got != TransactionStatusError {
		t.Fatalf("expected error without gateway reference, got %s", got)
	}
}

func TestProjectTransactionStatusPending(t *testing.T) {
	now := time.Now().UTC()

	for _, result := range []PSPResult{PSPResultPendingIdentify, PSPResultPendingChallenge, PSPResultOtherPending} {
		if got := ProjectTransactionStatus(result, true, TransactionTypeAuthorize, now, time.Hour, now); got != TransactionStatusPending {
			t.Fatalf("expected pending for %s, got %s", result, got)
		}
	}
}

func TestProjectTransactionStatusExpiredPendingIsCanceled(t *testing.T) {
	now := time.Now().UTC()
	createdAt := now.Add(-3 * time.Hour)

	got := ProjectTransactionStatus(PSPResultPendingIdentify, true, TransactionTypeAuthorize, createdAt, time.Hour, now)
	if got != TransactionStatusCanceled {
		t.Fatalf("expected canceled for expired pending authorization, got %s", got)
	}

	// Only authorizations expire; a pending capture stays pending.
	got = ProjectTransactionStatus(PSPResultOtherPending, true, TransactionTypeCapture, createdAt, time.Hour, now)
	if got != TransactionStatusPending {
		t.Fatalf("expected pending for non-authorize type, got %s", got)
	}
}

func TestProjectTransactionStatusZeroWindowNeverExpires(t *testing.T) {
	now := time.Now().UTC()
	createdAt := now.Add(-100 * time.Hour)

	got := ProjectTransactionStatus(PSPResultPendingChallenge, false, TransactionTypeAuthorize, createdAt, 0, now)
	if got != TransactionStatusPending {
		t.Fatalf("expected pending with disabled expiration window, got %s", got)
	}
}
