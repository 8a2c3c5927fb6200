package pspdata

import (
	"testing"
)

func TestParseEmptyBlob(t *testing.T) {
	data, err := Parse("")
	if err != nil {
		t.Fatalf("parse empty blob failed: %v", err)
	}
	if data.Len() != 0 {
		t.Fatalf("expected empty mapping, got %d keys", data.Len())
	}
}

func TestParseRejectsNonObject(t *testing.T) {
	if _, err := Parse(`["a","b"]`); err == nil {
		t.Fatal("expected error for JSON array")
	}
}

func TestParseRejectsTrailingData(t *testing.T) {
	if _, err := Parse(`{"a":"1"}garbage`); err == nil {
		t.Fatal("expected error for trailing data")
	}
	if _, err := Parse(`{"a":"1"}{"b":"2"}`); err == nil {
		t.Fatal("expected error for second object")
	}
	if _, err := Parse(`{"a":"1"}  `); err != nil {
		t.Fatalf("trailing whitespace must parse: %v", err)
	}
}

func TestParseStringifiesScalars(t *testing.T) {
	data, err := Parse(`{"a":"x","b":42,"c":true,"d":null}`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if v, _ := data.Get("b"); v != "42" {
		t.Fatalf("expected stringified number, got %q", v)
	}
	if v, _ := data.Get("c"); v != "true" {
		t.Fatalf("expected stringified bool, got %q", v)
	}
	if v, _ := data.Get("d"); v != "" {
		t.Fatalf("expected empty string for null, got %q", v)
	}
}

func TestSerializePreservesInsertionOrder(t *testing.T) {
	data := New()
	data.Set("zeta", "1")
	data.Set("alpha", "2")
	data.Set("mid", "3")

	blob := data.String()
	if blob != `{"zeta":"1","alpha":"2","mid":"3"}` {
		t.Fatalf("unexpected serialized order: %s", blob)
	}

	reparsed, err := Parse(blob)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	keys := reparsed.Keys()
	if len(keys) != 3 || keys[0] != "zeta" || keys[1] != "alpha" || keys[2] != "mid" {
		t.Fatalf("round trip lost key order: %v", keys)
	}
}

func TestMergeIndependentKeys(t *testing.T) {
	data := New()
	data.Set("a", "1")

	other := New()
	other.Set("b", "2")
	data.Merge(other)

	if v, _ := data.Get("a"); v != "1" {
		t.Fatalf("expected a=1, got %q", v)
	}
	if v, _ := data.Get("b"); v != "2" {
		t.Fatalf("expected b=2, got %q", v)
	}
}

func TestMergeSameKeyOverwrites(t *testing.T) {
	data := New()
	data.Set("a", "1")
	data.Set("b", "keep")

	other := New()
	other.Set("a", "2")
	data.Merge(other)

	if v, _ := data.Get("a"); v != "2" {
		t.Fatalf("expected a=2 after merge, got %q", v)
	}
	if v, _ := data.Get("b"); v != "keep" {
		t.Fatalf("expected unrelated key preserved, got %q", v)
	}
	keys := data.Keys()
	if keys[0] != "a" {
		t.Fatalf("overwrite must keep original position, got %v", keys)
	}
}

func TestPurgeCallErrors(t *testing.T) {
	data := New()
	data.Set(CallErrorStatusKey, "REQUEST_NOT_SEND")
	data.Set(ExceptionClassKey, "net.OpError")
	data.Set(ExceptionMessageKey, "connection refused")
	data.Set("authCode", "1234")

	data.PurgeCallErrors()

	for _, key := range []string{CallErrorStatusKey, ExceptionClassKey, ExceptionMessageKey} {
		if _, ok := data.Get(key); ok {
			t.Fatalf("expected %s to be purged", key)
		}
	}
	if _, ok := data.Get("authCode"); !ok {
		t.Fatal("expected unrelated key to survive the purge")
	}
}

func TestFromMapIsDeterministic(t *testing.T) {
	first := FromMap(map[string]string{"b": "2", "a": "1", "c": "3"})
	second := FromMap(map[string]string{"c": "3", "a": "1", "b": "2"})
	if first.String() != second.String() {
		t.Fatalf("expected deterministic serialization, got %s vs %s", first.String(), second.String())
	}
}
