package jsonobj

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParse_PreservesOrder(t *testing.T) {
	o, err := Parse([]byte(`{"z": 1, "a": {"nested": true}, "m": null}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	got := strings.Join(o.Keys(), ",")
	if got != "z,a,m" {
		t.Fatalf("Keys() = %q, want %q", got, "z,a,m")
	}
	if !o.IsNull("m") || !o.IsNull("missing") || o.IsNull("z") {
		t.Error("IsNull() mismatch")
	}
}

func TestParse_RejectsNonObject(t *testing.T) {
	for _, input := range []string{`[]`, `"text"`, `42`, `null`} {
		if _, err := Parse([]byte(input)); !errors.Is(err, ErrNotObject) {
			t.Errorf("Parse(%s) error = %v, want ErrNotObject", input, err)
		}
	}
}

func TestParse_RejectsInvalid(t *testing.T) {
	for _, input := range []string{``, `{`, `{"a":}`, `{"a":1} {"b":2}`, `{"a":1,}`} {
		if _, err := Parse([]byte(input)); err == nil {
			t.Errorf("Parse(%q) should fail", input)
		}
	}
}

func TestMarshalIndent_UntouchedMembersVerbatim(t *testing.T) {
	input := "{\n" +
		"  \"numStartups\": 12,\n" +
		"  \"projects\": {\n" +
		"    \"/home/me/src\": {\n" +
		"      \"allowedTools\": []\n" +
		"    }\n" +
		"  },\n" +
		"  \"tipsHistory\": {\"a\":1,   \"b\":2}\n" +
		"}"

	o, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	out, err := o.MarshalIndent("", "  ")
	if err != nil {
		t.Fatalf("MarshalIndent() error = %v", err)
	}
	if string(out) != input {
		t.Fatalf("round trip changed the document:\n%s\nwant:\n%s", out, input)
	}
}

func TestSet_ReplacesInPlaceAndAppends(t *testing.T) {
	o, err := Parse([]byte("{\n  \"a\": 1,\n  \"b\": {\"keep\":   \"me\"},\n  \"c\": 3\n}"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if err := o.Set("a", map[string]int{"x": 1}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := o.Set("d", []string{"new"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	out, err := o.MarshalIndent("", "  ")
	if err != nil {
		t.Fatalf("MarshalIndent() error = %v", err)
	}
	want := "{\n" +
		"  \"a\": {\n" +
		"    \"x\": 1\n" +
		"  },\n" +
		"  \"b\": {\"keep\":   \"me\"},\n" +
		"  \"c\": 3,\n" +
		"  \"d\": [\n" +
		"    \"new\"\n" +
		"  ]\n" +
		"}"
	if string(out) != want {
		t.Fatalf("MarshalIndent() =\n%s\nwant:\n%s", out, want)
	}
}

func TestGetAndString(t *testing.T) {
	o, err := Parse([]byte(`{"s": "text", "n": 5}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if o.String("s") != "text" {
		t.Errorf("String(s) = %q", o.String("s"))
	}
	if o.String("n") != "" {
		t.Errorf("String(n) = %q, want empty for non-string", o.String("n"))
	}
	if o.String("missing") != "" {
		t.Errorf("String(missing) = %q", o.String("missing"))
	}

	var n int
	ok, err := o.Get("n", &n)
	if !ok || err != nil || n != 5 {
		t.Errorf("Get(n) = %v, %v, %d", ok, err, n)
	}
	if ok, _ := o.Get("missing", &n); ok {
		t.Error("Get(missing) reported present")
	}
	if _, err := o.Get("s", &n); err == nil {
		t.Error("Get(s) into int should fail")
	}
}

func TestDeleteAndClone(t *testing.T) {
	o, err := Parse([]byte(`{"a":1,"b":2}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	c := o.Clone()
	o.Delete("a")
	o.Delete("missing")

	if o.Has("a") || o.Len() != 1 {
		t.Errorf("Delete() left %v", o.Keys())
	}
	if !c.Has("a") || c.Len() != 2 {
		t.Errorf("Clone() affected by Delete: %v", c.Keys())
	}
}

func TestMarshalJSON_Nested(t *testing.T) {
	inner, err := Parse([]byte(`{"id": "x", "extra": [1, 2]}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	var outer Object
	if err := outer.Set("inner", inner); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	data, err := json.Marshal(&outer)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"inner":{"id":"x","extra":[1,2]}}` {
		t.Fatalf("Marshal() = %s", data)
	}

	var back Object
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if strings.Join(back.Keys(), ",") != "inner" {
		t.Fatalf("Keys() = %v", back.Keys())
	}
}

func TestZeroValueEncodesEmpty(t *testing.T) {
	var o Object
	out, err := o.MarshalIndent("", "  ")
	if err != nil {
		t.Fatalf("MarshalIndent() error = %v", err)
	}
	if string(out) != "{}" {
		t.Fatalf("MarshalIndent() = %s, want {}", out)
	}
}

func TestSet_NoHTMLEscaping(t *testing.T) {
	inner, err := Parse([]byte(`{"name":"R&D <lab>"}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	o := &Object{}
	if err := o.Set("label", "R&D <lab>"); err != nil {
		t.Fatalf("Set(label) error = %v", err)
	}
	if err := o.Set("list", []*Object{inner}); err != nil {
		t.Fatalf("Set(list) error = %v", err)
	}

	out, err := o.MarshalIndent("", "  ")
	if err != nil {
		t.Fatalf("MarshalIndent() error = %v", err)
	}
	if strings.Contains(string(out), "u0026") || strings.Contains(string(out), "u003c") {
		t.Fatalf("output was HTML-escaped:\n%s", out)
	}
	if got := strings.Count(string(out), `"R&D <lab>"`); got != 2 {
		t.Errorf("literal count = %d, want 2:\n%s", got, out)
	}
	if out[len(out)-1] != '}' {
		t.Errorf("output ends with %q, want }", out[len(out)-1])
	}
}
