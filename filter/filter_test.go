package filter_test

import (
	"testing"

	"adldap/ber"
	"adldap/filter"
)

func TestCompilePresent(t *testing.T) {
	p, err := filter.Compile("(objectclass=*)")
	if err != nil {
		t.Fatal(err)
	}
	if p.Class != ber.ClassContext || p.Tag != filter.Present {
		t.Fatalf("want context [7] present, got class=%v tag=%v", p.Class, p.Tag)
	}
	if p.Value != "objectclass" {
		t.Errorf("attribute = %v, want objectclass", p.Value)
	}
}

func TestCompileSubstrings(t *testing.T) {
	p, err := filter.Compile("(cn=ab*cd*ef)")
	if err != nil {
		t.Fatal(err)
	}
	if p.Tag != filter.Substrings {
		t.Fatalf("tag = %v, want Substrings", p.Tag)
	}
	if len(p.Children) != 2 {
		t.Fatalf("want 2 children (attr, substring seq), got %d", len(p.Children))
	}
	seq := p.Children[1]
	if len(seq.Children) != 3 {
		t.Fatalf("want 3 substring parts, got %d", len(seq.Children))
	}
	wantTags := []ber.Tag{filter.SubstringsInitial, filter.SubstringsAny, filter.SubstringsFinal}
	wantVals := []string{"ab", "cd", "ef"}
	for i, child := range seq.Children {
		if child.Tag != wantTags[i] {
			t.Errorf("part %d: tag = %v, want %v", i, child.Tag, wantTags[i])
		}
		if child.Value != wantVals[i] {
			t.Errorf("part %d: value = %v, want %v", i, child.Value, wantVals[i])
		}
	}
}

func TestCompileNot(t *testing.T) {
	p, err := filter.Compile("(!(cn=x))")
	if err != nil {
		t.Fatal(err)
	}
	if p.Class != ber.ClassContext || p.Tag != filter.Not {
		t.Fatalf("want context [2] not, got class=%v tag=%v", p.Class, p.Tag)
	}
	if len(p.Children) != 1 {
		t.Fatalf("want 1 child, got %d", len(p.Children))
	}
	if p.Children[0].Tag != filter.EqualityMatch {
		t.Errorf("child tag = %v, want EqualityMatch", p.Children[0].Tag)
	}
}

func TestCompileAnd(t *testing.T) {
	p, err := filter.Compile("(&(a=1)(b=2))")
	if err != nil {
		t.Fatal(err)
	}
	if p.Class != ber.ClassContext || p.Tag != filter.And {
		t.Fatalf("want context [0] and, got class=%v tag=%v", p.Class, p.Tag)
	}
	if len(p.Children) != 2 {
		t.Fatalf("want 2 children, got %d", len(p.Children))
	}
	wantAttrs := []string{"a", "b"}
	wantVals := []string{"1", "2"}
	for i, child := range p.Children {
		if child.Tag != filter.EqualityMatch {
			t.Fatalf("child %d: tag = %v, want EqualityMatch", i, child.Tag)
		}
		if child.Children[0].Value != wantAttrs[i] || child.Children[1].Value != wantVals[i] {
			t.Errorf("child %d: got %v=%v, want %v=%v", i, child.Children[0].Value, child.Children[1].Value, wantAttrs[i], wantVals[i])
		}
	}
}

func TestCompileOr(t *testing.T) {
	p, err := filter.Compile("(|(a=1)(b=2))")
	if err != nil {
		t.Fatal(err)
	}
	if p.Tag != filter.Or {
		t.Fatalf("tag = %v, want Or", p.Tag)
	}
	if len(p.Children) != 2 {
		t.Fatalf("want 2 children, got %d", len(p.Children))
	}
}

func TestCompileHexEscape(t *testing.T) {
	p, err := filter.Compile(`(cn=a\2Ab)`)
	if err != nil {
		t.Fatal(err)
	}
	if p.Tag != filter.EqualityMatch {
		t.Fatalf("tag = %v, want EqualityMatch", p.Tag)
	}
	if p.Children[1].Value != "a*b" {
		t.Errorf("value = %q, want %q", p.Children[1].Value, "a*b")
	}
}

func TestCompileUnwrapped(t *testing.T) {
	wrapped, err := filter.Compile("(cn=foo)")
	if err != nil {
		t.Fatal(err)
	}
	unwrapped, err := filter.Compile("cn=foo")
	if err != nil {
		t.Fatal(err)
	}
	if wrapped.Tag != unwrapped.Tag || wrapped.Children[1].Value != unwrapped.Children[1].Value {
		t.Errorf("unwrapped filter compiled differently: %+v vs %+v", wrapped, unwrapped)
	}
}

func TestCompileEmptyIsNull(t *testing.T) {
	p, err := filter.Compile("")
	if err != nil {
		t.Fatal(err)
	}
	if p.Tag != ber.TagNULL {
		t.Errorf("tag = %v, want NULL", p.Tag)
	}
}

func TestCompileExtraTrailingData(t *testing.T) {
	if _, err := filter.Compile("(cn=foo)junk"); err == nil {
		t.Error("expected an error for trailing data after a complete filter")
	}
}

func TestUnescapeLineFolding(t *testing.T) {
	got, err := filter.Unescape([]byte("ab\\\r\ncd"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "abcd" {
		t.Errorf("got %q, want %q", got, "abcd")
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	s := "a(b)c*d\\e"
	escaped := filter.Escape(s)
	unescaped, err := filter.Unescape([]byte(escaped))
	if err != nil {
		t.Fatal(err)
	}
	if unescaped != s {
		t.Errorf("round trip: got %q, want %q", unescaped, s)
	}
}

func TestDecompileEqualityMatch(t *testing.T) {
	p, err := filter.Compile("(cn=foo)")
	if err != nil {
		t.Fatal(err)
	}
	s, err := filter.Decompile(p)
	if err != nil {
		t.Fatal(err)
	}
	if s != "(cn=foo)" {
		t.Errorf("decompile = %q, want %q", s, "(cn=foo)")
	}
}
