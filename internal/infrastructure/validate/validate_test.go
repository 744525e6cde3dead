package validate

import (
	"strings"
	"testing"
)

func TestCompose(t *testing.T) {
	v := Compose(Required(), MinLength(2), MaxLength(5))

	tests := []struct {
		value string
		ok    bool
	}{
		{"", false},
		{"   ", false},
		{"a", false},
		{"ab", true},
		{"abcde", true},
		{"abcdef", false},
	}

	for _, tt := range tests {
		err := v(tt.value)
		if tt.ok && err != nil {
			t.Errorf("%q: unexpected error %v", tt.value, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("%q: expected an error", tt.value)
		}
	}
}

func TestFieldLabelsErrors(t *testing.T) {
	v := Field("display_name", Required())

	err := v("")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "display_name") {
		t.Fatalf("expected the field name in the error, got %q", err.Error())
	}
}

func TestOneOf(t *testing.T) {
	v := OneOf("private", "public")

	if err := v("private"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v("secret"); err == nil {
		t.Fatal("expected an error for a value outside the set")
	}
}
