package dbf

import (
	"sort"
	"strings"
	"testing"
)

func TestConverterFor(t *testing.T) {
	for _, name := range SupportedEncodings() {
		t.Run(name, func(t *testing.T) {
			if _, err := converterFor(name); err != nil {
				t.Errorf("converterFor(%q) = %v", name, err)
			}
		})
	}

	// Case and surrounding whitespace are forgiven.
	if _, err := converterFor(" CP1252 "); err != nil {
		t.Errorf("converterFor with case/space variation failed: %v", err)
	}
}

func TestConverterForUnknown(t *testing.T) {
	_, err := converterFor("utf-33")
	if err == nil {
		t.Fatal("expected error for unknown encoding")
	}
	if !strings.Contains(err.Error(), "utf-33") {
		t.Errorf("error should name the offending encoding: %v", err)
	}
}

func TestSupportedEncodingsSorted(t *testing.T) {
	names := SupportedEncodings()
	if !sort.StringsAreSorted(names) {
		t.Errorf("SupportedEncodings() not sorted: %v", names)
	}
}
