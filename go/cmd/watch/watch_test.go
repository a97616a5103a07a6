package watch

import (
	"testing"
)

func TestParseArgs(t *testing.T) {
	off, count, err := parseArgs([]string{"0x10", "0b101"})
	if err != nil || off != 0x10 || count != 5 {
		t.Fatalf("parseArgs = %#x, %d, %v", off, count, err)
	}
	if off, _, err := parseArgs([]string{"0xffffffffffffffff", "1"}); err != nil || off != 0xffffffffffffffff {
		t.Errorf("max offset = %#x, %v", off, err)
	}
	bad := [][]string{
		{"1"},
		{"zz", "1"},
		{"1", "-1"},
		{"1", "0"},
		{"0x10000000000000000", "1"},
	}
	for _, args := range bad {
		if _, _, err := parseArgs(args); err == nil {
			t.Errorf("parseArgs(%q) succeeded", args)
		}
	}
}
