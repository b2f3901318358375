package main

import (
	"strings"
	"testing"
)

func TestIntervalFlagTakesDurations(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("interval")
	if flag == nil {
		t.Fatal("interval flag is not registered")
	}

	if err := flag.Value.Set("500ms"); err != nil {
		t.Errorf("interval rejected %q: %v", "500ms", err)
	}
	if err := flag.Value.Set("5"); err == nil {
		t.Error("interval accepted a bare number; the flag takes durations with units")
	}
	if !strings.Contains(flag.Usage, "unit") {
		t.Errorf("interval help %q does not mention the unit syntax", flag.Usage)
	}
}

func TestDefaultFlagValues(t *testing.T) {
	pf := rootCmd.PersistentFlags()
	for name, want := range map[string]string{
		"format":   "combined",
		"group-by": "request_path",
		"having":   "1",
		"limit":    "10",
		"order-by": "count",
	} {
		flag := pf.Lookup(name)
		if flag == nil {
			t.Errorf("flag %s is not registered", name)
			continue
		}
		if flag.DefValue != want {
			t.Errorf("flag %s default = %q, want %q", name, flag.DefValue, want)
		}
	}
}
