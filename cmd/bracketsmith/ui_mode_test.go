package main

import "testing"

func TestParseUIMode(t *testing.T) {
	cases := []struct {
		value string
		want  uiMode
	}{
		{"", uiAuto},
		{"auto", uiAuto},
		{"AUTO", uiAuto},
		{"on", uiOn},
		{" On ", uiOn},
		{"off", uiOff},
	}
	for _, tc := range cases {
		got, err := parseUIMode(tc.value)
		if err != nil {
			t.Errorf("parseUIMode(%q) failed: %v", tc.value, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseUIMode(%q) = %v, want %v", tc.value, got, tc.want)
		}
	}

	if _, err := parseUIMode("sometimes"); err == nil {
		t.Error("Expected an error for an unknown mode")
	}
}

func TestUIModeEnabled(t *testing.T) {
	if !uiOn.enabled() {
		t.Error("on must force the progress view")
	}
	if uiOff.enabled() {
		t.Error("off must suppress the progress view")
	}
	// uiAuto depends on the terminal; under go test stdout is a pipe.
	if uiAuto.enabled() {
		t.Error("auto must stay off when stdout is not a terminal")
	}
}
