// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package i18n

import (
	"net/http/httptest"
	"testing"

	"golang.org/x/text/language"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   language.Tag
	}{
		{"empty", "", language.Hebrew},
		{"hebrew", "he-IL,he;q=0.9", language.Hebrew},
		{"english", "en-US,en;q=0.9", language.English},
		{"unsupported falls back", "fr-FR", language.Hebrew},
		{"garbage", ";;;", language.Hebrew},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Match(tt.header); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}

func TestTranslate(t *testing.T) {
	if got := Translate(language.English, MsgAlreadyClaimed); got != MsgAlreadyClaimed {
		t.Errorf("english = %q, want key text", got)
	}
	if got := Translate(language.Hebrew, MsgAlreadyClaimed); got == MsgAlreadyClaimed {
		t.Error("hebrew translation missing")
	}
	if got := Translate(language.English, MsgParticipantItemLimit, 10); got != "Participants may add at most 10 of an item" {
		t.Errorf("formatted = %q", got)
	}
}

func TestPrinterFor(t *testing.T) {
	req := httptest.NewRequest("GET", "/events?lang=en", nil)
	req.Header.Set("Accept-Language", "he")
	if got := PrinterFor(req).Sprintf(MsgInternal); got != MsgInternal {
		t.Errorf("query parameter should win, got %q", got)
	}

	req = httptest.NewRequest("GET", "/events", nil)
	if got := PrinterFor(req).Sprintf(MsgInternal); got == MsgInternal {
		t.Error("expected hebrew by default")
	}
}

func TestNormalizeName(t *testing.T) {
	decomposed := "Cafe\u0301"
	if got := NormalizeName("  " + decomposed + " "); got != "Caf\u00e9" {
		t.Errorf("NormalizeName() = %q, want precomposed form", got)
	}
}
