// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package i18n

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/unicode/norm"
)

// Message keys. The English text doubles as the key.
const (
	MsgInvalidJSON          = "Invalid JSON"
	MsgUnauthorized         = "Sign in to continue"
	MsgForbidden            = "You do not have permission to do that"
	MsgNotOwner             = "Only the person who claimed this item can change it"
	MsgItemNotFound         = "Menu item not found"
	MsgEventNotFound        = "Event not found"
	MsgClaimNotFound        = "Claim not found"
	MsgPresetNotFound       = "Preset list not found"
	MsgUserNotFound         = "User not found"
	MsgAlreadyClaimed       = "Someone else is already bringing this item"
	MsgDuplicateClaim       = "You are already bringing this item"
	MsgInvalidQuantity      = "Quantity must be between 1 and 100"
	MsgInvalidClaimant      = "A name is required"
	MsgInvalidItem          = "Invalid menu item"
	MsgInvalidEvent         = "Event name and date are required"
	MsgInvalidPreset        = "Invalid preset list"
	MsgNothingToUpdate      = "Nothing to update"
	MsgClaimFailed          = "Could not save your claim, please try again"
	MsgTooManyRequests      = "Please wait a moment before trying again"
	MsgNoActiveEvent        = "No active event"
	MsgInternal             = "Something went wrong"
	MsgParticipantItemLimit = "Participants may add at most %d of an item"
)

var (
	// Hebrew comes first so it is the fallback.
	supported = []language.Tag{language.Hebrew, language.English}
	matcher   = language.NewMatcher(supported)
)

var hebrew = map[string]string{
	MsgInvalidJSON:          "בקשה לא תקינה",
	MsgUnauthorized:         "יש להתחבר כדי להמשיך",
	MsgForbidden:            "אין לך הרשאה לפעולה זו",
	MsgNotOwner:             "רק מי ששובץ לפריט יכול לשנות אותו",
	MsgItemNotFound:         "הפריט לא נמצא",
	MsgEventNotFound:        "האירוע לא נמצא",
	MsgClaimNotFound:        "השיבוץ לא נמצא",
	MsgPresetNotFound:       "הרשימה לא נמצאה",
	MsgUserNotFound:         "המשתמש לא נמצא",
	MsgAlreadyClaimed:       "מישהו אחר כבר מביא את הפריט הזה",
	MsgDuplicateClaim:       "כבר שובצת לפריט הזה",
	MsgInvalidQuantity:      "הכמות חייבת להיות בין 1 ל-100",
	MsgInvalidClaimant:      "יש להזין שם",
	MsgInvalidItem:          "פריט לא תקין",
	MsgInvalidEvent:         "יש להזין שם ותאריך לאירוע",
	MsgInvalidPreset:        "רשימה לא תקינה",
	MsgNothingToUpdate:      "אין מה לעדכן",
	MsgClaimFailed:          "לא הצלחנו לשמור את השיבוץ, נסו שוב",
	MsgTooManyRequests:      "רגע, נסו שוב בעוד כמה שניות",
	MsgNoActiveEvent:        "אין אירוע פעיל",
	MsgInternal:             "משהו השתבש",
	MsgParticipantItemLimit: "משתתפים יכולים להוסיף עד %d יחידות מפריט",
}

func init() {
	for key, text := range hebrew {
		if err := message.SetString(language.Hebrew, key, text); err != nil {
			panic(err)
		}
	}
	for key := range hebrew {
		if err := message.SetString(language.English, key, key); err != nil {
			panic(err)
		}
	}
}

// Match picks the best supported language for an Accept-Language header.
// An empty or unparsable header gets Hebrew.
func Match(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.Hebrew
	}
	_, idx, _ := matcher.Match(tags...)
	return supported[idx]
}

// PrinterFor returns a printer for the request's preferred language. A
// ?lang= query parameter wins over the header.
func PrinterFor(r *http.Request) *message.Printer {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return message.NewPrinter(Match(lang))
	}
	return message.NewPrinter(Match(r.Header.Get("Accept-Language")))
}

// Translate renders key in the given language
func Translate(tag language.Tag, key string, args ...any) string {
	return message.NewPrinter(tag).Sprintf(key, args...)
}

// NormalizeName trims and NFC-normalizes user-entered names so the same
// Hebrew text typed on different keyboards compares equal.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
