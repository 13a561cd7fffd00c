// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package i18n holds the user-facing message catalog (Hebrew and English)
// and name normalization.
//
//	p := i18n.PrinterFor(r)
//	msg := p.Sprintf(i18n.MsgAlreadyClaimed)
package i18n
