// Package subscription owns the notification opt-in lifecycle: which phone
// numbers may subscribe, which chats are subscribed, and the webhook protocol
// that moves a chat from first contact to an active subscription.
package subscription

import "strings"

// NormalizePhone canonicalizes a phone number for allow-list comparison:
// everything except digits and '+' is stripped, a leading 00 becomes '+',
// and a missing '+' prefix is added. Returns "" for input with no usable
// characters.
func NormalizePhone(p string) string {
	var b strings.Builder
	for _, r := range p {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}

	x := b.String()
	if x == "" || x == "+" {
		return ""
	}
	if strings.HasPrefix(x, "00") {
		x = "+" + x[2:]
	}
	if !strings.HasPrefix(x, "+") {
		x = "+" + x
	}
	return x
}
