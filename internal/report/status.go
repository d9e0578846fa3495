package report

import (
	"strings"

	"orderreport/internal/model"
)

var statusLabels = map[string]string{
	"succeeded":  "Оплачен",
	"accepted":   "Принят",
	"on_the_way": "В пути",
	"delivered":  "Доставлен",
	"canceled":   "Отменен",
}

var statusTokens = func() map[string]string {
	m := make(map[string]string, len(statusLabels))
	for token, label := range statusLabels {
		m[strings.ToLower(label)] = token
	}
	return m
}()

// StatusLabel returns the display label of a status token. The lookup is
// exact: unknown tokens and case variants are returned unchanged.
func StatusLabel(token string) string {
	if label, ok := statusLabels[token]; ok {
		return label
	}
	return token
}

// StatusToken maps a display label back to its token.
func StatusToken(label string) (string, bool) {
	token, ok := statusTokens[strings.ToLower(label)]
	return token, ok
}

// MatchStatus reports whether a raw status passes the filter. The filter is
// compared case-insensitively; model.StatusAll matches everything.
func MatchStatus(status, filter string) bool {
	return filter == model.StatusAll || strings.EqualFold(status, filter)
}
