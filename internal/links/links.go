// Package links classifies user-supplied download sources.
package links

import (
	"regexp"
	"strings"
)

var (
	magnetRegex = regexp.MustCompile(`magnet:\?xt=urn:btih:[a-zA-Z0-9]+`)
	// Word characters include any Unicode letter or digit, so internationalised
	// hosts and paths match.
	urlRegex = regexp.MustCompile(`(?:(?:https?|ftp)://)?[\p{L}\p{N}_/\-?=%.]+\.[\p{L}\p{N}_/\-?=%.]+`)
)

const megaHost = "mega.nz"

// Kind is the type of a download source.
type Kind string

const (
	KindUnknown Kind = "unknown"
	KindMagnet  Kind = "magnet"
	KindMega    Kind = "mega"
	KindURL     Kind = "url"
)

// IsMagnet reports whether s contains a BitTorrent magnet link.
func IsMagnet(s string) bool {
	return magnetRegex.MatchString(s)
}

// IsURL reports whether s contains something that looks like a URL.
// The match is loose: any dotted run of URL characters anywhere in s counts.
func IsURL(s string) bool {
	return urlRegex.MatchString(s)
}

// IsMegaLink reports whether s refers to mega.nz.
func IsMegaLink(s string) bool {
	return strings.Contains(s, megaHost)
}

// Classify picks the most specific kind for s. Magnet links win over mega
// links, which win over generic URLs.
func Classify(s string) Kind {
	switch {
	case IsMagnet(s):
		return KindMagnet
	case IsMegaLink(s):
		return KindMega
	case IsURL(s):
		return KindURL
	default:
		return KindUnknown
	}
}
