package auth

import "strings"

// likeWhitelist is the set of characters allowed to survive sanitization
// for LIKE pattern searches. Everything else — markup, SQL metacharacters,
// and the LIKE wildcards themselves — is dropped, not escaped.
const likeWhitelist = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789@._-+"

// SanitizeForLike reduces an untrusted fragment to characters safe to
// embed as a bound parameter inside a fixed %...% LIKE pattern.
//
// The underscore is in the whitelist as a legitimate email character, but
// because _ is also a single-character LIKE wildcard it is stripped along
// with %: the final pattern already wraps the value in %...%, so dropped
// wildcards cannot widen the match.
//
// SanitizeForLike always returns a (possibly empty) string and never fails.
func SanitizeForLike(fragment string) string {
	if fragment == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(fragment))
	for _, c := range fragment {
		if c == '%' || c == '_' {
			continue
		}
		if strings.ContainsRune(likeWhitelist, c) {
			b.WriteRune(c)
		}
	}
	return b.String()
}
