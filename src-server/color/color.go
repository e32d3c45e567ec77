// Package color implements the duality between raw hex colors and the
// dashboard's design-system palette tokens as an explicit bidirectional
// lookup, with format detection instead of untyped strings.
package color

import (
	"regexp"
	"strings"

	"cityboard/src-server/apperr"
)

// Fallback is the neutral gray used whenever a category cannot be
// resolved to a color.
const Fallback = "#6B7280"

type Kind int

const (
	KindHex Kind = iota
	KindToken
)

// Value is a tagged color: either a raw hex string or a palette token.
type Value struct {
	Kind Kind
	Raw  string
}

var hexPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// tokenToHex is the design-system palette. hexToToken below is derived
// from it, so the mapping stays bidirectional by construction.
var tokenToHex = map[string]string{
	"red":    "#FF6B6B",
	"teal":   "#4ECDC4",
	"blue":   "#45B7D1",
	"green":  "#96CEB4",
	"yellow": "#FECA57",
	"pink":   "#FF9FF3",
	"gray":   Fallback,
}

var hexToToken = func() map[string]string {
	m := make(map[string]string, len(tokenToHex))
	for token, hex := range tokenToHex {
		m[strings.ToUpper(hex)] = token
	}
	return m
}()

// Parse detects the format of a color string and returns it tagged.
// Hex values must be #RRGGBB; everything else is treated as a token and
// must exist in the palette.
func Parse(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if hexPattern.MatchString(s) {
		return Value{Kind: KindHex, Raw: s}, nil
	}
	token := strings.ToLower(s)
	if _, ok := tokenToHex[token]; !ok {
		return Value{}, apperr.Format(s, "unknown palette token")
	}
	return Value{Kind: KindToken, Raw: token}, nil
}

// Hex renders the value as a hex color.
func (v Value) Hex() string {
	if v.Kind == KindToken {
		return tokenToHex[v.Raw]
	}
	return v.Raw
}

// TokenToHex resolves a palette token. Unmapped tokens are a format
// error.
func TokenToHex(token string) (string, error) {
	hex, ok := tokenToHex[strings.ToLower(strings.TrimSpace(token))]
	if !ok {
		return "", apperr.Format(token, "unknown palette token")
	}
	return hex, nil
}

// HexToToken maps a hex color back onto its palette token. Hex values
// outside the palette pass through unchanged.
func HexToToken(hex string) string {
	if token, ok := hexToToken[strings.ToUpper(strings.TrimSpace(hex))]; ok {
		return token
	}
	return hex
}

// Normalize accepts either form and returns the hex representation the
// persistence layer stores.
func Normalize(s string) (string, error) {
	v, err := Parse(s)
	if err != nil {
		return "", err
	}
	return v.Hex(), nil
}
