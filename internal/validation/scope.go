// Package validation valida valores de configuración que viajan en el protocolo.
package validation

import "strings"

// ValidScopeToken indica si name es un scope-token (RFC 6749 §3.3):
// 1*( %x21 / %x23-5B / %x5D-7E ). Excluye espacio, comillas y backslash.
func ValidScopeToken(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < 0x21 || c > 0x7e || c == '"' || c == '\\' {
			return false
		}
	}
	return true
}

// InvalidScopes devuelve los elementos de scopes que no son scope-tokens.
func InvalidScopes(scopes []string) []string {
	var bad []string
	for _, s := range scopes {
		if !ValidScopeToken(s) {
			bad = append(bad, s)
		}
	}
	return bad
}

// SplitScope separa el parámetro scope (delimitado por espacios) en tokens.
func SplitScope(raw string) []string {
	return strings.Fields(raw)
}
