// Package textutil provides small text helpers shared across the platform:
// filename sanitization for stored uploads and slug derivation for tags.
package textutil
