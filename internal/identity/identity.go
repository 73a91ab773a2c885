// Package identity derives the stable, deterministic identifiers (C1) that
// every other component keys its rows on.
package identity

import "github.com/google/uuid"

// Identify returns the version-5 UUID computed over the DNS namespace using
// the exact relative path (forward-slash separated, no leading slash) of a
// source image. It is deterministic: Identify(p) == Identify(p) for any p.
func Identify(relativePath string) string {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(relativePath)).String()
}

// VariantID derives a stable identifier for a generated derivative of an
// image, namespaced under the owning image's identifier and the variant
// type label so the same (image, type) pair always yields the same id.
func VariantID(imageID, variantType string) string {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(imageID+":"+variantType)).String()
}
