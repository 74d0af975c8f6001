package utils

// MaskSecret hides all but a hint of a credential for log output. Secrets are
// never logged verbatim.
func MaskSecret(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:2] + "****"
}
