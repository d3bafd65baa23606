// headers/redact/redact.go
package redact

// SensitiveHeaderData redacts sensitive data based on the hideSensitiveData flag.
func SensitiveHeaderData(hideSensitiveData bool, key, value string) string {
	if hideSensitiveData {
		// Define sensitive data keys that should be redacted.
		sensitiveKeys := map[string]bool{
			"Authorization": true,
			"AccessToken":   true,
			"RefreshToken":  true,
		}

		if _, found := sensitiveKeys[key]; found {
			return "REDACTED"
		}
	}
	return value
}
