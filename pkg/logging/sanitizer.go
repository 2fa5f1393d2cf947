package logging

import "regexp"

// RedactedText replaces anything secret in a log line.
const RedactedText = "[REDACTED]"

type redaction struct {
	pattern     *regexp.Regexp
	replacement string
}

var (
	// password=…, pwd=… and pass=… up to the next delimiter.
	passwordParam = redaction{
		regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`),
		"${1}=" + RedactedText,
	}
	// user:secret@host in a URL.
	urlCredentials = redaction{
		regexp.MustCompile(`://[^:/\s]+:[^@\s]+@[^/?\s]+`),
		"://" + RedactedText + "@" + RedactedText,
	}
	bearerToken = redaction{
		regexp.MustCompile(`Bearer\s+[A-Za-z0-9-_]+\.[A-Za-z0-9-_]+\.[A-Za-z0-9-_]*`),
		"Bearer " + RedactedText,
	}
	apiKeyParam = redaction{
		regexp.MustCompile(`(?i)(api[_-]?key|apikey|key)=[A-Za-z0-9-_]{20,}`),
		"${1}=" + RedactedText,
	}
	// String values of the keys the data source service encrypts.
	configSecret = redaction{
		regexp.MustCompile(`(?i)"(password|passwd|api_?key|token|access_token|secret|credentials)"\s*:\s*"(?:[^"\\]|\\.)*"`),
		`"${1}":"` + RedactedText + `"`,
	}

	connectionRedactions = []redaction{passwordParam, urlCredentials}
	errorRedactions      = []redaction{passwordParam, bearerToken, apiKeyParam, urlCredentials}
)

func redact(s string, rules []redaction) string {
	for _, r := range rules {
		s = r.pattern.ReplaceAllString(s, r.replacement)
	}
	return s
}

// SanitizeConnectionString hides credentials in a DSN or database URL.
func SanitizeConnectionString(connStr string) string {
	return redact(connStr, connectionRedactions)
}

// SanitizeError renders err without the secrets driver and HTTP client
// errors tend to echo: DSNs, bearer tokens and API keys.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return redact(err.Error(), errorRedactions)
}

// SanitizeConfigJSON hides secret values in a data source config document.
func SanitizeConfigJSON(config string) string {
	return redact(config, []redaction{configSecret})
}
