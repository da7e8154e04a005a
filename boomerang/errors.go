package boomerang

// Known fatal error type codes pushed by the backend.
const (
	errTypeInsufficientCredits = "insufficient_credits"
	errTypeAuthFailed          = "authentication_failed"
)

// fatalMessages maps known error type codes to remediation text shown in the
// single fatal banner.
var fatalMessages = map[string]string{
	errTypeInsufficientCredits: "Run stopped: organization credits are exhausted. Add credits and try again.",
	errTypeAuthFailed:          "Run stopped: authentication failed. Check the configured API key.",
}

// classifyFatal turns a boomerang_error payload into user-facing banner text.
// Unknown codes fall back to the raw backend message.
func classifyFatal(errorType, raw string) string {
	if msg, ok := fatalMessages[errorType]; ok {
		return msg
	}
	if raw != "" {
		return raw
	}
	return "Run stopped: the backend reported an unrecoverable error."
}
