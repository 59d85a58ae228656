package sentry

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/getsentry/sentry-go"
)

// SensitivePatterns matches personal data that may leak through error texts.
// Load errors carry file paths and source URLs, which can hold a home
// directory or signed query parameters.
var SensitivePatterns = struct {
	HomeDir *regexp.Regexp
	URL     *regexp.Regexp
	Email   *regexp.Regexp
	Token   *regexp.Regexp
}{
	HomeDir: regexp.MustCompile(`(/home/|/Users/|[A-Za-z]:\\Users\\)[^/\\\s"']+`),
	URL:     regexp.MustCompile(`https?://[^\s"']+`),
	Email:   regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
	Token:   regexp.MustCompile(`(?i)(token|secret|password|key|signature)[:=]\s*['"]?[^\s&'"]+['"]?`),
}

// SensitiveFields are breadcrumb/extra keys whose values are always dropped
var SensitiveFields = []string{
	"password", "secret", "token", "key", "auth", "cookie", "dsn",
}

// sanitizeValue redacts home directories, URL credentials and query strings,
// emails and key=value secrets
func sanitizeValue(value string) string {
	if value == "" {
		return value
	}

	value = SensitivePatterns.URL.ReplaceAllStringFunc(value, sanitizeURL)
	value = SensitivePatterns.HomeDir.ReplaceAllStringFunc(value, func(m string) string {
		switch {
		case strings.HasPrefix(m, "/home/"):
			return "/home/[USER]"
		case strings.HasPrefix(m, "/Users/"):
			return "/Users/[USER]"
		default:
			return m[:strings.Index(m, `\Users\`)] + `\Users\[USER]`
		}
	})
	value = SensitivePatterns.Email.ReplaceAllString(value, "[EMAIL_REDACTED]")
	value = SensitivePatterns.Token.ReplaceAllString(value, "${1}: [REDACTED]")

	return value
}

func sanitizeURL(match string) string {
	raw := strings.TrimRight(match, ":,.;)")
	trailing := match[len(raw):]

	u, err := url.Parse(raw)
	if err != nil {
		return "[URL_REDACTED]" + trailing
	}
	if u.User != nil {
		u.User = url.User("[REDACTED]")
	}
	if u.RawQuery != "" {
		u.RawQuery = "[REDACTED]"
	}
	u.Fragment = ""

	out := u.String()
	// url.String escapes the brackets
	out = strings.ReplaceAll(out, "%5BREDACTED%5D", "[REDACTED]")
	return out + trailing
}

func isSensitiveField(key string) bool {
	lower := strings.ToLower(key)
	for _, field := range SensitiveFields {
		if strings.Contains(lower, field) {
			return true
		}
	}
	return false
}

func sanitizeMap(data map[string]interface{}) map[string]interface{} {
	if data == nil {
		return nil
	}

	sanitized := make(map[string]interface{}, len(data))
	for key, value := range data {
		switch v := value.(type) {
		case string:
			if isSensitiveField(key) {
				sanitized[key] = "[REDACTED]"
			} else {
				sanitized[key] = sanitizeValue(v)
			}
		default:
			if isSensitiveField(key) {
				sanitized[key] = "[REDACTED]"
			} else {
				sanitized[key] = value
			}
		}
	}
	return sanitized
}

func sanitizeEvent(event *sentry.Event) *sentry.Event {
	if event == nil {
		return event
	}

	event.Message = sanitizeValue(event.Message)
	for i := range event.Exception {
		event.Exception[i].Value = sanitizeValue(event.Exception[i].Value)
	}
	for key, value := range event.Tags {
		if isSensitiveField(key) {
			event.Tags[key] = "[REDACTED]"
			continue
		}
		event.Tags[key] = sanitizeValue(value)
	}
	event.Extra = sanitizeMap(event.Extra)

	// no user identity is ever reported
	event.User = sentry.User{}
	event.ServerName = ""

	return event
}

func sanitizeBreadcrumb(breadcrumb *sentry.Breadcrumb) *sentry.Breadcrumb {
	if breadcrumb == nil {
		return breadcrumb
	}
	breadcrumb.Message = sanitizeValue(breadcrumb.Message)
	breadcrumb.Data = sanitizeMap(breadcrumb.Data)
	return breadcrumb
}
