package log

import (
	"net/url"
	"regexp"
	"strings"
)

// sensitiveParams are query parameter names (lowercased) whose values are
// masked in logged URLs. Ad servers commonly sign pixel URLs with these.
var sensitiveParams = map[string]bool{
	"token":         true,
	"access_token":  true,
	"auth":          true,
	"authorization": true,
	"key":           true,
	"api_key":       true,
	"apikey":        true,
	"sig":           true,
	"signature":     true,
	"secret":        true,
	"password":      true,
	"session":       true,
	"sid":           true,
}

// embeddedURL finds http(s) URLs inside free text such as error messages.
var embeddedURL = regexp.MustCompile(`https?://[^\s"'<>]+`)

// RedactURL masks sensitive query parameter values and any userinfo password
// in raw. Parameter order and every other byte of the URL are kept. Strings
// that do not parse as URLs are returned unchanged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	changed := false
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.User(u.User.Username())
			changed = true
		}
	}

	if u.RawQuery != "" {
		params := strings.Split(u.RawQuery, "&")
		for i, p := range params {
			name, _, found := strings.Cut(p, "=")
			if !found {
				continue
			}
			if sensitiveParams[strings.ToLower(name)] {
				params[i] = name + "=" + MaskValue
				changed = true
			}
		}
		u.RawQuery = strings.Join(params, "&")
	}

	if !changed {
		return raw
	}
	return u.String()
}

// RedactURLs applies RedactURL to every http(s) URL found in s.
func RedactURLs(s string) string {
	if !strings.Contains(s, "://") {
		return s
	}
	return embeddedURL.ReplaceAllStringFunc(s, RedactURL)
}
