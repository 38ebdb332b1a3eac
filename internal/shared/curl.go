// Utilities for parsing cURL commands copied from the TIDAL web player.
package shared

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
)

var (
	headerRegex = regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"`)
	urlRegex    = regexp.MustCompile(`https?://[^\s'"]+`)
	userRegex   = regexp.MustCompile(`/(?:users|profiles)/(\d+)`)
)

// CurlCredentials holds the session details recovered from a cURL command.
type CurlCredentials struct {
	Headers     map[string]string
	AccessToken string
	UserID      string
	CountryCode string
	Locale      string
}

// ParseCurlFile reads a .sh file containing a cURL command and extracts TIDAL credentials.
func ParseCurlFile(filepath string) (*CurlCredentials, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(content)
}

// ParseCurlCommand parses a cURL command ("Copy as cURL" in the browser's network tab) for a
// request to api.tidal.com and extracts the bearer token, user id and region.
func ParseCurlCommand(data []byte) (*CurlCredentials, error) {
	curlCmd := string(data)
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	creds := &CurlCredentials{Headers: make(map[string]string)}

	for _, match := range headerRegex.FindAllStringSubmatch(curlCmd, -1) {
		headerLine := match[1]
		if headerLine == "" {
			headerLine = match[2]
		}

		parts := strings.SplitN(headerLine, ":", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if strings.EqualFold(key, "cookie") {
			continue
		}
		creds.Headers[key] = value

		if strings.EqualFold(key, "authorization") {
			if tok, ok := strings.CutPrefix(value, "Bearer "); ok {
				creds.AccessToken = strings.TrimSpace(tok)
			}
		}
	}

	if raw := urlRegex.FindString(curlCmd); raw != "" {
		if u, err := url.Parse(raw); err == nil {
			q := u.Query()
			creds.CountryCode = q.Get("countryCode")
			creds.Locale = q.Get("locale")
			if m := userRegex.FindStringSubmatch(u.Path); m != nil {
				creds.UserID = m[1]
			}
		}
	}

	if creds.AccessToken == "" {
		return nil, fmt.Errorf("%w: no bearer token found in curl command", ErrMissingCredentials)
	}

	return creds, nil
}

// ToTOML renders the credentials as a [credentials.tidal] config section.
func (c *CurlCredentials) ToTOML() string {
	var b strings.Builder
	b.WriteString("[credentials.tidal]\n")
	fmt.Fprintf(&b, "access_token = %q\n", c.AccessToken)
	fmt.Fprintf(&b, "user_id = %q\n", c.UserID)
	if c.CountryCode != "" {
		fmt.Fprintf(&b, "country_code = %q\n", c.CountryCode)
	}
	if c.Locale != "" {
		fmt.Fprintf(&b, "locale = %q\n", c.Locale)
	}
	return b.String()
}
