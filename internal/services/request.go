package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Params holds per-call request options such as limit, offset, order and orderDirection.
//
// Keys are sent as-is; unknown keys pass through untouched.
type Params map[string]any

// mergeParams returns a new map holding defaults overridden key-by-key by opts.
// Neither input is modified.
func mergeParams(defaults, opts Params) Params {
	merged := make(Params, len(defaults)+len(opts)+2)
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range opts {
		merged[k] = v
	}
	return merged
}

// region returns the countryCode and locale injected into every request.
func (s *TidalService) region() (string, string) {
	if !s.cfg.sessionRegion {
		return requestCountryCode, requestLocale
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.CountryCode, s.session.Locale
}

// buildParams merges opts over defaults and appends the mandatory region fields.
func (s *TidalService) buildParams(defaults, opts Params) Params {
	p := mergeParams(defaults, opts)
	p["countryCode"], p["locale"] = s.region()
	return p
}

// formatValue renders a parameter value the way it appears on the wire.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []string:
		return strings.Join(val, ",")
	case []SearchType:
		parts := make([]string, len(val))
		for i, st := range val {
			parts[i] = string(st)
		}
		return strings.Join(parts, ",")
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// escape percent-encodes s, using %20 rather than + for spaces.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// encodeQuery appends p to rawURL as a query string. Keys are sorted for stable output.
func encodeQuery(rawURL string, p Params) string {
	if len(p) == 0 {
		return rawURL
	}

	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, escape(k)+"="+escape(formatValue(p[k])))
	}

	return rawURL + "?" + strings.Join(pairs, "&")
}

// encodeBody serializes p as a PUT/POST payload.
func encodeBody(p Params, enc BodyEncoding) (io.Reader, error) {
	if enc == BodyJSON {
		data, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		return bytes.NewReader(data), nil
	}

	form := url.Values{}
	for k, v := range p {
		form.Set(k, formatValue(v))
	}
	return strings.NewReader(form.Encode()), nil
}
