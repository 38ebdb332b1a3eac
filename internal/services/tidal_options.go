package services

import (
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
)

const (
	tidalBaseURLv1 = "https://api.tidal.com/v1"
	tidalBaseURLv2 = "https://api.tidal.com/v2"
	tidalTokenURL  = "https://auth.tidal.com/v1/oauth2/token"

	// DefaultClientID is the public client id used when none is configured.
	DefaultClientID = "CzET4vdadNUFQ5JU"

	DefaultCountryCode = "US"
	DefaultLocale      = "en_US"

	// Region values injected into every request unless [WithSessionRegion] is used.
	requestCountryCode = "US"
	requestLocale      = "en_us"

	refreshScope = "r_usr w_usr"
)

// BodyEncoding selects how PUT and POST payloads are serialized.
type BodyEncoding int

const (
	BodyForm BodyEncoding = iota // application/x-www-form-urlencoded
	BodyJSON                     // application/json
)

func (b BodyEncoding) contentType() string {
	if b == BodyJSON {
		return "application/json"
	}
	return "application/x-www-form-urlencoded"
}

// TidalConfig holds the caller-supplied session credentials and regional defaults.
type TidalConfig struct {
	AccessToken  string
	UserID       string
	RefreshToken string
	ClientID     string
	CountryCode  string
	Locale       string
}

// validate checks required fields and fills in defaults.
//
// The access token is checked before the user id.
func (c TidalConfig) validate() (TidalConfig, error) {
	if c.AccessToken == "" {
		return c, NewAccessTokenError("No access token provided.")
	}
	if c.UserID == "" {
		return c, NewOptionsError("No User ID supplied.")
	}
	if c.ClientID == "" {
		c.ClientID = DefaultClientID
	}
	if c.CountryCode == "" {
		c.CountryCode = DefaultCountryCode
	}
	if c.Locale == "" {
		c.Locale = DefaultLocale
	}
	return c, nil
}

// clientConfig holds transport-level settings for [TidalService].
type clientConfig struct {
	baseURLv1     string
	baseURLv2     string
	tokenURL      string
	httpClient    *http.Client
	logger        *log.Logger
	sessionRegion bool
	bodyEncoding  BodyEncoding
	onRefresh     func(*oauth2.Token)
}

func defaultClientConfig() clientConfig {
	return clientConfig{
		baseURLv1:  tidalBaseURLv1,
		baseURLv2:  tidalBaseURLv2,
		tokenURL:   tidalTokenURL,
		httpClient: http.DefaultClient,
		logger:     log.New(io.Discard),
	}
}

// Option configures a [TidalService].
type Option func(*clientConfig)

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *log.Logger) Option {
	return func(c *clientConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBaseURLs overrides the v1 and v2 API base URLs. Empty values keep the default.
func WithBaseURLs(v1, v2 string) Option {
	return func(c *clientConfig) {
		if v1 != "" {
			c.baseURLv1 = v1
		}
		if v2 != "" {
			c.baseURLv2 = v2
		}
	}
}

// WithTokenURL overrides the OAuth2 token endpoint used by Refresh.
func WithTokenURL(url string) Option {
	return func(c *clientConfig) {
		if url != "" {
			c.tokenURL = url
		}
	}
}

// WithSessionRegion injects the session's CountryCode and Locale into requests instead of the
// fixed US/en_us pair.
func WithSessionRegion() Option {
	return func(c *clientConfig) {
		c.sessionRegion = true
	}
}

// WithBodyEncoding sets the encoding of PUT/POST payloads. Defaults to [BodyForm].
func WithBodyEncoding(enc BodyEncoding) Option {
	return func(c *clientConfig) {
		c.bodyEncoding = enc
	}
}

// WithTokenRefreshCallback registers a function invoked after every successful Refresh.
func WithTokenRefreshCallback(fn func(*oauth2.Token)) Option {
	return func(c *clientConfig) {
		c.onRefresh = fn
	}
}
