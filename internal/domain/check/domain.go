package check

import (
	"net/netip"
	"regexp"
	"time"
)

const DefaultCode = 200

// Definition is one configured entry: a URL pattern bound to a set of IPs.
// The URL may omit the scheme, in which case it expands to http and https.
type Definition struct {
	URL     string         `json:"url"`
	IPs     []string       `json:"ips"`
	Code    int            `json:"code"`
	Regexp  string         `json:"regexp"`
	Options map[string]any `json:"options"`
}

type RequestOptions struct {
	Timeout        time.Duration     `mapstructure:"timeout"`
	Headers        map[string]string `mapstructure:"headers"`
	AllowRedirects *bool             `mapstructure:"allow_redirects"`
	MaxRedirects   int               `mapstructure:"max_redirects"`
	VerifyTLS      *bool             `mapstructure:"verify_tls"`
}

const DefaultMaxRedirects = 10

func (o RequestOptions) FollowRedirects() bool {
	return o.AllowRedirects == nil || *o.AllowRedirects
}

func (o RequestOptions) RedirectLimit() int {
	if o.MaxRedirects <= 0 {
		return DefaultMaxRedirects
	}
	return o.MaxRedirects
}

func (o RequestOptions) SkipVerify() bool {
	return o.VerifyTLS != nil && !*o.VerifyTLS
}

// Instance is a schedulable probe: one concrete URL against one IP.
// URL always carries a scheme.
type Instance struct {
	URL     string
	Scheme  string
	Host    string
	IP      netip.Addr
	Code    int
	Pattern *regexp.Regexp
	Options RequestOptions
	Period  time.Duration
}

func (i Instance) String() string {
	return i.URL + " @ " + i.IP.String()
}

type PeriodGroup struct {
	Period    time.Duration
	Instances []Instance
}

// Interval is the spacing between two launches within one pass.
func (g PeriodGroup) Interval() time.Duration {
	if len(g.Instances) == 0 {
		return 0
	}
	return g.Period / time.Duration(len(g.Instances))
}
