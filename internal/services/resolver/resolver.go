// Package resolver expands check definitions into schedulable instances,
// one per scheme and target IP, grouped by period.
package resolver

import (
	"fmt"
	"net/netip"
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/NordCoder/pinmon/internal/domain/check"
)

type ErrConfig string

func (e ErrConfig) Error() string { return string(e) }

const ErrInvalid = ErrConfig("invalid check configuration")

var defaultSchemes = []string{"http", "https"}

type Resolver struct{}

var _ check.Resolver = Resolver{}

func (Resolver) Resolve(periods map[time.Duration][]check.Definition) ([]check.PeriodGroup, error) {
	return Resolve(periods)
}

// Resolve returns groups in ascending period order. Inside a group the order
// is definition order, then scheme (http before https), then IP order.
func Resolve(periods map[time.Duration][]check.Definition) ([]check.PeriodGroup, error) {
	if len(periods) == 0 {
		return nil, fmt.Errorf("%w: no periods configured", ErrInvalid)
	}
	keys := make([]time.Duration, 0, len(periods))
	for p := range periods {
		keys = append(keys, p)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	groups := make([]check.PeriodGroup, 0, len(keys))
	for _, period := range keys {
		if period <= 0 {
			return nil, fmt.Errorf("%w: period %s must be positive", ErrInvalid, period)
		}
		g := check.PeriodGroup{Period: period}
		for i, def := range periods[period] {
			insts, err := Expand(def, period)
			if err != nil {
				return nil, fmt.Errorf("%w: period %s, check %d (%s): %v", ErrInvalid, period, i, def.URL, err)
			}
			g.Instances = append(g.Instances, insts...)
		}
		if len(g.Instances) == 0 {
			return nil, fmt.Errorf("%w: period %s has no checks", ErrInvalid, period)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// Expand binds one definition to every scheme and IP it covers.
func Expand(def check.Definition, period time.Duration) ([]check.Instance, error) {
	u, err := parseURL(def.URL)
	if err != nil {
		return nil, err
	}

	schemes := defaultSchemes
	if u.Scheme != "" {
		schemes = []string{u.Scheme}
	}

	ips := make([]netip.Addr, 0, len(def.IPs))
	for _, raw := range def.IPs {
		ip, err := netip.ParseAddr(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("bad ip %q: %w", raw, err)
		}
		ips = append(ips, ip)
	}

	var pattern *regexp.Regexp
	if def.Regexp != "" {
		if pattern, err = regexp.Compile(def.Regexp); err != nil {
			return nil, fmt.Errorf("bad regexp: %w", err)
		}
	}

	opts, err := DecodeOptions(def.Options)
	if err != nil {
		return nil, err
	}

	code := def.Code
	if code == 0 {
		code = check.DefaultCode
	}

	out := make([]check.Instance, 0, len(schemes)*len(ips))
	for _, scheme := range schemes {
		su := *u
		su.Scheme = scheme
		full := su.String()
		for _, ip := range ips {
			out = append(out, check.Instance{
				URL:     full,
				Scheme:  scheme,
				Host:    su.Hostname(),
				IP:      ip,
				Code:    code,
				Pattern: pattern,
				Options: opts,
				Period:  period,
			})
		}
	}
	return out, nil
}

func parseURL(raw string) (*url.URL, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("empty url")
	}
	// a bare "host/path" has neither scheme nor authority marker
	if !strings.Contains(s, "://") && !strings.HasPrefix(s, "//") {
		s = "//" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("bad url %q: %w", raw, err)
	}
	switch u.Scheme {
	case "", "http", "https":
	default:
		return nil, fmt.Errorf("unsupported scheme %q in %q", u.Scheme, raw)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("url %q has no host", raw)
	}
	return u, nil
}

// DecodeOptions turns the free-form options map into request options.
// Unknown keys are rejected.
func DecodeOptions(raw map[string]any) (check.RequestOptions, error) {
	var opts check.RequestOptions
	if len(raw) == 0 {
		return opts, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			secondsToDuration,
		),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &opts,
	})
	if err != nil {
		return opts, err
	}
	if err := dec.Decode(raw); err != nil {
		return opts, fmt.Errorf("bad options: %w", err)
	}
	if opts.Timeout < 0 {
		return opts, fmt.Errorf("bad options: negative timeout %s", opts.Timeout)
	}
	return opts, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// secondsToDuration reads bare numbers as seconds, so "timeout: 5" means 5s.
func secondsToDuration(f reflect.Type, t reflect.Type, data any) (any, error) {
	if t != durationType || f == durationType {
		return data, nil
	}
	switch f.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return time.Duration(reflect.ValueOf(data).Int()) * time.Second, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return time.Duration(reflect.ValueOf(data).Uint()) * time.Second, nil
	case reflect.Float32, reflect.Float64:
		return time.Duration(reflect.ValueOf(data).Float() * float64(time.Second)), nil
	}
	return data, nil
}
