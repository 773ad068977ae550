package monitor_config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/NordCoder/pinmon/internal/domain/check"
)

type entry struct {
	URL     string         `mapstructure:"url"`
	IPs     []string       `mapstructure:"ips"`
	Code    int            `mapstructure:"code"`
	Regexp  string         `mapstructure:"regexp"`
	Options map[string]any `mapstructure:"options"`
}

// Definitions converts the checks section into definitions grouped by period.
func (c *Config) Definitions() (map[time.Duration][]check.Definition, error) {
	keys := make([]string, 0, len(c.Checks))
	for k := range c.Checks {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[time.Duration][]check.Definition, len(keys))
	for _, key := range keys {
		period, err := ParsePeriod(key)
		if err != nil {
			return nil, err
		}
		if _, dup := out[period]; dup {
			return nil, fmt.Errorf("%w: period %q configured twice", ErrInvalid, key)
		}
		defs := make([]check.Definition, 0, len(c.Checks[key]))
		for i, raw := range c.Checks[key] {
			d, err := parseEntry(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: checks[%s][%d]: %v", ErrInvalid, key, i, err)
			}
			if err := validateDefinition(d); err != nil {
				return nil, fmt.Errorf("%w: checks[%s][%d]: %v", ErrInvalid, key, i, err)
			}
			defs = append(defs, d)
		}
		out[period] = defs
	}
	return out, nil
}

// ParsePeriod accepts integer seconds ("60") or a duration ("1m30s").
func ParsePeriod(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	var d time.Duration
	if n, err := strconv.Atoi(s); err == nil {
		d = time.Duration(n) * time.Second
	} else {
		pd, perr := time.ParseDuration(s)
		if perr != nil {
			return 0, fmt.Errorf("%w: bad period %q", ErrInvalid, s)
		}
		d = pd
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: period %q must be positive", ErrInvalid, s)
	}
	return d, nil
}

func parseEntry(raw any) (check.Definition, error) {
	switch v := raw.(type) {
	case []any:
		return parseTuple(v)
	case []string:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
		return parseTuple(items)
	case map[string]any:
		var e entry
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			ErrorUnused:      true,
			WeaklyTypedInput: true,
			Result:           &e,
		})
		if err != nil {
			return check.Definition{}, err
		}
		if err := dec.Decode(v); err != nil {
			return check.Definition{}, err
		}
		return check.Definition(e), nil
	default:
		return check.Definition{}, fmt.Errorf("unsupported entry type %T", raw)
	}
}

// parseTuple handles [url, ips] and [url, ips, options]. As in the map form,
// "code" and "regexp" may be given inside options.
func parseTuple(items []any) (check.Definition, error) {
	if len(items) != 2 && len(items) != 3 {
		return check.Definition{}, fmt.Errorf("entry must have 2 or 3 items, got %d", len(items))
	}
	url, ok := items[0].(string)
	if !ok {
		return check.Definition{}, fmt.Errorf("url must be a string, got %T", items[0])
	}
	var ips []string
	if err := mapstructure.WeakDecode(items[1], &ips); err != nil {
		return check.Definition{}, fmt.Errorf("ips: %w", err)
	}
	d := check.Definition{URL: url, IPs: ips}
	if len(items) == 2 {
		return d, nil
	}

	opts, ok := items[2].(map[string]any)
	if !ok {
		return check.Definition{}, fmt.Errorf("options must be a map, got %T", items[2])
	}
	rest := make(map[string]any, len(opts))
	for k, val := range opts {
		switch k {
		case "code":
			if err := mapstructure.WeakDecode(val, &d.Code); err != nil {
				return check.Definition{}, fmt.Errorf("code: %w", err)
			}
		case "regexp":
			s, ok := val.(string)
			if !ok {
				return check.Definition{}, fmt.Errorf("regexp must be a string, got %T", val)
			}
			d.Regexp = s
		default:
			rest[k] = val
		}
	}
	if len(rest) > 0 {
		d.Options = rest
	}
	return d, nil
}
