package ping_worker

import (
	"context"
	"net/http"
	"net/netip"

	"github.com/NordCoder/pinmon/internal/domain/check"
)

type HTTPGetter interface {
	Get(ctx context.Context, rawURL string, ip netip.Addr, opts check.RequestOptions) (*http.Response, error)
}

var _ HTTPGetter = (*Client)(nil)
