// Package probe checks that the remote sqld server is reachable before
// any benchmark traffic is sent, breaking the round trip down into DNS,
// connect and server processing time.
package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	hstat "github.com/tcnksm/go-httpstat"
)

// Timing is the breakdown of one probe request.
type Timing struct {
	DNSLookup        time.Duration `json:"dns_lookup_ns"`
	TCPConnection    time.Duration `json:"tcp_connection_ns"`
	ServerProcessing time.Duration `json:"server_processing_ns"`
	Total            time.Duration `json:"total_ns"`
	StatusCode       int           `json:"status_code"`
}

// Remote issues a single GET against the server URL. Any transport error
// means the target is unreachable; the caller treats that as fatal. The
// HTTP status is reported but not judged here, since sqld answers plain
// GETs with a non-200 without being broken.
func Remote(ctx context.Context, rawURL string) (*Timing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build probe request: %w", err)
	}

	var result hstat.Result
	req = req.WithContext(hstat.WithHTTPStat(req.Context(), &result))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", rawURL, err)
	}

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		resp.Body.Close()

		return nil, fmt.Errorf("read probe response: %w", err)
	}

	resp.Body.Close()

	end := time.Now()
	result.End(end)

	return &Timing{
		DNSLookup:        result.DNSLookup,
		TCPConnection:    result.TCPConnection,
		ServerProcessing: result.ServerProcessing,
		Total:            result.Total(end),
		StatusCode:       resp.StatusCode,
	}, nil
}
