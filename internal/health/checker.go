package health

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// WaitForOK polls the health route until it answers 200 with an OK body or
// the timeout elapses. This is the external verification contract for the
// whole pipeline: proxy and supervised service both live.
func WaitForOK(ctx context.Context, url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	var lastErr error
	for {
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return fmt.Errorf("health check at %s never passed: %w", url, lastErr)
			}
			return fmt.Errorf("health check at %s never passed", url)
		case <-ticker.C:
			if err := probe(ctx, url); err != nil {
				lastErr = err
				continue
			}
			return nil
		}
	}
}

func probe(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return err
	}
	if strings.TrimSpace(string(body)) != "OK" {
		return fmt.Errorf("unexpected body %q", strings.TrimSpace(string(body)))
	}
	return nil
}
