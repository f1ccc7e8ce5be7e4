package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// HTTPService observes identity from an external auth provider over HTTP.
// It polls GET {base}/v1/identity and emits a Session whenever the answer
// changes; SignOut posts to {base}/v1/signout.
type HTTPService struct {
	baseURL  string
	interval time.Duration
	client   *http.Client
}

func NewHTTPService(baseURL string, interval time.Duration) *HTTPService {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &HTTPService{
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		interval: interval,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *HTTPService) Sessions(ctx context.Context) <-chan Session {
	ch := make(chan Session, 8)
	go func() {
		defer close(ch)

		// The provider starts out unresolved.
		last := Session{Loading: true}
		ch <- last

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			session, err := s.fetchIdentity(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				// Poll failures keep the last observed session; the guard
				// only re-evaluates on a fresh emission.
				log.Printf("identity poll failed: %v", err)
			} else if session != last {
				last = session
				select {
				case ch <- session:
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return ch
}

func (s *HTTPService) fetchIdentity(ctx context.Context) (Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/identity", nil)
	if err != nil {
		return Session{}, fmt.Errorf("create request: %w", err)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("fetch identity: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return Session{}, fmt.Errorf("identity status %d: %s", res.StatusCode, string(body))
	}

	var session Session
	if err := json.NewDecoder(res.Body).Decode(&session); err != nil {
		return Session{}, fmt.Errorf("decode identity: %w", err)
	}
	return session, nil
}

func (s *HTTPService) SignOut(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/signout", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return fmt.Errorf("signout status %d: %s", res.StatusCode, string(body))
	}
	return nil
}
