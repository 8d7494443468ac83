// Package notifier delivers domain events to the configured notification
// webhooks. Delivery is best-effort: bounded retries, then drop and log.
// Nothing here ever propagates an error back into the transactional
// operations that emit events.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/movieclubhq/movieclub-server/internal/models"
	"github.com/movieclubhq/movieclub-server/internal/util"
)

const (
	deliverTimeout = 15 * time.Second
	retryBaseDelay = 500 * time.Millisecond
)

// MemberSource resolves a club's member ids for recipient fan-out.
type MemberSource interface {
	ClubMembers(ctx context.Context, clubID string) ([]string, error)
}

// payload is the JSON body posted to each webhook. Recipients are resolved
// here so receivers only have to deliver.
type payload struct {
	models.Event
	Recipients []string `json:"recipients"`
}

type Client struct {
	urls        []string
	members     MemberSource
	maxAttempts int
	httpClient  *http.Client
	limiter     *rate.Limiter
}

func New(urls []string, members MemberSource, maxAttempts int) *Client {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Client{
		urls:        urls,
		members:     members,
		maxAttempts: maxAttempts,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		// Webhook providers throttle aggressively; stay well under.
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
	}
}

// Publish hands the event off for background delivery and returns
// immediately. Failures are logged and dropped.
func (c *Client) Publish(ev models.Event) {
	if len(c.urls) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
		defer cancel()
		if err := c.Deliver(ctx, ev); err != nil {
			slog.Warn("notification delivery failed", "type", ev.Type, "club", ev.ClubID, "error", err)
		}
	}()
}

// Deliver resolves recipients and posts the event to every configured
// webhook concurrently. Each webhook gets a bounded number of attempts.
func (c *Client) Deliver(ctx context.Context, ev models.Event) error {
	recipients, err := c.resolveRecipients(ctx, ev)
	if err != nil {
		return fmt.Errorf("resolving recipients: %w", err)
	}
	if len(recipients) == 0 {
		return nil
	}

	body, err := json.Marshal(payload{Event: ev, Recipients: recipients})
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, url := range c.urls {
		g.Go(func() error {
			return util.Retry(gctx, c.maxAttempts, retryBaseDelay, func() error {
				return c.post(gctx, url, body)
			})
		})
	}
	return g.Wait()
}

// resolveRecipients maps an event to the users who should hear about it:
// every club member except the actor, or just the targeted user (e.g. the
// author being replied to) when the event names one.
func (c *Client) resolveRecipients(ctx context.Context, ev models.Event) ([]string, error) {
	if ev.TargetUserID != "" {
		return []string{ev.TargetUserID}, nil
	}
	members, err := c.members.ClubMembers(ctx, ev.ClubID)
	if err != nil {
		return nil, err
	}
	return models.WithoutUser(members, ev.ActorID), nil
}

func (c *Client) post(ctx context.Context, url string, body []byte) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("webhook %s: %s: %s", url, resp.Status, respBody)
}
