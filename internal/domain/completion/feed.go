package completion

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/A5R13L/gmod-monaco-editor/internal/infrastructure/logging"
	"github.com/A5R13L/gmod-monaco-editor/internal/infrastructure/monitoring"
	"github.com/A5R13L/gmod-monaco-editor/internal/infrastructure/resilience"
	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// FeedOptions configures a Feed
type FeedOptions struct {
	Timeout   time.Duration
	Retries   int
	UserAgent string
	// Limit caps outgoing requests per second; zero means unlimited
	Limit   rate.Limit
	Breaker *resilience.Breaker
}

// DefaultFeedOptions matches what the server uses
func DefaultFeedOptions() FeedOptions {
	return FeedOptions{
		Timeout:   15 * time.Second,
		Retries:   2,
		UserAgent: "gmod-monaco-editor/1.0",
		Limit:     2,
	}
}

// Feed downloads completion items published in the wiki scraper layout
type Feed struct {
	client    *resty.Client
	breaker   *resilience.Breaker
	limiter   *rate.Limiter
	sanitizer *bluemonday.Policy
	logger    *zap.Logger
	metrics   *monitoring.Metrics
}

func NewFeed(opts FeedOptions, logger *zap.Logger) *Feed {
	transport := retryablehttp.NewClient()
	transport.RetryMax = 0
	transport.Logger = nil

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(250 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetTransport(transport.HTTPClient.Transport)
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}

	breaker := opts.Breaker
	if breaker == nil {
		breaker = resilience.New("completion-feed", resilience.Settings{
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(c resilience.Counts) bool {
				return c.ConsecutiveFailures >= 3
			},
		})
	}

	limit := opts.Limit
	if limit == 0 {
		limit = rate.Inf
	}

	return &Feed{
		client:    client,
		breaker:   breaker,
		limiter:   rate.NewLimiter(limit, 1),
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logging.OrNop(logger),
	}
}

func (f *Feed) WithMetrics(m *monitoring.Metrics) *Feed {
	f.metrics = m
	return f
}

func (f *Feed) Breaker() *resilience.Breaker {
	return f.breaker
}

// Fetch downloads and converts a feed document
func (f *Feed) Fetch(ctx context.Context, url string) ([]Item, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch completion feed: %w", err)
	}

	entries, err := resilience.Do(ctx, f.breaker, func(ctx context.Context) ([]feedEntry, error) {
		resp, err := f.client.R().SetContext(ctx).Get(url)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("feed returned status %d", resp.StatusCode())
		}

		var entries []feedEntry
		if err := sonic.Unmarshal(resp.Body(), &entries); err != nil {
			return nil, fmt.Errorf("invalid feed document: %w", err)
		}
		return entries, nil
	})
	if err != nil {
		result := "error"
		if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
			result = "rejected"
		}
		f.metrics.RecordFeedFetch(result)
		f.logger.Warn("Completion feed fetch failed", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("failed to fetch completion feed: %w", err)
	}

	f.metrics.RecordFeedFetch("ok")
	items := f.convert(entries)
	f.logger.Debug("Completion feed fetched", zap.String("url", url), zap.Int("items", len(items)))
	return items, nil
}

type feedEntry struct {
	Function *feedFunction `json:"function"`
	Realms   []string      `json:"realms"`
}

type feedFunction struct {
	Name        string          `json:"name"`
	Parent      string          `json:"parent"`
	Type        string          `json:"type"`
	Description feedDescription `json:"description"`
}

// feedDescription accepts both "text" and {"text": "..."}
type feedDescription string

func (d *feedDescription) UnmarshalJSON(data []byte) error {
	var text string
	if err := sonic.Unmarshal(data, &text); err == nil {
		*d = feedDescription(text)
		return nil
	}
	var obj struct {
		Text string `json:"text"`
	}
	if err := sonic.Unmarshal(data, &obj); err != nil {
		return err
	}
	*d = feedDescription(obj.Text)
	return nil
}

func (f *Feed) convert(entries []feedEntry) []Item {
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		fn := e.Function
		if fn == nil || fn.Name == "" {
			continue
		}

		item := Item{
			Name:        fn.Name,
			Type:        KindFunction,
			Description: f.clean(string(fn.Description)),
		}
		parent := fn.Parent
		if parent == "Global" {
			parent = ""
		}

		switch fn.Type {
		case "classfunc", "panelfunc":
			item.Parent = parent
			item.FullName = parent + ":" + fn.Name
			item.Type = KindMethod
			item.ClassFunction = true
		case "hook":
			item.Parent = parent
			item.FullName = fn.Name
			if parent != "" {
				item.FullName = parent + ":" + fn.Name
			}
			item.Type = KindEvent
		default:
			item.Parent = parent
			item.FullName = fn.Name
			if parent != "" {
				item.FullName = parent + "." + fn.Name
			}
		}
		items = append(items, item)
	}
	return items
}

func (f *Feed) clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(f.sanitizer.Sanitize(s)))
}
