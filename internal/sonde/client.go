package sonde

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/evas-ssec/shis2mirto/internal/storage/sqlite"
	"github.com/evas-ssec/shis2mirto/pkg/logger"
)

// Config holds the narrator endpoint settings.
type Config struct {
	BaseURL               string
	RequestTimeoutSeconds int
	MaxRetries            int
}

// Client is an HTTP-backed Narrator. Each point is sampled at its
// nearest forecast hour; no interpolation is performed between samples.
// A non-nil store caches fetched profiles so repeated runs over the same
// flight line do not refetch.
type Client struct {
	config     Config
	httpClient *http.Client
	store      *sqlite.ProfileStore
	logger     *logger.Logger
}

// NewClient creates a narrator client. store may be nil to disable
// caching.
func NewClient(config Config, store *sqlite.ProfileStore, log *logger.Logger) *Client {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.RequestTimeoutSeconds) * time.Second,
		},
		store:  store,
		logger: log.Named("sonde-client"),
	}
}

// profileResponse is the narrator service's wire format.
type profileResponse struct {
	Time        string    `json:"time"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Pressure    []float64 `json:"pressure"`
	Temperature []float64 `json:"temperature"`
	Dewpoint    []float64 `json:"dewpoint"`
}

// Profiles fetches one profile per point, in input order. Levels must be
// sorted descending (surface first). Any point the service cannot
// narrate fails the whole call with ErrProfileShortfall.
func (c *Client) Profiles(ctx context.Context, points []Point, levels []float64) ([]Profile, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("no pressure levels requested")
	}
	for i := 1; i < len(levels); i++ {
		if levels[i] >= levels[i-1] {
			return nil, fmt.Errorf("pressure levels must be sorted descending, got %g before %g",
				levels[i-1], levels[i])
		}
	}

	levelsParam := formatLevels(levels)
	profiles := make([]Profile, 0, len(points))
	for i, pt := range points {
		p, err := c.narrate(ctx, pt, levels, levelsParam)
		if err != nil {
			return nil, fmt.Errorf("%w: point %d (%.3f, %.3f at %s): %v",
				ErrProfileShortfall, i, pt.Latitude, pt.Longitude,
				pt.Time.UTC().Format(time.RFC3339), err)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func (c *Client) narrate(ctx context.Context, pt Point, levels []float64, levelsParam string) (Profile, error) {
	sampleTime := pt.Time.UTC().Round(time.Hour)
	key := cacheKey(sampleTime, pt, levelsParam)

	if c.store != nil {
		payload, ok, err := c.store.Get(ctx, key)
		if err != nil {
			return Profile{}, err
		}
		if ok {
			var cached profileResponse
			if err := json.Unmarshal(payload, &cached); err == nil {
				c.logger.Debug("Profile cache hit", logger.String("key", key))
				return c.toProfile(pt, levels, &cached)
			}
			c.logger.Warn("Discarding unreadable cached profile",
				logger.String("key", key))
		}
	}

	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(pt.Latitude, 'f', 4, 64))
	query.Set("lon", strconv.FormatFloat(pt.Longitude, 'f', 4, 64))
	query.Set("time", sampleTime.Format(time.RFC3339))
	query.Set("levels", levelsParam)
	reqURL := fmt.Sprintf("%s/profile?%s", c.config.BaseURL, query.Encode())

	var resp profileResponse
	raw, err := c.fetchWithRetry(ctx, reqURL, &resp)
	if err != nil {
		return Profile{}, err
	}

	if c.store != nil {
		if err := c.store.Put(ctx, key, raw, time.Now()); err != nil {
			c.logger.Warn("Failed to cache profile",
				logger.String("key", key),
				logger.Error(err))
		}
	}
	return c.toProfile(pt, levels, &resp)
}

// toProfile validates the wire payload against the requested levels.
func (c *Client) toProfile(pt Point, levels []float64, resp *profileResponse) (Profile, error) {
	if len(resp.Pressure) != len(levels) {
		return Profile{}, fmt.Errorf("service returned %d levels, requested %d",
			len(resp.Pressure), len(levels))
	}
	if len(resp.Temperature) != len(resp.Pressure) || len(resp.Dewpoint) != len(resp.Pressure) {
		return Profile{}, fmt.Errorf("service returned ragged profile arrays (%d pressure, %d temperature, %d dewpoint)",
			len(resp.Pressure), len(resp.Temperature), len(resp.Dewpoint))
	}
	return Profile{
		Point:       pt,
		Pressure:    resp.Pressure,
		Temperature: resp.Temperature,
		Dewpoint:    resp.Dewpoint,
	}, nil
}

// fetchWithRetry performs the request with retry logic and exponential
// backoff, returning the raw body alongside the decoded response.
func (c *Client) fetchWithRetry(ctx context.Context, reqURL string, target *profileResponse) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(500*(1<<uint(attempt-1))) * time.Millisecond
			c.logger.Info("Retrying profile fetch",
				logger.Int("attempt", attempt),
				logger.String("backoff", backoff.String()))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		raw, err := c.fetchOnce(ctx, reqURL, target)
		if err == nil {
			if attempt > 0 {
				c.logger.Info("Profile fetch succeeded after retries",
					logger.Int("attempts_needed", attempt+1))
			}
			return raw, nil
		}
		lastErr = err
		c.logger.Warn("Profile fetch failed, may retry",
			logger.Error(err),
			logger.Int("attempt", attempt+1),
			logger.Int("max_attempts", c.config.MaxRetries+1))
		if ctx.Err() != nil {
			return nil, lastErr
		}
	}

	c.logger.Error("All attempts to fetch profile failed",
		logger.Error(lastErr),
		logger.Int("max_attempts", c.config.MaxRetries+1))
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, reqURL string, target *profileResponse) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error building narrator request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request to narrator service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading narrator response: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("error decoding narrator response: %w", err)
	}
	return raw, nil
}

func cacheKey(sampleTime time.Time, pt Point, levelsParam string) string {
	return fmt.Sprintf("%d|%.4f|%.4f|%s",
		sampleTime.Unix(), pt.Latitude, pt.Longitude, levelsParam)
}

func formatLevels(levels []float64) string {
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = strconv.FormatFloat(l, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
