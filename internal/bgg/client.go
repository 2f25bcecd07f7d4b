package bgg

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"bgg-mirror-api/internal/model"
)

// Hotness list types accepted by the hot endpoint.
const (
	HotTypeBoardgame = "boardgame"
	HotTypePerson    = "boardgameperson"
)

// Collection subtypes accepted by the collection endpoint.
const (
	SubtypeAccessory = "boardgameaccessory"
)

// playsPageSize is how many plays one geekplay page carries.
const playsPageSize = 100

// Client talks to the BGG XMLAPI2 and geekplay endpoints. Every call is
// paced by a shared rate limiter, bounded by a request timeout, and retried
// with exponential backoff plus jitter on transient failures (HTTP 429,
// 5xx, transport errors, and the XMLAPI2 "request queued" 202). Retry-After
// hints are honored. Non-429 4xx responses fail immediately.
//
// Calls that need private data acquire a session first; a 401/403 reply
// triggers exactly one forced re-login and retry before surfacing AuthError.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	session    *SessionCache

	apiURL    string
	playsURL  string
	userAgent string

	maxRetries     int
	retryBaseDelay time.Duration
}

// ClientConfig holds the settings for a Client.
type ClientConfig struct {
	APIURL    string
	PlaysURL  string
	UserAgent string

	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	RateLimit      float64 // requests per second
}

// NewClient creates a BGG client. session may be nil when no private data
// will be fetched.
func NewClient(cfg ClientConfig, session *SessionCache) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 5
	}
	baseDelay := cfg.RetryBaseDelay
	if baseDelay == 0 {
		baseDelay = time.Second
	}
	rps := cfg.RateLimit
	if rps <= 0 {
		rps = 0.5
	}

	return &Client{
		httpClient:     &http.Client{Timeout: timeout},
		limiter:        rate.NewLimiter(rate.Limit(rps), 1),
		session:        session,
		apiURL:         cfg.APIURL,
		playsURL:       cfg.PlaysURL,
		userAgent:      cfg.UserAgent,
		maxRetries:     maxRetries,
		retryBaseDelay: baseDelay,
	}
}

// FetchCollection lists the user's collection. subtype may be empty (board
// games) or SubtypeAccessory.
func (c *Client) FetchCollection(ctx context.Context, username, subtype string) ([]CollectionItem, error) {
	q := url.Values{}
	q.Set("username", username)
	q.Set("stats", "1")
	if subtype != "" {
		q.Set("subtype", subtype)
	}

	body, err := c.get(ctx, c.apiURL+"/collection?"+q.Encode(), false)
	if err != nil {
		return nil, err
	}
	return parseCollection(body)
}

// FetchThing fetches the detail payload for one thing id.
func (c *Client) FetchThing(ctx context.Context, id int64) (*ThingDetail, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/thing?id=%d&stats=1", c.apiURL, id), false)
	if err != nil {
		return nil, err
	}
	return parseThing(body)
}

// FetchHotness fetches the current Hotness ranking for the given type.
func (c *Client) FetchHotness(ctx context.Context, hotType string) ([]HotItem, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/hot?type=%s", c.apiURL, url.QueryEscape(hotType)), false)
	if err != nil {
		return nil, err
	}
	return parseHotness(body)
}

// FetchPlaysPage fetches one page of the user's plays for a game. Requires
// an authenticated session.
func (c *Client) FetchPlaysPage(ctx context.Context, gameID int64, page int) (*PlaysPage, error) {
	if c.session == nil {
		return nil, &AuthError{Err: fmt.Errorf("plays require an authenticated session")}
	}

	q := url.Values{}
	q.Set("action", "getplays")
	q.Set("ajax", "1")
	q.Set("currentUser", "true")
	q.Set("objectid", strconv.FormatInt(gameID, 10))
	q.Set("objecttype", "thing")
	q.Set("pageID", strconv.Itoa(page))
	q.Set("showcount", strconv.Itoa(playsPageSize))

	body, err := c.get(ctx, c.playsURL+"?"+q.Encode(), true)
	if err != nil {
		return nil, err
	}

	var pageData PlaysPage
	if err := json.Unmarshal(body, &pageData); err != nil {
		return nil, &PermanentError{Err: fmt.Errorf("malformed plays JSON: %w", err)}
	}
	return &pageData, nil
}

// PlaysPageFull reports whether a page is full, meaning another page may
// follow.
func PlaysPageFull(p *PlaysPage) bool {
	return len(p.Plays) >= playsPageSize
}

// get performs one GET with the full retry protocol.
func (c *Client) get(ctx context.Context, reqURL string, authed bool) ([]byte, error) {
	var token *model.SessionToken
	if authed {
		t, err := c.session.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		token = t
	}

	attempt := 0
	reloggedIn := false
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}
		req.Header.Set("Accept", "application/xml, application/json, text/plain, */*")
		if token != nil {
			for name, value := range token.Cookies {
				req.AddCookie(&http.Cookie{Name: name, Value: value})
			}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt >= c.maxRetries {
				return nil, &TransientError{Err: fmt.Errorf("request failed after %d attempts: %w", attempt+1, err)}
			}
			if err := c.sleep(ctx, c.retryDelay(attempt)); err != nil {
				return nil, err
			}
			attempt++
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				if attempt >= c.maxRetries {
					return nil, &TransientError{Err: fmt.Errorf("failed to read response: %w", readErr)}
				}
				if err := c.sleep(ctx, c.retryDelay(attempt)); err != nil {
					return nil, err
				}
				attempt++
				continue
			}
			return body, nil

		case resp.StatusCode == http.StatusAccepted:
			// XMLAPI2 queues collection exports and answers 202 until
			// the export is ready.
			drainAndClose(resp)
			if attempt >= c.maxRetries {
				return nil, &TransientError{Err: fmt.Errorf("upstream still processing after %d polls", attempt+1)}
			}
			log.Printf("[BGGClient] Upstream queued request, polling again: %s", reqURL)
			if err := c.sleep(ctx, c.retryBaseDelay*2); err != nil {
				return nil, err
			}
			attempt++

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			delay := c.retryDelay(attempt)
			if hint := retryAfter(resp); hint > 0 {
				delay = hint
			}
			drainAndClose(resp)
			if attempt >= c.maxRetries {
				return nil, &TransientError{Err: fmt.Errorf("HTTP %d after %d attempts for %s", resp.StatusCode, attempt+1, reqURL)}
			}
			log.Printf("[BGGClient] HTTP %d, retrying in %v (attempt %d/%d)", resp.StatusCode, delay, attempt+1, c.maxRetries)
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
			attempt++

		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			drainAndClose(resp)
			if authed && !reloggedIn {
				reloggedIn = true
				log.Printf("[BGGClient] HTTP %d, forcing session refresh", resp.StatusCode)
				c.session.Invalidate(ctx)
				t, err := c.session.Acquire(ctx)
				if err != nil {
					return nil, err
				}
				token = t
				continue
			}
			return nil, &AuthError{Err: fmt.Errorf("upstream rejected request: HTTP %d", resp.StatusCode)}

		case resp.StatusCode == http.StatusNotFound:
			drainAndClose(resp)
			return nil, &PermanentError{Err: fmt.Errorf("%w: %s", ErrNotFound, reqURL)}

		default:
			code := resp.StatusCode
			drainAndClose(resp)
			return nil, &PermanentError{Err: fmt.Errorf("HTTP %d for %s", code, reqURL)}
		}
	}
}

// retryDelay returns the exponential backoff delay with jitter for the
// given attempt.
func (c *Client) retryDelay(attempt int) time.Duration {
	delay := c.retryBaseDelay * (1 << attempt)
	jitter := time.Duration(rand.Int63n(int64(delay)/2 + 1))
	return delay + jitter
}

// sleep waits for d or until the context is cancelled.
func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// retryAfter parses the Retry-After response header, if any.
func retryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func drainAndClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
