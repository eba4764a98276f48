package maps

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrNoCoordinates is returned when a URL contains no recognizable
// coordinate pair.
var ErrNoCoordinates = errors.New("no coordinates found in URL")

var (
	// https://www.google.com/maps/@24.7136,46.6753,17z
	atRegex = regexp.MustCompile(`@(-?\d+(?:\.\d+)?),(-?\d+(?:\.\d+)?)`)
	// https://www.google.com/maps/place/.../data=!3m1!...!3d24.7136!4d46.6753
	dataRegex = regexp.MustCompile(`!3d(-?\d+(?:\.\d+)?)!4d(-?\d+(?:\.\d+)?)`)
	// ?q=24.7136,46.6753 or ?ll=24.7136,46.6753
	pairRegex = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)$`)
)

var shortHosts = []string{"maps.app.goo.gl", "goo.gl", "g.co"}

// Resolver extracts coordinates from Google-Maps-style URLs, expanding
// shortened links by following redirects.
type Resolver struct {
	client *resty.Client
}

func NewResolver() *Resolver {
	return &Resolver{
		client: resty.New().SetTimeout(10 * time.Second),
	}
}

// NewResolverWithClient is used by tests to point resolution at a stub server.
func NewResolverWithClient(client *resty.Client) *Resolver {
	return &Resolver{client: client}
}

// ExtractCoords parses rawURL into a (lat, lng) pair. Shortened URLs are
// first expanded by following redirects; the final URL is then parsed
// with the same patterns as a full maps URL.
func (r *Resolver) ExtractCoords(ctx context.Context, rawURL string) (lat, lng float64, err error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" {
		return 0, 0, fmt.Errorf("malformed URL %q: %w", rawURL, ErrNoCoordinates)
	}

	if isShortHost(parsed.Host) {
		expanded, err := r.expand(ctx, rawURL)
		if err != nil {
			return 0, 0, fmt.Errorf("expand short URL: %w", err)
		}
		rawURL = expanded
		parsed, err = url.Parse(rawURL)
		if err != nil {
			return 0, 0, fmt.Errorf("malformed expanded URL %q: %w", rawURL, ErrNoCoordinates)
		}
	}

	return parseCoords(parsed)
}

// expand follows redirects and returns the final URL.
func (r *Resolver) expand(ctx context.Context, shortURL string) (string, error) {
	resp, err := r.client.R().SetContext(ctx).Get(shortURL)
	if err != nil {
		return "", err
	}
	final := resp.RawResponse.Request.URL.String()
	if final == "" {
		return "", fmt.Errorf("redirect chain for %q resolved to empty URL", shortURL)
	}
	return final, nil
}

func parseCoords(u *url.URL) (float64, float64, error) {
	full := u.String()

	// The !3d..!4d.. data segment pins the selected place and wins over
	// the @viewport center when both are present.
	if m := dataRegex.FindStringSubmatch(full); m != nil {
		return parsePair(m[1], m[2])
	}

	if m := atRegex.FindStringSubmatch(full); m != nil {
		return parsePair(m[1], m[2])
	}

	for _, key := range []string{"q", "ll", "query", "center"} {
		if v := u.Query().Get(key); v != "" {
			if m := pairRegex.FindStringSubmatch(strings.TrimSpace(v)); m != nil {
				return parsePair(m[1], m[2])
			}
		}
	}

	return 0, 0, ErrNoCoordinates
}

func parsePair(latStr, lngStr string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, ErrNoCoordinates
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return 0, 0, ErrNoCoordinates
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, 0, fmt.Errorf("coordinates out of range: %s,%s: %w", latStr, lngStr, ErrNoCoordinates)
	}
	return lat, lng, nil
}

func isShortHost(host string) bool {
	host = strings.ToLower(host)
	for _, h := range shortHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}
