package attribution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	Unknown = "unknown"

	defaultGeoEndpoint = "http://ip-api.com"
	defaultGeoTimeout  = 3 * time.Second
	geoFields          = "status,message,country,countryCode,regionName,city"
)

var ErrGeoLookup = errors.New("geolocation lookup failed")

// Location географические данные клика
type Location struct {
	Country     string
	CountryCode string
	Region      string
	City        string
}

// UnknownLocation значение при недоступной геолокации
func UnknownLocation() Location {
	return Location{Country: Unknown, CountryCode: Unknown, Region: Unknown, City: Unknown}
}

// Locator определяет местоположение по IP
type Locator interface {
	Locate(ctx context.Context, ip string) (Location, error)
}

// ShouldLocate false для пустых и loopback адресов
func ShouldLocate(ip string) bool {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return false
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ip != "localhost"
	}
	return !parsed.IsLoopback()
}

// IPAPIClient клиент ip-api.com
type IPAPIClient struct {
	endpoint string
	client   *http.Client
}

func NewIPAPIClient(endpoint string, timeout time.Duration) *IPAPIClient {
	if endpoint == "" {
		endpoint = defaultGeoEndpoint
	}
	if timeout <= 0 {
		timeout = defaultGeoTimeout
	}
	return &IPAPIClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
	}
}

type ipAPIResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	RegionName  string `json:"regionName"`
	City        string `json:"city"`
}

func (c *IPAPIClient) Locate(ctx context.Context, ip string) (Location, error) {
	reqURL := fmt.Sprintf("%s/json/%s?fields=%s", c.endpoint, url.PathEscape(ip), geoFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Location{}, fmt.Errorf("failed to build geolocation request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %w", ErrGeoLookup, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("%w: unexpected status %d", ErrGeoLookup, resp.StatusCode)
	}

	var body ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Location{}, fmt.Errorf("%w: malformed response: %w", ErrGeoLookup, err)
	}

	if body.Status != "success" {
		return Location{}, fmt.Errorf("%w: %s", ErrGeoLookup, body.Message)
	}

	return Location{
		Country:     orUnknown(body.Country),
		CountryCode: orUnknown(body.CountryCode),
		Region:      orUnknown(body.RegionName),
		City:        orUnknown(body.City),
	}, nil
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}
