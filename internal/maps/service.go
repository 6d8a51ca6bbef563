package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"chalkstone_backend/platform/apperr"
	"chalkstone_backend/platform/config"
	"chalkstone_backend/platform/formcheck"
	"chalkstone_backend/platform/logger"

	"golang.org/x/time/rate"
)

const (
	userAgent            = "ChalkstoneCouncil/1.0"
	msgLookupUnavailable = "address lookup service unavailable"
)

// Service talks to a Nominatim instance.
type Service struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	log     *logger.Logger
}

// NewService creates a geocoder. Requests are limited to one per second,
// the public Nominatim usage limit.
func NewService(cfg config.MapsConfig, log *logger.Logger) *Service {
	return &Service{
		baseURL: strings.TrimRight(cfg.GetNominatimURL(), "/"),
		client:  &http.Client{Timeout: 5 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		log:     log,
	}
}

// Config returns the default map view.
func (s *Service) Config() MapConfig {
	var cfg MapConfig
	cfg.Center.Lat = DefaultLatitude
	cfg.Center.Lng = DefaultLongitude
	cfg.Zoom = DefaultZoom
	return cfg
}

// Reverse resolves a coordinate pair to an address.
func (s *Service) Reverse(ctx context.Context, rawLat, rawLng string) (Address, error) {
	lat, lng, err := parseCoordinates(rawLat, rawLng)
	if err != nil {
		return Address{}, err
	}

	params := url.Values{}
	params.Add("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Add("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Add("format", "json")
	params.Add("addressdetails", "1")

	var raw nominatimResponse
	if err := s.get(ctx, "/reverse", params, &raw); err != nil {
		return Address{}, err
	}
	if raw.Error != "" || raw.DisplayName == "" {
		return Address{}, apperr.NotFound("no address found for location")
	}

	addr := buildAddress(raw)
	addr.Lat, addr.Lng = lat, lng
	return addr, nil
}

// SearchAddress finds up to five UK addresses matching query.
func (s *Service) SearchAddress(ctx context.Context, query string) ([]Address, error) {
	params := url.Values{}
	params.Add("q", query)
	params.Add("format", "json")
	params.Add("addressdetails", "1")
	params.Add("limit", "5")
	params.Add("countrycodes", "gb")

	var rawResults []nominatimResponse
	if err := s.get(ctx, "/search", params, &rawResults); err != nil {
		return nil, err
	}

	out := make([]Address, 0, len(rawResults))
	for _, raw := range rawResults {
		addr := buildAddress(raw)
		lat, errLat := strconv.ParseFloat(raw.Lat, 64)
		lng, errLng := strconv.ParseFloat(raw.Lon, 64)
		if errLat != nil || errLng != nil {
			continue
		}
		addr.Lat, addr.Lng = lat, lng
		out = append(out, addr)
	}
	return out, nil
}

func (s *Service) get(ctx context.Context, path string, params url.Values, dst any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return apperr.Upstream(msgLookupUnavailable, err)
	}

	reqURL := fmt.Sprintf("%s%s?%s", s.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error("nominatim request failed", "error", err)
		return apperr.Upstream(msgLookupUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		s.log.Error("nominatim upstream error", "status", resp.StatusCode)
		return apperr.Upstream(msgLookupUnavailable, fmt.Errorf("nominatim status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		s.log.Error("failed to decode nominatim payload", "error", err)
		return apperr.Upstream(msgLookupUnavailable, err)
	}
	return nil
}

func parseCoordinates(rawLat, rawLng string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(rawLat), 64)
	if err != nil || !formcheck.IsValidCoordinate(lat, formcheck.AxisLatitude) {
		return 0, 0, apperr.BadRequest("invalid latitude")
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(rawLng), 64)
	if err != nil || !formcheck.IsValidCoordinate(lng, formcheck.AxisLongitude) {
		return 0, 0, apperr.BadRequest("invalid longitude")
	}
	return lat, lng, nil
}

func buildAddress(raw nominatimResponse) Address {
	return Address{
		DisplayName: raw.DisplayName,
		Street:      raw.Address.Road,
		HouseNumber: raw.Address.HouseNumber,
		Postcode:    raw.Address.Postcode,
		Town:        pickTown(raw.Address),
	}
}

func pickTown(address nominatimAddress) string {
	for _, candidate := range []string{
		address.City,
		address.Town,
		address.Village,
		address.Municipality,
		address.Hamlet,
	} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}
