// Package location resolves a visitor's country and donation currency from
// their IP, with static fallbacks when the upstream services are down.
package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v4"
)

// Currencies the donation flow can charge in. Anything else falls back to
// USD so the donor always gets a working checkout.
var countryCurrency = map[string]string{
	"NG": "NGN",
	"KE": "KES",
	"GH": "GHS",
	"ZA": "ZAR",
	"UG": "UGX",
	"TZ": "TZS",
	"RW": "RWF",
	"US": "USD",
	"CA": "CAD",
	"AU": "AUD",
	"GB": "GBP",
	"DE": "EUR",
	"FR": "EUR",
	"ES": "EUR",
	"IT": "EUR",
	"NL": "EUR",
	"IE": "EUR",
	"PT": "EUR",
}

const defaultCurrency = "USD"

// CurrencyForCountry maps an ISO country code to a supported currency.
func CurrencyForCountry(countryCode string) string {
	if currency, ok := countryCurrency[strings.ToUpper(countryCode)]; ok {
		return currency
	}
	return defaultCurrency
}

// Detection is what the donate page needs to preselect a currency.
type Detection struct {
	IP          string `json:"ip"`
	CountryCode string `json:"country_code"`
	CountryName string `json:"country_name"`
	Currency    string `json:"currency"`
}

// Detector calls the IP geolocation and exchange-rate services.
type Detector struct {
	GeoBaseURL   string
	RatesBaseURL string
	Client       *http.Client
}

func NewDetector(geoBaseURL, ratesBaseURL string) *Detector {
	return &Detector{
		GeoBaseURL:   geoBaseURL,
		RatesBaseURL: ratesBaseURL,
		Client:       &http.Client{Timeout: 2 * time.Second},
	}
}

type geoResponse struct {
	Status      string `json:"status"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
}

// Detect geolocates an IP. Private or unknown addresses, and upstream
// failures, resolve to the USD default rather than an error: a donation
// page must never break on geolocation.
func (d *Detector) Detect(ctx context.Context, ip string) Detection {
	fallback := Detection{IP: ip, Currency: defaultCurrency}
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsPrivate() || parsed.IsLoopback() {
		return fallback
	}

	var geo geoResponse
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet,
				fmt.Sprintf("%s/%s?fields=status,country,countryCode", d.GeoBaseURL, ip), nil)
			if err != nil {
				return err
			}
			resp, err := d.Client.Do(req)
			if err != nil {
				return err
			}
			defer func() { _ = resp.Body.Close() }()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("geolocation returned status %d", resp.StatusCode)
			}
			return json.NewDecoder(resp.Body).Decode(&geo)
		},
		retry.Attempts(2),
		retry.Delay(100*time.Millisecond),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil || geo.Status != "success" {
		return fallback
	}

	return Detection{
		IP:          ip,
		CountryCode: geo.CountryCode,
		CountryName: geo.Country,
		Currency:    CurrencyForCountry(geo.CountryCode),
	}
}

// Static rates used when the exchange-rate service is unreachable.
// Approximate; only used to suggest donation amounts, never to settle.
var fallbackRates = map[string]float64{
	"USD": 1.0,
	"EUR": 0.92,
	"GBP": 0.79,
	"CAD": 1.36,
	"AUD": 1.52,
	"NGN": 1550.0,
	"KES": 129.0,
	"GHS": 15.6,
	"ZAR": 18.2,
	"UGX": 3700.0,
	"TZS": 2600.0,
	"RWF": 1350.0,
}

type ratesResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

// Rates returns exchange rates against the base currency. The second
// return reports whether live rates were used.
func (d *Detector) Rates(ctx context.Context, base string) (map[string]float64, bool) {
	base = strings.ToUpper(base)
	if base == "" {
		base = defaultCurrency
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.RatesBaseURL+"/"+base, nil)
	if err != nil {
		return FallbackRates(base), false
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		return FallbackRates(base), false
	}
	defer func() { _ = resp.Body.Close() }()

	var parsed ratesResponse
	if resp.StatusCode != http.StatusOK ||
		json.NewDecoder(resp.Body).Decode(&parsed) != nil ||
		parsed.Result != "success" || len(parsed.Rates) == 0 {
		return FallbackRates(base), false
	}
	return parsed.Rates, true
}

// FallbackRates rebases the static table onto the requested currency.
func FallbackRates(base string) map[string]float64 {
	baseRate, ok := fallbackRates[strings.ToUpper(base)]
	if !ok {
		baseRate = 1.0
	}
	rebased := make(map[string]float64, len(fallbackRates))
	for currency, rate := range fallbackRates {
		rebased[currency] = rate / baseRate
	}
	return rebased
}
