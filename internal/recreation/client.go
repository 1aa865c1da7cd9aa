package recreation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/cookiejar"
	"strconv"
	"time"

	"campcheck/internal/availability"
	"campcheck/internal/components/assert"
	"campcheck/internal/components/telemetry"
	"campcheck/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"golang.org/x/net/publicsuffix"
)

const (
	report_client_get_availability = "client.get-availability"
	report_client_get_park_name    = "client.get-park-name"
)

const (
	DefaultBaseUrl   = "https://www.recreation.gov"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

	availabilityEndpoint = "/api/camps/availability/campground/{park_id}/month"
	campgroundEndpoint   = "/api/camps/campgrounds/{park_id}"
)

var tracer = otel.Tracer("campcheck.recreation")

// FetchError is returned when the API responds with anything other than 200.
type FetchError struct {
	StatusCode int
	Url        string
	Body       string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%d code received from %s: %s", e.StatusCode, e.Url, e.Body)
}

type ClientOptions struct {
	BaseUrl   string
	UserAgent string
	Timeout   time.Duration
	// CloudflareBypass wraps the transport so requests look like they come
	// from a browser.
	CloudflareBypass bool
	// DebugOutput receives every HTTP exchange, it may be nil.
	DebugOutput restyutil.InstrumentOutput
}

// Client reads campground availability from recreation.gov.
type Client struct {
	http *resty.Client
	tel  telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) (Client, error) {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("recreation_client", tel)

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseUrl)
	httpClient.SetTimeout(opts.Timeout)
	httpClient.SetHeader("user-agent", opts.UserAgent)
	httpClient.SetHeader("accept", "application/json")

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return Client{}, err
	}
	httpClient.SetCookieJar(jar)

	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	restyutil.InstrumentClient(httpClient, tracer, opts.DebugOutput)
	telemetry.InstrumentResty(httpClient, tel)

	return Client{http: httpClient, tel: tel}, nil
}

// GetAvailability fetches the availability of every campsite in a park for
// the month starting on `month`, which must be the first of a month.
func (c Client) GetAvailability(ctx context.Context, parkID int64, month availability.Date) (availability.RawMonthlyResponse, error) {
	ctx, span := tracer.Start(ctx, "GetAvailability")
	defer span.End()

	startDate := month.Format(availability.LayoutRequest)
	c.tel.ReportDebug("querying availability", parkID, startDate)

	var body monthResponse
	err := c.get(ctx, availabilityEndpoint, parkID, map[string]string{"start_date": startDate}, &body)
	if err != nil {
		c.tel.ReportBroken(report_client_get_availability, err, parkID, startDate)
		return availability.RawMonthlyResponse{}, err
	}

	raw, err := body.toRaw(parkID, month)
	if err != nil {
		c.tel.ReportBroken(report_client_get_availability, err, parkID, startDate)
		return availability.RawMonthlyResponse{}, err
	}
	return raw, nil
}

// GetParkName fetches the display name of a park.
func (c Client) GetParkName(ctx context.Context, parkID int64) (string, error) {
	ctx, span := tracer.Start(ctx, "GetParkName")
	defer span.End()

	var body campgroundResponse
	err := c.get(ctx, campgroundEndpoint, parkID, nil, &body)
	if err != nil {
		c.tel.ReportBroken(report_client_get_park_name, err, parkID)
		return "", err
	}
	if body.Campground.FacilityName == "" {
		err := &MalformedResponseError{ParkID: parkID, Reason: "missing facility_name"}
		c.tel.ReportBroken(report_client_get_park_name, err, parkID)
		return "", err
	}
	return body.Campground.FacilityName, nil
}

func (c Client) get(ctx context.Context, endpoint string, parkID int64, query map[string]string, out any) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetPathParam("park_id", strconv.FormatInt(parkID, 10)).
		SetQueryParams(query).
		Get(endpoint)
	if err != nil {
		return fmt.Errorf("request %s: %w", endpoint, err)
	}
	if res.StatusCode() != 200 {
		return &FetchError{
			StatusCode: res.StatusCode(),
			Url:        res.Request.URL,
			Body:       res.String(),
		}
	}

	err = json.Unmarshal(res.Body(), out)
	if err != nil {
		return &MalformedResponseError{
			ParkID: parkID,
			Reason: fmt.Sprintf("decode json: %s", err.Error()),
		}
	}
	return nil
}
