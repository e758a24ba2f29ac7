package healthid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/easymed/internal/auth/entity"
	"github.com/shandysiswandi/easymed/internal/pkg/goerror"
	"github.com/shandysiswandi/easymed/internal/pkg/instrument"
	"github.com/shandysiswandi/easymed/internal/pkg/valueobject"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	DriverStatic = "static"
	DriverHTTP   = "http"
)

// ErrBaseURLRequired is returned when the HTTP driver has no base url.
var ErrBaseURLRequired = errors.New("healthid: base url is required")

// Config configures the HTTP health-ID client.
type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	Timeout      time.Duration
	MaxRetries   uint64
}

type clocker interface {
	Now() time.Time
}

// Client fetches opaque health profiles over HTTP. When a token url is set,
// requests carry an OAuth2 client-credentials bearer token.
type Client struct {
	baseURL    string
	http       *http.Client
	maxRetries uint64
	clock      clocker
	ins        instrument.Instrumentation
}

func NewClient(cfg Config, clk clocker, ins instrument.Instrumentation) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrBaseURLRequired
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	hc := &http.Client{Timeout: cfg.Timeout}
	if cfg.TokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		hc = cc.Client(context.Background())
		hc.Timeout = cfg.Timeout
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		http:       hc,
		maxRetries: cfg.MaxRetries,
		clock:      clk,
		ins:        ins,
	}, nil
}

// FetchProfile returns the profile registered for userID. Server errors and
// transport failures are retried; 404 maps to goerror.ErrNotFound.
func (c *Client) FetchProfile(ctx context.Context, userID string) (_ *entity.HealthProfile, err error) {
	ctx, span := c.ins.Tracer("auth.outbound.healthid").Start(ctx, "FetchProfile")
	defer func() {
		if err != nil && !errors.Is(err, goerror.ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	endpoint := c.baseURL + "/profiles/" + url.PathEscape(userID)

	b := retry.NewExponential(200 * time.Millisecond)
	b = retry.WithMaxRetries(c.maxRetries, b)
	b = retry.WithCappedDuration(2*time.Second, b)

	var data valueobject.JSONMap
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		if cID := instrument.GetCorrelationID(ctx); cID != "" {
			req.Header.Set("X-Correlation-ID", cID)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return goerror.ErrNotFound
		case resp.StatusCode >= http.StatusInternalServerError:
			return retry.RetryableError(fmt.Errorf("healthid: upstream status %d", resp.StatusCode))
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("healthid: unexpected status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return retry.RetryableError(err)
		}
		data = valueobject.JSONMap{}
		return json.Unmarshal(body, &data)
	})
	if err != nil {
		return nil, err
	}

	return &entity.HealthProfile{
		Reference: reference(data, userID),
		Data:      data,
		LinkedAt:  c.clock.Now(),
	}, nil
}

func reference(data valueobject.JSONMap, fallback string) string {
	if ref := data.First("abha_number", "healthIdNumber", "health_id", "id"); ref != "" {
		return ref
	}
	return fallback
}

// Static returns a deterministic placeholder profile without any network call.
type Static struct {
	clock clocker
}

func NewStatic(clk clocker) *Static {
	return &Static{clock: clk}
}

func (s *Static) FetchProfile(_ context.Context, userID string) (*entity.HealthProfile, error) {
	ref := "ABHA-" + userID
	return &entity.HealthProfile{
		Reference: ref,
		Data:      valueobject.JSONMap{"abha_number": ref, "source": DriverStatic},
		LinkedAt:  s.clock.Now(),
	}, nil
}
