package customerprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Amund211/blacksmith/internal/constants"
	"github.com/Amund211/blacksmith/internal/domain"
	"github.com/Amund211/blacksmith/internal/logging"
	"github.com/Amund211/blacksmith/internal/ratelimiting"
	"github.com/Amund211/blacksmith/internal/reporting"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const describeCustomerMaxOperationTime = 1 * time.Second

// Fields longer than this are cut, the presentation layer has limited room
const (
	maxNameLength     = 40
	maxDialogueLength = 200
)

type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type RequestLimiter interface {
	Limit(ctx context.Context, maxOperationTime time.Duration, operation func()) bool
}

type remoteMetricsCollection struct {
	requestCount metric.Int64Counter
	latency      metric.Float64Histogram
}

func setupRemoteMetrics(meter metric.Meter) (remoteMetricsCollection, error) {
	requestCount, err := meter.Int64Counter("customerprovider/remote/request_count")
	if err != nil {
		return remoteMetricsCollection{}, fmt.Errorf("failed to create request count metric: %w", err)
	}

	latency, err := meter.Float64Histogram(
		"customerprovider/remote/latency",
		metric.WithUnit("s"),
		metric.WithDescription("Time spent waiting for the customer API"),
	)
	if err != nil {
		return remoteMetricsCollection{}, fmt.Errorf("failed to create latency metric: %w", err)
	}

	return remoteMetricsCollection{
		requestCount: requestCount,
		latency:      latency,
	}, nil
}

// remote asks an HTTP endpoint for the flavor text of a drafted customer
type remote struct {
	httpClient HttpClient
	limiter    RequestLimiter
	url        string
	apiKey     string
	nowFunc    func() time.Time

	metrics remoteMetricsCollection
	tracer  trace.Tracer
}

func NewRemote(
	httpClient HttpClient,
	url string,
	apiKey string,
	nowFunc func() time.Time,
	afterFunc func(time.Duration) <-chan time.Time,
) (*remote, error) {
	const name = "blacksmith/customerprovider/remote"

	meter := otel.Meter(name)
	tracer := otel.Tracer(name)

	metrics, err := setupRemoteMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to set up metrics: %w", err)
	}

	// One customer per player action at most, this is plenty for a handful of players
	limiter := ratelimiting.NewWindowLimiter(300, time.Minute, nowFunc, afterFunc)

	return &remote{
		httpClient: httpClient,
		limiter:    limiter,
		url:        url,
		apiKey:     apiKey,
		nowFunc:    nowFunc,

		metrics: metrics,
		tracer:  tracer,
	}, nil
}

type describeCustomerRequest struct {
	ItemType   string   `json:"itemType"`
	IsBoss     bool     `json:"isBoss"`
	Reputation int      `json:"reputation"`
	Materials  []string `json:"materials"`
}

type describeCustomerResponse struct {
	Name     string `json:"name"`
	Dialogue string `json:"dialogue"`
}

func (r *remote) DescribeCustomer(ctx context.Context, draft domain.CustomerRequest, reputation int, materials []domain.Material) (domain.CustomerRequest, error) {
	ctx, span := r.tracer.Start(ctx, "Remote.DescribeCustomer")
	defer span.End()

	materialNames := make([]string, 0, len(materials))
	for _, material := range materials {
		materialNames = append(materialNames, string(material))
	}

	body, err := json.Marshal(describeCustomerRequest{
		ItemType:   string(draft.Type),
		IsBoss:     draft.IsBoss,
		Reputation: reputation,
		Materials:  materialNames,
	})
	if err != nil {
		err := fmt.Errorf("failed to marshal request: %w", err)
		reporting.Report(ctx, err)
		return domain.CustomerRequest{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		err := fmt.Errorf("failed to create request: %w", err)
		reporting.Report(ctx, err)
		return domain.CustomerRequest{}, err
	}

	req.Header.Set("User-Agent", constants.USER_AGENT)
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	var resp *http.Response
	var data []byte
	ran := r.limiter.Limit(ctx, describeCustomerMaxOperationTime, func() {
		ctx, span := r.tracer.Start(ctx, "Remote.httppost")
		defer span.End()

		start := r.nowFunc()
		defer func() {
			r.metrics.latency.Record(ctx, r.nowFunc().Sub(start).Seconds())
		}()

		resp, err = r.httpClient.Do(req)
		if err != nil {
			err = fmt.Errorf("failed to send request: %w", err)
			if ctx.Err() == nil {
				reporting.Report(ctx, err)
			}
			return
		}

		defer resp.Body.Close()
		data, err = io.ReadAll(resp.Body)
		if err != nil {
			err = fmt.Errorf("failed to read response body: %w", err)
			reporting.Report(ctx, err)
			return
		}
	})
	if !ran {
		logging.FromContext(ctx).WarnContext(ctx, "Did not run Remote.DescribeCustomer due to rate limiting", "ctx_error", ctx.Err())
		return domain.CustomerRequest{}, fmt.Errorf("%w: too many requests to customer API", domain.ErrTemporarilyUnavailable)
	}

	if err != nil {
		return domain.CustomerRequest{}, err
	}

	r.metrics.requestCount.Add(
		ctx,
		1,
		metric.WithAttributes(
			attribute.String("status_code", strconv.Itoa(resp.StatusCode)),
			attribute.Bool("is_boss", draft.IsBoss),
		),
	)

	request, err := customerFromResponse(resp.StatusCode, data, draft)
	if err != nil {
		err := fmt.Errorf("failed to get customer from response: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"data":   string(data),
			"status": strconv.Itoa(resp.StatusCode),
		})
		return domain.CustomerRequest{}, err
	}

	logging.FromContext(ctx).InfoContext(
		ctx,
		"Got customer from customer API",
		slog.String("name", request.Name),
		slog.Bool("isBoss", request.IsBoss),
	)

	return request, nil
}

// customerFromResponse keeps the order from the draft, only the flavor text comes from the API
func customerFromResponse(statusCode int, data []byte, draft domain.CustomerRequest) (domain.CustomerRequest, error) {
	if statusCode != http.StatusOK {
		return domain.CustomerRequest{}, fmt.Errorf("customer API returned status code %d", statusCode)
	}

	var response describeCustomerResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return domain.CustomerRequest{}, fmt.Errorf("failed to parse customer API response: %w", err)
	}

	request := draft
	if name := truncate(response.Name, maxNameLength); name != "" {
		request.Name = name
	}
	if dialogue := truncate(response.Dialogue, maxDialogueLength); dialogue != "" {
		request.Dialogue = dialogue
	}
	return request, nil
}

func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}
