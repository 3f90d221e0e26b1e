package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/gymlog/internal/gymlog"
	"github.com/2beens/gymlog/internal/gymlog/form"
	"github.com/2beens/gymlog/internal/telemetry/metrics"
	"github.com/2beens/gymlog/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	EndpointDayData          = "day_data"
	EndpointLogForm          = "log_form"
	EndpointLog              = "log"
	EndpointEditWorkoutForm  = "edit_workout_form"
	EndpointEditWorkout      = "edit_workout"
	EndpointEditExerciseForm = "edit_exercise_form"
	EndpointEditExercise     = "edit_exercise"
	EndpointIndex            = "index"

	// the backend answers async submissions with 204 instead of a redirect
	headerRequestedWith = "X-Requested-With"
	xmlHTTPRequest      = "XMLHttpRequest"

	maxErrorBodyBytes = 512
)

// StatusError is returned for non-2xx backend responses.
type StatusError struct {
	Endpoint   string
	Method     string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Endpoint, e.StatusCode, e.Body)
}

// Client talks to the workout backend over the documented HTTP contracts.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Manager
}

func NewClient(baseURL string, httpClient *http.Client, metricsManager *metrics.Manager) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		metrics:    metricsManager,
	}
}

// DayData returns the records logged on date, in server order.
func (c *Client) DayData(ctx context.Context, date string) (_ []gymlog.DayRecord, err error) {
	ctx, span := tracing.StartSpan(ctx, "remote.dayData")
	defer func() { tracing.End(span, err) }()
	span.SetAttributes(attribute.String("date", date))

	body, err := c.do(ctx, EndpointDayData, http.MethodGet, "/day_data/"+url.PathEscape(date), nil, "")
	if err != nil {
		return nil, err
	}

	var records []gymlog.DayRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("unmarshal day data for %s: %w", date, err)
	}
	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}

func (c *Client) LogForm(ctx context.Context) (_ string, err error) {
	ctx, span := tracing.StartSpan(ctx, "remote.logForm")
	defer func() { tracing.End(span, err) }()

	body, err := c.do(ctx, EndpointLogForm, http.MethodGet, "/log_form", nil, "")
	return string(body), err
}

func (c *Client) SubmitLog(ctx context.Context, values []form.Value) (err error) {
	ctx, span := tracing.StartSpan(ctx, "remote.submitLog")
	defer func() { tracing.End(span, err) }()

	return c.postForm(ctx, EndpointLog, "/log", values)
}

func (c *Client) EditWorkoutForm(ctx context.Context, id string) (_ string, err error) {
	ctx, span := tracing.StartSpan(ctx, "remote.editWorkoutForm")
	defer func() { tracing.End(span, err) }()
	span.SetAttributes(attribute.String("workout.id", id))

	body, err := c.do(ctx, EndpointEditWorkoutForm, http.MethodGet, "/edit_workout_form/"+url.PathEscape(id), nil, "")
	return string(body), err
}

func (c *Client) SubmitEditWorkout(ctx context.Context, id string, values []form.Value) (err error) {
	ctx, span := tracing.StartSpan(ctx, "remote.submitEditWorkout")
	defer func() { tracing.End(span, err) }()
	span.SetAttributes(attribute.String("workout.id", id))

	return c.postForm(ctx, EndpointEditWorkout, "/edit_workout/"+url.PathEscape(id), values)
}

func (c *Client) EditExerciseForm(ctx context.Context, id string) (_ string, err error) {
	ctx, span := tracing.StartSpan(ctx, "remote.editExerciseForm")
	defer func() { tracing.End(span, err) }()
	span.SetAttributes(attribute.String("exercise.id", id))

	body, err := c.do(ctx, EndpointEditExerciseForm, http.MethodGet, "/edit_exercise_form/"+url.PathEscape(id), nil, "")
	return string(body), err
}

func (c *Client) SubmitEditExercise(ctx context.Context, id string, values []form.Value) (err error) {
	ctx, span := tracing.StartSpan(ctx, "remote.submitEditExercise")
	defer func() { tracing.End(span, err) }()
	span.SetAttributes(attribute.String("exercise.id", id))

	return c.postForm(ctx, EndpointEditExercise, "/edit_exercise/"+url.PathEscape(id), values)
}

// IndexPage returns the history page, the source of the workout table.
func (c *Client) IndexPage(ctx context.Context) (_ string, err error) {
	ctx, span := tracing.StartSpan(ctx, "remote.indexPage")
	defer func() { tracing.End(span, err) }()

	body, err := c.do(ctx, EndpointIndex, http.MethodGet, "/", nil, "")
	return string(body), err
}

func (c *Client) postForm(ctx context.Context, endpoint, path string, values []form.Value) error {
	body, contentType, err := EncodeMultipart(values)
	if err != nil {
		return fmt.Errorf("encode %s form: %w", endpoint, err)
	}
	_, err = c.do(ctx, endpoint, http.MethodPost, path, body, contentType)
	return err
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("new %s request: %w", endpoint, err)
	}
	req.Header.Set(headerRequestedWith, xmlHTTPRequest)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.metrics.GaugeInflightRequests.Inc()
	defer c.metrics.GaugeInflightRequests.Dec()

	start := time.Now()
	log.Debugf("remote: %s %s", method, req.URL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.CounterRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("http client do %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	statusCode := strconv.Itoa(resp.StatusCode)
	c.metrics.CounterRequests.WithLabelValues(endpoint, statusCode).Inc()
	c.metrics.HistogramRequestDuration.
		WithLabelValues(endpoint, method, statusCode).
		Observe(time.Since(start).Seconds())

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response bytes: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody := strings.TrimSpace(string(respBytes))
		if len(errBody) > maxErrorBodyBytes {
			errBody = errBody[:maxErrorBodyBytes]
		}
		return nil, &StatusError{
			Endpoint:   endpoint,
			Method:     method,
			StatusCode: resp.StatusCode,
			Body:       errBody,
		}
	}

	return respBytes, nil
}

// EncodeMultipart encodes the form data set as multipart/form-data, keeping
// repeated names in order.
func EncodeMultipart(values []form.Value) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for _, v := range values {
		if err := mw.WriteField(v.Name, v.Value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", v.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return buf, mw.FormDataContentType(), nil
}
