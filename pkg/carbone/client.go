package carbone

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Version of this SDK, sent in the User-Agent header.
const Version = "0.1.0"

const (
	headerVersion = "carbone-version"

	opUpload   = "upload template"
	opDownload = "download template"
	opDelete   = "delete template"
	opRender   = "render report"
	opReport   = "get report"
	opStatus   = "status"
)

// Client talks to the Carbone Service. It holds no mutable state after
// construction and is safe for concurrent use.
type Client struct {
	baseURL    string
	version    string
	token      APIToken
	httpClient *http.Client
	logger     zerolog.Logger
	limiter    *rate.Limiter
	userAgent  string
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client. The config timeout is not
// applied to a custom client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit caps outgoing requests per second. Requests wait for a slot;
// they are not retried.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// NewClient creates a client for the Service described by cfg. A nil cfg
// means DefaultConfig.
func NewClient(cfg *Config, token APIToken, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if token.IsZero() {
		return nil, fmt.Errorf("%w: token is required", ErrInvalidToken)
	}

	c := &Client{
		baseURL: cfg.baseURL(),
		version: cfg.APIVersion,
		token:   token,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
		logger:    zerolog.Nop(),
		userAgent: "carbone-go/" + Version,
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: cfg.Timeout()}
	}

	if exp, ok := token.ExpiresAt(); ok && exp.Before(time.Now()) {
		c.logger.Warn().Time("expired_at", exp).Msg("Carbone API token has expired")
	}

	return c, nil
}

// response is a fully read HTTP response.
type response struct {
	status      int
	contentType string
	header      http.Header
	body        []byte
}

// do sends one request and reads the whole body. Only transport failures are
// returned as errors; status handling is left to the caller.
func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string) (*response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Op: op, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("failed to build request: %w", err)}
	}
	c.applyHeaders(req)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	requestID := uuid.NewString()
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().
			Str("request_id", requestID).
			Str("method", method).
			Str("path", path).
			Err(err).
			Msg("Carbone API request failed")
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Int("bytes", len(data)).
		Dur("duration", time.Since(start)).
		Msg("Carbone API request")

	return &response{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		header:      resp.Header,
		body:        data,
	}, nil
}

func (c *Client) applyHeaders(req *http.Request) {
	req.Header.Set(headerVersion, c.version)
	req.Header.Set("Authorization", c.token.bearer())
	req.Header.Set("User-Agent", c.userAgent)
}

// decode parses the response as an envelope, tagging decode failures with op.
func (r *response) decode(op string) (*Envelope, error) {
	env, err := DecodeEnvelope(r.body)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			return nil, &DecodeError{Op: op, StatusCode: r.status, Err: de.Err}
		}
		return nil, err
	}
	return env, nil
}

// failure turns a response that should have carried raw bytes into an error.
func (r *response) failure(op string) error {
	env, err := r.decode(op)
	if err != nil {
		return err
	}
	if env.Success {
		return &DecodeError{Op: op, StatusCode: r.status, Err: errors.New("unexpected success envelope")}
	}
	return env.Err(op, r.status)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// UploadTemplate stores a template and returns the id assigned by the Service.
// salt is sent as a form field with an empty name; the Service mixes it into
// the id it derives.
func (c *Client) UploadTemplate(ctx context.Context, name string, content []byte, salt string) (TemplateID, error) {
	if name == "" {
		return TemplateID{}, &EmptyValueError{Kind: kindTemplateName}
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("", salt); err != nil {
		return TemplateID{}, fmt.Errorf("failed to write salt field: %w", err)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="template"; filename="%s"`, quoteEscaper.Replace(name)))
	h.Set("Content-Type", contentTypeFor(name))
	part, err := mw.CreatePart(h)
	if err != nil {
		return TemplateID{}, fmt.Errorf("failed to create template part: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return TemplateID{}, fmt.Errorf("failed to write template part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return TemplateID{}, fmt.Errorf("failed to close multipart body: %w", err)
	}

	resp, err := c.do(ctx, opUpload, http.MethodPost, "/template", &buf, mw.FormDataContentType())
	if err != nil {
		return TemplateID{}, err
	}

	env, err := resp.decode(opUpload)
	if err != nil {
		return TemplateID{}, err
	}
	if err := env.Err(opUpload, resp.status); err != nil {
		return TemplateID{}, err
	}
	id, err := env.TemplateID()
	if err != nil {
		return TemplateID{}, &DecodeError{Op: opUpload, StatusCode: resp.status, Err: err}
	}
	return id, nil
}

// UploadTemplateFile uploads a TemplateFile under its own name.
func (c *Client) UploadTemplateFile(ctx context.Context, template *TemplateFile, salt string) (TemplateID, error) {
	content, err := template.Content()
	if err != nil {
		return TemplateID{}, err
	}
	return c.UploadTemplate(ctx, template.Name(), content, salt)
}

// DownloadTemplate fetches a stored template. Some Service versions answer
// 200 with a JSON error envelope, so success requires both status 200 and a
// non-JSON content type.
func (c *Client) DownloadTemplate(ctx context.Context, id TemplateID) ([]byte, error) {
	if id.IsZero() {
		return nil, &EmptyValueError{Kind: kindTemplateID}
	}

	resp, err := c.do(ctx, opDownload, http.MethodGet, "/template/"+url.PathEscape(id.String()), nil, "")
	if err != nil {
		return nil, err
	}
	if resp.status == http.StatusOK && !isJSON(resp.contentType) {
		return resp.body, nil
	}
	return nil, resp.failure(opDownload)
}

// DeleteTemplate removes a stored template.
func (c *Client) DeleteTemplate(ctx context.Context, id TemplateID) error {
	if id.IsZero() {
		return &EmptyValueError{Kind: kindTemplateID}
	}

	resp, err := c.do(ctx, opDelete, http.MethodDelete, "/template/"+url.PathEscape(id.String()), nil, "")
	if err != nil {
		return err
	}
	env, err := resp.decode(opDelete)
	if err != nil {
		return err
	}
	return env.Err(opDelete, resp.status)
}

// RenderReport asks the Service to render template id with options and
// returns the render id of the result.
func (c *Client) RenderReport(ctx context.Context, id TemplateID, options RenderOptions) (RenderID, error) {
	if id.IsZero() {
		return RenderID{}, &EmptyValueError{Kind: kindTemplateID}
	}
	if options.raw == "" {
		return RenderID{}, &EmptyValueError{Kind: kindRenderOptions}
	}

	resp, err := c.do(ctx, opRender, http.MethodPost, "/render/"+url.PathEscape(id.String()), strings.NewReader(options.raw), contentTypeJSON)
	if err != nil {
		return RenderID{}, err
	}

	env, err := resp.decode(opRender)
	if err != nil {
		return RenderID{}, err
	}
	if err := env.Err(opRender, resp.status); err != nil {
		return RenderID{}, err
	}
	renderID, err := env.RenderID()
	if err != nil {
		return RenderID{}, &DecodeError{Op: opRender, StatusCode: resp.status, Err: err}
	}
	return renderID, nil
}

// GetReport downloads a rendered report.
func (c *Client) GetReport(ctx context.Context, id RenderID) ([]byte, error) {
	report, err := c.GetReportFile(ctx, id)
	if err != nil {
		return nil, err
	}
	return report.Content, nil
}

// Report is a rendered document together with the name the Service gave it.
type Report struct {
	Name        string
	ContentType string
	Content     []byte
}

// GetReportFile downloads a rendered report and keeps the file name from the
// Content-Disposition header. Name falls back to the render id.
func (c *Client) GetReportFile(ctx context.Context, id RenderID) (*Report, error) {
	if id.IsZero() {
		return nil, &EmptyValueError{Kind: kindRenderID}
	}

	resp, err := c.do(ctx, opReport, http.MethodGet, "/render/"+url.PathEscape(id.String()), nil, "")
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, resp.failure(opReport)
	}

	name := reportName(resp.header.Get("Content-Disposition"))
	if name == "" {
		name = id.String()
	}
	return &Report{
		Name:        name,
		ContentType: resp.contentType,
		Content:     resp.body,
	}, nil
}

// Status returns the body of GET /status.
func (c *Client) Status(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, opStatus, http.MethodGet, "/status", nil, "")
	if err != nil {
		return "", err
	}
	if resp.status != http.StatusOK {
		return "", resp.failure(opStatus)
	}
	return string(resp.body), nil
}
