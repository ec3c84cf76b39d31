package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yildizm/elacheck/internal/controller"
	"github.com/yildizm/elacheck/internal/logger"
)

const (
	opPreview = "preview"
	opAnalyze = "analyze"
)

// Client talks to the Analysis Service over HTTP. It implements
// controller.Service.
type Client struct {
	config  *Config
	client  *http.Client
	baseURL *url.URL
	log     *logger.Logger
}

var _ controller.Service = (*Client)(nil)

// New creates a new Analysis Service client. No client-side timeout is set:
// a call lasts until the server answers or ctx is cancelled.
func New(config *Config, log *logger.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	baseURL, err := url.Parse(strings.TrimRight(config.BaseURL, "/"))
	if err != nil {
		return nil, NewRemoteErrorWithCause(ErrKindConfiguration, "", "invalid base URL", err)
	}
	if log == nil {
		log = logger.Discard()
	}

	return &Client{
		config:  config,
		client:  &http.Client{},
		baseURL: baseURL,
		log:     log.WithComponent("service"),
	}, nil
}

// BaseURL returns the service root
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Preview uploads the file and returns a reference to the server-rendered
// preview. A server-reported error is returned as a PreviewResult with
// Error set; transport and parse failures are returned as *RemoteError.
func (c *Client) Preview(ctx context.Context, file *controller.File) (*controller.PreviewResult, error) {
	body, status, requestID, err := c.upload(ctx, opPreview, c.config.PreviewPath, file)
	if err != nil {
		return nil, err
	}

	var resp previewResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, c.decodeError(opPreview, status, requestID, err)
	}

	if resp.Error != "" {
		c.log.WarnWithFields("preview rejected by server", []logger.Field{
			logger.RequestID(requestID),
			logger.F("status", status),
			logger.F("error", resp.Error),
		})
		return &controller.PreviewResult{Error: resp.Error}, nil
	}
	if status != http.StatusOK {
		return nil, c.statusError(opPreview, status, requestID)
	}
	if resp.PreviewImage == "" {
		e := NewRemoteError(ErrKindParse, opPreview, "response is missing preview_image")
		e.RequestID = requestID
		return nil, e
	}

	return &controller.PreviewResult{PreviewImageRef: resp.PreviewImage}, nil
}

// Analyze uploads the file for forensic analysis. All four result fields
// must be present for a successful reply.
func (c *Client) Analyze(ctx context.Context, file *controller.File) (*controller.AnalysisResult, error) {
	body, status, requestID, err := c.upload(ctx, opAnalyze, c.config.AnalyzePath, file)
	if err != nil {
		return nil, err
	}

	var resp analyzeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, c.decodeError(opAnalyze, status, requestID, err)
	}

	if resp.Error != "" {
		e := NewRemoteError(ErrKindServer, opAnalyze, resp.Error)
		e.StatusCode = status
		e.RequestID = requestID
		e.Traceback = resp.Traceback
		c.log.WarnWithFields("analysis rejected by server", []logger.Field{
			logger.RequestID(requestID),
			logger.F("status", status),
			logger.F("error", resp.Error),
		})
		return nil, e
	}
	if status != http.StatusOK {
		return nil, c.statusError(opAnalyze, status, requestID)
	}
	if missing := resp.missingFields(); len(missing) > 0 {
		e := NewRemoteError(ErrKindParse, opAnalyze, "response is missing "+strings.Join(missing, ", "))
		e.RequestID = requestID
		return nil, e
	}

	return &controller.AnalysisResult{
		OriginalImageRef: *resp.OriginalImage,
		ELAImageRef:      *resp.ELAImage,
		Verdict:          *resp.Result,
		Confidence:       *resp.Confidence,
	}, nil
}

// ResolveRef turns a reference returned by the service into an absolute
// URL. Absolute URLs and data URIs are returned unchanged.
func (c *Client) ResolveRef(ref string) string {
	if ref == "" || strings.HasPrefix(ref, "data:") {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil || u.IsAbs() {
		return ref
	}
	base := *c.baseURL
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return base.ResolveReference(u).String()
}

// upload posts the file as a multipart form and returns the raw reply.
func (c *Client) upload(ctx context.Context, op, path string, file *controller.File) ([]byte, int, string, error) {
	requestID := uuid.NewString()
	start := time.Now()

	payload, contentType, err := c.encodeForm(file)
	if err != nil {
		e := NewRemoteErrorWithCause(ErrKindInput, op, "failed to read "+file.Name, err)
		e.RequestID = requestID
		return nil, 0, requestID, e
	}

	endpoint := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), payload)
	if err != nil {
		e := NewRemoteErrorWithCause(ErrKindTransport, op, "failed to create request", err)
		e.RequestID = requestID
		return nil, 0, requestID, e
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	c.log.DebugWithFields("sending %s request", []logger.Field{
		logger.RequestID(requestID),
		logger.F("url", endpoint.String()),
		logger.F("file", file.Name),
		logger.F("bytes", payload.Len()),
	}, op)

	resp, err := c.client.Do(req)
	if err != nil {
		e := NewRemoteErrorWithCause(ErrKindTransport, op, "request failed", err)
		e.RequestID = requestID
		return nil, 0, requestID, e
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		e := NewRemoteErrorWithCause(ErrKindTransport, op, "failed to read response", err)
		e.StatusCode = resp.StatusCode
		e.RequestID = requestID
		return nil, resp.StatusCode, requestID, e
	}

	c.log.DebugWithFields("%s reply received", []logger.Field{
		logger.RequestID(requestID),
		logger.F("status", resp.StatusCode),
		logger.Duration(time.Since(start)),
	}, op)

	return body, resp.StatusCode, requestID, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeForm builds the multipart body with the image under the configured
// field, carrying the file's declared media type on the part.
func (c *Client) encodeForm(file *controller.File) (*bytes.Buffer, string, error) {
	src, err := file.Open()
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = src.Close() }()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	name := file.Name
	if name == "" {
		name = "upload"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(c.config.FieldName), quoteEscaper.Replace(name)))
	mediaType := file.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	header.Set("Content-Type", mediaType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}

	return &buf, mw.FormDataContentType(), nil
}

func (c *Client) decodeError(op string, status int, requestID string, cause error) *RemoteError {
	kind := ErrKindParse
	message := "failed to decode response"
	if status != http.StatusOK && status != 0 {
		kind = ErrKindServer
		message = http.StatusText(status)
		if message == "" {
			message = "unexpected reply"
		}
	}
	e := NewRemoteErrorWithCause(kind, op, message, cause)
	e.StatusCode = status
	e.RequestID = requestID
	return e
}

func (c *Client) statusError(op string, status int, requestID string) *RemoteError {
	e := NewRemoteError(ErrKindServer, op, fmt.Sprintf("request failed with status %d", status))
	e.StatusCode = status
	e.RequestID = requestID
	return e
}
