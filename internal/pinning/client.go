package pinning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"tokenLauncher/internal/model"
)

const (
	DefaultAPIBase      = "https://api.pinata.cloud"
	DefaultGatewayBase  = "https://ipfs.io/ipfs/"
	defaultContentType  = "image/jpeg"
	defaultTimeout      = 30 * time.Second
	defaultMaxFileBytes = 10 << 20

	pinFilePath = "/pinning/pinFileToIPFS"
	pinJSONPath = "/pinning/pinJSONToIPFS"
)

// Config holds credentials and limits for the pinning client.
type Config struct {
	JWT               string
	APIBase           string
	GatewayBase       string
	Timeout           time.Duration
	MaxFileBytes      int64
	RequestsPerSecond float64
	Burst             int
}

// Client uploads content to Pinata and reads it back through a public gateway.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// Content is a read-back payload. JSON is set when the gateway declares application/json.
type Content struct {
	ContentType string
	Data        []byte
	JSON        interface{}
}

// ErrNoCredentials is returned by uploads on a client built without a JWT.
var ErrNoCredentials = errors.New("pinata jwt is required")

// NewClient builds a Client. A nil httpClient gets one with cfg.Timeout.
// Without a JWT the client can only read back.
func NewClient(cfg Config, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	cfg.JWT = strings.TrimSpace(cfg.JWT)
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	cfg.APIBase = strings.TrimSuffix(cfg.APIBase, "/")
	if cfg.GatewayBase == "" {
		cfg.GatewayBase = DefaultGatewayBase
	}
	if !strings.HasSuffix(cfg.GatewayBase, "/") {
		cfg.GatewayBase += "/"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxFileBytes <= 0 {
		cfg.MaxFileBytes = defaultMaxFileBytes
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limit := rate.Inf
	burst := cfg.Burst
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		if burst <= 0 {
			burst = 1
		}
	}

	return &Client{
		cfg:     cfg,
		http:    httpClient,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}, nil
}

// UploadBytes pins data as a file.
func (c *Client) UploadBytes(ctx context.Context, data []byte, filename, contentType string) (model.ContentRef, error) {
	if filename == "" {
		filename = "file"
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filename)))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write form file: %w", err)
	}

	meta, err := json.Marshal(map[string]string{"name": filename})
	if err != nil {
		return "", fmt.Errorf("marshal pinata metadata: %w", err)
	}
	if err := writer.WriteField("pinataMetadata", string(meta)); err != nil {
		return "", fmt.Errorf("write pinata metadata: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	ref, err := c.pin(ctx, "upload file", pinFilePath, writer.FormDataContentType(), &body)
	if err != nil {
		return "", err
	}
	c.logger.Info("file pinned",
		zap.String("filename", filename),
		zap.String("content_type", contentType),
		zap.Int("bytes", len(data)),
		zap.String("ref", ref.String()),
	)
	return ref, nil
}

// UploadFromURL downloads an image and pins it.
func (c *Client) UploadFromURL(ctx context.Context, imageURL string) (model.ContentRef, error) {
	data, contentType, err := c.get(ctx, StageFetch, "fetch image", imageURL)
	if err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = defaultContentType
	}
	return c.UploadBytes(ctx, data, "image."+extensionFor(contentType), contentType)
}

// UploadFile pins a local file.
func (c *Client) UploadFile(ctx context.Context, path string) (model.ContentRef, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > c.cfg.MaxFileBytes {
		return "", fmt.Errorf("file %s exceeds %d bytes", path, c.cfg.MaxFileBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return c.UploadBytes(ctx, data, filepath.Base(path), http.DetectContentType(data))
}

// UploadJSON pins a metadata document. A missing image is replaced by the placeholder.
func (c *Client) UploadJSON(ctx context.Context, metadata model.TokenMetadata) (model.ContentRef, error) {
	metadata = metadata.WithDefaultImage()
	payload, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}

	ref, err := c.pin(ctx, "upload json", pinJSONPath, "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	c.logger.Info("metadata pinned",
		zap.String("symbol", metadata.Symbol),
		zap.String("image", metadata.Image.String()),
		zap.String("ref", ref.String()),
	)
	return ref, nil
}

// ReadBack fetches a reference through the gateway.
func (c *Client) ReadBack(ctx context.Context, ref model.ContentRef) (*Content, error) {
	if !strings.HasPrefix(string(ref), model.ContentScheme) {
		return nil, fmt.Errorf("not an %s reference: %q", model.ContentScheme, ref)
	}
	data, contentType, err := c.get(ctx, StageRead, "read", c.GatewayURL(ref))
	if err != nil {
		return nil, err
	}

	content := &Content{ContentType: contentType, Data: data}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && mediaType == "application/json" {
		if err := json.Unmarshal(data, &content.JSON); err != nil {
			return nil, fmt.Errorf("decode %s: %w", ref, err)
		}
	}
	return content, nil
}

// GatewayURL rewrites an ipfs:// reference to the public gateway.
func (c *Client) GatewayURL(ref model.ContentRef) string {
	return c.cfg.GatewayBase + ref.CID()
}

func (c *Client) pin(ctx context.Context, op, path, contentType string, body io.Reader) (model.ContentRef, error) {
	endpoint := c.cfg.APIBase + path
	upstream := func(status int, respBody []byte, err error) *UpstreamError {
		return &UpstreamError{Stage: StagePin, Op: op, URL: endpoint, Status: status, Body: truncateBody(respBody), Err: err}
	}

	if c.cfg.JWT == "" {
		return "", ErrNoCredentials
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", upstream(0, nil, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.JWT)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", upstream(0, nil, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", upstream(resp.StatusCode, nil, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", upstream(resp.StatusCode, respBody, nil)
	}

	var parsed pinResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", upstream(0, respBody, fmt.Errorf("decode response: %w", err))
	}
	ref, err := RefFromCID(parsed.IpfsHash)
	if err != nil {
		return "", upstream(0, respBody, err)
	}
	return ref, nil
}

func (c *Client) get(ctx context.Context, stage Stage, op, target string) ([]byte, string, error) {
	upstream := func(status int, body []byte, err error) *UpstreamError {
		return &UpstreamError{Stage: stage, Op: op, URL: target, Status: status, Body: truncateBody(body), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", upstream(0, nil, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", upstream(0, nil, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxFileBytes+1))
	if err != nil {
		return nil, "", upstream(resp.StatusCode, nil, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", upstream(resp.StatusCode, data, nil)
	}
	if int64(len(data)) > c.cfg.MaxFileBytes {
		return nil, "", upstream(resp.StatusCode, nil, fmt.Errorf("body exceeds %d bytes", c.cfg.MaxFileBytes))
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// extensionFor maps image/png to png, falling back to jpg.
func extensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "jpg"
	}
	_, sub, ok := strings.Cut(mediaType, "/")
	if !ok || sub == "" {
		return "jpg"
	}
	if i := strings.IndexAny(sub, "+;"); i > 0 {
		sub = sub[:i]
	}
	return sub
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
