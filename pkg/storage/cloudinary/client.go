package cloudinary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/ecocampus-app/ecocampus-backend/pkg/config"
	pkgerrors "github.com/ecocampus-app/ecocampus-backend/pkg/errors"
)

const (
	defaultBaseURL              = "https://api.cloudinary.com/v1_1"
	responseBodyReadLimit int64 = 1024
)

var (
	errCloudNameRequired    = errors.New("cloudinary cloud name is required")
	errUploadPresetRequired = errors.New("cloudinary upload preset is required")
)

// Client wraps Cloudinary's unsigned image upload API.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	cloudName    string
	uploadPreset string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the Cloudinary API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the Cloudinary upload client.
func NewClient(cfg config.CloudinaryConfig, opts ...Option) (*Client, error) {
	cloudName := strings.TrimSpace(cfg.CloudName)
	if cloudName == "" {
		return nil, errCloudNameRequired
	}
	preset := strings.TrimSpace(cfg.UploadPreset)
	if preset == "" {
		return nil, errUploadPresetRequired
	}

	client := &Client{
		cloudName:    cloudName,
		uploadPreset: preset,
		baseURL:      defaultBaseURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// UploadResult is the subset of Cloudinary's response the platform stores.
type UploadResult struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
}

// UploadImage streams the file to Cloudinary under the configured unsigned
// preset, optionally into the given folder.
func (c *Client) UploadImage(ctx context.Context, filename string, file io.Reader, folder string) (*UploadResult, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cloudinary client not configured")
	}
	if file == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "upload file is required")
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		defer func() { _ = pw.Close() }()
		if err := writer.WriteField("upload_preset", c.uploadPreset); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if folder != "" {
			if err := writer.WriteField("folder", folder); err != nil {
				_ = pw.CloseWithError(err)
				return
			}
		}
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		_ = pw.CloseWithError(writer.Close())
	}()

	endpoint := fmt.Sprintf("%s/%s/image/upload", strings.TrimRight(c.baseURL, "/"), c.cloudName)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, pr)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build upload request")
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute upload request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "upload request failed")
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode upload response")
	}
	if result.SecureURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "upload response missing secure_url")
	}

	return &result, nil
}
