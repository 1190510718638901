package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"evantra-web/internal/models"
)

const apiPrefix = "/api/v1"

// Client talks to the Evantra REST backend. It holds no state beyond the
// base URL and the HTTP client; access tokens are passed per call and never
// cached here.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a backend API client
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// errorBody is the backend's error envelope
type errorBody struct {
	Error string `json:"error"`
}

// do issues the request and decodes the response into out (if non-nil).
// Non-2xx responses are mapped onto the error taxonomy; transport failures
// become ErrNetworkFailure.
func (c *Client) do(ctx context.Context, method, path string, accessToken string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", models.ErrUnknown, err)
		}
	}
	return nil
}

// Upload is a file attached to a multipart request.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// doMultipart issues a multipart/form-data request: the payload goes in a
// JSON "event" part and the optional upload in an "image" file part. The
// backend's event write endpoints accept only this shape.
func (c *Client) doMultipart(ctx context.Context, method, path string, accessToken string, payload any, image *Upload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="event"`)
	header.Set("Content-Type", "application/json")
	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("failed to build multipart body: %w", err)
	}

	if image != nil {
		fileHeader := textproto.MIMEHeader{}
		fileHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, image.Filename))
		if image.ContentType != "" {
			fileHeader.Set("Content-Type", image.ContentType)
		}
		filePart, err := writer.CreatePart(fileHeader)
		if err != nil {
			return fmt.Errorf("failed to build multipart body: %w", err)
		}
		if _, err := filePart.Write(image.Data); err != nil {
			return fmt.Errorf("failed to build multipart body: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.decodeError(resp)
	}
	return nil
}

// raw issues the request and returns the raw response body. Used for binary
// payloads such as the ticket QR image. The caller owns the returned bytes.
func (c *Client) raw(ctx context.Context, method, path string, accessToken string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", models.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", c.decodeError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", models.ErrNetworkFailure, err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// decodeError turns a non-2xx response into an APIError. Unparseable bodies
// still produce a usable error with the status code.
func (c *Client) decodeError(resp *http.Response) error {
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error == "" {
		return models.NewAPIError(resp.StatusCode, "")
	}
	return models.NewAPIError(resp.StatusCode, body.Error)
}
