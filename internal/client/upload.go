package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
)

// Upload posts a file as multipart form data. It is a separate entry
// point from Request but resolves to the same error shape.
func (c *Client) Upload(ctx context.Context, path, field, filename string, content io.Reader) (json.RawMessage, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return nil, &APIError{Message: err.Error(), Kind: KindClient}
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, &APIError{Message: err.Error(), Kind: KindClient}
	}
	if err := w.Close(); err != nil {
		return nil, &APIError{Message: err.Error(), Kind: KindClient}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, buf)
	if err != nil {
		return nil, &APIError{Message: err.Error(), Kind: KindClient}
	}
	c.setHeaders(req, false)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	return c.decode(resp, http.MethodPost, path)
}
