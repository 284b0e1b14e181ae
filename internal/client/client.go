// Package client talks to the easel REST API. The base URL always comes from
// configuration.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"easel/internal/element"
	"easel/internal/store"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: HTTP %d", e.Status)
	}
	return fmt.Sprintf("api: HTTP %d: %s", e.Status, e.Message)
}

type Client struct {
	*http.Client // [Embedded]
	BaseURL      string
}

func New(baseURL string) *Client {
	return &Client{
		Client:  &http.Client{Timeout: 30 * time.Second},
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) endpoint(path string) string {
	return c.BaseURL + "/api/canvas" + path
}

// do sends req and decodes a JSON answer into out when out is non-nil.
func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	res, err := c.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			log.Printf("[WARN] %v", closeErr)
		}
	}()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return decodeError(res)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(res *http.Response) error {
	apiErr := &APIError{Status: res.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	var msg struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &msg) == nil && msg.Message != "" {
		apiErr.Message = msg.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

func (c *Client) requestJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

// Create makes an empty canvas of the given size and returns its id.
func (c *Client) Create(ctx context.Context, width, height float64) (string, error) {
	var out struct {
		ID string `json:"_id"`
	}
	payload := map[string]float64{"width": width, "height": height}
	if err := c.requestJSON(ctx, http.MethodPost, "", payload, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) Get(ctx context.Context, id string) (store.Canvas, error) {
	var out store.Canvas
	err := c.requestJSON(ctx, http.MethodGet, "/"+url.PathEscape(id), nil, &out)
	return out, err
}

// Update saves the full state of a canvas and returns the name the server
// stored.
func (c *Client) Update(ctx context.Context, id string, cv store.Canvas) (string, error) {
	els := cv.Elements
	if els == nil {
		els = []element.Element{}
	}
	payload := struct {
		Name     string            `json:"name"`
		Width    float64           `json:"width"`
		Height   float64           `json:"height"`
		Elements []element.Element `json:"elements"`
	}{cv.Name, cv.Width, cv.Height, els}

	var out struct {
		Name string `json:"name"`
	}
	if err := c.requestJSON(ctx, http.MethodPut, "/"+url.PathEscape(id), payload, &out); err != nil {
		return "", err
	}
	return out.Name, nil
}

func (c *Client) AddElement(ctx context.Context, id string, el element.Element) error {
	return c.requestJSON(ctx, http.MethodPost, "/"+url.PathEscape(id)+"/elements", el, nil)
}

func (c *Client) List(ctx context.Context) ([]store.Summary, error) {
	var out []store.Summary
	err := c.requestJSON(ctx, http.MethodGet, "", nil, &out)
	return out, err
}

func (c *Client) Count(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	err := c.requestJSON(ctx, http.MethodGet, "/count", nil, &out)
	return out.Count, err
}

// Export streams the PDF rendering of a canvas into w.
func (c *Client) Export(ctx context.Context, id string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/"+url.PathEscape(id)+"/export"), nil)
	if err != nil {
		return err
	}
	res, err := c.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return decodeError(res)
	}
	_, err = io.Copy(w, res.Body)
	return err
}

// Upload sends an image as the multipart field "image" and returns the URL
// the server stored it under.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("image", filepath.Base(filename))
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/upload"), pr)
	if err != nil {
		pr.Close()
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(req, &out); err != nil {
		pr.Close()
		return "", err
	}
	return out.URL, nil
}
