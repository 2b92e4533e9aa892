// Package client uploads files to a quipt API: it claims the file by hash and,
// unless the content is already published, submits it with the returned POST policy.
package client

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
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"quipt/internal/core/domain"
)

// ErrNotVideo is returned when the upload content type is not a video type
var ErrNotVideo = errors.New("content type must be video/*")

// Client talks to the upload endpoint
type Client struct {
	apiURL string
	token  string
	http   *http.Client
}

// New creates a Client. A nil httpClient uses a client with a generous timeout.
func New(apiURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Minute}
	}
	return &Client{apiURL: strings.TrimRight(apiURL, "/"), token: token, http: httpClient}
}

// Result describes where the file ended up
type Result struct {
	ID        string
	Duplicate bool
	VideoURL  string
	PosterURL string
}

type uploadRequest struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

type uploadResponse struct {
	Duplicate string            `json:"duplicate"`
	VideoURL  string            `json:"video_url"`
	PosterURL string            `json:"poster_url"`
	Key       string            `json:"key"`
	URL       string            `json:"url"`
	Fields    map[string]string `json:"fields"`
}

// ContentType resolves the upload content type from override or the file extension.
func ContentType(path, override string) (string, error) {
	contentType := override
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(path))
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	if !strings.HasPrefix(contentType, "video/") {
		return "", fmt.Errorf("%w: got %q", ErrNotVideo, contentType)
	}
	return contentType, nil
}

// Upload sends the file at path
func (c *Client) Upload(ctx context.Context, path string, contentType string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	hash, err := domain.HashReader(f)
	if err != nil {
		return nil, fmt.Errorf("could not hash file: %w", err)
	}

	claim, err := c.requestUpload(ctx, uploadRequest{Hash: hash.Hex(), Size: stat.Size()})
	if err != nil {
		return nil, err
	}
	if claim.Duplicate != "" {
		return &Result{ID: claim.Duplicate, Duplicate: true, VideoURL: claim.VideoURL, PosterURL: claim.PosterURL}, nil
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if err := c.submit(ctx, claim, contentType, f, stat.Size()); err != nil {
		return nil, err
	}

	return &Result{ID: claim.Key}, nil
}

func (c *Client) requestUpload(ctx context.Context, body uploadRequest) (*uploadResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/api/v1/media/upload", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, statusError("upload request", resp)
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("invalid upload response: %w", err)
	}
	if out.Duplicate == "" && (out.URL == "" || out.Key == "") {
		return nil, errors.New("upload response has neither a duplicate id nor a credential")
	}
	return &out, nil
}

// submit posts the policy fields, the Content-Type field and the file, in that order.
// The body is streamed with a known length since S3 rejects chunked form posts.
func (c *Client) submit(ctx context.Context, claim *uploadResponse, contentType string, file io.Reader, size int64) error {
	var head bytes.Buffer
	writer := multipart.NewWriter(&head)

	names := make([]string, 0, len(claim.Fields))
	for name := range claim.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writer.WriteField(name, claim.Fields[name]); err != nil {
			return err
		}
	}
	if err := writer.WriteField("Content-Type", contentType); err != nil {
		return err
	}
	if _, err := writer.CreateFormFile("file", claim.Key); err != nil {
		return err
	}

	prefix := bytes.Clone(head.Bytes())
	head.Reset()
	if err := writer.Close(); err != nil {
		return err
	}
	suffix := head.Bytes()

	body := io.MultiReader(bytes.NewReader(prefix), io.LimitReader(file, size), bytes.NewReader(suffix))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claim.URL, body)
	if err != nil {
		return err
	}
	req.ContentLength = int64(len(prefix)) + size + int64(len(suffix))
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError("upload", resp)
	}
	return nil
}

func statusError(op string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
	return fmt.Errorf("%s: unexpected status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(snippet)))
}
