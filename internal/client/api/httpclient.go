package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/veristream/veristream-cli/internal/client/models"
)

// HTTPClient implements Client over the platform's HTTP/JSON API.
//
// The zero value is not usable; construct with NewHTTPClient. The client
// imposes no timeout of its own (the transport's defaults apply) and never
// retries; a failed action is re-submitted by the user.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter

	mu    sync.RWMutex
	token string
}

// Option customizes an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient substitutes the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClient) { c.http = h }
}

// WithRateLimit caps outbound requests at rps with the given burst. Zero or
// negative rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *HTTPClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// NewHTTPClient constructs a client rooted at baseURL, e.g.
// "http://localhost:8000/api".
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetToken installs the bearer credential attached to subsequent requests.
// An empty token clears it.
func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if t := c.bearer(); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}
	return req, nil
}

// do sends a request and decodes a JSON response into out (out may be nil).
// Request bodies are JSON-encoded when in is non-nil.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, method, path, contentType, body)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

func (c *HTTPClient) send(req *http.Request, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return err
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return mapError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// mapError turns a non-2xx response into a *Error wrapping the sentinel
// for its status class. The server's {message, errors} body is preserved
// verbatim when it decodes.
func mapError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}

	var body struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = body.Message
		apiErr.Fields = body.Errors
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		apiErr.class = ErrUnauthorized
	case resp.StatusCode == http.StatusConflict:
		apiErr.class = ErrConflict
	}
	return apiErr
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var res LoginResult
	req := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/login", req, &res); err != nil {
		return LoginResult{}, err
	}
	return res, nil
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (models.UserSummary, error) {
	var res struct {
		User models.UserSummary `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/register", req, &res); err != nil {
		return models.UserSummary{}, err
	}
	return res.User, nil
}

func (c *HTTPClient) CurrentSession(ctx context.Context) (models.UserSummary, error) {
	var res struct {
		User models.UserSummary `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/me", nil, &res); err != nil {
		return models.UserSummary{}, err
	}
	return res.User, nil
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/forgot-password", map[string]string{"email": email}, nil)
}

func (c *HTTPClient) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	return c.do(ctx, http.MethodPost, "/reset-password", req, nil)
}

// Feed fetches the requested feed variant. The following and discovery
// variants are keyed by the current user's id.
func (c *HTTPClient) Feed(ctx context.Context, kind FeedKind, userID int64) ([]models.Video, error) {
	path := "/videos"
	switch kind {
	case FeedFollowing:
		path = fmt.Sprintf("/videos/following/%d", userID)
	case FeedDiscovery:
		path = fmt.Sprintf("/videos/discovery/%d", userID)
	}

	var videos []models.Video
	if err := c.do(ctx, http.MethodGet, path, nil, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// UploadChunk submits one byte range of a chunked upload as multipart form
// data. The thumbnail URL is included only when set (chunk 0).
func (c *HTTPClient) UploadChunk(ctx context.Context, chunk ChunkUpload) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"filename":    chunk.Filename,
		"chunk":       strconv.Itoa(chunk.Index),
		"totalChunks": strconv.Itoa(chunk.Total),
		"title":       chunk.Title,
		"description": chunk.Description,
		"location":    chunk.Location,
	}
	if chunk.ThumbnailURL != "" {
		fields["thumbnail_url"] = chunk.ThumbnailURL
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return fmt.Errorf("write field %s: %w", name, err)
		}
	}

	fw, err := w.CreateFormFile("file", chunk.Filename)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := fw.Write(chunk.Data); err != nil {
		return fmt.Errorf("write file part: %w", err)
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/upload-chunk", w.FormDataContentType(), &buf)
	if err != nil {
		return err
	}
	return c.send(req, nil)
}

func (c *HTTPClient) Like(ctx context.Context, videoID int64) (LikeResult, error) {
	var res LikeResult
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/like/%d", videoID), nil, &res); err != nil {
		return LikeResult{}, err
	}
	return res, nil
}

func (c *HTTPClient) Unlike(ctx context.Context, videoID int64) (LikeResult, error) {
	var res LikeResult
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/unlike/%d", videoID), nil, &res); err != nil {
		return LikeResult{}, err
	}
	return res, nil
}

func (c *HTTPClient) Comment(ctx context.Context, videoID int64, text string) (models.Comment, error) {
	var res struct {
		Comment models.Comment `json:"comment"`
	}
	req := map[string]string{"comment": text}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/comment/%d", videoID), req, &res); err != nil {
		return models.Comment{}, err
	}
	return res.Comment, nil
}

func (c *HTTPClient) Profile(ctx context.Context, userID int64) (ProfileResult, error) {
	var res ProfileResult
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/profile/%d", userID), nil, &res); err != nil {
		return ProfileResult{}, err
	}
	return res, nil
}

func (c *HTTPClient) Follow(ctx context.Context, userID int64) (FollowResult, error) {
	var res FollowResult
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/follow/%d", userID), nil, &res); err != nil {
		return FollowResult{}, err
	}
	return res, nil
}

func (c *HTTPClient) Unfollow(ctx context.Context, userID int64) (FollowResult, error) {
	var res FollowResult
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/unfollow/%d", userID), nil, &res); err != nil {
		return FollowResult{}, err
	}
	return res, nil
}

func (c *HTTPClient) Followers(ctx context.Context, userID int64) ([]models.UserSummary, error) {
	var users []models.UserSummary
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/profile/followers/%d", userID), nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *HTTPClient) Following(ctx context.Context, userID int64) ([]models.UserSummary, error) {
	var users []models.UserSummary
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/profile/following/%d", userID), nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}
