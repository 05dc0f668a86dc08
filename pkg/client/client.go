// Package client is a typed HTTP client for the user directory API.
package client

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
)

// User mirrors the API's user representation.
type User struct {
	ID           string  `json:"_id"`
	FirstName    string  `json:"firstName"`
	LastName     string  `json:"lastName"`
	Email        string  `json:"email"`
	Mobile       string  `json:"mobile"`
	Gender       string  `json:"gender"`
	Status       string  `json:"status"`
	Location     string  `json:"location"`
	ProfileImage *string `json:"profileImage,omitempty"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

// Pagination describes the page of a list response.
type Pagination struct {
	TotalRecords int64 `json:"totalRecords"`
	TotalPages   int64 `json:"totalPages"`
	CurrentPage  int   `json:"currentPage"`
	PageSize     int   `json:"pageSize"`
}

// Fields is the writable subset of a user. On update, nil pointers leave the
// stored value untouched.
type Fields struct {
	FirstName *string
	LastName  *string
	Email     *string
	Mobile    *string
	Gender    *string
	Status    *string
	Location  *string
}

// Image is an optional profile image attached to a create or update.
type Image struct {
	Filename string
	Content  io.Reader
}

// ListQuery selects a page of users; zero values fall back to server
// defaults.
type ListQuery struct {
	Page     int
	PageSize int
	Search   string
}

// APIError is a non-2xx response, carrying the server's message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination *Pagination     `json:"pagination"`
}

type Client struct {
	baseURL string
	hc      *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: 30 * time.Second},
	}
}

// NewWithHTTPClient uses the given http.Client, for callers that need their
// own transport or timeouts.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      hc,
	}
}

func (c *Client) ListUsers(ctx context.Context, q ListQuery) ([]User, Pagination, error) {
	vals := url.Values{}

	if q.Page > 0 {
		vals.Set("page", strconv.Itoa(q.Page))
	}

	if q.PageSize > 0 {
		vals.Set("limit", strconv.Itoa(q.PageSize))
	}

	if q.Search != "" {
		vals.Set("search", q.Search)
	}

	path := "/api/users"
	if len(vals) > 0 {
		path += "?" + vals.Encode()
	}

	env, err := c.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, Pagination{}, err
	}

	var users []User
	if err := json.Unmarshal(env.Data, &users); err != nil {
		return nil, Pagination{}, fmt.Errorf("decode users: %w", err)
	}

	var p Pagination
	if env.Pagination != nil {
		p = *env.Pagination
	}

	return users, p, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (User, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(id), "", nil)
	if err != nil {
		return User{}, err
	}

	return decodeUser(env)
}

func (c *Client) CreateUser(ctx context.Context, f Fields, image *Image) (User, error) {
	body, contentType, err := multipartBody(f, image)
	if err != nil {
		return User{}, err
	}

	env, err := c.do(ctx, http.MethodPost, "/api/users", contentType, body)
	if err != nil {
		return User{}, err
	}

	return decodeUser(env)
}

func (c *Client) UpdateUser(ctx context.Context, id string, f Fields, image *Image) (User, error) {
	body, contentType, err := multipartBody(f, image)
	if err != nil {
		return User{}, err
	}

	env, err := c.do(ctx, http.MethodPut, "/api/users/"+url.PathEscape(id), contentType, body)
	if err != nil {
		return User{}, err
	}

	return decodeUser(env)
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(id), "", nil)

	return err
}

// ExportCSV streams the CSV export into w.
func (c *Client) ExportCSV(ctx context.Context, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/users/export/csv", nil)
	if err != nil {
		return err
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return apiError(res)
	}

	_, err = io.Copy(w, res.Body)

	return err
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) (envelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return envelope{}, err
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	req.Header.Set("Accept", "application/json")

	res, err := c.hc.Do(req)
	if err != nil {
		return envelope{}, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return envelope{}, apiError(res)
	}

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return envelope{}, fmt.Errorf("decode response: %w", err)
	}

	return env, nil
}

func decodeUser(env envelope) (User, error) {
	var u User
	if err := json.Unmarshal(env.Data, &u); err != nil {
		return User{}, fmt.Errorf("decode user: %w", err)
	}

	return u, nil
}

// apiError prefers the envelope message; when the body is not the expected
// shape the status text stands in.
func apiError(res *http.Response) error {
	apiErr := &APIError{
		Status:  res.StatusCode,
		Message: http.StatusText(res.StatusCode),
	}

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err == nil && env.Message != "" {
		apiErr.Message = env.Message
	}

	return apiErr
}

func multipartBody(f Fields, image *Image) (io.Reader, string, error) {
	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)

	fields := map[string]*string{
		"firstName": f.FirstName,
		"lastName":  f.LastName,
		"email":     f.Email,
		"mobile":    f.Mobile,
		"gender":    f.Gender,
		"status":    f.Status,
		"location":  f.Location,
	}

	for key, val := range fields {
		if val == nil {
			continue
		}

		if err := mw.WriteField(key, *val); err != nil {
			return nil, "", err
		}
	}

	if image != nil {
		fw, err := mw.CreateFormFile("profileImage", image.Filename)
		if err != nil {
			return nil, "", err
		}

		if _, err := io.Copy(fw, image.Content); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}

	return &buf, mw.FormDataContentType(), nil
}
