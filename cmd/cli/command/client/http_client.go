package client

// http_client.go = talks to the MRP REST API on behalf of the CLI commands.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"mrp/internal/microservices/http-api/dto"
	"mrp/internal/microservices/http-api/models"
)

// APIError is a non-2xx answer carrying the server's error message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// NewHTTPClient expects apiURL to point at the /api prefix.
func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// do sends one request; body is JSON-encoded when non-nil and a 2xx answer
// is decoded into out when out is non-nil.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() // Ensure the response body is closed

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		return &APIError{Status: resp.StatusCode, Message: envelope.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type messageResponse struct {
	Message string `json:"message"`
}

func (c *HTTPClient) message(ctx context.Context, method, path string) (string, error) {
	var result messageResponse
	if err := c.do(ctx, method, path, nil, &result); err != nil {
		return "", err
	}
	return result.Message, nil
}

// Auth

func (c *HTTPClient) Register(ctx context.Context, request *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	var result dto.RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Login(ctx context.Context, request *dto.LoginRequest) (*dto.LoginResponse, error) {
	var result dto.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Media

func (c *HTTPClient) ListMedia(ctx context.Context, query url.Values) ([]models.MediaSummary, error) {
	path := "/media"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var result []models.MediaSummary
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *HTTPClient) GetMedia(ctx context.Context, id uuid.UUID) (*models.MediaDetail, error) {
	var result models.MediaDetail
	if err := c.do(ctx, http.MethodGet, "/media/"+id.String(), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) CreateMedia(ctx context.Context, request *dto.MediaRequest) (*models.MediaEntry, error) {
	var result models.MediaEntry
	if err := c.do(ctx, http.MethodPost, "/media", request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) UpdateMedia(ctx context.Context, id uuid.UUID, request *dto.MediaRequest) (*models.MediaEntry, error) {
	var result models.MediaEntry
	if err := c.do(ctx, http.MethodPut, "/media/"+id.String(), request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) DeleteMedia(ctx context.Context, id uuid.UUID) (string, error) {
	return c.message(ctx, http.MethodDelete, "/media/"+id.String())
}

func (c *HTTPClient) AddFavorite(ctx context.Context, id uuid.UUID) (string, error) {
	return c.message(ctx, http.MethodPost, "/media/"+id.String()+"/favorite")
}

func (c *HTTPClient) RemoveFavorite(ctx context.Context, id uuid.UUID) (string, error) {
	return c.message(ctx, http.MethodDelete, "/media/"+id.String()+"/favorite")
}

// Ratings

func (c *HTTPClient) Rate(ctx context.Context, mediaID uuid.UUID, request *dto.RatingRequest) (*models.Rating, error) {
	var result models.Rating
	if err := c.do(ctx, http.MethodPost, "/media/"+mediaID.String()+"/ratings", request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) UpdateRating(ctx context.Context, id uuid.UUID, request *dto.RatingRequest) (*models.Rating, error) {
	var result models.Rating
	if err := c.do(ctx, http.MethodPut, "/ratings/"+id.String(), request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) DeleteRating(ctx context.Context, id uuid.UUID) (string, error) {
	return c.message(ctx, http.MethodDelete, "/ratings/"+id.String())
}

func (c *HTTPClient) ConfirmRating(ctx context.Context, id uuid.UUID) (string, error) {
	return c.message(ctx, http.MethodPut, "/ratings/"+id.String()+"/confirm")
}

func (c *HTTPClient) LikeRating(ctx context.Context, id uuid.UUID) (string, error) {
	return c.message(ctx, http.MethodPost, "/ratings/"+id.String()+"/like")
}

func (c *HTTPClient) UnlikeRating(ctx context.Context, id uuid.UUID) (string, error) {
	return c.message(ctx, http.MethodDelete, "/ratings/"+id.String()+"/unlike")
}

// Users

func (c *HTTPClient) Profile(ctx context.Context, username string) (*models.UserProfile, error) {
	var result models.UserProfile
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(username)+"/profile", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) UserFavorites(ctx context.Context, username string) ([]models.MediaSummary, error) {
	var result []models.MediaSummary
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(username)+"/favorites", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *HTTPClient) UserRatings(ctx context.Context, username string) ([]models.RatingView, error) {
	var result []models.RatingView
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(username)+"/ratings", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *HTTPClient) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	var result []models.LeaderboardEntry
	if err := c.do(ctx, http.MethodGet, "/leaderboard", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *HTTPClient) Recommendations(ctx context.Context) ([]models.MediaSummary, error) {
	var result []models.MediaSummary
	if err := c.do(ctx, http.MethodGet, "/recommendations", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}
