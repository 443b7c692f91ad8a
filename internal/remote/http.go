package remote

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

	"github.com/pageza/drinkbook/backend/internal/model"
)

// Error codes carried in API error bodies.
const (
	CodeNotConnected = "not_connected"
	CodeMissingIndex = "missing_index"
	CodeNotFound     = "not_found"
	CodeInvalid      = "invalid"
)

// ErrorBody is the JSON shape of every API error.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HTTPStore talks to the catalog API.
type HTTPStore struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPStore creates a store for the API rooted at baseURL, e.g.
// "http://localhost:8080/api/v1". token is sent on writes when set.
func NewHTTPStore(baseURL, token string) *HTTPStore {
	return &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// WithHTTPClient swaps the underlying client (tests use httptest servers).
func (s *HTTPStore) WithHTTPClient(c *http.Client) *HTTPStore {
	s.client = c
	return s
}

// SetToken replaces the bearer token used for writes.
func (s *HTTPStore) SetToken(token string) {
	s.token = token
}

type recipesResponse struct {
	Recipes []model.Recipe `json:"recipes"`
}

type recipeResponse struct {
	Recipe model.Recipe `json:"recipe"`
}

type categoriesResponse struct {
	Categories []model.Category `json:"categories"`
}

// QueryValues encodes q the way the API reads it.
func QueryValues(q Query) url.Values {
	v := url.Values{}
	for _, f := range q.Equal {
		v.Set(f.Field, f.Value)
	}
	if q.In != nil {
		v.Set(q.In.Field+"s", strings.Join(q.In.Values, ","))
	}
	if q.OrderBy != "" {
		v.Set("order", q.OrderBy)
		if q.Descending {
			v.Set("dir", "desc")
		} else {
			v.Set("dir", "asc")
		}
	}
	return v
}

func (s *HTTPStore) QueryRecipes(ctx context.Context, q Query) ([]model.Recipe, error) {
	if q.In != nil && len(q.In.Values) == 0 {
		return []model.Recipe{}, nil
	}
	var out recipesResponse
	path := "/recipes"
	if enc := QueryValues(q).Encode(); enc != "" {
		path += "?" + enc
	}
	if err := s.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out.Recipes == nil {
		out.Recipes = []model.Recipe{}
	}
	return out.Recipes, nil
}

func (s *HTTPStore) GetRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	var out recipeResponse
	if err := s.do(ctx, http.MethodGet, "/recipes/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Recipe, nil
}

func (s *HTTPStore) InsertRecipe(ctx context.Context, draft model.RecipeDraft) (*model.Recipe, error) {
	var out recipeResponse
	if err := s.do(ctx, http.MethodPost, "/recipes", draft, &out); err != nil {
		return nil, err
	}
	return &out.Recipe, nil
}

func (s *HTTPStore) UpdateRecipe(ctx context.Context, id string, patch model.RecipePatch) (*model.Recipe, error) {
	var out recipeResponse
	if err := s.do(ctx, http.MethodPut, "/recipes/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out.Recipe, nil
}

func (s *HTTPStore) DeleteRecipe(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/recipes/"+url.PathEscape(id), nil, nil)
}

// IncrementPopularity records one more view of a recipe.
func (s *HTTPStore) IncrementPopularity(ctx context.Context, id string) (*model.Recipe, error) {
	var out recipeResponse
	if err := s.do(ctx, http.MethodPost, "/recipes/"+url.PathEscape(id)+"/popularity", nil, &out); err != nil {
		return nil, err
	}
	return &out.Recipe, nil
}

func (s *HTTPStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	var out categoriesResponse
	if err := s.do(ctx, http.MethodGet, "/categories", nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// Login exchanges bartender credentials for a token.
func (s *HTTPStore) Login(ctx context.Context, email, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := s.do(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (s *HTTPStore) do(ctx context.Context, method, path string, in, out interface{}) error {
	if s.baseURL == "" {
		return ErrNotConnected
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" && method != http.MethodGet {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("malformed response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var eb ErrorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &eb); err != nil || eb.Error == "" {
		eb.Error = strings.TrimSpace(string(raw))
		if eb.Error == "" {
			eb.Error = resp.Status
		}
	}

	switch {
	case eb.Code == CodeMissingIndex || resp.StatusCode == http.StatusPreconditionFailed:
		return fmt.Errorf("%w: %s", ErrMissingIndex, eb.Error)
	case eb.Code == CodeNotConnected || resp.StatusCode == http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", ErrNotConnected, eb.Error)
	case eb.Code == CodeNotFound || resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, eb.Error)
	case eb.Code == CodeInvalid || resp.StatusCode == http.StatusBadRequest:
		msg := strings.TrimPrefix(eb.Error, model.ErrInvalid.Error()+": ")
		return fmt.Errorf("%w: %s", model.ErrInvalid, msg)
	default:
		return &StatusError{Status: resp.StatusCode, Message: eb.Error}
	}
}

// StatusError is a generic API failure.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}
