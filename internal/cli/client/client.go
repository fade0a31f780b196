package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/publicsuffix"

	"github.com/newsox/newsox/internal/apierr"
	"github.com/newsox/newsox/internal/models"
)

const (
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 64 << 10
)

// Client represents an HTTP client for the newsox backend API.
// Cookies set by the backend are kept in the client's jar and sent with
// every request; a bearer token is added only when one is passed in.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	jar        http.CookieJar
	validate   *validator.Validate
	log        zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithInsecureTLS skips certificate verification, for development servers
// with self-signed certificates
func WithInsecureTLS() Option {
	return func(c *Client) {
		c.httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
		}
	}
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a new API client for the backend at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API URL %q: scheme must be http or https", baseURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		baseURL: u,
		jar:     jar,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			Jar:     jar,
		},
		validate: validator.New(),
		log:      log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("component", "client").Logger()

	return c, nil
}

// SetHTTPClient sets a custom HTTP client. The client's cookie jar is
// attached to it unless it brings its own.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	if httpClient.Jar == nil {
		httpClient.Jar = c.jar
	} else {
		c.jar = httpClient.Jar
	}
	c.httpClient = httpClient
}

// BaseURL returns the backend root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Cookies returns the cookies the jar would send to the backend
func (c *Client) Cookies() []*http.Cookie {
	return c.jar.Cookies(c.baseURL)
}

// SetCookies loads previously saved cookies into the jar
func (c *Client) SetCookies(cookies []*http.Cookie) {
	if len(cookies) == 0 {
		return
	}
	restored := make([]*http.Cookie, 0, len(cookies))
	for _, ck := range cookies {
		cp := *ck
		if cp.Path == "" {
			cp.Path = "/"
		}
		restored = append(restored, &cp)
	}
	c.jar.SetCookies(c.baseURL, restored)
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates with email and password. The backend answers with
// a session cookie (kept in the jar) and the member, and may also issue a
// bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	reqBody := LoginRequest{
		Email:    strings.TrimSpace(email),
		Password: strings.TrimSpace(password),
	}
	if err := c.validate.Struct(&reqBody); err != nil {
		return nil, fmt.Errorf("%w: %s", apierr.ErrInvalidInput, describeValidation(err))
	}

	var result models.LoginResult
	if err := c.execute(ctx, outboundRequest{
		method:  http.MethodPost,
		path:    "/api/members/login",
		body:    reqBody,
		respObj: &result,
	}); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	return &result, nil
}

// MemberInfo returns the logged in member, or nil when the backend sent no
// data. A 401 comes back as an error matching apierr.ErrUnauthorized.
func (c *Client) MemberInfo(ctx context.Context, token string) (*models.User, error) {
	var user *models.User
	if err := c.execute(ctx, outboundRequest{
		method:  http.MethodGet,
		path:    "/api/members/info",
		token:   token,
		respObj: &user,
	}); err != nil {
		return nil, fmt.Errorf("failed to fetch member info: %w", err)
	}
	return user, nil
}

// Logout terminates the session on the backend
func (c *Client) Logout(ctx context.Context, token string) error {
	if err := c.execute(ctx, outboundRequest{
		method: http.MethodDelete,
		path:   "/api/members/logout",
		token:  token,
	}); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	return nil
}

// TodayNews returns the article today's quizzes are based on
func (c *Client) TodayNews(ctx context.Context, token string) (*models.News, error) {
	var news *models.News
	if err := c.execute(ctx, outboundRequest{
		method:  http.MethodGet,
		path:    "/api/news/today",
		token:   token,
		respObj: &news,
	}); err != nil {
		return nil, fmt.Errorf("failed to fetch today's news: %w", err)
	}
	if news == nil {
		return nil, fmt.Errorf("failed to fetch today's news: %w", apierr.ErrNotFound)
	}
	return news, nil
}

// News returns a single article by ID
func (c *Client) News(ctx context.Context, token string, newsID int64) (*models.News, error) {
	var news *models.News
	if err := c.execute(ctx, outboundRequest{
		method:  http.MethodGet,
		path:    fmt.Sprintf("/api/news/%d", newsID),
		token:   token,
		respObj: &news,
	}); err != nil {
		return nil, fmt.Errorf("failed to fetch news %d: %w", newsID, err)
	}
	if news == nil {
		return nil, fmt.Errorf("failed to fetch news %d: %w", newsID, apierr.ErrNotFound)
	}
	return news, nil
}

// DailyQuizzes returns the daily quizzes for a news article along with the
// member's previous answers. Requires a logged in member.
func (c *Client) DailyQuizzes(ctx context.Context, token string, newsID int64) ([]models.DailyQuizWithHistory, error) {
	var quizzes []models.DailyQuizWithHistory
	if err := c.execute(ctx, outboundRequest{
		method:  http.MethodGet,
		path:    fmt.Sprintf("/api/quiz/daily/%d", newsID),
		token:   token,
		respObj: &quizzes,
	}); err != nil {
		return nil, fmt.Errorf("failed to fetch daily quizzes: %w", err)
	}
	return quizzes, nil
}

// SubmitDailyQuiz submits one answer and returns the graded result.
// Experience is awarded on the backend; callers refresh the session to see it.
func (c *Client) SubmitDailyQuiz(ctx context.Context, token string, quizID int64, option models.QuizOption) (*models.DailyQuizAnswer, error) {
	var answer models.DailyQuizAnswer
	if err := c.execute(ctx, outboundRequest{
		method:  http.MethodPost,
		path:    fmt.Sprintf("/api/quiz/daily/submit/%d", quizID),
		query:   url.Values{"selectedOption": {string(option)}},
		token:   token,
		respObj: &answer,
	}); err != nil {
		return nil, fmt.Errorf("failed to submit quiz %d: %w", quizID, err)
	}
	return &answer, nil
}

// FactQuizzes lists OX quizzes, optionally restricted to one category
func (c *Client) FactQuizzes(ctx context.Context, token string, category models.NewsCategory) ([]models.FactQuiz, error) {
	req := outboundRequest{
		method: http.MethodGet,
		path:   "/api/quiz/fact",
		token:  token,
	}
	if category != "" {
		req.path = "/api/quiz/fact/category"
		req.query = url.Values{"category": {string(category)}}
	}

	var quizzes []models.FactQuiz
	req.respObj = &quizzes
	if err := c.execute(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to fetch OX quizzes: %w", err)
	}
	return quizzes, nil
}

// DetailQuizzes returns the quizzes generated from one news article.
// An article without quizzes is reported as apierr.ErrNotFound.
func (c *Client) DetailQuizzes(ctx context.Context, token string, newsID int64) ([]models.DetailQuiz, error) {
	var quizzes []models.DetailQuiz
	if err := c.execute(ctx, outboundRequest{
		method:  http.MethodGet,
		path:    fmt.Sprintf("/api/quiz/detail/news/%d", newsID),
		token:   token,
		respObj: &quizzes,
	}); err != nil {
		return nil, fmt.Errorf("failed to fetch quizzes for news %d: %w", newsID, err)
	}
	if len(quizzes) == 0 {
		return nil, fmt.Errorf("failed to fetch quizzes for news %d: %w", newsID, apierr.ErrNotFound)
	}
	return quizzes, nil
}

// SubmitHistory records one answer in the member's quiz history. The backend
// grades it and awards experience; callers refresh the session to see it.
func (c *Client) SubmitHistory(ctx context.Context, token string, entry models.HistoryRequest) error {
	if err := c.validate.Struct(&entry); err != nil {
		return fmt.Errorf("%w: %s", apierr.ErrInvalidInput, describeValidation(err))
	}
	if err := c.execute(ctx, outboundRequest{
		method: http.MethodPost,
		path:   "/api/histories",
		token:  token,
		body:   entry,
	}); err != nil {
		return fmt.Errorf("failed to submit answer for quiz %d: %w", entry.QuizID, err)
	}
	return nil
}

// SocialProviders are the providers the backend can hand a login off to
var SocialProviders = []string{"naver", "google", "kakao"}

// SocialLoginURL returns the address that starts a social login with the
// given provider and sends the browser to redirectURL afterwards
func (c *Client) SocialLoginURL(provider, redirectURL string) (string, error) {
	provider = strings.ToLower(provider)
	supported := false
	for _, p := range SocialProviders {
		if p == provider {
			supported = true
			break
		}
	}
	if !supported {
		return "", fmt.Errorf("%w: unsupported social login provider '%s', must be one of: %s",
			apierr.ErrInvalidInput, provider, strings.Join(SocialProviders, ", "))
	}

	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/oauth2/authorization/" + provider
	if redirectURL != "" {
		u.RawQuery = url.Values{"redirectUrl": {redirectURL}}.Encode()
	}
	return u.String(), nil
}

func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", strings.ToLower(fe.Field())))
		case "email":
			msgs = append(msgs, "email is not a valid email address")
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", strings.ToLower(fe.Field())))
		}
	}
	return strings.Join(msgs, ", ")
}

// drain discards the rest of a body so the connection can be reused
func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, maxErrorBody))
}

// newRequestID returns a sortable ID sent as X-Request-ID
func newRequestID() string {
	return ulid.Make().String()
}

// encodeBody marshals a request body, if any
func encodeBody(body interface{}) (io.Reader, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return bytes.NewReader(data), nil
}
