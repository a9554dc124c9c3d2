// Package client реализует HTTP-клиент трекера задач. Кроме обычных вызовов он реализует
// detail.Fetcher: каждая загрузка идёт в своей горутине и завершается колбэком.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AlekseyZapadovnikov/issue-tracker/internal/models"
)

// APIError описывает ответ сервера с кодом ошибки.
type APIError struct {
	Status  int
	Code    models.ErrorResponseErrorCode
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("status %d %s: %s", e.Status, e.Code, e.Message)
}

// IsNotFound сообщает, что сервер ответил 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient подменяет http.Client, например для тестов.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout задаёт таймаут одного запроса.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Health проверяет, что сервер отвечает.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, http.StatusOK, nil)
}

func (c *Client) CreateUser(ctx context.Context, payload models.PostUserJSONBody) (*models.User, error) {
	var resp struct {
		User *models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/users", payload, http.StatusCreated, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *Client) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	var resp struct {
		User *models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/"+id(userID), nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var resp struct {
		Users []models.User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/users", nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

func (c *Client) CreateIssue(ctx context.Context, payload models.PostIssueJSONBody) (*models.Issue, error) {
	return c.issueCall(ctx, http.MethodPost, "/issues", payload, http.StatusCreated)
}

func (c *Client) GetIssue(ctx context.Context, issueID int64) (*models.Issue, error) {
	return c.issueCall(ctx, http.MethodGet, "/issues/"+id(issueID), nil, http.StatusOK)
}

// ListIssues возвращает задачи; пустой state оставляет фильтр серверу.
func (c *Client) ListIssues(ctx context.Context, state models.IssueState) ([]models.Issue, error) {
	path := "/issues"
	if state != "" {
		path += "?state=" + url.QueryEscape(string(state))
	}
	var resp struct {
		Issues []models.Issue `json:"issues"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.Issues, nil
}

func (c *Client) UpdateIssue(ctx context.Context, issueID int64, payload models.PutIssueJSONBody) (*models.Issue, error) {
	return c.issueCall(ctx, http.MethodPut, "/issues/"+id(issueID), payload, http.StatusOK)
}

func (c *Client) SetIssueState(ctx context.Context, issueID int64, isOpen bool) (*models.Issue, error) {
	return c.issueCall(ctx, http.MethodPatch, "/issues/"+id(issueID)+"/state", models.PatchIssueStateJSONBody{IsOpen: isOpen}, http.StatusOK)
}

func (c *Client) DeleteIssue(ctx context.Context, issueID int64) error {
	return c.do(ctx, http.MethodDelete, "/issues/"+id(issueID), nil, http.StatusNoContent, nil)
}

func (c *Client) SetAssignees(ctx context.Context, issueID int64, userIDs []int64) ([]int64, error) {
	return c.replaceIDs(ctx, "/issues/"+id(issueID)+"/assignees", userIDs)
}

func (c *Client) ListAssignees(ctx context.Context, issueID int64) ([]models.User, error) {
	var resp struct {
		Users []models.User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/issues/"+id(issueID)+"/assignees", nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

func (c *Client) SetIssueLabels(ctx context.Context, issueID int64, labelIDs []int64) ([]int64, error) {
	return c.replaceIDs(ctx, "/issues/"+id(issueID)+"/labels", labelIDs)
}

func (c *Client) AddComment(ctx context.Context, issueID int64, payload models.PostCommentJSONBody) (*models.Comment, error) {
	var resp struct {
		Comment *models.Comment `json:"comment"`
	}
	if err := c.do(ctx, http.MethodPost, "/issues/"+id(issueID)+"/comments", payload, http.StatusCreated, &resp); err != nil {
		return nil, err
	}
	return resp.Comment, nil
}

func (c *Client) ListComments(ctx context.Context, issueID int64) ([]models.Comment, error) {
	var resp struct {
		Comments []models.Comment `json:"comments"`
	}
	if err := c.do(ctx, http.MethodGet, "/issues/"+id(issueID)+"/comments", nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.Comments, nil
}

func (c *Client) EditComment(ctx context.Context, commentID int64, content string) (*models.Comment, error) {
	var resp struct {
		Comment *models.Comment `json:"comment"`
	}
	payload := models.PutCommentJSONBody{Content: content}
	if err := c.do(ctx, http.MethodPut, "/comments/"+id(commentID), payload, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.Comment, nil
}

func (c *Client) DeleteComment(ctx context.Context, commentID int64) error {
	return c.do(ctx, http.MethodDelete, "/comments/"+id(commentID), nil, http.StatusNoContent, nil)
}

func (c *Client) CreateLabel(ctx context.Context, payload models.PostLabelJSONBody) (*models.Label, error) {
	var resp struct {
		Label *models.Label `json:"label"`
	}
	if err := c.do(ctx, http.MethodPost, "/labels", payload, http.StatusCreated, &resp); err != nil {
		return nil, err
	}
	return resp.Label, nil
}

func (c *Client) UpdateLabel(ctx context.Context, labelID int64, payload models.PostLabelJSONBody) (*models.Label, error) {
	var resp struct {
		Label *models.Label `json:"label"`
	}
	if err := c.do(ctx, http.MethodPut, "/labels/"+id(labelID), payload, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.Label, nil
}

func (c *Client) DeleteLabel(ctx context.Context, labelID int64) error {
	return c.do(ctx, http.MethodDelete, "/labels/"+id(labelID), nil, http.StatusNoContent, nil)
}

func (c *Client) ListLabels(ctx context.Context) ([]models.Label, error) {
	var resp struct {
		Labels []models.Label `json:"labels"`
	}
	if err := c.do(ctx, http.MethodGet, "/labels", nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.Labels, nil
}

func (c *Client) CreateMilestone(ctx context.Context, payload models.PostMilestoneJSONBody) (*models.Milestone, error) {
	var resp struct {
		Milestone *models.Milestone `json:"milestone"`
	}
	if err := c.do(ctx, http.MethodPost, "/milestones", payload, http.StatusCreated, &resp); err != nil {
		return nil, err
	}
	return resp.Milestone, nil
}

func (c *Client) UpdateMilestone(ctx context.Context, milestoneID int64, payload models.PostMilestoneJSONBody) (*models.Milestone, error) {
	var resp struct {
		Milestone *models.Milestone `json:"milestone"`
	}
	if err := c.do(ctx, http.MethodPut, "/milestones/"+id(milestoneID), payload, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.Milestone, nil
}

func (c *Client) DeleteMilestone(ctx context.Context, milestoneID int64) error {
	return c.do(ctx, http.MethodDelete, "/milestones/"+id(milestoneID), nil, http.StatusNoContent, nil)
}

func (c *Client) ListMilestones(ctx context.Context) ([]models.Milestone, error) {
	var resp struct {
		Milestones []models.Milestone `json:"milestones"`
	}
	if err := c.do(ctx, http.MethodGet, "/milestones", nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.Milestones, nil
}

// GetDetail запрашивает карточку, собранную на сервере.
func (c *Client) GetDetail(ctx context.Context, issueID int64) (*models.IssueDetailResponse, error) {
	var resp models.IssueDetailResponse
	if err := c.do(ctx, http.MethodGet, "/issues/"+id(issueID)+"/detail", nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ---------- detail.Fetcher ----------

func (c *Client) FetchComments(ctx context.Context, issueID int64, completion func([]models.Comment, error)) {
	go func() { completion(c.ListComments(ctx, issueID)) }()
}

func (c *Client) FetchUsers(ctx context.Context, completion func([]models.User, error)) {
	go func() { completion(c.ListUsers(ctx)) }()
}

func (c *Client) FetchLabels(ctx context.Context, completion func([]models.Label, error)) {
	go func() { completion(c.ListLabels(ctx)) }()
}

func (c *Client) FetchMilestones(ctx context.Context, completion func([]models.Milestone, error)) {
	go func() { completion(c.ListMilestones(ctx)) }()
}

// ---------- транспорт ----------

func (c *Client) issueCall(ctx context.Context, method, path string, payload interface{}, expected int) (*models.Issue, error) {
	var resp struct {
		Issue *models.Issue `json:"issue"`
	}
	if err := c.do(ctx, method, path, payload, expected, &resp); err != nil {
		return nil, err
	}
	return resp.Issue, nil
}

func (c *Client) replaceIDs(ctx context.Context, path string, ids []int64) ([]int64, error) {
	var resp struct {
		IDs []int64 `json:"ids"`
	}
	if err := c.do(ctx, http.MethodPut, path, models.PutIDsJSONBody{IDs: ids}, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.IDs, nil
}

// do выполняет запрос и декодирует тело в out. Неожиданный статус превращается в *APIError.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}, expected int, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != expected {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)
	apiErr := &APIError{Status: resp.StatusCode}

	var parsed models.ErrorResponse
	if err := json.Unmarshal(data, &parsed); err == nil && parsed.Error.Code != "" {
		apiErr.Code = parsed.Error.Code
		apiErr.Message = parsed.Error.Message
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(data))
	return apiErr
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}
