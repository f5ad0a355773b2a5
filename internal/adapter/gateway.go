package adapter

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

	"go.uber.org/zap"

	"optionstracker/internal/domain"
)

// PositionsAPI implements domain.PositionGateway against the positions REST backend
type PositionsAPI struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewPositionsAPI creates a client for the backend rooted at baseURL,
// e.g. http://127.0.0.1:5000/api/options_positions
func NewPositionsAPI(baseURL string, timeout time.Duration, logger *zap.Logger) *PositionsAPI {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PositionsAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// bucketPath maps a bucket to the backend's list endpoint
func bucketPath(b domain.Bucket) (string, error) {
	switch b {
	case domain.BucketActive:
		return "active", nil
	case domain.BucketExpired:
		return "inactive", nil
	}
	return "", fmt.Errorf("unknown bucket %q", b)
}

// mutationResponse is the body of create and delete responses. Older
// backends only report a boolean.
type mutationResponse struct {
	Message  string `json:"message"`
	Bucket   string `json:"bucket"`
	Expired  *bool  `json:"expired"`
	Inactive *bool  `json:"inactive"`
}

func (r mutationResponse) bucket() (domain.Bucket, error) {
	if r.Bucket != "" {
		return domain.ParseBucket(r.Bucket)
	}
	flag := r.Expired
	if flag == nil {
		flag = r.Inactive
	}
	if flag == nil {
		return "", fmt.Errorf("response does not name a bucket")
	}
	if *flag {
		return domain.BucketExpired, nil
	}
	return domain.BucketActive, nil
}

// ListPositions fetches the snapshot of one bucket
func (a *PositionsAPI) ListPositions(ctx context.Context, bucket domain.Bucket) ([]domain.Position, error) {
	path, err := bucketPath(bucket)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetchPositions, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/"+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", domain.ErrFetchPositions, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetchPositions, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status=%d, body=%s", domain.ErrFetchPositions, resp.StatusCode, string(body))
	}

	var positions []domain.Position
	if err := json.NewDecoder(resp.Body).Decode(&positions); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", domain.ErrFetchPositions, err)
	}
	if positions == nil {
		positions = []domain.Position{}
	}

	a.logger.Debug("fetched positions",
		zap.String("bucket", string(bucket)),
		zap.Int("count", len(positions)),
	)
	return positions, nil
}

// CreatePosition submits draft and returns the bucket chosen by the backend
func (a *PositionsAPI) CreatePosition(ctx context.Context, draft domain.PositionDraft) (domain.Bucket, error) {
	jsonData, err := json.Marshal(draft)
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal draft: %w", domain.ErrAddPosition, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %w", domain.ErrAddPosition, err)
	}
	req.Header.Set("Content-Type", "application/json")

	bucket, err := a.mutate(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrAddPosition, err)
	}
	a.logger.Info("position added",
		zap.String("ticker", draft.Ticker),
		zap.String("bucket", string(bucket)),
	)
	return bucket, nil
}

// DeletePosition removes the position with id and returns the bucket it was in
func (a *PositionsAPI) DeletePosition(ctx context.Context, id domain.PositionID) (domain.Bucket, error) {
	if id == "" {
		return "", fmt.Errorf("%w: empty position id", domain.ErrDeletePosition)
	}

	endpoint := a.baseURL + "/" + url.PathEscape(string(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %w", domain.ErrDeletePosition, err)
	}

	bucket, err := a.mutate(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrDeletePosition, err)
	}
	a.logger.Info("position deleted",
		zap.String("position_id", string(id)),
		zap.String("bucket", string(bucket)),
	)
	return bucket, nil
}

func (a *PositionsAPI) mutate(req *http.Request) (domain.Bucket, error) {
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("status=%d, body=%s", resp.StatusCode, string(body))
	}

	var out mutationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return out.bucket()
}

// Ping checks that the backend answers the active list endpoint
func (a *PositionsAPI) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/active", nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach positions backend: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("positions backend unhealthy: status=%d", resp.StatusCode)
	}
	return nil
}
