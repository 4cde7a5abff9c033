package devops

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"devops-report/internal/workitem"

	"github.com/rs/zerolog/log"
)

type restClient struct {
	cfg        Config
	httpClient *http.Client

	throttleMu  sync.Mutex
	lastRequest time.Time
}

// NewRESTClient returns a Client backed by the Azure DevOps REST API.
func NewRESTClient(cfg Config) Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if cfg.BatchSize <= 0 || cfg.BatchSize > maxBatchSize {
		cfg.BatchSize = maxBatchSize
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 90 * time.Second
	}
	return &restClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// StatusError is returned when Azure DevOps answers with a non-200 status.
type StatusError struct {
	StatusCode int
	RetryAfter string
	Op         string
}

func (e *StatusError) Error() string {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Sprintf("%s: Azure DevOps authentication failed (%d). Please check your personal access token.", e.Op, e.StatusCode)
	case http.StatusTooManyRequests:
		if e.RetryAfter != "" {
			return fmt.Sprintf("%s: Azure DevOps rate limit exceeded (429). Retry after %s seconds.", e.Op, e.RetryAfter)
		}
		return fmt.Sprintf("%s: Azure DevOps rate limit exceeded (429).", e.Op)
	default:
		return fmt.Sprintf("%s: Azure DevOps API returned status %d.", e.Op, e.StatusCode)
	}
}

func (c *restClient) apiURL(path string, params url.Values) string {
	params.Set("api-version", c.cfg.APIVersion)
	return fmt.Sprintf("%s/%s/%s/_apis/%s?%s",
		c.cfg.BaseURL,
		url.PathEscape(c.cfg.Organization),
		url.PathEscape(c.cfg.Project),
		path,
		params.Encode(),
	)
}

func (c *restClient) throttle() {
	if c.cfg.RequestDelay <= 0 {
		return
	}

	c.throttleMu.Lock()
	defer c.throttleMu.Unlock()

	elapsed := time.Since(c.lastRequest)
	if elapsed < c.cfg.RequestDelay {
		wait := c.cfg.RequestDelay - elapsed
		log.Debug().Dur("wait", wait).Msg("Throttling Azure DevOps request")
		time.Sleep(wait)
	}
	c.lastRequest = time.Now()
}

func (c *restClient) authenticateRequest(req *http.Request) {
	if c.cfg.PAT == "" {
		return
	}
	token := base64.StdEncoding.EncodeToString([]byte(":" + c.cfg.PAT))
	req.Header.Set("Authorization", "Basic "+token)
}

func (c *restClient) do(req *http.Request, op string, out any) error {
	c.throttle()
	c.authenticateRequest(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{
			StatusCode: resp.StatusCode,
			RetryAfter: resp.Header.Get("Retry-After"),
			Op:         op,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: failed to decode Azure DevOps response: %w", op, err)
	}
	return nil
}

func (c *restClient) QueryIDs(ctx context.Context, wiql string) ([]workitem.ID, error) {
	body, err := json.Marshal(WiqlRequest{Query: wiql})
	if err != nil {
		return nil, err
	}

	queryURL := c.apiURL("wit/wiql", url.Values{})
	log.Info().Msg("Querying work items from Azure DevOps")
	log.Debug().Str("url", queryURL).Str("wiql", wiql).Msg("WIQL query details")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, queryURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var result WiqlResponse
	if err := c.do(req, "wiql query", &result); err != nil {
		return nil, err
	}

	ids := make([]workitem.ID, 0, len(result.WorkItems))
	for _, ref := range result.WorkItems {
		ids = append(ids, workitem.ID(ref.ID))
	}
	log.Debug().Int("count", len(ids)).Msg("WIQL query returned ids")
	return ids, nil
}

func (c *restClient) GetWorkItems(ctx context.Context, ids []workitem.ID, expandRelations bool) ([]workitem.WorkItem, error) {
	var items []workitem.WorkItem

	for start := 0; start < len(ids); start += c.cfg.BatchSize {
		end := min(start+c.cfg.BatchSize, len(ids))
		batch, err := c.getBatch(ctx, ids[start:end], expandRelations)
		if err != nil {
			return nil, fmt.Errorf("work items batch at offset %d: %w", start, err)
		}
		items = append(items, batch...)
	}

	return items, nil
}

func (c *restClient) getBatch(ctx context.Context, ids []workitem.ID, expandRelations bool) ([]workitem.WorkItem, error) {
	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = strconv.Itoa(int(id))
	}

	params := url.Values{}
	params.Set("ids", strings.Join(strIDs, ","))
	if expandRelations {
		params.Set("$expand", "relations")
	} else {
		params.Set("fields", strings.Join(detailFields, ","))
	}

	detailsURL := c.apiURL("wit/workitems", params)
	log.Debug().Str("url", detailsURL).Int("ids", len(ids)).Msg("Requesting work item details")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, detailsURL, nil)
	if err != nil {
		return nil, err
	}

	var result WorkItemsResponse
	if err := c.do(req, "work items", &result); err != nil {
		return nil, err
	}

	items := make([]workitem.WorkItem, 0, len(result.Value))
	for _, dto := range result.Value {
		items = append(items, MapWorkItem(dto))
	}
	return items, nil
}
