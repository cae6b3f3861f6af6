// Package aggregator talks to the third-party job-search API and
// normalizes its results into the shape the rest of the app uses.
package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"jobboard_backend/internal/models"
)

const (
	defaultBaseURL  = "https://api.adzuna.com/v1/api/jobs"
	resultsPerPage  = 20
	upstreamTimeout = 15 * time.Second
)

// SearchParams are the caller-facing search knobs. Zero values are
// omitted from the upstream query.
type SearchParams struct {
	Query        string
	Location     string
	ContractType string
	Page         int
}

// Listing is the normalized view of one upstream job. Raw keeps the
// untouched upstream payload for the sync worker's source_meta column.
type Listing struct {
	ExternalID   string          `json:"external_id"`
	Title        string          `json:"title"`
	Company      string          `json:"company"`
	Description  string          `json:"description"`
	Location     string          `json:"location"`
	Salary       string          `json:"salary,omitempty"`
	ContractType string          `json:"contract_type,omitempty"`
	URL          string          `json:"url,omitempty"`
	Raw          json.RawMessage `json:"-"`
}

// UpstreamError preserves what the aggregator answered so handlers can
// relay status and body verbatim. A zero Status means no response was
// received at all.
type UpstreamError struct {
	Status      int
	Body        string
	ContentType string
	Err         error
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("aggregator unreachable: %v", e.Err)
	}
	return fmt.Sprintf("aggregator returned %d: %s", e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Searcher is what the service layer and the sync worker depend on.
type Searcher interface {
	Search(ctx context.Context, params SearchParams) ([]Listing, error)
}

// Client implements Searcher against the Adzuna wire format.
type Client struct {
	BaseURL string
	AppID   string
	AppKey  string
	Country string
	client  *http.Client
}

func NewClient(baseURL, appID, appKey, country string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		BaseURL: baseURL,
		AppID:   appID,
		AppKey:  appKey,
		Country: country,
		client:  &http.Client{Timeout: upstreamTimeout},
	}
}

// Configured reports whether upstream credentials are present.
func (c *Client) Configured() bool {
	return c.AppID != "" && c.AppKey != ""
}

// apiResponse mirrors the upstream top-level JSON.
type apiResponse struct {
	Results []json.RawMessage `json:"results"`
	Count   int               `json:"count"`
}

// apiResult mirrors a single upstream listing. Note the nested
// display_name objects: normalization flattens them.
type apiResult struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Company     struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
	SalaryMin    float64 `json:"salary_min"`
	SalaryMax    float64 `json:"salary_max"`
	RedirectURL  string  `json:"redirect_url"`
	ContractTime string  `json:"contract_time"`
	ContractType string  `json:"contract_type"`
}

func (c *Client) Search(ctx context.Context, params SearchParams) ([]Listing, error) {
	page := params.Page
	if page <= 0 {
		page = 1
	}
	endpoint := fmt.Sprintf("%s/%s/search/%d", c.BaseURL, c.Country, page)

	q := url.Values{}
	q.Set("app_id", c.AppID)
	q.Set("app_key", c.AppKey)
	q.Set("results_per_page", strconv.Itoa(resultsPerPage))
	if params.Query != "" {
		q.Set("what", params.Query)
	}
	if params.Location != "" {
		q.Set("where", params.Location)
	}
	if ct := toUpstreamContract(params.ContractType); ct != "" {
		q.Set("contract_time", ct)
	}
	q.Set("content-type", "application/json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{
			Status:      resp.StatusCode,
			Body:        string(body),
			ContentType: resp.Header.Get("Content-Type"),
		}
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, &UpstreamError{
			Status:      resp.StatusCode,
			Body:        string(body),
			ContentType: resp.Header.Get("Content-Type"),
			Err:         err,
		}
	}

	listings := make([]Listing, 0, len(apiResp.Results))
	for _, raw := range apiResp.Results {
		var r apiResult
		if err := json.Unmarshal(raw, &r); err != nil {
			continue
		}
		listings = append(listings, normalize(r, raw))
	}

	return listings, nil
}

// normalize is the per-source adapter: one place that knows the
// upstream field names instead of optional-chaining at render time.
func normalize(r apiResult, raw json.RawMessage) Listing {
	return Listing{
		ExternalID:   r.ID,
		Title:        r.Title,
		Company:      r.Company.DisplayName,
		Description:  r.Description,
		Location:     r.Location.DisplayName,
		Salary:       formatSalary(r.SalaryMin, r.SalaryMax),
		ContractType: fromUpstreamContract(r.ContractTime, r.ContractType),
		URL:          r.RedirectURL,
		Raw:          raw,
	}
}

func formatSalary(min, max float64) string {
	switch {
	case min > 0 && max > 0 && min != max:
		return fmt.Sprintf("%.0f - %.0f", min, max)
	case max > 0:
		return fmt.Sprintf("%.0f", max)
	case min > 0:
		return fmt.Sprintf("%.0f", min)
	}
	return ""
}

// toUpstreamContract maps the local contract enum to the upstream's
// contract_time values.
func toUpstreamContract(contractType string) string {
	switch models.ContractType(contractType) {
	case models.ContractFullTime:
		return "full_time"
	case models.ContractPartTime:
		return "part_time"
	}
	return ""
}

// fromUpstreamContract maps upstream contract fields back onto the
// local enum, empty when nothing fits.
func fromUpstreamContract(contractTime, contractType string) string {
	switch contractTime {
	case "full_time":
		return string(models.ContractFullTime)
	case "part_time":
		return string(models.ContractPartTime)
	}
	if contractType == "contract" {
		return string(models.ContractContract)
	}
	return ""
}
