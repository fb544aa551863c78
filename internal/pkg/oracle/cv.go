package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// CVClient calls the image classification service's /predict endpoint.
type CVClient struct {
	baseURL string
	http    *http.Client
}

func NewCVClient(baseURL string) *CVClient {
	return &CVClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type predictResponse struct {
	Prediction  string   `json:"prediction"`
	Probability float64  `json:"probability"`
	Categories  []string `json:"categories"`
	Error       string   `json:"error"`
}

// Predict classifies the image behind the given URL. The classifier fetches
// the image itself, so only the URL travels over the wire.
func (c *CVClient) Predict(ctx context.Context, imageURL string) (*Classification, error) {
	q := url.Values{}
	q.Set("img_url", imageURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/predict?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cv service unreachable: %w", err)
	}
	defer resp.Body.Close()

	var body predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("cv service returned malformed response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cv service error: %s", body.Error)
	}

	return &Classification{
		Prediction:  body.Prediction,
		Probability: body.Probability,
	}, nil
}
