package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ferixo/storefront/internal/pricing"
)

// HTTPVerifier verifies coupons against the storefront verify endpoint.
type HTTPVerifier struct {
	BaseURL string
	Client  *http.Client
}

func (v *HTTPVerifier) Verify(ctx context.Context, code string) (*pricing.Coupon, error) {
	body, err := json.Marshal(map[string]string{"code": code})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		v.BaseURL+"/api/v1/coupons/verify", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := v.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coupon rejected: %s", resp.Status)
	}

	var verified pricing.Coupon
	if err := json.NewDecoder(resp.Body).Decode(&verified); err != nil {
		return nil, err
	}
	return &verified, nil
}
