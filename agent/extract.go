package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gantrylabs/foreman/catalog"
	"github.com/gantrylabs/foreman/core"
)

const defaultCurrency = "INR"

// intent is the locally validated classification of a fresh turn.
type intent string

const (
	intentStoreFact   intent = "STORE_FACT"
	intentProcurement intent = "PROCUREMENT_REQUEST"
	intentChat        intent = "CHAT"
)

// classifyIntent asks the reasoning service to classify the turn and
// validates the answer against the closed intent set. Content the
// validator cannot place falls back to CHAT; only a service failure is
// an error.
func (c *Controller) classifyIntent(ctx context.Context, text string) (intent, string, error) {
	out, err := c.reasoner.Complete(ctx, intentSystem, text)
	if err != nil {
		return "", "", err
	}

	var parsed struct {
		Intent string `json:"intent"`
		Site   string `json:"site"`
	}
	if err := unmarshalJSONBlock(out, &parsed); err != nil {
		return intentChat, "", nil
	}

	switch intent(strings.ToUpper(strings.TrimSpace(parsed.Intent))) {
	case intentStoreFact:
		return intentStoreFact, strings.TrimSpace(parsed.Site), nil
	case intentProcurement:
		return intentProcurement, strings.TrimSpace(parsed.Site), nil
	default:
		return intentChat, strings.TrimSpace(parsed.Site), nil
	}
}

// extractOrder asks the reasoning service for the structured order and
// validates it before anything downstream trusts it. Items without a
// stated price are costed from the vendor catalog when one is
// configured. Returns core.ErrMalformedOrder when no valid costed
// order can be built.
func (c *Controller) extractOrder(ctx context.Context, text string) (*core.OrderRequest, error) {
	out, err := c.reasoner.Complete(ctx, extractSystem, text)
	if err != nil {
		return nil, err
	}

	var req core.OrderRequest
	if err := unmarshalJSONBlock(out, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedOrder, err)
	}
	req.RawText = text

	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: no items extracted", core.ErrMalformedOrder)
	}
	if req.Currency == "" {
		req.Currency = defaultCurrency
	}

	for i := range req.Items {
		item := &req.Items[i]
		if item.Description == "" || item.Quantity <= 0 || item.UnitPrice < 0 {
			return nil, fmt.Errorf("%w: invalid item %q (quantity %d, unit price %.2f)",
				core.ErrMalformedOrder, item.Description, item.Quantity, item.UnitPrice)
		}
		if item.UnitPrice == 0 && c.catalog != nil {
			if entry, ok := c.catalogPrice(item.Description, req.Vendor); ok {
				item.UnitPrice = entry.UnitPrice
				if req.Vendor == "" {
					req.Vendor = entry.Name
				}
			}
		}
		if item.UnitPrice == 0 {
			return nil, fmt.Errorf("%w: no price for %q and no catalog match", core.ErrMalformedOrder, item.Description)
		}
	}

	return &req, nil
}

// catalogPrice picks the catalog entry used to cost an unpriced item.
// When the order names a vendor, only that vendor's own entry may
// price it, so the ceiling comparison uses the price actually paid;
// otherwise the cheapest match wins.
func (c *Controller) catalogPrice(product, vendor string) (catalog.Vendor, bool) {
	matches := c.catalog.SearchProduct(product)
	if vendor == "" {
		if len(matches) == 0 {
			return catalog.Vendor{}, false
		}
		return matches[0], true
	}
	for _, entry := range matches {
		if strings.EqualFold(entry.Name, vendor) {
			return entry, true
		}
	}
	return catalog.Vendor{}, false
}

// unmarshalJSONBlock parses the first JSON object in text, tolerating
// surrounding prose from the model.
func unmarshalJSONBlock(text string, v interface{}) error {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object in response")
	}
	return json.Unmarshal([]byte(text[start:end+1]), v)
}
