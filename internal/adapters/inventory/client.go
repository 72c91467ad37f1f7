// Package inventory forwards filtered car searches to the inventory service.
package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/rs/zerolog/log"

	"dealership_api/internal/adapters/upstream"
	"dealership_api/internal/domain"
)

var endpoints = map[domain.FilterKind]string{
	domain.FilterYear:       "/carsbyyear",
	domain.FilterMake:       "/carsbymake",
	domain.FilterModel:      "/carsbymodel",
	domain.FilterMaxMileage: "/carsbymaxmileage",
	domain.FilterMaxPrice:   "/carsbyprice",
}

type Client struct{ up *upstream.Client }

func New(up *upstream.Client) *Client { return &Client{up: up} }

// Path returns the inventory endpoint for q.
func Path(q domain.InventoryQuery) string {
	prefix, ok := endpoints[q.Kind]
	if !ok {
		return "/cars/" + url.PathEscape(q.DealerID)
	}
	return fmt.Sprintf("%s/%s/%s", prefix, url.PathEscape(q.DealerID), url.PathEscape(q.Value))
}

// Search returns the inventory body untouched. A failed call is not an
// error here: it comes back as a {status, message} object in place of the
// car list. An empty or undecodable body reads as an empty list.
func (c *Client) Search(ctx context.Context, q domain.InventoryQuery) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.up.Get(ctx, Path(q), nil, &raw)
	if err == nil {
		return raw, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	ue, ok := upstream.AsError(err)
	if !ok {
		return nil, err
	}
	if ue.Kind == upstream.KindEmpty || ue.Kind == upstream.KindDecode {
		return json.RawMessage(`[]`), nil
	}
	log.Warn().Err(err).Str("dealer", q.DealerID).Str("filter", string(q.Kind)).Msg("inventory search failed")
	return json.Marshal(ue.Envelope())
}
