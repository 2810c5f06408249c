package azsearch

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kailas-cloud/searchsync/internal/domain/index"
)

func indexPath(name string) string {
	return "/indexes/" + url.PathEscape(name)
}

// DeleteIndex removes an index. A missing index yields an error matching
// domain.ErrIndexNotFound.
func (c *Client) DeleteIndex(ctx context.Context, name string) error {
	_, _, err := c.do(ctx, OpDeleteIndex, http.MethodDelete, indexPath(name), nil)
	return err
}

// PutIndex creates the index or replaces its definition in one call.
func (c *Client) PutIndex(ctx context.Context, def index.Definition) error {
	_, _, err := c.do(ctx, OpPutIndex, http.MethodPut, indexPath(def.Name), def)
	return err
}
