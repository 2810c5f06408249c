package azsearch

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	domainbatch "github.com/kailas-cloud/searchsync/internal/domain/batch"
	"github.com/kailas-cloud/searchsync/internal/domain/document"
)

type indexResponse struct {
	Value []struct {
		Key          string  `json:"key"`
		Status       bool    `json:"status"`
		ErrorMessage *string `json:"errorMessage"`
		StatusCode   int     `json:"statusCode"`
	} `json:"value"`
}

// IndexDocuments uploads docs to the named index in one bulk call.
// The per-document results are returned for diagnostics; a 2xx reply is a
// successful batch even if some items report failure.
func (c *Client) IndexDocuments(
	ctx context.Context, indexName string, docs []document.Document,
) ([]domainbatch.Result, error) {
	body, _, err := c.do(ctx, OpIndexDocuments, http.MethodPost,
		indexPath(indexName)+"/docs/index", document.NewBatch(docs))
	if err != nil {
		return nil, err
	}

	var parsed indexResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logger.Debug("unparseable index response", zap.Error(err))
		return nil, nil
	}

	results := make([]domainbatch.Result, 0, len(parsed.Value))
	for _, v := range parsed.Value {
		if v.Status {
			results = append(results, domainbatch.NewOK(v.Key, v.StatusCode))
			continue
		}
		msg := ""
		if v.ErrorMessage != nil {
			msg = *v.ErrorMessage
		}
		results = append(results, domainbatch.NewError(v.Key, v.StatusCode, msg))
	}
	return results, nil
}
