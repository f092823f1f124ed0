// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pathindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// IndexClient is the thin capability interface the pipeline and query
// path depend on. It exists so the search-index backend can be swapped
// without touching pipeline or query logic; one concrete client
// (esIndexClient) wraps the official Elasticsearch client.
type IndexClient interface {
	// MultiGet fetches docs by id and reports which of them exist.
	// The returned set contains only ids that were found.
	MultiGet(ctx context.Context, ids []string) (map[string]bool, error)

	// BulkUpsert writes docs to the index, creating or replacing each
	// by its ID().
	BulkUpsert(ctx context.Context, docs []Doc) error

	// Search runs a query and streams matching documents to visit,
	// enforcing threshold if threshold > 0. Returns TooManyPathsError
	// if the total hit count exceeds threshold.
	Search(ctx context.Context, tenant string, depth int, pathRegex string, leafsOnly bool, threshold int, visit func(Doc) error) error
}

// esIndexClient implements IndexClient against Elasticsearch.
type esIndexClient struct {
	es        *elasticsearch.Client
	index     string
	scrollTTL time.Duration
}

// NewESIndexClient builds an IndexClient backed by an Elasticsearch
// cluster reachable at the given addresses, targeting the named index
// (default "cyanite_paths" is the caller's responsibility to supply).
func NewESIndexClient(addresses []string, index string) (IndexClient, error) {
	cli, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
	})
	if err != nil {
		return nil, fmt.Errorf("pathindex: building elasticsearch client: %w", err)
	}
	return &esIndexClient{es: cli, index: index, scrollTTL: time.Minute}, nil
}

func (c *esIndexClient) MultiGet(ctx context.Context, ids []string) (map[string]bool, error) {
	docs := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, map[string]any{"_index": c.index, "_id": id, "_source": false})
	}

	body, err := json.Marshal(map[string]any{"docs": docs})
	if err != nil {
		return nil, err
	}

	req := esapi.MgetRequest{Body: bytes.NewReader(body)}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return nil, &BackendUnavailableError{Op: "multi_get", Cause: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, &BackendUnavailableError{Op: "multi_get", Cause: fmt.Errorf("status %s", res.Status())}
	}

	var parsed struct {
		Docs []struct {
			ID    string `json:"_id"`
			Found bool   `json:"found"`
		} `json:"docs"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	found := make(map[string]bool, len(parsed.Docs))
	for _, d := range parsed.Docs {
		if d.Found {
			found[d.ID] = true
		}
	}
	return found, nil
}

func (c *esIndexClient) BulkUpsert(ctx context.Context, docs []Doc) error {
	if len(docs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, d := range docs {
		meta := map[string]any{
			"index": map[string]any{"_index": c.index, "_id": d.ID()},
		}
		metaLine, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		srcLine, err := json.Marshal(d)
		if err != nil {
			return err
		}
		buf.Write(metaLine)
		buf.WriteByte('\n')
		buf.Write(srcLine)
		buf.WriteByte('\n')
	}

	req := esapi.BulkRequest{Body: bytes.NewReader(buf.Bytes())}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return &BackendUnavailableError{Op: "bulk_upsert", Cause: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return &BackendUnavailableError{Op: "bulk_upsert", Cause: fmt.Errorf("status %s", res.Status())}
	}

	var parsed struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int `json:"status"`
			Error  any `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return err
	}
	if parsed.Errors {
		cclog.Warnf("pathindex: bulk upsert reported partial item failures for index %s", c.index)
	}
	return nil
}

func (c *esIndexClient) Search(ctx context.Context, tenant string, depth int, pathRegex string, leafsOnly bool, threshold int, visit func(Doc) error) error {
	must := []map[string]any{
		{"term": map[string]any{"tenant": tenant}},
		{"term": map[string]any{"depth": depth}},
		{"regexp": map[string]any{"path": pathRegex}},
	}
	if leafsOnly {
		must = append(must, map[string]any{"term": map[string]any{"leaf": true}})
	}

	query := map[string]any{
		"query": map[string]any{"bool": map[string]any{"must": must}},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return err
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(body)),
		c.es.Search.WithScroll(c.scrollTTL),
		c.es.Search.WithSize(1000),
	)
	if err != nil {
		return &BackendUnavailableError{Op: "search", Cause: err}
	}
	defer res.Body.Close()

	if res.StatusCode == 400 {
		return &IndexQueryError{Query: string(body), Cause: fmt.Errorf("status %s", res.Status())}
	}
	if res.IsError() {
		return &BackendUnavailableError{Op: "search", Cause: fmt.Errorf("status %s", res.Status())}
	}

	scrollID, _, err := c.visitPage(res.Body, threshold, visit)
	if err != nil {
		return err
	}

	for scrollID != "" {
		sres, err := c.es.Scroll(
			c.es.Scroll.WithContext(ctx),
			c.es.Scroll.WithScrollID(scrollID),
			c.es.Scroll.WithScroll(c.scrollTTL),
		)
		if err != nil {
			return &BackendUnavailableError{Op: "scroll", Cause: err}
		}

		var hits int
		scrollID, hits, err = c.visitPage(sres.Body, 0, visit)
		sres.Body.Close()
		if err != nil {
			return err
		}
		if hits == 0 {
			break
		}
	}

	return nil
}

// visitPage decodes one page of search/scroll hits, invoking visit for
// each, and returns the scroll id to continue with plus the hit count
// on this page (0 signals scroll exhaustion). If threshold > 0 and the
// query's total hit count exceeds it, it returns TooManyPathsError
// before visiting any hit.
func (c *esIndexClient) visitPage(r io.Reader, threshold int, visit func(Doc) error) (scrollID string, hits int, err error) {
	var parsed struct {
		ScrollID string `json:"_scroll_id"`
		Hits     struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source Doc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&parsed); err != nil {
		return "", 0, err
	}
	if threshold > 0 && parsed.Hits.Total.Value > threshold {
		return "", 0, &TooManyPathsError{Requested: parsed.Hits.Total.Value, Threshold: threshold}
	}

	for _, h := range parsed.Hits.Hits {
		if err := visit(h.Source); err != nil {
			return "", 0, err
		}
	}

	return parsed.ScrollID, len(parsed.Hits.Hits), nil
}
