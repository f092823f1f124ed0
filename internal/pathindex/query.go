// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pathindex

import "context"

// Prefixes resolves glob against tenant's documents, returning every
// matching document (leaf and non-leaf) whose depth equals
// segments(glob). A threshold <= 0 means no limit.
func Prefixes(ctx context.Context, client IndexClient, tenant, glob string, threshold int) ([]Doc, error) {
	return query(ctx, client, tenant, glob, false, threshold)
}

// Lookup mirrors Prefixes but returns only leaf paths, matching the
// path store contract's lookup().
func Lookup(ctx context.Context, client IndexClient, tenant, glob string, threshold int) ([]string, error) {
	docs, err := query(ctx, client, tenant, glob, true, threshold)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(docs))
	for i, d := range docs {
		paths[i] = d.Path
	}
	return paths, nil
}

func query(ctx context.Context, client IndexClient, tenant, glob string, leafsOnly bool, threshold int) ([]Doc, error) {
	depth := Segments(glob)

	re, err := ToRegex(glob)
	if err != nil {
		return nil, &IndexQueryError{Query: glob, Cause: err}
	}

	var docs []Doc
	err = client.Search(ctx, tenant, depth, re.String(), leafsOnly, threshold, func(d Doc) error {
		docs = append(docs, d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}
