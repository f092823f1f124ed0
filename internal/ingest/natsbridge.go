// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ingest

import (
	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	natsclient "github.com/cyanite-go/metriccore/pkg/nats"
)

// SubscribeNATS wires a NATS subject onto sinks: every message body is
// decoded as one sample envelope and fanned out. Decode failures are
// logged and the message dropped, matching the ingest path's
// recovery-biased error policy.
func SubscribeNATS(client *natsclient.Client, subject string, sinks Sinks) error {
	return client.Subscribe(subject, func(_ string, data []byte) {
		e, err := DecodeEnvelope(data)
		if err != nil {
			cclog.Warnf("ingest: dropping malformed sample on %q: %v", subject, err)
			return
		}
		Fanout(sinks, e)
	})
}
