// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package metrics_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/podgorskiy/DareBlopy/pkg/metrics"
)

func TestHandlerServesRegisteredMetrics(t *testing.T) {
	c := metrics.NewCollector()
	c.RecordsRead.Add(3)
	c.CRCFailures.Inc()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	require.True(t, strings.Contains(body, "dareblopy_records_read_total 3"))
	require.True(t, strings.Contains(body, "dareblopy_crc_failures_total 1"))
}

func TestTwoCollectorsDoNotShareState(t *testing.T) {
	a := metrics.NewCollector()
	b := metrics.NewCollector()
	a.BatchesDelivered.Inc()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	b.Handler().ServeHTTP(rec, req)

	require.True(t, strings.Contains(rec.Body.String(), "dareblopy_batches_delivered_total 0"))
}
