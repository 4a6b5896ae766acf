// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	assert.Nil(t, HTTPHandler())

	// none of these may panic
	Counter("noop_count").Add(1)
	CounterVec("noop_count_vec", []string{"a"}).AddWithLabel(1, map[string]string{"a": "x"})
	Gauge("noop_gauge").Set(3)
	HistogramVec("noop_hist", []string{"a"}, BucketHTTPReqs).ObserveWithLabels(5, map[string]string{"a": "x"})
}

func TestPrometheusMetrics(t *testing.T) {
	InitializePrometheusMetrics()
	defer func() { metrics = defaultNoopMetrics() }()

	ops := LazyLoadCounterVec("test_option_ops_count", []string{"method", "result"})
	ops().AddWithLabel(2, map[string]string{"method": "buy", "result": "ok"})
	assert.Same(t, ops(), ops())

	open := LazyLoadGauge("test_open_options")
	open().Set(4)
	LazyLoadCounter("test_plain_count")().Add(1)
	LazyLoadHistogramVec("test_duration_ms", []string{"method"}, BucketHTTPReqs)().
		ObserveWithLabels(12, map[string]string{"method": "GET"})

	srv := httptest.NewServer(HTTPHandler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `stakedcall_test_option_ops_count{method="buy",result="ok"} 2`)
	assert.Contains(t, string(body), "stakedcall_test_open_options 4")
	assert.Contains(t, string(body), "stakedcall_test_plain_count 1")
}
