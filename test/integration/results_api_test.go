//go:build integration

package integration

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	v1 "github.com/tally-lab/island-tally/internal/api/v1"
	"github.com/tally-lab/island-tally/internal/feed"
	"github.com/tally-lab/island-tally/internal/ingest"
	"github.com/tally-lab/island-tally/internal/metrics"
	"github.com/tally-lab/island-tally/internal/query"
	"github.com/tally-lab/island-tally/internal/register"
	"github.com/tally-lab/island-tally/internal/server"
	"github.com/tally-lab/island-tally/internal/store"
)

type integrationHarness struct {
	baseURL    string
	client     *http.Client
	cancel     context.CancelFunc
	serverDone chan error
}

func (h *integrationHarness) close(t *testing.T) {
	t.Helper()

	h.cancel()
	select {
	case <-h.serverDone:
	case <-time.After(5 * time.Second):
		t.Log("server shutdown timed out")
	}
}

func startHarness(t *testing.T) *integrationHarness {
	t.Helper()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	st := store.New()
	hub := feed.NewHub(8, m)
	ingestSvc := ingest.NewService(st, hub, register.Empty(), m, 1)
	querySvc := query.NewService(st, 5)

	addr := fmt.Sprintf("127.0.0.1:%d", freePort(t))
	srv := server.New(addr, st, "release")
	ingestSvc.RegisterRoutes(srv.Engine)
	querySvc.RegisterRoutes(srv.Engine)
	hub.RegisterRoutes(srv.Engine)
	srv.Engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	ctx, cancel := context.WithCancel(context.Background())
	serverDone := make(chan error, 1)
	go func() { serverDone <- srv.Run(ctx) }()

	baseURL := "http://" + addr
	waitForHealthy(t, baseURL)

	return &integrationHarness{
		baseURL:    baseURL,
		client:     &http.Client{Timeout: 5 * time.Second},
		cancel:     cancel,
		serverDone: serverDone,
	}
}

func waitForHealthy(t *testing.T, baseURL string) {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/health")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Fatalf("server did not become healthy at %s", baseURL)
}

func postJSON(t *testing.T, client *http.Client, endpoint string, payload interface{}) (int, []byte) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, respBody
}

func getJSON(t *testing.T, client *http.Client, endpoint string, out interface{}) {
	t.Helper()

	resp, err := client.Get(endpoint)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, out))
}

func freePort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func districtDoc(code string, valid int64) *v1.ResultDocument {
	return &v1.ResultDocument{
		Level:   v1.LevelElectoralDistrict,
		EDCode:  code,
		EDName:  "District " + code,
		Summary: &v1.Summary{Valid: valid, Polled: valid, TotalVoters: valid * 2},
		ByParty: []v1.PartyResult{
			{Candidate: "A", Votes: valid / 2},
			{Candidate: "B", Votes: valid / 4},
		},
	}
}

func TestResultsAPI_ConcurrentSubmissions(t *testing.T) {
	h := startHarness(t)
	defer h.close(t)

	const districts = 22

	// Uploads arrive concurrently during counting night; every one must land.
	g, _ := errgroup.WithContext(context.Background())
	for i := 1; i <= districts; i++ {
		code := fmt.Sprintf("%02d", i)
		g.Go(func() error {
			status, body := postJSON(t, h.client, h.baseURL+"/v1/results", districtDoc(code, 1000))
			if status != http.StatusOK {
				return fmt.Errorf("district %s: status %d: %s", code, status, body)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var snap v1.Snapshot
	getJSON(t, h.client, h.baseURL+"/v1/snapshot", &snap)
	require.Len(t, snap, districts)

	var summary v1.Summary
	getJSON(t, h.client, h.baseURL+"/v1/summary", &summary)
	require.Equal(t, int64(districts*1000), summary.Valid)
	require.Equal(t, int64(districts*2000), summary.TotalVoters)

	var ranked []v1.PartyResult
	getJSON(t, h.client, h.baseURL+"/v1/candidates", &ranked)
	require.Len(t, ranked, 2)
	require.Equal(t, "A", ranked[0].Candidate)
	require.Equal(t, int64(districts*500), ranked[0].Votes)

	var health struct {
		Status    string `json:"status"`
		Districts int    `json:"districts"`
	}
	getJSON(t, h.client, h.baseURL+"/health", &health)
	require.Equal(t, "healthy", health.Status)
	require.Equal(t, districts, health.Districts)
}

func TestResultsAPI_FeedStreamsSnapshots(t *testing.T) {
	h := startHarness(t)
	defer h.close(t)

	status, body := postJSON(t, h.client, h.baseURL+"/v1/results", districtDoc("01", 500))
	require.Equal(t, http.StatusOK, status, string(body))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/v1/feed", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The first frame is the current snapshot, delivered on connect.
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	var event, data string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event:") {
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		}
		if strings.HasPrefix(line, "data:") {
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			break
		}
	}
	require.Equal(t, "snapshot", event)

	var snap v1.Snapshot
	require.NoError(t, json.Unmarshal([]byte(data), &snap))
	require.Contains(t, snap, "01")
	require.Equal(t, int64(500), snap["01"].ED.Summary.Valid)
}

func TestResultsAPI_MetricsExposed(t *testing.T) {
	h := startHarness(t)
	defer h.close(t)

	status, body := postJSON(t, h.client, h.baseURL+"/v1/results", districtDoc("01", 500))
	require.Equal(t, http.StatusOK, status, string(body))

	resp, err := h.client.Get(h.baseURL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(raw), "tallyd_results_ingested_total")
	require.Contains(t, string(raw), "tallyd_snapshots_published_total")
}
