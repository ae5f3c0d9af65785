package httpd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"widealign/internal/config"
	"widealign/pkg/layout"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := NewServer(config.Serve{Addr: ":0", LineWidth: 400}, log.New(io.Discard))
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return resp, data
}

func createEntity(t *testing.T, ts *httptest.Server, width float64) entityResponse {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/entities", fmt.Sprintf(`{"width": %g}`, width))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /v1/entities status = %d, body = %s", resp.StatusCode, body)
	}
	var ent entityResponse
	if err := json.Unmarshal(body, &ent); err != nil {
		t.Fatalf("decoding entity: %v", err)
	}
	if ent.ID == "" {
		t.Fatal("server did not allocate an entity id")
	}
	return ent
}

func TestCreateEntityBeforeViewWidth(t *testing.T) {
	ts := newTestServer(t)

	ent := createEntity(t, ts, 700)
	if ent.LeftGapKnown {
		t.Error("left gap known before any view width was reported")
	}
	if ent.WrapperWidth != 700 {
		t.Errorf("WrapperWidth = %v, want 700", ent.WrapperWidth)
	}

	// Reporting the view width derives the pending gap.
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/view", `{"width": 1000}`)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("POST /v1/view status = %d, body = %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/v1/entities/"+string(ent.ID), "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET entity status = %d", resp.StatusCode)
	}
	var got entityResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decoding entity: %v", err)
	}
	if !got.LeftGapKnown {
		t.Fatal("left gap still unknown after view width report")
	}
	if got.LeftGap != 150 {
		t.Errorf("LeftGap = %v, want 150", got.LeftGap)
	}
}

func TestSetWidthFlow(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/view", `{"width": 1000}`)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("POST /v1/view status = %d", resp.StatusCode)
	}
	ent := createEntity(t, ts, 300)
	if ent.LeftGap != 0 {
		t.Errorf("initial LeftGap = %v, want 0", ent.LeftGap)
	}

	steps := []struct {
		width float64
		want  float64
	}{
		{width: 700, want: 150},
		{width: 1400, want: 300},
	}
	for _, step := range steps {
		resp, body := doJSON(t, http.MethodPut,
			ts.URL+"/v1/entities/"+string(ent.ID)+"/width",
			fmt.Sprintf(`{"width": %g}`, step.width))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("PUT width status = %d, body = %s", resp.StatusCode, body)
		}
		var got entityResponse
		if err := json.Unmarshal(body, &got); err != nil {
			t.Fatalf("decoding entity: %v", err)
		}
		if got.LeftGap != step.want {
			t.Errorf("LeftGap after width %g = %v, want %v", step.width, got.LeftGap, step.want)
		}
	}

	// Growing the view re-derives the clamped gap.
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/v1/view", `{"width": 1200}`)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("POST /v1/view status = %d", resp.StatusCode)
	}
	resp, body := doJSON(t, http.MethodGet, ts.URL+"/v1/entities/"+string(ent.ID), "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET entity status = %d", resp.StatusCode)
	}
	var got entityResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decoding entity: %v", err)
	}
	if got.LeftGap != 400 {
		t.Errorf("LeftGap after view resize = %v, want 400", got.LeftGap)
	}
}

func TestLineWidthUpdate(t *testing.T) {
	ts := newTestServer(t)

	doJSON(t, http.MethodPost, ts.URL+"/v1/view", `{"width": 1000}`)
	ent := createEntity(t, ts, 700)
	if ent.LeftGap != 150 {
		t.Fatalf("LeftGap = %v, want 150 with configured line width 400", ent.LeftGap)
	}

	// A new line width applies on the next recomputation, without any
	// store-side caching.
	resp, _ := doJSON(t, http.MethodPut, ts.URL+"/v1/line", `{"width": 500}`)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("PUT /v1/line status = %d", resp.StatusCode)
	}
	doJSON(t, http.MethodPost, ts.URL+"/v1/view", `{"width": 1000}`)

	_, body := doJSON(t, http.MethodGet, ts.URL+"/v1/entities/"+string(ent.ID), "")
	var got entityResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decoding entity: %v", err)
	}
	if got.LeftGap != 100 {
		t.Errorf("LeftGap with line width 500 = %v, want 100", got.LeftGap)
	}
}

func TestUnknownEntityIs404(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPut, ts.URL+"/v1/entities/ghost/width", `{"width": 100}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("PUT unknown entity status = %d, want 404", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/v1/entities/ghost", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET unknown entity status = %d, want 404", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/v1/entities/ghost", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("DELETE unknown entity status = %d, want 404", resp.StatusCode)
	}
}

func TestBadRequests(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{name: "malformed json", method: http.MethodPost, path: "/v1/view", body: `{"width":`},
		{name: "unknown field", method: http.MethodPost, path: "/v1/view", body: `{"w": 10}`},
		{name: "negative view width", method: http.MethodPost, path: "/v1/view", body: `{"width": -1}`},
		{name: "negative wrapper width", method: http.MethodPost, path: "/v1/entities", body: `{"width": -5}`},
		{name: "zero line width", method: http.MethodPut, path: "/v1/line", body: `{"width": 0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, tt.method, ts.URL+tt.path, tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400, body = %s", resp.StatusCode, body)
			}
		})
	}
}

func TestRemoveEntity(t *testing.T) {
	ts := newTestServer(t)

	doJSON(t, http.MethodPost, ts.URL+"/v1/view", `{"width": 1000}`)
	ent := createEntity(t, ts, 700)

	resp, _ := doJSON(t, http.MethodDelete, ts.URL+"/v1/entities/"+string(ent.ID), "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want 204", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/v1/entities/"+string(ent.ID), "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET removed entity status = %d, want 404", resp.StatusCode)
	}
}

func TestLayoutSnapshot(t *testing.T) {
	ts := newTestServer(t)

	doJSON(t, http.MethodPost, ts.URL+"/v1/view", `{"width": 1000}`)
	createEntity(t, ts, 300)
	createEntity(t, ts, 1400)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/v1/layout", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /v1/layout status = %d", resp.StatusCode)
	}
	var snap layout.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		t.Fatalf("decoding snapshot: %v", err)
	}
	if !snap.ViewWidthKnown || snap.ViewWidth != 1000 {
		t.Errorf("snapshot view = (%v, %v), want (1000, true)", snap.ViewWidth, snap.ViewWidthKnown)
	}
	if len(snap.Entities) != 2 {
		t.Fatalf("snapshot entities = %d, want 2", len(snap.Entities))
	}
	if snap.Entities[0].LeftGap != 0 {
		t.Errorf("first entity gap = %v, want 0", snap.Entities[0].LeftGap)
	}
	if snap.Entities[1].LeftGap != 300 {
		t.Errorf("second entity gap = %v, want 300 (clamped)", snap.Entities[1].LeftGap)
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/healthz", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("GET /healthz status = %d, want 204", resp.StatusCode)
	}
}

func TestMetricsExposed(t *testing.T) {
	ts := newTestServer(t)

	doJSON(t, http.MethodPost, ts.URL+"/v1/view", `{"width": 1000}`)
	createEntity(t, ts, 700)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/metrics", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /metrics status = %d", resp.StatusCode)
	}
	for _, metric := range []string{
		"widealign_view_width_sets_total",
		"widealign_wrapper_width_sets_total",
		"widealign_left_gap_recomputes_total",
		"widealign_view_width_pixels",
	} {
		if !strings.Contains(string(body), metric) {
			t.Errorf("metrics output missing %s", metric)
		}
	}
}
