package batch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// statusServer answers every path with the status code encoded in it,
// e.g. /status/404.
func statusServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": ["a", "b"]}`))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "not found"}`))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "boom"}`))
	})
	mux.HandleFunc("/choices", func(w http.ResponseWriter, r *http.Request) {
		// 300 without Location is returned to the client unresolved.
		w.WriteHeader(http.StatusMultipleChoices)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestFetchOne_Success(t *testing.T) {
	server := statusServer(t)
	exec := newTestExecutor(DefaultConfig())

	res, err := exec.FetchOne(context.Background(), Descriptor{URL: server.URL + "/ok"})
	if err != nil {
		t.Fatalf("FetchOne returned error: %v", err)
	}
	if string(res.Output) != `{"items": ["a", "b"]}` {
		t.Errorf("Output = %s", res.Output)
	}
	if res.Status != http.StatusOK {
		t.Errorf("Status = %d", res.Status)
	}
}

func TestFetchOne_ClientErrorIsData(t *testing.T) {
	server := statusServer(t)
	exec := newTestExecutor(DefaultConfig())

	res, err := exec.FetchOne(context.Background(), Descriptor{URL: server.URL + "/missing"})
	if err != nil {
		t.Fatalf("a 404 must not fail the facade, got: %v", err)
	}
	if !IsNotFound(res) {
		t.Errorf("Status = %d, want 404", res.Status)
	}
	if string(res.Output) != `{"error": "not found"}` {
		t.Errorf("Output = %s, want the 404 body", res.Output)
	}
}

func TestFetchOne_ServerErrorFails(t *testing.T) {
	server := statusServer(t)
	exec := newTestExecutor(DefaultConfig())

	_, err := exec.FetchOne(context.Background(), Descriptor{URL: server.URL + "/broken"})
	if err == nil {
		t.Fatal("a 500 must fail the facade")
	}
	se := AsStatusError(err)
	if se == nil {
		t.Fatalf("error should be a *StatusError, got %T: %v", err, err)
	}
	if se.Status != http.StatusInternalServerError || se.Class != ClassServer {
		t.Errorf("StatusError = %+v", se)
	}
}

func TestFetchOne_UnexpectedStatusFails(t *testing.T) {
	server := statusServer(t)
	exec := newTestExecutor(DefaultConfig())

	_, err := exec.FetchOne(context.Background(), Descriptor{URL: server.URL + "/choices"})
	se := AsStatusError(err)
	if se == nil {
		t.Fatalf("a 300 must fail the facade, got %v", err)
	}
	if se.Class != ClassUnexpected {
		t.Errorf("Class = %v, want unexpected", se.Class)
	}
}

func TestWave_IsolatesPerDescriptorFailures(t *testing.T) {
	server := statusServer(t)
	exec := newTestExecutor(DefaultConfig())

	outcomes, err := exec.Wave(context.Background(), []Descriptor{
		{URL: server.URL + "/ok"},
		{URL: server.URL + "/broken"},
		{URL: server.URL + "/missing"},
	})
	if err != nil {
		t.Fatalf("Wave returned error: %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("got %d outcomes", len(outcomes))
	}

	if outcomes[0].Err != nil {
		t.Errorf("outcome 0 should succeed: %v", outcomes[0].Err)
	}
	if outcomes[1].Err == nil {
		t.Error("outcome 1 (500) should carry an error")
	}
	if outcomes[2].Err != nil {
		t.Errorf("outcome 2 (404) should succeed: %v", outcomes[2].Err)
	}
}

func TestInvoke_ExitCodes(t *testing.T) {
	server := statusServer(t)
	exec := newTestExecutor(DefaultConfig())

	tests := []struct {
		path     string
		expected int
	}{
		{"/ok", 0},
		{"/missing", 4},
		{"/broken", 100},
		{"/choices", 1},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec, code := exec.Invoke(context.Background(), Descriptor{URL: server.URL + tt.path})
			if code != tt.expected {
				t.Errorf("Invoke(%s) exit code = %d, want %d", tt.path, code, tt.expected)
			}
			if tt.expected == 0 && len(rec.Body) == 0 {
				t.Error("successful invoke should carry the body")
			}
		})
	}
}

func TestInvoke_TransportFailureCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	exec := newTestExecutor(DefaultConfig())
	_, code := exec.Invoke(context.Background(), Descriptor{URL: url})
	if code != TransportCodeConnect {
		t.Errorf("exit code = %d, want transport connect code %d", code, TransportCodeConnect)
	}
	if code == 0 {
		t.Error("transport failure must not map to success")
	}
}
