package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func postEvaluate(t *testing.T, ts *httptest.Server, req evaluateRequest) evaluateResponse {
	t.Helper()
	b, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(ts.URL+"/evaluate", "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var got evaluateResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return got
}

func TestIntegration(t *testing.T) {
	ts := httptest.NewServer(NewMux())
	defer ts.Close()

	patient := json.RawMessage(`{"resourceType":"Patient","name":[{"given":["Alice","B."],"family":"Smith"},{"given":["Jim"]}]}`)

	tests := []struct {
		name         string
		req          evaluateRequest
		wantContains []string
	}{
		{
			name:         "simple path",
			req:          evaluateRequest{Expression: "Patient.name.given.first()", Resource: patient},
			wantContains: []string{"Alice"},
		},
		{
			name:         "context expression",
			req:          evaluateRequest{Expression: "given.first()", Context: "Patient.name", Resource: patient},
			wantContains: []string{"Alice", "Jim"},
		},
		{
			name:         "variables",
			req:          evaluateRequest{Expression: "%v", Variables: map[string]string{"v": "testMe"}, Resource: patient},
			wantContains: []string{"testMe"},
		},
		{
			name:         "equality yields boolean",
			req:          evaluateRequest{Expression: "1 = 1", Resource: patient},
			wantContains: []string{"true"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := postEvaluate(t, ts, tc.req)
			if got.Error != "" {
				t.Fatalf("unexpected error: %s", got.Error)
			}
			for _, want := range tc.wantContains {
				found := false
				for _, v := range got.Result {
					if v == want {
						found = true
						break
					}
				}
				if !found {
					t.Fatalf("expected %q in result %v", want, got.Result)
				}
			}
		})
	}
}

func TestIntegrationTrace(t *testing.T) {
	ts := httptest.NewServer(NewMux())
	defer ts.Close()

	patient := json.RawMessage(`{"resourceType":"Patient","name":[{"given":["Alice"]}]}`)
	got := postEvaluate(t, ts, evaluateRequest{
		Expression: "name.trace('names').given",
		Resource:   patient,
	})
	if got.Error != "" {
		t.Fatalf("unexpected error: %s", got.Error)
	}
	if len(got.Trace) != 1 || got.Trace[0].Name != "names" {
		t.Fatalf("expected one trace entry named 'names', got %#v", got.Trace)
	}
}
