package egress

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"textassist/engine/internal/llm"
)

type stubRT struct {
	called bool
}

func (s *stubRT) RoundTrip(req *http.Request) (*http.Response, error) {
	s.called = true
	return &http.Response{
		StatusCode: 200,
		Body:       io.NopCloser(strings.NewReader("{}")),
		Header:     make(http.Header),
	}, nil
}

func TestAllowlistRoundTripper(t *testing.T) {
	stub := &stubRT{}
	rt := NewAllowlistRoundTripper(stub, []string{"API.openai.com", " "})
	req, _ := http.NewRequest(http.MethodPost, "https://api.openai.com/v1/chat/completions", nil)
	if _, err := rt.RoundTrip(req); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !stub.called {
		t.Fatalf("expected base to be called")
	}

	for _, raw := range []string{
		"http://api.openai.com/v1/chat/completions",
		"https://example.com/v1/chat/completions",
		"https://127.0.0.1/v1/chat/completions",
	} {
		stub.called = false
		blocked, _ := http.NewRequest(http.MethodPost, raw, nil)
		if _, err := rt.RoundTrip(blocked); err != llm.ErrEgressBlocked {
			t.Fatalf("%s: expected egress blocked, got %v", raw, err)
		}
		if stub.called {
			t.Fatalf("%s: blocked request reached base transport", raw)
		}
	}
}

func TestForBaseURL(t *testing.T) {
	rt, err := ForBaseURL(&stubRT{}, "https://proxy.internal.example:8443/openai")
	if err != nil {
		t.Fatalf("for base url: %v", err)
	}
	if !rt.Allowlist["proxy.internal.example"] || len(rt.Allowlist) != 1 {
		t.Fatalf("unexpected allowlist: %v", rt.Allowlist)
	}
	if _, err := ForBaseURL(nil, "http://api.openai.com"); err == nil {
		t.Fatalf("expected plain http endpoint to be rejected")
	}
}
