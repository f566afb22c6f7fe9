package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("failed to read stdout: %v", err)
	}
	return buf.String()
}

func withServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	origURL := baseURL
	baseURL = srv.URL
	t.Cleanup(func() { baseURL = origURL })
}

func TestPrintJSON(t *testing.T) {
	out := captureOutput(t, func() {
		printJSON(struct {
			A int `json:"a"`
		}{A: 1})
	})

	expected := "{\n  \"a\": 1\n}\n"
	if out != expected {
		t.Fatalf("unexpected json output:\n%s", out)
	}
}

func TestSweepInterestCmd(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/sweeps/interest" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]int{"credited": 5, "skipped": 1})
	})

	cmd := sweepCmd()
	cmd.SetArgs([]string{"interest"})

	out := captureOutput(t, func() {
		if err := cmd.Execute(); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	if !strings.Contains(out, "\"credited\": 5") {
		t.Fatalf("expected credited count in output, got %q", out)
	}
}

func TestLoanEligibilityCmd(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/loans/eligibility" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body["member_id"] != "mem-1" || body["amount"] != "500000" {
			t.Fatalf("unexpected body: %v", body)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"eligible": true})
	})

	cmd := loanCmd()
	cmd.SetArgs([]string{"eligibility", "mem-1", "500000"})

	out := captureOutput(t, func() {
		if err := cmd.Execute(); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	if !strings.Contains(out, "\"eligible\": true") {
		t.Fatalf("expected eligibility result, got %q", out)
	}
}

func TestLoanScheduleCmd(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/loans/schedule/preview" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("principal") != "1000000" || r.URL.Query().Get("months") != "12" {
			t.Fatalf("unexpected query: %s", r.URL.RawQuery)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{{"sequence": 1}})
	})

	cmd := loanCmd()
	cmd.SetArgs([]string{"schedule", "1000000", "12"})

	out := captureOutput(t, func() {
		if err := cmd.Execute(); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	if !strings.Contains(out, "\"sequence\": 1") {
		t.Fatalf("expected schedule entry, got %q", out)
	}
}

func TestMemberScoreCmd(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/members/mem-9/credit-score" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"score": 640})
	})

	cmd := memberCmd()
	cmd.SetArgs([]string{"score", "mem-9"})

	out := captureOutput(t, func() {
		if err := cmd.Execute(); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	if !strings.Contains(out, "\"score\": 640") {
		t.Fatalf("expected score in output, got %q", out)
	}
}

func TestErrorStatusReturnsError(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "member not found"})
	})

	cmd := memberCmd()
	cmd.SetArgs([]string{"get", "missing"})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	captureOutput(t, func() {
		if err := cmd.Execute(); err == nil {
			t.Fatal("expected error for 404 response")
		}
	})
}
