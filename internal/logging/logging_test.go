package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func newBufferLogger(t *testing.T) (*Logger, *bytes.Buffer) {
	t.Helper()
	l := New("fatesheet", "debug", "json")
	buf := &bytes.Buffer{}
	l.SetOutput(buf)
	return l, buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	return out
}

func TestNewLevelAndFormat(t *testing.T) {
	l := New("svc", "warn", "json")
	if l.GetLevel() != logrus.WarnLevel {
		t.Fatalf("level = %v, want warn", l.GetLevel())
	}
	if _, ok := l.Formatter.(*logrus.JSONFormatter); !ok {
		t.Fatalf("expected JSON formatter, got %T", l.Formatter)
	}

	l = New("svc", "nonsense", "")
	if l.GetLevel() != logrus.InfoLevel {
		t.Fatalf("level = %v, want info fallback", l.GetLevel())
	}
	if _, ok := l.Formatter.(*logrus.TextFormatter); !ok {
		t.Fatalf("expected text formatter, got %T", l.Formatter)
	}
}

func TestTraceIDRoundTrip(t *testing.T) {
	ctx := WithTraceID(context.Background(), "abc")
	if got := GetTraceID(ctx); got != "abc" {
		t.Fatalf("GetTraceID = %q", got)
	}
	if got := GetTraceID(context.Background()); got != "" {
		t.Fatalf("expected empty trace id, got %q", got)
	}
	if NewTraceID() == NewTraceID() {
		t.Fatal("expected distinct trace ids")
	}
}

func TestLogRequestIncludesTraceAndLevel(t *testing.T) {
	l, buf := newBufferLogger(t)
	ctx := WithTraceID(context.Background(), "trace-1")

	l.LogRequest(ctx, http.MethodGet, "/", http.StatusBadGateway, 5*time.Millisecond)

	line := decodeLine(t, buf)
	if line["trace_id"] != "trace-1" {
		t.Fatalf("trace_id = %v", line["trace_id"])
	}
	if line["level"] != "error" {
		t.Fatalf("level = %v, want error for 5xx", line["level"])
	}
	if line["status"] != float64(http.StatusBadGateway) {
		t.Fatalf("status = %v", line["status"])
	}
}

func TestLogDBErrorExpandsDriverFields(t *testing.T) {
	l, buf := newBufferLogger(t)
	err := &pq.Error{Code: "22P02", Severity: "ERROR", Message: "invalid input syntax for type uuid", Hint: "check id"}

	l.LogDBError(context.Background(), "get character", errors.Join(errors.New("query"), err))

	line := decodeLine(t, buf)
	if line["pg_code"] != "22P02" {
		t.Fatalf("pg_code = %v", line["pg_code"])
	}
	if line["pg_class"] != "data_exception" {
		t.Fatalf("pg_class = %v", line["pg_class"])
	}
	if line["pg_hint"] != "check id" {
		t.Fatalf("pg_hint = %v", line["pg_hint"])
	}
	if line["op"] != "get character" {
		t.Fatalf("op = %v", line["op"])
	}
}
