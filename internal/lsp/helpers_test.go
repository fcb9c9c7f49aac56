package lsp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lectic/internal/config"
	"lectic/internal/source"
)

func noEnv(string) (string, bool) { return "", false }

func testSettings() config.Settings {
	settings := config.DefaultSettings()
	settings.DebounceMS = int(time.Hour / time.Millisecond)
	settings.FetchModels = false
	return settings
}

// newTestServer returns a server without a system config whose debounce
// never fires during a test.
func newTestServer(t *testing.T, out io.Writer, opts ServerOptions) *Server {
	t.Helper()
	if opts.Settings == (config.Settings{}) {
		opts.Settings = testSettings()
	}
	if opts.Resolver == nil {
		opts.Resolver = &config.Resolver{}
	}
	if opts.LookupEnv == nil {
		opts.LookupEnv = noEnv
	}
	if opts.Log == nil {
		opts.Log = io.Discard
	}
	s := NewServer(bytes.NewReader(nil), out, opts)
	t.Cleanup(s.stopTimer)
	return s
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
}

// openDoc opens text as dir/name and returns its URI.
func openDoc(t *testing.T, s *Server, dir, name, text string) string {
	t.Helper()
	uri := pathToURI(filepath.Join(dir, name))
	params := didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, LanguageID: "markdown", Version: 1, Text: text},
	}
	payload, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal didOpen: %v", err)
	}
	if err := s.handleDidOpen(&rpcMessage{Method: "textDocument/didOpen", Params: payload}); err != nil {
		t.Fatalf("didOpen: %v", err)
	}
	s.stopTimer()
	return uri
}

// positionOf returns the position delta bytes past the first occurrence of
// substr.
func positionOf(t *testing.T, text, substr string, delta int) position {
	t.Helper()
	idx := strings.Index(text, substr)
	if idx < 0 {
		t.Fatalf("%q not found", substr)
	}
	return source.OffsetToPosition(text, idx+delta)
}

func readMessages(t *testing.T, data []byte) []rpcMessage {
	t.Helper()
	reader := bufio.NewReader(bytes.NewReader(data))
	var out []rpcMessage
	for {
		payload, err := readMessage(reader)
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("read message: %v", err)
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("decode message: %v", err)
		}
		out = append(out, msg)
	}
}

func publishes(t *testing.T, data []byte) []publishDiagnosticsParams {
	t.Helper()
	var out []publishDiagnosticsParams
	for _, msg := range readMessages(t, data) {
		if msg.Method != "textDocument/publishDiagnostics" {
			continue
		}
		var params publishDiagnosticsParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			t.Fatalf("decode publish: %v", err)
		}
		out = append(out, params)
	}
	return out
}

func request(t *testing.T, id int, method string, params any) []byte {
	t.Helper()
	msg := map[string]any{"jsonrpc": "2.0", "id": id, "method": method}
	if params != nil {
		msg["params"] = params
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal %s: %v", method, err)
	}
	var buf bytes.Buffer
	if err := writeMessage(&buf, payload); err != nil {
		t.Fatalf("frame %s: %v", method, err)
	}
	return buf.Bytes()
}

func notification(t *testing.T, method string) []byte {
	t.Helper()
	payload := []byte(`{"jsonrpc":"2.0","method":"` + method + `"}`)
	var buf bytes.Buffer
	if err := writeMessage(&buf, payload); err != nil {
		t.Fatalf("frame %s: %v", method, err)
	}
	return buf.Bytes()
}
