package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/quest/internal/app"
	"github.com/doeshing/quest/internal/domain"
)

type fakeUpstream struct {
	mu       sync.Mutex
	reply    string
	requests [][]domain.Message
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Messages []domain.Message `json:"messages"`
	}
	json.NewDecoder(r.Body).Decode(&payload)

	f.mu.Lock()
	f.requests = append(f.requests, payload.Messages)
	reply := f.reply
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if reply == "" {
		io.WriteString(w, `{"choices":[]}`)
		return
	}
	json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": reply}},
		},
	})
}

func (f *fakeUpstream) lastRequest() []domain.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

func newTestContainer(t *testing.T, upstream *fakeUpstream) *app.Container {
	t.Helper()
	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)
	return buildTestContainer(t, server.URL)
}

// buildTestContainer writes a config pointing at endpoint and builds a container from it.
func buildTestContainer(t *testing.T, endpoint string) *app.Container {
	t.Helper()
	t.Setenv("QUEST_CLI_TEST_KEY", "k")

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	raw := fmt.Sprintf("provider:\n  endpoint: %s\n  auth_env_var: QUEST_CLI_TEST_KEY\nhistory:\n  enabled: true\n  path: %s\n",
		endpoint, filepath.Join(dir, "history.db"))
	if err := os.WriteFile(cfgPath, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}

	container, err := app.BuildContainer(context.Background(), app.Options{ConfigPath: cfgPath})
	if err != nil {
		t.Fatalf("BuildContainer() error = %v", err)
	}
	t.Cleanup(func() { container.Close() })
	return container
}

func execute(t *testing.T, container *app.Container, stdin string, args ...string) (string, error) {
	t.Helper()
	stdout, stderr, err := executeSplit(t, container, stdin, args...)
	return stdout + stderr, err
}

func executeSplit(t *testing.T, container *app.Container, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCommand(container)
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRootDelegatesPositionalTextToComplete(t *testing.T) {
	upstream := &fakeUpstream{reply: "hello"}
	container := newTestContainer(t, upstream)

	out, err := execute(t, container, "", "say", "hello")
	if err != nil {
		t.Fatalf("execute error = %v", err)
	}
	if out != "hello\n" {
		t.Fatalf("output = %q, want %q", out, "hello\n")
	}
	want := []domain.Message{{Role: domain.RoleUser, Content: "say hello"}}
	if diff := cmp.Diff(want, upstream.lastRequest()); diff != "" {
		t.Fatalf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestCompleteAssemblesFlagsInOrder(t *testing.T) {
	upstream := &fakeUpstream{reply: "bonjour"}
	container := newTestContainer(t, upstream)

	out, err := execute(t, container, "",
		"complete", "--system", "Answer in French", "--user", "Hello", "--user", "Again", "last")
	if err != nil {
		t.Fatalf("execute error = %v", err)
	}
	if out != "bonjour\n" {
		t.Fatalf("output = %q", out)
	}
	want := []domain.Message{
		{Role: domain.RoleSystem, Content: "Answer in French"},
		{Role: domain.RoleUser, Content: "Hello"},
		{Role: domain.RoleUser, Content: "Again"},
		{Role: domain.RoleUser, Content: "last"},
	}
	if diff := cmp.Diff(want, upstream.lastRequest()); diff != "" {
		t.Fatalf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestCompleteReadsPipedConversation(t *testing.T) {
	upstream := &fakeUpstream{reply: "piped"}
	container := newTestContainer(t, upstream)

	stdin := `[{"role":"system","content":"rules"},{"role":"user","content":"question"}]`
	out, err := execute(t, container, stdin, "complete")
	if err != nil {
		t.Fatalf("execute error = %v", err)
	}
	if out != "piped\n" {
		t.Fatalf("output = %q", out)
	}
	if got := upstream.lastRequest(); len(got) != 2 || got[1].Content != "question" {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestCompleteFailsOnZeroChoices(t *testing.T) {
	upstream := &fakeUpstream{}
	container := newTestContainer(t, upstream)

	out, err := execute(t, container, "", "complete", "hi")
	if err == nil {
		t.Fatalf("expected error, got output %q", out)
	}
	if out != "" {
		t.Fatalf("no reply should be printed on failure, got %q", out)
	}
}

func TestHistoryListShowsCompletions(t *testing.T) {
	upstream := &fakeUpstream{reply: "forty-two"}
	container := newTestContainer(t, upstream)

	if _, err := execute(t, container, "", "complete", "meaning of life"); err != nil {
		t.Fatalf("complete error = %v", err)
	}

	out, err := execute(t, container, "", "history", "list")
	if err != nil {
		t.Fatalf("history list error = %v", err)
	}
	if !strings.Contains(out, "meaning of life -> forty-two") {
		t.Fatalf("history output missing entry: %q", out)
	}

	if _, err := execute(t, container, "", "history", "clear"); err != nil {
		t.Fatalf("history clear error = %v", err)
	}
	out, err = execute(t, container, "", "history", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No history recorded yet.") {
		t.Fatalf("expected empty history, got %q", out)
	}
}

func TestConfigPathAndVersion(t *testing.T) {
	container := newTestContainer(t, &fakeUpstream{reply: "x"})

	out, err := execute(t, container, "", "config", "path")
	if err != nil {
		t.Fatalf("config path error = %v", err)
	}
	if strings.TrimSpace(out) != container.ConfigLoader.Path() {
		t.Fatalf("config path = %q, want %q", out, container.ConfigLoader.Path())
	}

	out, err = execute(t, container, "", "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.Contains(out, "Model: gpt-4 (temperature 0)") {
		t.Fatalf("unexpected version output %q", out)
	}
}

func TestDoctorReportsLocalChecks(t *testing.T) {
	upstream := &fakeUpstream{reply: "unused"}
	container := newTestContainer(t, upstream)

	out, err := execute(t, container, "", "doctor")
	if err != nil {
		t.Fatalf("doctor error = %v\n%s", err, out)
	}
	for _, want := range []string{"Config file", "API key", "QUEST_CLI_TEST_KEY set", "History"} {
		if !strings.Contains(out, want) {
			t.Errorf("doctor output missing %q:\n%s", want, out)
		}
	}
	if got := upstream.lastRequest(); got != nil {
		t.Fatalf("doctor must not send a completion request, got %+v", got)
	}
}

func TestCompleteVerboseKeepsMetadataOffStdout(t *testing.T) {
	upstream := &fakeUpstream{reply: "hello"}
	container := newTestContainer(t, upstream)

	stdout, stderr, err := executeSplit(t, container, "", "complete", "-v", "hi")
	if err != nil {
		t.Fatalf("execute error = %v", err)
	}
	if stdout != "hello\n" {
		t.Fatalf("stdout = %q, want only the reply", stdout)
	}
	if !strings.Contains(stderr, "| gpt-4 |") {
		t.Fatalf("stderr = %q, want completion metadata", stderr)
	}
}

func TestBrokenConfigCanBeDiagnosedAndReset(t *testing.T) {
	container := buildTestContainer(t, "ftp://example.com")

	out, err := execute(t, container, "", "doctor")
	if err == nil {
		t.Fatalf("doctor should fail on an invalid endpoint:\n%s", out)
	}
	if !strings.Contains(out, "provider.endpoint must be http or https") {
		t.Fatalf("doctor output missing endpoint problem:\n%s", out)
	}

	if _, err := execute(t, container, "", "complete", "hi"); err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Fatalf("complete must refuse an invalid configuration, got %v", err)
	}

	if _, err := execute(t, container, "", "config", "validate"); err == nil {
		t.Fatal("config validate should report the invalid endpoint")
	}
	out, err = execute(t, container, "", "config", "reset")
	if err != nil {
		t.Fatalf("config reset error = %v", err)
	}
	if !strings.Contains(out, "Backup written to") {
		t.Fatalf("reset should back up the broken file:\n%s", out)
	}
	out, err = execute(t, container, "", "config", "validate")
	if err != nil {
		t.Fatalf("config validate after reset error = %v", err)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Fatalf("unexpected validate output %q", out)
	}
}

func TestHistorySearchFindsSpecialCharacters(t *testing.T) {
	upstream := &fakeUpstream{reply: "noted"}
	container := newTestContainer(t, upstream)

	prompts := []string{"is a < b", `say "hi"`, "tom & jerry"}
	for _, prompt := range prompts {
		if _, err := execute(t, container, "", "complete", prompt); err != nil {
			t.Fatalf("complete %q error = %v", prompt, err)
		}
	}
	for _, prompt := range prompts {
		out, err := execute(t, container, "", "history", "search", "--query", prompt)
		if err != nil {
			t.Fatalf("history search %q error = %v", prompt, err)
		}
		if !strings.Contains(out, prompt+" -> noted") {
			t.Errorf("history search %q missed the entry:\n%s", prompt, out)
		}
	}
}
