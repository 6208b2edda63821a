package main

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/consolenav/internal/errors"
	"github.com/vango-dev/consolenav/pkg/manifest"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "consolenav.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the root command with a throwaway config file and returns
// its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfgPath := writeConfig(t, `{"log": {"level": "error"}}`)

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", cfgPath, "--env-file", ""}, args...))

	err := root.Execute()
	return stdout.String(), err
}

func errorCode(err error) string {
	var ce *errors.ConsoleError
	if stderrors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

func TestRoutesCommand(t *testing.T) {
	out, err := run(t, "routes")
	if err != nil {
		t.Fatalf("routes error: %v", err)
	}
	for _, want := range []string{"── /settings  ", "/deploy  -> /services/deploy (+search)"} {
		if !strings.Contains(out, want) {
			t.Errorf("routes output missing %q:\n%s", want, out)
		}
	}
}

func TestRoutesCommandJSON(t *testing.T) {
	out, err := run(t, "routes", "--json")
	if err != nil {
		t.Fatalf("routes --json error: %v", err)
	}

	m, err := manifest.Read(strings.NewReader(out))
	if err != nil {
		t.Fatalf("manifest.Read error: %v", err)
	}
	found := false
	for _, e := range m.Routes {
		if e.Path == "/one-click-apps/" {
			found = true
		}
	}
	if !found {
		t.Error("manifest should list /one-click-apps/")
	}
}

func TestResolveCommand(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want []string
	}{
		{
			name: "settings",
			url:  "/settings",
			want: []string{
				"State:       resolved",
				"Location:    /settings",
				`Breadcrumbs: ["Settings"]`,
				"Search:      {}",
			},
		},
		{
			name: "redirect keeps search",
			url:  "/deploy?foo=bar",
			want: []string{
				"Location:    /services/deploy?foo=bar",
				"Redirects:   /deploy?foo=bar -> /services/deploy?foo=bar",
			},
		},
		{
			name: "validated search",
			url:  "/one-click-apps/?search=redis",
			want: []string{"Search:      {search=redis}"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "resolve", tt.url)
			if err != nil {
				t.Fatalf("resolve error: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestResolveCommandJSON(t *testing.T) {
	out, err := run(t, "resolve", "--json", "/deploy?foo=bar")
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	var nav struct {
		State     string   `json:"state"`
		Location  string   `json:"location"`
		Redirects []string `json:"redirects"`
	}
	if err := json.Unmarshal([]byte(out), &nav); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if nav.State != "resolved" {
		t.Errorf("state = %q, want %q", nav.State, "resolved")
	}
	if diff := cmp.Diff([]string{"/services/deploy?foo=bar"}, nav.Redirects); diff != "" {
		t.Errorf("redirects mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveCommandFailures(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"validation", []string{"resolve", "/one-click-apps/?search[]=a"}, "E220"},
		{"not found", []string{"resolve", "/nowhere"}, "E210"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if err == nil {
				t.Fatal("resolve should fail")
			}
			if code := errorCode(err); code != tt.code {
				t.Errorf("code = %q, want %q", code, tt.code)
			}
			if !strings.Contains(out, "State:       failed") {
				t.Errorf("output should report the failed state:\n%s", out)
			}
		})
	}

	out, err := run(t, "resolve", "--recover", "/nowhere")
	if err != nil {
		t.Fatalf("resolve --recover error: %v", err)
	}
	if !strings.Contains(out, "Recovered:") {
		t.Errorf("output should name the recovered navigation:\n%s", out)
	}
}

func TestExportCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "routes.json")

	out, err := run(t, "export", "--out", path)
	if err != nil {
		t.Fatalf("export error: %v", err)
	}
	if !strings.Contains(out, "Wrote") {
		t.Errorf("output = %q, want a success line", out)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := manifest.Read(f); err != nil {
		t.Errorf("exported manifest does not read back: %v", err)
	}

	_, err = run(t, "export", "--no-file")
	if code := errorCode(err); code != "E311" {
		t.Errorf("export --no-file code = %q, want %q", code, "E311")
	}

	blocked := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocked, nil, 0644); err != nil {
		t.Fatal(err)
	}
	out, err = run(t, "export", "--out", filepath.Join(blocked, "routes.json"))
	if code := errorCode(err); code != "E311" {
		t.Errorf("export into a file path code = %q, want %q", code, "E311")
	}
	if out != "" {
		t.Errorf("failed export printed %q, want nothing", out)
	}
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()

	if _, err := run(t, "init", "--dir", dir, "--yaml"); err != nil {
		t.Fatalf("init error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "consolenav.yaml")); err != nil {
		t.Errorf("consolenav.yaml not created: %v", err)
	}

	if _, err := run(t, "init", "--dir", dir); err == nil {
		t.Error("init should refuse to overwrite an existing config")
	}
	if _, err := run(t, "init", "--dir", dir, "--force"); err != nil {
		t.Errorf("init --force error: %v", err)
	}
}

func TestBadConfig(t *testing.T) {
	cfgPath := writeConfig(t, `{"navigation": {"fallback": "home"}}`)

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", cfgPath, "--env-file", "", "routes"})

	if code := errorCode(root.Execute()); code != "E302" {
		t.Errorf("code = %q, want %q", code, "E302")
	}
}

func TestErrorFormat(t *testing.T) {
	cfgPath := writeConfig(t, `{"navigation": {"fallback": "home"}}`)

	tests := []struct {
		format string
		check  func(t *testing.T, out string)
	}{
		{"json", func(t *testing.T, out string) {
			var got struct {
				Code     string `json:"code"`
				Category string `json:"category"`
				Detail   string `json:"detail"`
			}
			if err := json.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("error output is not JSON: %v\n%s", err, out)
			}
			if got.Code != "E302" || got.Category != "config" {
				t.Errorf("code = %q category = %q, want E302 config", got.Code, got.Category)
			}
			if !strings.Contains(got.Detail, "navigation.fallback") {
				t.Errorf("detail = %q, want it to name navigation.fallback", got.Detail)
			}
		}},
		{"compact", func(t *testing.T, out string) {
			if want := "E302: Config value invalid\n"; out != want {
				t.Errorf("output = %q, want %q", out, want)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			root := newRootCmd()
			root.SetOut(&bytes.Buffer{})
			root.SetErr(&bytes.Buffer{})
			root.SetArgs([]string{"--config", cfgPath, "--env-file", "", "--error-format", tt.format, "routes"})

			err := root.Execute()
			if err == nil {
				t.Fatal("routes with a bad config should fail")
			}
			var out bytes.Buffer
			reportError(&out, root, err)
			tt.check(t, out.String())
		})
	}
}

func TestUnknownErrorFormat(t *testing.T) {
	if _, err := run(t, "--error-format", "xml", "version"); err == nil {
		t.Error("unknown --error-format should fail")
	}
}

func TestLoadEnvFile(t *testing.T) {
	if err := loadEnvFile(filepath.Join(t.TempDir(), "missing.env"), false); err != nil {
		t.Errorf("missing default env file should be ignored: %v", err)
	}
	if err := loadEnvFile(filepath.Join(t.TempDir(), "missing.env"), true); err == nil {
		t.Error("missing explicit env file should fail")
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("CONSOLENAV_TEST_VALUE=from-dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("CONSOLENAV_TEST_VALUE") })
	if err := loadEnvFile(path, true); err != nil {
		t.Fatalf("loadEnvFile error: %v", err)
	}
	if got := os.Getenv("CONSOLENAV_TEST_VALUE"); got != "from-dotenv" {
		t.Errorf("CONSOLENAV_TEST_VALUE = %q, want %q", got, "from-dotenv")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version", "--short")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version = %q, want %q", strings.TrimSpace(out), version)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	a, err := loadApp(&globalFlags{configPath: writeConfig(t, `{"log": {"level": "error"}}`)}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("loadApp error: %v", err)
	}
	a.cfg.Server.Address = "127.0.0.1:0"

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- a.serve(ctx, "127.0.0.1:0") }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}

func TestServerConfigFromConfig(t *testing.T) {
	a, err := loadApp(&globalFlags{configPath: writeConfig(t, `{
  "server": {"navigateTimeout": "2s", "allowedOrigins": ["https://console.example.com"]},
  "navigation": {"recover": true},
  "metrics": {"enabled": false}
}`)}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("loadApp error: %v", err)
	}

	sc := a.serverConfig()
	if sc.NavigateTimeout != 2*time.Second {
		t.Errorf("NavigateTimeout = %v, want %v", sc.NavigateTimeout, 2*time.Second)
	}
	if !sc.Recover {
		t.Error("Recover should follow navigation.recover")
	}
	if sc.EnableMetrics {
		t.Error("EnableMetrics should follow metrics.enabled")
	}
	if sc.CheckOrigin == nil {
		t.Error("CheckOrigin should be set from server.allowedOrigins")
	}
}
