package errors

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/consolenav/pkg/router"
	"github.com/vango-dev/consolenav/pkg/search"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "construction error",
			code:    "E201",
			wantMsg: "Duplicate route path",
			wantCat: CategoryConstruction,
		},
		{
			name:    "navigation error",
			code:    "E211",
			wantMsg: "Redirect loop",
			wantCat: CategoryNavigation,
		},
		{
			name:    "validation error",
			code:    "E220",
			wantMsg: "Search parameters invalid",
			wantCat: CategoryValidation,
		},
		{
			name:    "config error",
			code:    "E301",
			wantMsg: "Config file invalid",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "file %q not found", "routes.json")
	if err.Message != `file "routes.json" not found` {
		t.Errorf("Message = %q, want %q", err.Message, `file "routes.json" not found`)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
}

func TestConsoleError_Error(t *testing.T) {
	err := New("E210")
	if got, want := err.Error(), "E210: No route matches"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := New("E311").Wrap(stderrors.New("disk full"))
	if got, want := wrapped.Error(), "E311: Export failed: disk full"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	bare := &ConsoleError{Message: "test error"}
	if bare.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", bare.Error(), "test error")
	}
}

func TestConsoleError_WithLocation(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "consolenav.yaml")
	content := `server:
  address: ":8080"
navigation:
  maxRedirects: -1
  fallback: /
`
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	err := New("E302").WithLocation(tmpFile, 4, 17)

	if err.Location == nil {
		t.Fatal("Location is nil")
	}
	if err.Location.Line != 4 {
		t.Errorf("Location.Line = %d, want %d", err.Location.Line, 4)
	}
	if len(err.Context) == 0 {
		t.Fatal("Context should not be empty")
	}
	found := false
	for _, line := range err.Context {
		if strings.Contains(line, "maxRedirects") {
			found = true
		}
	}
	if !found {
		t.Errorf("Context = %q, want the offending line", err.Context)
	}
}

func TestConsoleError_Builders(t *testing.T) {
	err := New("E202").
		WithDetail("custom detail").
		WithSuggestion("declare /services").
		WithExample(`{Path: "/services", Parent: "/"}`)

	if err.Detail != "custom detail" {
		t.Errorf("Detail = %q, want %q", err.Detail, "custom detail")
	}
	if err.Suggestion != "declare /services" {
		t.Errorf("Suggestion = %q, want %q", err.Suggestion, "declare /services")
	}
	if err.Example == "" {
		t.Error("Example should be set")
	}
}

func TestConsoleError_Wrap(t *testing.T) {
	cause := stderrors.New("underlying")
	err := New("E312").Wrap(cause)

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped error")
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the wrapped error")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E310") != nil {
		t.Error("FromError(nil) should return nil")
	}

	tests := []struct {
		name string
		err  error
		code string
	}{
		{"router error", &router.NotFoundError{Path: "/nowhere"}, "E210"},
		{"wrapped router error", fmt.Errorf("build: %w", &router.DuplicatePathError{Path: "/a", Existing: "/a"}), "E201"},
		{"joined errors", stderrors.Join(&router.OrphanRouteError{Path: "/a/b", Parent: "/a"}), "E202"},
		{"validation error", &search.ValidationError{Route: "/apps"}, "E220"},
		{"plain error", stderrors.New("boom"), "E310"},
		{"context error", context.Canceled, "E310"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := FromError(tt.err, "E310")
			if ce.Code != tt.code {
				t.Errorf("Code = %q, want %q", ce.Code, tt.code)
			}
			if !stderrors.Is(ce, tt.err) {
				t.Error("converted error should wrap the original")
			}
		})
	}

	existing := New("E300")
	if FromError(fmt.Errorf("load: %w", existing), "E310") != existing {
		t.Error("FromError should return a ConsoleError found in the chain")
	}
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		name string
		loc  *Location
		want string
	}{
		{"nil", nil, ""},
		{"with column", &Location{File: "consolenav.json", Line: 10, Column: 5}, "consolenav.json:10:5"},
		{"without column", &Location{File: "consolenav.json", Line: 10}, "consolenav.json:10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.loc.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	SetColors(false)
	defer SetColors(true)

	err := New("E211").
		WithSuggestion("Check /a and /b").
		WithExample(`{Path: "/a", Redirect: &router.Redirect{To: "/c"}}`).
		Wrap(stderrors.New("redirect loop: /a -> /b -> /a"))

	formatted := err.Format()

	for _, want := range []string{
		"ERROR E211: Redirect loop",
		"more redirects than allowed",
		"Hint: Check /a and /b",
		"Example:",
		"Caused by: redirect loop",
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format() missing %q:\n%s", want, formatted)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E301").WithLocation("consolenav.json", 10, 5)

	want := "consolenav.json:10:5: E301: Config file invalid"
	if got := err.FormatCompact(); got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	out := New("E210").Wrap(stderrors.New("no route")).FormatJSON()

	for _, want := range []string{
		`"code":"E210"`,
		`"category":"navigation"`,
		`"message":"No route matches"`,
		`"cause":"no route"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatJSON() missing %s: %s", want, out)
		}
	}

	ce := New("E301").WithLocation("consolenav.json", 3, 0).Wrap(stderrors.New("bad byte \x01 in \"key\""))
	var decoded struct {
		Cause    string `json:"cause"`
		Location struct {
			File string `json:"file"`
			Line int    `json:"line"`
		} `json:"location"`
	}
	if err := json.Unmarshal([]byte(ce.FormatJSON()), &decoded); err != nil {
		t.Fatalf("FormatJSON() is not valid JSON: %v\n%s", err, ce.FormatJSON())
	}
	if decoded.Cause != "bad byte \x01 in \"key\"" {
		t.Errorf("cause = %q", decoded.Cause)
	}
	if decoded.Location.File != "consolenav.json" || decoded.Location.Line != 3 {
		t.Errorf("location = %+v", decoded.Location)
	}
}

func TestFprint(t *testing.T) {
	SetColors(false)
	defer SetColors(true)

	tests := []struct {
		name  string
		err   error
		style Style
		want  string
	}{
		{"text", New("E200"), StyleText, "E200: Empty route tree"},
		{"text plain", stderrors.New("plain"), StyleText, "\nERROR: plain\n\n"},
		{"compact", New("E313").Wrap(stderrors.New("no route")), StyleCompact, "E313: Navigation failed: no route\n"},
		{"compact plain", stderrors.New("plain"), StyleCompact, "plain\n"},
		{"json", New("E210"), StyleJSON, `"code":"E210"`},
		{"json plain", stderrors.New("plain"), StyleJSON, "{\"message\":\"plain\"}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Fprint(&buf, tt.err, tt.style)
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("Fprint() = %q, want it to contain %q", buf.String(), tt.want)
			}
		})
	}
}

func TestParseStyle(t *testing.T) {
	tests := []struct {
		in      string
		want    Style
		wantErr bool
	}{
		{"", StyleText, false},
		{"text", StyleText, false},
		{"compact", StyleCompact, false},
		{"json", StyleJSON, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		got, err := ParseStyle(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStyle(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseStyle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRegistryCoversErrorCodes(t *testing.T) {
	errs := []interface{ ErrorCode() string }{
		&router.DuplicatePathError{},
		&router.OrphanRouteError{},
		&router.ConflictError{},
		&router.PatternError{},
		&router.NotFoundError{},
		&router.RedirectLoopError{},
		&router.RedirectError{},
		&router.InvalidURLError{},
		&search.ValidationError{},
	}
	for _, err := range errs {
		if _, ok := lookupTemplate(err.ErrorCode()); !ok {
			t.Errorf("%T code %s is not registered", err, err.ErrorCode())
		}
	}
}

func TestUnknownCode(t *testing.T) {
	if _, ok := lookupTemplate("E998"); ok {
		t.Error("E998 should not exist")
	}
	if ce := FromError(&codedError{code: "E998"}, "E310"); ce.Code != "E310" {
		t.Errorf("Code = %q, want fallback %q", ce.Code, "E310")
	}
}

type codedError struct{ code string }

func (e *codedError) Error() string     { return "coded" }
func (e *codedError) ErrorCode() string { return e.code }

func TestWrapText(t *testing.T) {
	if got := wrapText("short text", 100); len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short text: got %v", got)
	}
	if got := wrapText("this is a longer text that should be wrapped", 20); len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %d: %v", len(got), got)
	}
	if got := wrapText("", 10); len(got) != 0 {
		t.Errorf("wrapText empty: expected empty, got %v", got)
	}
}

func TestColorFunctions(t *testing.T) {
	SetColors(true)
	if !strings.Contains(red("test"), "\033[31m") {
		t.Error("red should contain ANSI code when colors enabled")
	}

	SetColors(false)
	if strings.Contains(red("test"), "\033[") {
		t.Error("red should not contain ANSI code when colors disabled")
	}
	SetColors(true)
}
