package script

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/drake/canvas/item"
	"github.com/drake/canvas/menu"
)

// testCase is one handler scenario from testdata.
type testCase struct {
	Name     string   `json:"name"`
	Setup    any      `json:"setup_lua,omitempty"`
	Handler  string   `json:"handler,omitempty"`
	Named    string   `json:"named,omitempty"`
	Click    string   `json:"click"`
	Options  []string `json:"options,omitempty"` // nil means allow all
	SlotItem string   `json:"slot_item,omitempty"`

	ExpectedOutcome  string `json:"expected_outcome"`
	ExpectedResult   string `json:"expected_result,omitempty"`
	ExpectedSlotItem string `json:"expected_slot_item,omitempty"`
	ExpectedLog      string `json:"expected_log,omitempty"`
}

type testDataFile struct {
	Tests []testCase `json:"tests"`
}

type mockViewer string

func (v mockViewer) ID() string { return string(v) }

// setupTest creates an initialized engine logging into a buffer.
func setupTest(t *testing.T) (*Engine, *bytes.Buffer) {
	t.Helper()

	var logs bytes.Buffer
	engine := NewEngine(slog.New(slog.NewTextHandler(&logs, nil)))
	if err := engine.Init(); err != nil {
		t.Fatal("Failed to initialize engine:", err)
	}
	t.Cleanup(engine.Close)
	return engine, &logs
}

func loadTestData(t *testing.T, filename string) testDataFile {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", filename))
	if err != nil {
		t.Fatalf("Failed to read test data %s: %v", filename, err)
	}

	var testData testDataFile
	if err := json.Unmarshal(data, &testData); err != nil {
		t.Fatalf("Failed to parse test data %s: %v", filename, err)
	}
	return testData
}

// executeSetupLua handles both string and []string setup code.
func executeSetupLua(t *testing.T, engine *Engine, setup any) {
	t.Helper()
	switch code := setup.(type) {
	case string:
		if err := engine.DoString("setup", code); err != nil {
			t.Fatalf("Failed to execute setup Lua code: %v", err)
		}
	case []interface{}:
		for _, line := range code {
			if err := engine.DoString("setup", line.(string)); err != nil {
				t.Fatalf("Failed to execute setup Lua code: %v", err)
			}
		}
	}
}

func executeTest(t *testing.T, tt testCase) {
	t.Helper()
	t.Run(tt.Name, func(t *testing.T) {
		engine, logs := setupTest(t)
		if tt.Setup != nil {
			executeSetupLua(t, engine, tt.Setup)
		}

		var handler menu.ClickHandler
		var err error
		if tt.Named != "" {
			handler, err = engine.Named(tt.Named)
		} else {
			handler, err = engine.Handler(tt.Handler)
		}
		if err != nil {
			t.Fatalf("building handler: %v", err)
		}

		m, err := menu.NewBuilder(1, 3).Title("test").Logger(slog.New(slog.NewTextHandler(logs, nil))).Build()
		if err != nil {
			t.Fatal(err)
		}
		slot, _ := m.Slot(1)
		slot.SetClickHandler(handler)
		slot.SetClickOptions(parseOptions(t, tt.Options))
		if tt.SlotItem != "" {
			stack, err := item.Parse(tt.SlotItem)
			if err != nil {
				t.Fatal(err)
			}
			slot.SetItem(stack)
		}

		click, err := menu.ParseClickType(tt.Click)
		if err != nil {
			t.Fatal(err)
		}
		info, _ := m.Click(mockViewer("steve"), 1, click)

		if got := info.Outcome().String(); got != tt.ExpectedOutcome {
			t.Errorf("outcome = %s, want %s (logs: %s)", got, tt.ExpectedOutcome, logs.String())
		}
		if tt.ExpectedResult != "" {
			if got := menu.Describe(info.Result()); got != tt.ExpectedResult {
				t.Errorf("result = %q, want %q", got, tt.ExpectedResult)
			}
		}
		if tt.ExpectedSlotItem != "" {
			if got := menu.Describe(slot.Item()); got != tt.ExpectedSlotItem {
				t.Errorf("slot item = %q, want %q", got, tt.ExpectedSlotItem)
			}
		}
		if tt.ExpectedLog != "" && !strings.Contains(logs.String(), tt.ExpectedLog) {
			t.Errorf("logs missing %q: %s", tt.ExpectedLog, logs.String())
		}
	})
}

func parseOptions(t *testing.T, names []string) menu.ClickOptions {
	t.Helper()
	if names == nil {
		return menu.AllowAll
	}
	var types []menu.ClickType
	for _, name := range names {
		ct, err := menu.ParseClickType(name)
		if err != nil {
			t.Fatal(err)
		}
		types = append(types, ct)
	}
	return menu.NewClickOptions(types...)
}

// TestHandlers runs every scenario from the *_tests.json files.
func TestHandlers(t *testing.T) {
	files, err := os.ReadDir("testdata")
	if err != nil {
		t.Fatalf("Failed to read testdata directory: %v", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), "_tests.json") {
			continue
		}
		feature := strings.TrimSuffix(file.Name(), "_tests.json")
		t.Run(feature, func(t *testing.T) {
			for _, tt := range loadTestData(t, file.Name()).Tests {
				executeTest(t, tt)
			}
		})
	}
}

func TestHandlerRejectsNonFunction(t *testing.T) {
	engine, _ := setupTest(t)

	if _, err := engine.Handler("return 42"); err == nil {
		t.Error("expected error for chunk returning a number")
	}
	if _, err := engine.Handler("return function("); err == nil {
		t.Error("expected parse error")
	}
	if _, err := engine.Named("missing"); err == nil {
		t.Error("expected error for unknown named handler")
	}
}

func TestCompiledChunksAreCached(t *testing.T) {
	engine, _ := setupTest(t)
	src := "return function(viewer, click) click:allow() end"

	for i := 0; i < 3; i++ {
		if _, err := engine.Handler(src); err != nil {
			t.Fatal(err)
		}
	}
	if n := engine.CachedChunks(); n != 1 {
		t.Errorf("expected 1 cached chunk, got %d", n)
	}

	if _, err := engine.Handler("return function() end"); err != nil {
		t.Fatal(err)
	}
	if n := engine.CachedChunks(); n != 2 {
		t.Errorf("expected 2 cached chunks, got %d", n)
	}
}

func TestHandlerStopsAfterReinit(t *testing.T) {
	engine, logs := setupTest(t)
	handler, err := engine.Handler("return function(viewer, click) click:allow() end")
	if err != nil {
		t.Fatal(err)
	}
	if err := engine.Init(); err != nil {
		t.Fatal(err)
	}

	m, _ := menu.NewBuilder(1, 1).Build()
	slot, _ := m.Slot(0)
	slot.SetClickOptions(menu.AllowAll)
	slot.SetClickHandler(handler)

	info, _ := m.Click(mockViewer("steve"), 0, menu.PickUp)
	if info.Outcome() != menu.Cancel {
		t.Errorf("stale handler should cancel, got %s", info.Outcome())
	}
	if !strings.Contains(logs.String(), "outlived its state") {
		t.Errorf("expected a warning, logs: %s", logs.String())
	}
}

func TestDoFileRegistersNamedHandlers(t *testing.T) {
	engine, _ := setupTest(t)

	dir := t.TempDir()
	helper := "return { reward = 'emerald' }"
	script := `
local shop = require("shop_helper")
canvas.handlers.buy = function(viewer, click)
  click:substitute(shop.reward, 2)
end
`
	if err := os.WriteFile(filepath.Join(dir, "shop_helper.lua"), []byte(helper), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "init.lua")
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := engine.DoFile(path); err != nil {
		t.Fatalf("DoFile: %v", err)
	}
	handler, err := engine.Named("buy")
	if err != nil {
		t.Fatal(err)
	}

	m, _ := menu.NewBuilder(1, 1).Build()
	slot, _ := m.Slot(0)
	slot.SetClickOptions(menu.AllowAll)
	slot.SetClickHandler(handler)

	info, _ := m.Click(mockViewer("steve"), 0, menu.PickUp)
	if info.Outcome() != menu.Substitute || menu.Describe(info.Result()) != "emerald x2" {
		t.Errorf("unexpected outcome %s", info)
	}
}

func TestUninitializedEngine(t *testing.T) {
	engine := NewEngine(nil)
	if err := engine.DoString("x", "return 1"); err == nil {
		t.Error("DoString before Init should fail")
	}
	if _, err := engine.Handler("return function() end"); err == nil {
		t.Error("Handler before Init should fail")
	}
}
