package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/coldreach/internal/model"
)

// --- Helpers ---

type fakeDeps struct {
	result    model.Result
	err       error
	gotURL    string
	entries   []model.Entry
	appendErr error
}

func (d *fakeDeps) generate(_ context.Context, url string) (model.Result, error) {
	d.gotURL = url
	return d.result, d.err
}

func (d *fakeDeps) addEntry(e model.Entry) error {
	if d.appendErr != nil {
		return d.appendErr
	}
	d.entries = append(d.entries, e)
	return nil
}

func newTestModel(d *fakeDeps) appModel {
	m := newAppModel(d.generate, d.addEntry, time.Second)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(appModel)
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

// update sends msg and returns the resulting model and command.
func update(t *testing.T, m appModel, msg tea.Msg) (appModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(appModel), cmd
}

// --- Tests ---

func TestAddEntry_Success(t *testing.T) {
	d := &fakeDeps{}
	m := newTestModel(d)
	m.inputs[fieldTechstack].SetValue("  Rust, Tokio ")
	m.inputs[fieldLink].SetValue("https://example.com/rust")

	m, cmd := update(t, m, key(tea.KeyCtrlA))
	if cmd == nil {
		t.Fatal("expected add entry command")
	}
	m, _ = update(t, m, cmd())

	if len(d.entries) != 1 || d.entries[0] != (model.Entry{Techstack: "Rust, Tokio", Links: "https://example.com/rust"}) {
		t.Fatalf("entries = %+v", d.entries)
	}
	if m.bannerKind != bannerSuccess || m.banner != "Added new entry: Techstack - Rust, Tokio, Link - https://example.com/rust" {
		t.Errorf("banner = %d %q", m.bannerKind, m.banner)
	}
	if m.inputs[fieldTechstack].Value() != "" || m.inputs[fieldLink].Value() != "" {
		t.Error("entry inputs were not cleared")
	}
}

func TestAddEntry_MissingFieldShowsHint(t *testing.T) {
	d := &fakeDeps{}
	m := newTestModel(d)
	m.inputs[fieldTechstack].SetValue("Go")

	m, cmd := update(t, m, key(tea.KeyCtrlA))
	if cmd != nil {
		t.Error("expected no command when link is empty")
	}
	if m.bannerKind != bannerHint {
		t.Errorf("bannerKind = %d, want hint", m.bannerKind)
	}
	if len(d.entries) != 0 {
		t.Errorf("entries = %+v, want none", d.entries)
	}
}

func TestAddEntry_AppendFailure(t *testing.T) {
	d := &fakeDeps{appendErr: errors.New("permission denied")}
	m := newTestModel(d)
	m.inputs[fieldTechstack].SetValue("Go")
	m.inputs[fieldLink].SetValue("https://example.com/go")

	m, cmd := update(t, m, key(tea.KeyCtrlA))
	m, _ = update(t, m, cmd())

	if m.bannerKind != bannerError || m.banner != "An error occurred: permission denied" {
		t.Errorf("banner = %d %q", m.bannerKind, m.banner)
	}
}

func TestEnterOnEntryFieldAddsEntry(t *testing.T) {
	d := &fakeDeps{}
	m := newTestModel(d)
	m, _ = update(t, m, key(tea.KeyTab))
	if m.focus != fieldTechstack {
		t.Fatalf("focus = %d, want techstack", m.focus)
	}
	m.inputs[fieldTechstack].SetValue("Go")
	m.inputs[fieldLink].SetValue("https://example.com/go")

	_, cmd := update(t, m, key(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected add entry command")
	}
	if _, ok := cmd().(entryAddedMsg); !ok {
		t.Fatal("enter on techstack field did not add an entry")
	}
}

func TestGenerate_EmptyURLShowsHint(t *testing.T) {
	m := newTestModel(&fakeDeps{})

	m, cmd := update(t, m, key(tea.KeyCtrlG))
	if cmd != nil || m.loading {
		t.Error("generation started without a URL")
	}
	if m.bannerKind != bannerHint {
		t.Errorf("bannerKind = %d, want hint", m.bannerKind)
	}
}

func TestGenerate_StartsLoading(t *testing.T) {
	m := newTestModel(&fakeDeps{})
	m.inputs[fieldURL].SetValue("https://jobs.example.com/1")

	m, cmd := update(t, m, key(tea.KeyEnter))
	if cmd == nil || !m.loading {
		t.Fatal("expected loading state and a command")
	}
	if !strings.Contains(m.View(), "Generating email...") {
		t.Error("view does not show the spinner")
	}

	// A second request while loading is ignored.
	if _, cmd := update(t, m, key(tea.KeyCtrlG)); cmd != nil {
		t.Error("second generate started while loading")
	}
}

func TestGenerateCmd_CallsGenerator(t *testing.T) {
	d := &fakeDeps{result: model.Result{JobURL: "https://jobs.example.com/1"}}
	m := newTestModel(d)

	msg, ok := m.generateCmd("https://jobs.example.com/1")().(generatedMsg)
	if !ok {
		t.Fatal("generateCmd did not return generatedMsg")
	}
	if d.gotURL != "https://jobs.example.com/1" || msg.result.JobURL != "https://jobs.example.com/1" {
		t.Errorf("gotURL = %q, msg = %+v", d.gotURL, msg)
	}
}

func TestGenerated_ShowsEmail(t *testing.T) {
	m := newTestModel(&fakeDeps{})
	m.loading = true

	m, _ = update(t, m, generatedMsg{
		url: "https://jobs.example.com/1",
		result: model.Result{
			JobURL: "https://jobs.example.com/1",
			Links:  []string{"https://example.com/go"},
			Email:  model.Email{Body: "Dear hiring manager"},
		},
	})

	if m.loading {
		t.Error("still loading after result")
	}
	if m.bannerKind != bannerSuccess {
		t.Errorf("bannerKind = %d, want success", m.bannerKind)
	}
	if !strings.Contains(m.email, "Dear hiring manager") {
		t.Errorf("email = %q", m.email)
	}
	if !strings.Contains(m.View(), "hiring manager") {
		t.Error("view does not show the email")
	}
}

func TestViewportRendererRebuiltOnlyOnResize(t *testing.T) {
	m := newTestModel(&fakeDeps{})
	result := generatedMsg{
		url: "https://jobs.example.com/1",
		result: model.Result{
			JobURL: "https://jobs.example.com/1",
			Email:  model.Email{Body: "Dear hiring manager"},
		},
	}

	m, _ = update(t, m, result)
	first := m.renderer
	if first == nil {
		t.Fatal("no renderer after first result")
	}

	m, _ = update(t, m, result)
	if m.renderer != first {
		t.Error("renderer rebuilt for a second result at the same width")
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	if m.renderer != first {
		t.Error("renderer rebuilt when only the height changed")
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 70, Height: 30})
	if m.renderer == first {
		t.Error("renderer kept after width change")
	}
	if m.rendererWidth != m.viewport.Width {
		t.Errorf("rendererWidth = %d, viewport width = %d", m.rendererWidth, m.viewport.Width)
	}
}

func TestGenerated_GenerationFailureShowsFallbackAndError(t *testing.T) {
	m := newTestModel(&fakeDeps{})
	m.loading = true

	m, _ = update(t, m, generatedMsg{
		url: "https://jobs.example.com/1",
		result: model.Result{
			JobURL:        "https://jobs.example.com/1",
			Email:         model.Email{Body: "Unable to generate email", Fallback: true},
			GenerationErr: errors.New("model overloaded"),
		},
	})

	if m.bannerKind != bannerError || !strings.Contains(m.banner, "model overloaded") {
		t.Errorf("banner = %d %q", m.bannerKind, m.banner)
	}
	if !strings.Contains(m.email, "Unable to generate email") {
		t.Errorf("fallback email not shown: %q", m.email)
	}
}

func TestGenerated_PipelineErrorShowsBannerOnly(t *testing.T) {
	m := newTestModel(&fakeDeps{})
	m.email = "old email"
	m.loading = true

	m, _ = update(t, m, generatedMsg{url: "https://x", err: errors.New("fetching https://x: HTTP 404")})

	if m.banner != "An error occurred: fetching https://x: HTTP 404" {
		t.Errorf("banner = %q", m.banner)
	}
	if m.email != "" {
		t.Errorf("email = %q, want cleared", m.email)
	}
}

func TestFocusCycles(t *testing.T) {
	m := newTestModel(&fakeDeps{})

	m, _ = update(t, m, key(tea.KeyShiftTab))
	if m.focus != fieldLink {
		t.Errorf("focus after shift+tab = %d, want %d", m.focus, fieldLink)
	}
	m, _ = update(t, m, key(tea.KeyTab))
	if m.focus != fieldURL {
		t.Errorf("focus after tab = %d, want %d", m.focus, fieldURL)
	}
	if !m.inputs[fieldURL].Focused() || m.inputs[fieldLink].Focused() {
		t.Error("focused input does not follow focus index")
	}
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		m := newTestModel(&fakeDeps{})
		_, cmd := update(t, m, key(k))
		if cmd == nil {
			t.Fatalf("%v: expected quit command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%v: command did not quit", k)
		}
	}
}

func TestPicker_SelectsEntry(t *testing.T) {
	m := pickerModel{
		entries: []model.Entry{{Techstack: "A", Links: "a"}, {Techstack: "B", Links: "b"}},
		chosen:  -1,
	}
	next, _ := m.Update(key(tea.KeyDown))
	next, _ = next.Update(key(tea.KeyDown))
	next, cmd := next.Update(key(tea.KeyEnter))

	if got := next.(pickerModel).chosen; got != 1 {
		t.Errorf("chosen = %d, want 1", got)
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
}

func TestLoaderModel_FinishesWithResult(t *testing.T) {
	m := loaderModel[int]{label: "Indexing"}
	next, cmd := m.Update(loadDoneMsg[int]{value: 3})
	final := next.(loaderModel[int])

	if !final.done || final.result != 3 || final.err != nil {
		t.Errorf("loader = %+v", final)
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
	if final.View() != "" {
		t.Errorf("View after done = %q, want empty", final.View())
	}
}

func TestLoaderModel_CtrlCCancels(t *testing.T) {
	m := loaderModel[int]{label: "Indexing"}
	next, _ := m.Update(key(tea.KeyCtrlC))
	if err := next.(loaderModel[int]).err; !errors.Is(err, ErrCancelled) {
		t.Errorf("err = %v, want ErrCancelled", err)
	}
}
