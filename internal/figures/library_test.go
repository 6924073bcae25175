package figures

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"figtrace/pkg/trace"
)

const twoFigures = `<Figures>
  <Figure Name="square">
    <Line CenterX="0" CenterY="-1" Length="2" Angle="0"/>
    <Line CenterX="1" CenterY="0" Length="2" Angle="90"/>
    <Line CenterX="0" CenterY="1" Length="2" Angle="180"/>
    <Line CenterX="-1" CenterY="0" Length="2" Angle="-90"/>
  </Figure>
  <Figure>
    <Line CenterX="0" CenterY="0" Length="1" Angle="0"/>
  </Figure>
</Figures>`

func TestParse(t *testing.T) {
	lib, err := Parse(strings.NewReader(twoFigures))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if lib.Len() != 2 {
		t.Fatalf("Len %d, want 2", lib.Len())
	}
	sq, _ := lib.At(0)
	if sq.Name != "square" || len(sq.Records) != 4 {
		t.Errorf("first figure %q with %d records, want square with 4", sq.Name, len(sq.Records))
	}
	if got := sq.Records[1]; got != (trace.EdgeRecord{CenterX: 1, Length: 2, Angle: 90}) {
		t.Errorf("second record %+v", got)
	}
	unnamed, _ := lib.At(1)
	if unnamed.Name != "figure 2" {
		t.Errorf("unnamed figure got name %q, want figure 2", unnamed.Name)
	}
}

func TestParse_KeepsInvalidFigures(t *testing.T) {
	lib, err := Parse(strings.NewReader(twoFigures))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	f, _ := lib.At(1)
	if _, err := trace.LoadFigure(f.Records, trace.DefaultConfig()); !errors.Is(err, trace.ErrTooFewEdges) {
		t.Errorf("LoadFigure err %v, want ErrTooFewEdges", err)
	}
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(strings.NewReader("<Figures></Figures>"))
	if !errors.Is(err, ErrNoFigures) {
		t.Errorf("err %v, want ErrNoFigures", err)
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := Parse(strings.NewReader("<Figures><Figure>")); err == nil {
		t.Error("expected an error for a truncated document")
	}
}

func TestDefault_AllFiguresValid(t *testing.T) {
	lib := Default()
	if lib.Len() == 0 {
		t.Fatal("built-in library is empty")
	}
	for _, f := range lib.Figures {
		if _, err := trace.LoadFigure(f.Records, trace.DefaultConfig()); err != nil {
			t.Errorf("%s: %v", f.Name, err)
		}
	}
}

func TestLoad_MissingFileFallsBack(t *testing.T) {
	lib, err := Load(filepath.Join(t.TempDir(), "nope.xml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if lib.Len() != Default().Len() {
		t.Errorf("Len %d, want built-in %d", lib.Len(), Default().Len())
	}
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "figures.xml")
	if err := os.WriteFile(path, []byte(twoFigures), 0o644); err != nil {
		t.Fatal(err)
	}
	lib, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if lib.Len() != 2 {
		t.Errorf("Len %d, want 2", lib.Len())
	}
}

func TestLoad_BrokenFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "figures.xml")
	if err := os.WriteFile(path, []byte("not xml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected an error for an unparsable file")
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	lib := Default()
	var buf bytes.Buffer
	if err := lib.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Len() != lib.Len() {
		t.Fatalf("Len %d, want %d", got.Len(), lib.Len())
	}
	for i := range lib.Figures {
		want, have := lib.Figures[i], got.Figures[i]
		if want.Name != have.Name || len(want.Records) != len(have.Records) {
			t.Errorf("figure %d: got %q/%d, want %q/%d", i, have.Name, len(have.Records), want.Name, len(want.Records))
			continue
		}
		for j := range want.Records {
			if want.Records[j] != have.Records[j] {
				t.Errorf("figure %d record %d: got %+v, want %+v", i, j, have.Records[j], want.Records[j])
			}
		}
	}
}

func TestAdd_RejectsInvalid(t *testing.T) {
	lib := &Library{}
	err := lib.Add("line", []trace.EdgeRecord{{Length: 2}}, trace.DefaultConfig())
	if !errors.Is(err, trace.ErrTooFewEdges) {
		t.Errorf("err %v, want ErrTooFewEdges", err)
	}
	if lib.Len() != 0 {
		t.Errorf("Len %d, want 0", lib.Len())
	}
}

func TestAdd_AcceptsValid(t *testing.T) {
	lib := &Library{}
	sq, _ := Default().At(1)
	if err := lib.Add("", sq.Records, trace.DefaultConfig()); err != nil {
		t.Fatalf("Add: %v", err)
	}
	f, ok := lib.At(0)
	if !ok || f.Name != "figure 1" || len(f.Records) != len(sq.Records) {
		t.Errorf("got %+v", f)
	}
}

func TestSaveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "figures.xml")
	if err := Default().SaveFile(path); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	lib, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if lib.Len() != Default().Len() {
		t.Errorf("Len %d, want %d", lib.Len(), Default().Len())
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want only the saved file", len(entries))
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "figures.xml")
	if err := Default().SaveFile(path); err != nil {
		t.Fatal(err)
	}
	got := make(chan *Library, 4)
	w, err := NewWatcher(path, 20*time.Millisecond, func(lib *Library) { got <- lib })
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte(twoFigures), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case lib := <-got:
		if lib.Len() != 2 {
			t.Errorf("reloaded Len %d, want 2", lib.Len())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not reload")
	}
}

func TestWatcher_NoReloadAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "figures.xml")
	if err := Default().SaveFile(path); err != nil {
		t.Fatal(err)
	}
	calls := 0
	w, err := NewWatcher(path, time.Hour, func(*Library) { calls++ })
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// A debounce timer that already fired when Close ran.
	w.reload()
	w.schedule()
	if calls != 0 {
		t.Errorf("onChange called %d times after Close, want 0", calls)
	}
	if w.timer != nil {
		t.Error("schedule after Close should not arm a timer")
	}
}
