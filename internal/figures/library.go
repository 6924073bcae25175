// Package figures reads and writes the figure library: an XML document of
// closed polygons, each stored as a list of edge records.
package figures

import (
	"bytes"
	_ "embed"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"figtrace/pkg/trace"
)

// ErrNoFigures is returned when a library holds no figures at all.
var ErrNoFigures = errors.New("figures: library is empty")

//go:embed figures.xml
var defaultLibrary []byte

// Figure is one stored polygon.
type Figure struct {
	Name    string
	Records []trace.EdgeRecord
}

// Library is an ordered list of figures.
type Library struct {
	Figures []Figure
}

type xmlLibrary struct {
	XMLName xml.Name    `xml:"Figures"`
	Figures []xmlFigure `xml:"Figure"`
}

type xmlFigure struct {
	Name  string    `xml:"Name,attr,omitempty"`
	Lines []xmlLine `xml:"Line"`
}

type xmlLine struct {
	CenterX float64 `xml:"CenterX,attr"`
	CenterY float64 `xml:"CenterY,attr"`
	Length  float64 `xml:"Length,attr"`
	Angle   float64 `xml:"Angle,attr"`
}

// Parse decodes a library document. Figures are returned as stored; they are
// validated only when loaded into a recogniser.
func Parse(r io.Reader) (*Library, error) {
	var doc xmlLibrary
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("figures: decode: %w", err)
	}
	lib := &Library{Figures: make([]Figure, 0, len(doc.Figures))}
	for i, f := range doc.Figures {
		fig := Figure{Name: f.Name, Records: make([]trace.EdgeRecord, 0, len(f.Lines))}
		if fig.Name == "" {
			fig.Name = fmt.Sprintf("figure %d", i+1)
		}
		for _, l := range f.Lines {
			fig.Records = append(fig.Records, trace.EdgeRecord{
				CenterX: l.CenterX,
				CenterY: l.CenterY,
				Length:  l.Length,
				Angle:   l.Angle,
			})
		}
		lib.Figures = append(lib.Figures, fig)
	}
	if len(lib.Figures) == 0 {
		return lib, ErrNoFigures
	}
	return lib, nil
}

// LoadFile reads a library from path.
func LoadFile(path string) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("figures: open %s: %w", path, err)
	}
	defer f.Close()
	lib, err := Parse(f)
	if err != nil {
		return lib, fmt.Errorf("%s: %w", path, err)
	}
	return lib, nil
}

// Default returns the built-in library.
func Default() *Library {
	lib, err := Parse(bytes.NewReader(defaultLibrary))
	if err != nil {
		panic(fmt.Sprintf("figures: built-in library: %v", err))
	}
	return lib
}

// Load reads the library at path when that file exists and falls back to the
// built-in library otherwise. An empty path always yields the built-in one.
func Load(path string) (*Library, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return LoadFile(path)
}

// Len returns the number of figures.
func (l *Library) Len() int { return len(l.Figures) }

// At returns the figure at index i.
func (l *Library) At(i int) (Figure, bool) {
	if i < 0 || i >= len(l.Figures) {
		return Figure{}, false
	}
	return l.Figures[i], true
}

// Add validates records with cfg and appends them as a new figure. Invalid
// figures are refused with the validation error.
func (l *Library) Add(name string, records []trace.EdgeRecord, cfg trace.Config) error {
	fig, err := trace.LoadFigure(records, cfg)
	if err != nil {
		return err
	}
	saved, err := trace.SaveFigure(fig)
	if err != nil {
		return err
	}
	if name == "" {
		name = fmt.Sprintf("figure %d", len(l.Figures)+1)
	}
	l.Figures = append(l.Figures, Figure{Name: name, Records: saved})
	return nil
}

// Write encodes the library as an indented XML document.
func (l *Library) Write(w io.Writer) error {
	doc := xmlLibrary{Figures: make([]xmlFigure, 0, len(l.Figures))}
	for _, f := range l.Figures {
		xf := xmlFigure{Name: f.Name, Lines: make([]xmlLine, 0, len(f.Records))}
		for _, r := range f.Records {
			xf.Lines = append(xf.Lines, xmlLine(r))
		}
		doc.Figures = append(doc.Figures, xf)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("figures: encode: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// SaveFile writes the library to path through a temporary file in the same
// directory, so readers never see a partial document.
func (l *Library) SaveFile(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".figures-*.xml")
	if err != nil {
		return fmt.Errorf("figures: save: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := l.Write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("figures: save: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("figures: save: %w", err)
	}
	return nil
}
