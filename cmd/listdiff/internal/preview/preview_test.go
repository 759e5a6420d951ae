package preview

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/go-drift/listdiff/pkg/diff"
)

func sections() []diff.ItemSection {
	return []diff.ItemSection{
		{Model: diff.Item{ID: "general"}, Elements: []diff.Item{{ID: "wifi", Value: "on"}, {ID: "bluetooth"}}},
		{Model: diff.Item{ID: "about", Value: "About"}, Elements: []diff.Item{{ID: "version"}}},
	}
}

func TestRenderSize(t *testing.T) {
	img := Render(sections(), Options{})
	want := 2*headerHeight + 3*rowHeight
	if b := img.Bounds(); b.Dx() != defaultWidth || b.Dy() != want {
		t.Errorf("bounds = %v, want %dx%d", b, defaultWidth, want)
	}

	empty := Render(nil, Options{Width: 100})
	if b := empty.Bounds(); b.Dx() != 100 || b.Dy() != rowHeight {
		t.Errorf("empty bounds = %v", b)
	}
}

func TestRenderDrawsText(t *testing.T) {
	img := Render(sections(), Options{})
	inked := 0
	for x := 2*padding + stripeWidth; x < img.Bounds().Dx(); x++ {
		for y := headerHeight; y < headerHeight+rowHeight-1; y++ {
			if img.RGBAAt(x, y) != background {
				inked++
			}
		}
	}
	if inked == 0 {
		t.Error("first element row has no text pixels")
	}
}

func TestRenderStripes(t *testing.T) {
	marks := Marks{
		Sections: map[int]Mark{1: MarkMoved},
		Elements: map[diff.IndexPath]Mark{{Section: 0, Element: 1}: MarkInserted},
	}
	img := Render(sections(), Options{Marks: marks})

	if got := img.RGBAAt(1, headerHeight+rowHeight+rowHeight/2); got != MarkColor(MarkInserted) {
		t.Errorf("inserted row stripe = %v", got)
	}
	secondHeader := headerHeight + 2*rowHeight
	if got := img.RGBAAt(1, secondHeader+1); got != MarkColor(MarkMoved) {
		t.Errorf("moved section stripe = %v", got)
	}
	if got := img.RGBAAt(1, headerHeight+1); got != background {
		t.Errorf("unmarked row stripe = %v, want background", got)
	}
}

func TestMarksFrom(t *testing.T) {
	old := []diff.ItemSection{
		{Model: diff.Item{ID: "a", Value: "1"}, Elements: []diff.Item{{ID: "x"}, {ID: "y"}}},
		{Model: diff.Item{ID: "b"}},
	}
	next := []diff.ItemSection{
		{Model: diff.Item{ID: "c"}},
		{Model: diff.Item{ID: "a", Value: "2"}, Elements: []diff.Item{{ID: "y"}, {ID: "z"}, {ID: "x"}}},
	}
	marks := MarksFrom(diff.Diff(old, next))

	if marks.Sections[0] != MarkInserted {
		t.Errorf("section 0 = %v, want inserted", marks.Sections[0])
	}
	if marks.Sections[1] != MarkUpdated {
		t.Errorf("section 1 = %v, want updated", marks.Sections[1])
	}
	if m := marks.Elements[diff.IndexPath{Section: 1, Element: 1}]; m != MarkInserted {
		t.Errorf("element [1, 1] = %v, want inserted", m)
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, Render(sections(), Options{Width: 200})); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 200 {
		t.Errorf("decoded width = %d", img.Bounds().Dx())
	}
}
