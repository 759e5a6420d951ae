// Package preview renders list snapshots to images so a change can be
// reviewed without a device.
package preview

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/go-drift/listdiff/pkg/diff"
)

// Mark highlights a row that changed relative to a previous snapshot.
type Mark int

const (
	MarkNone Mark = iota
	MarkInserted
	MarkMoved
	MarkUpdated
)

func (m Mark) String() string {
	switch m {
	case MarkInserted:
		return "inserted"
	case MarkMoved:
		return "moved"
	case MarkUpdated:
		return "updated"
	default:
		return "none"
	}
}

// Marks holds the highlighted sections and elements, indexed in the
// rendered snapshot.
type Marks struct {
	Sections map[int]Mark
	Elements map[diff.IndexPath]Mark
}

// MarksFrom collects the operations of staged that are expressed in
// target coordinates: section and element inserts, move destinations and
// section reloads. Element reloads refer to the source snapshot and are
// not marked.
func MarksFrom[M diff.Differentiable[M], E diff.Differentiable[E]](staged diff.StagedChangeset[M, E]) Marks {
	marks := Marks{Sections: map[int]Mark{}, Elements: map[diff.IndexPath]Mark{}}
	for _, c := range staged {
		for _, s := range c.SectionInserted {
			marks.Sections[s] = MarkInserted
		}
		for _, m := range c.SectionMoved {
			marks.Sections[m.To] = MarkMoved
		}
		for _, s := range c.SectionUpdated {
			if marks.Sections[s] == MarkNone {
				marks.Sections[s] = MarkUpdated
			}
		}
		for _, p := range c.ElementInserted {
			marks.Elements[p] = MarkInserted
		}
		for _, m := range c.ElementMoved {
			marks.Elements[m.To] = MarkMoved
		}
	}
	return marks
}

// Options configures Render.
type Options struct {
	// Width of the image in pixels. Defaults to 360.
	Width int
	Marks Marks
}

const (
	defaultWidth = 360
	headerHeight = 22
	rowHeight    = 20
	padding      = 8
	stripeWidth  = 4
	glyphWidth   = 7
)

var (
	background  = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	headerFill  = color.RGBA{0xEE, 0xEE, 0xF2, 0xFF}
	separator   = color.RGBA{0xDD, 0xDD, 0xE1, 0xFF}
	textColor   = color.RGBA{0x1C, 0x1C, 0x1E, 0xFF}
	headerColor = color.RGBA{0x6C, 0x6C, 0x70, 0xFF}
)

var markColors = map[Mark]color.RGBA{
	MarkInserted: {0x34, 0xC7, 0x59, 0xFF},
	MarkMoved:    {0x0A, 0x84, 0xFF, 0xFF},
	MarkUpdated:  {0xFF, 0x9F, 0x0A, 0xFF},
}

// MarkColor returns the stripe color used for m.
func MarkColor(m Mark) color.RGBA {
	return markColors[m]
}

// Render draws sections as a grouped list: one header row per section
// followed by its element rows.
func Render(sections []diff.ItemSection, opts Options) *image.RGBA {
	width := opts.Width
	if width <= 0 {
		width = defaultWidth
	}
	height := 0
	for _, s := range sections {
		height += headerHeight + len(s.Elements)*rowHeight
	}
	if height == 0 {
		height = rowHeight
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fill(img, img.Bounds(), background)

	y := 0
	for si, s := range sections {
		header := image.Rect(0, y, width, y+headerHeight)
		fill(img, header, headerFill)
		stripe(img, header, opts.Marks.Sections[si])
		label := s.Model.ID
		if s.Model.Value != "" {
			label += ": " + s.Model.Value
		}
		drawText(img, padding+stripeWidth, header, label, headerColor)
		y += headerHeight

		for ei, e := range s.Elements {
			row := image.Rect(0, y, width, y+rowHeight)
			stripe(img, row, opts.Marks.Elements[diff.IndexPath{Section: si, Element: ei}])
			drawText(img, 2*padding+stripeWidth, row, e.String(), textColor)
			fill(img, image.Rect(2*padding, row.Max.Y-1, width, row.Max.Y), separator)
			y += rowHeight
		}
	}
	return img
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

func fill(img draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func stripe(img draw.Image, row image.Rectangle, m Mark) {
	if m == MarkNone {
		return
	}
	fill(img, image.Rect(row.Min.X, row.Min.Y, row.Min.X+stripeWidth, row.Max.Y), markColors[m])
}

// drawText writes s left-aligned at x and vertically centered in row,
// truncating it to the row width.
func drawText(img draw.Image, x int, row image.Rectangle, s string, c color.Color) {
	face := basicfont.Face7x13
	maxChars := (row.Dx() - x - padding) / glyphWidth
	if maxChars <= 0 {
		return
	}
	if r := []rune(s); len(r) > maxChars {
		if maxChars > 3 {
			s = string(r[:maxChars-3]) + "..."
		} else {
			s = string(r[:maxChars])
		}
	}
	baseline := row.Min.Y + (row.Dy()-face.Height)/2 + face.Ascent
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
}
