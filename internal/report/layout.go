package report

// PointsPerCM converts centimetres to PDF points.
const PointsPerCM = 72 / 2.54

const (
	galleryRows    = 2
	galleryCols    = 1
	galleryMargin  = 1 * PointsPerCM
	gallerySpacing = 0.5 * PointsPerCM
	cellPadding    = 5.0
)

// Cell is a rectangle on a page, origin at the top-left corner.
type Cell struct {
	X, Y, W, H float64
}

// Grid splits a page into equally sized cells separated by a fixed spacing.
type Grid struct {
	PageW, PageH float64
	Margin       float64
	Spacing      float64
	Rows, Cols   int
}

// GalleryGrid is the two-rows-by-one-column layout of the invoice gallery.
func GalleryGrid(pageW, pageH float64) Grid {
	return Grid{
		PageW:   pageW,
		PageH:   pageH,
		Margin:  galleryMargin,
		Spacing: gallerySpacing,
		Rows:    galleryRows,
		Cols:    galleryCols,
	}
}

// PerPage is the number of cells on one page.
func (g Grid) PerPage() int { return g.Rows * g.Cols }

// CellSize returns the width and height shared by every cell.
func (g Grid) CellSize() (float64, float64) {
	w := (g.PageW - 2*g.Margin - float64(g.Cols-1)*g.Spacing) / float64(g.Cols)
	h := (g.PageH - 2*g.Margin - float64(g.Rows-1)*g.Spacing) / float64(g.Rows)
	return w, h
}

// Cell returns the cell at position, counted row by row from the top-left.
func (g Grid) Cell(position int) Cell {
	w, h := g.CellSize()
	position %= g.PerPage()
	row := position / g.Cols
	col := position % g.Cols
	return Cell{
		X: g.Margin + float64(col)*(w+g.Spacing),
		Y: g.Margin + float64(row)*(h+g.Spacing),
		W: w,
		H: h,
	}
}

// Pages is the number of pages needed for n items.
func (g Grid) Pages(n int) int {
	per := g.PerPage()
	return (n + per - 1) / per
}

// Fit scales an image of imgW x imgH uniformly into the cell less padding on
// every side and centers it. It returns the placement rectangle.
func (c Cell) Fit(imgW, imgH, padding float64) Cell {
	availW := c.W - 2*padding
	availH := c.H - 2*padding
	scale := availW / imgW
	if s := availH / imgH; s < scale {
		scale = s
	}
	w := imgW * scale
	h := imgH * scale
	return Cell{
		X: c.X + (c.W-w)/2,
		Y: c.Y + (c.H-h)/2,
		W: w,
		H: h,
	}
}
