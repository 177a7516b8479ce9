package xml

import (
	"strconv"

	"github.com/beevik/etree"
)

// Picture describes an inline image already stored as a package part.
type Picture struct {
	RelID  string
	Name   string
	ID     int
	Width  int64 // EMU
	Height int64 // EMU
}

// AddPicture appends an inline w:drawing for pic to the run.
func (r *Run) AddPicture(pic Picture) *etree.Element {
	cx, cy := strconv.FormatInt(pic.Width, 10), strconv.FormatInt(pic.Height, 10)
	id := strconv.Itoa(pic.ID)

	drawing := r.el.CreateElement("w:drawing")
	inline := drawing.CreateElement("wp:inline")
	for _, k := range []string{"distT", "distB", "distL", "distR"} {
		inline.CreateAttr(k, "0")
	}
	ext := inline.CreateElement("wp:extent")
	ext.CreateAttr("cx", cx)
	ext.CreateAttr("cy", cy)
	docPr := inline.CreateElement("wp:docPr")
	docPr.CreateAttr("id", id)
	docPr.CreateAttr("name", "Picture "+id)
	locks := inline.CreateElement("wp:cNvGraphicFramePr").CreateElement("a:graphicFrameLocks")
	locks.CreateAttr("xmlns:a", NamespaceA)
	locks.CreateAttr("noChangeAspect", "1")

	graphic := inline.CreateElement("a:graphic")
	graphic.CreateAttr("xmlns:a", NamespaceA)
	data := graphic.CreateElement("a:graphicData")
	data.CreateAttr("uri", NamespacePic)

	pict := data.CreateElement("pic:pic")
	pict.CreateAttr("xmlns:pic", NamespacePic)
	nv := pict.CreateElement("pic:nvPicPr")
	cNvPr := nv.CreateElement("pic:cNvPr")
	cNvPr.CreateAttr("id", "0")
	cNvPr.CreateAttr("name", pic.Name)
	nv.CreateElement("pic:cNvPicPr")

	fill := pict.CreateElement("pic:blipFill")
	fill.CreateElement("a:blip").CreateAttr("r:embed", pic.RelID)
	fill.CreateElement("a:stretch").CreateElement("a:fillRect")

	sp := pict.CreateElement("pic:spPr")
	xfrm := sp.CreateElement("a:xfrm")
	off := xfrm.CreateElement("a:off")
	off.CreateAttr("x", "0")
	off.CreateAttr("y", "0")
	aext := xfrm.CreateElement("a:ext")
	aext.CreateAttr("cx", cx)
	aext.CreateAttr("cy", cy)
	geom := sp.CreateElement("a:prstGeom")
	geom.CreateAttr("prst", "rect")
	geom.CreateElement("a:avLst")
	return drawing
}
