package mergefield

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/benjaminschreck/go-mergefield/pkg/mergefield/xml"
)

// Image is a value rendered as an inline picture scaled to the content
// width of the document's last section.
type Image struct {
	Image image.Image
	// Name is stored as the picture's non-visual name.
	Name string
	// Caption, when set, adds a numbered caption paragraph after the image.
	Caption string
}

// ImageProvider maps the src of an <img> tag to an image. A provider that
// does not handle src returns nil and no error.
type ImageProvider func(src string) (*Image, error)

// FileImages resolves sources as paths below dir. Sources cannot escape dir.
func FileImages(dir string) ImageProvider {
	return func(src string) (*Image, error) {
		if src == "" || strings.HasPrefix(src, "data:") || strings.Contains(src, "://") {
			return nil, nil
		}
		path := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+src)))
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		img, err := decodeImage(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src, err)
		}
		return &Image{Image: img, Name: filepath.Base(path)}, nil
	}
}

// DataURIImages decodes base64 data URIs such as data:image/png;base64,....
func DataURIImages() ImageProvider {
	return func(src string) (*Image, error) {
		if !strings.HasPrefix(src, "data:") {
			return nil, nil
		}
		mimeType, data, err := parseDataURI(src)
		if err != nil {
			return nil, err
		}
		img, err := decodeImage(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", mimeType, err)
		}
		return &Image{Image: img, Name: "image" + imageExtension(mimeType)}, nil
	}
}

// parseDataURI returns the MIME type and decoded payload of a data URI.
func parseDataURI(dataURI string) (string, []byte, error) {
	if !strings.HasPrefix(dataURI, "data:") {
		return "", nil, fmt.Errorf("invalid data URI format")
	}
	metadata, payload, ok := strings.Cut(dataURI[5:], ",")
	if !ok {
		return "", nil, fmt.Errorf("invalid data URI format")
	}
	if payload == "" {
		return "", nil, fmt.Errorf("no image data")
	}
	if !strings.HasSuffix(metadata, ";base64") {
		return "", nil, fmt.Errorf("missing base64 marker")
	}

	mimeType := strings.TrimSuffix(metadata, ";base64")
	if imageExtension(mimeType) == "" {
		return "", nil, fmt.Errorf("unsupported image type: %s", mimeType)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 data: %w", err)
	}
	return mimeType, data, nil
}

func imageExtension(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/bmp":
		return ".bmp"
	case "image/tiff":
		return ".tiff"
	case "image/webp":
		return ".webp"
	}
	return ""
}

func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// lookupImage asks the providers in order. Provider errors are logged and
// the next provider is tried.
func (r *Renderer) lookupImage(src string) *Image {
	for _, provider := range r.providers {
		img, err := provider(src)
		if err != nil {
			r.logger.WithField("src", truncate(src, 64)).Warn("image provider failed: %v", err)
			continue
		}
		if img != nil {
			return img
		}
	}
	return nil
}

// image embeds img in run as a PNG part and returns the last paragraph it
// wrote to: the run's paragraph, or the caption after it.
func (r *Renderer) image(run *xml.Run, img *Image) (*xml.Paragraph, error) {
	if img == nil || img.Image == nil {
		return run.Paragraph(), nil
	}
	if r.doc.Media == nil {
		return nil, NewDocumentError("embed image", img.Name, errors.New("document has no media store"))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img.Image); err != nil {
		return nil, NewDocumentError("encode image", img.Name, err)
	}
	relID, err := r.doc.Media.AddImage(buf.Bytes(), ".png")
	if err != nil {
		return nil, NewDocumentError("store image", img.Name, err)
	}

	bounds := img.Image.Bounds()
	width := r.doc.LastSection().ContentWidth()
	var height int64
	if bounds.Dx() > 0 {
		height = width * int64(bounds.Dy()) / int64(bounds.Dx())
	}

	name := img.Name
	if name == "" {
		name = relID + ".png"
	}
	r.doc.EnsureNamespace("r", xml.NamespaceR)
	r.doc.EnsureNamespace("wp", xml.NamespaceWP)
	run.AddPicture(xml.Picture{
		RelID:  relID,
		Name:   name,
		ID:     r.doc.NextDrawingID(),
		Width:  width,
		Height: height,
	})

	p := run.Paragraph()
	if img.Caption == "" || p == nil {
		return p, nil
	}
	r.captions[r.sequence]++
	return p.InsertCaptionAfter(img.Caption, r.sequence, r.captions[r.sequence]), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
