package scanning

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"net/http"
)

type fakeDocument struct {
	pages     []string
	textErr   error
	renderErr error
	rendered  []float64
	closed    bool
}

func (d *fakeDocument) NumPage() int { return len(d.pages) }

func (d *fakeDocument) Text(page int) (string, error) {
	if d.textErr != nil {
		return "", d.textErr
	}
	return d.pages[page], nil
}

func (d *fakeDocument) Render(page int, dpi float64) (image.Image, error) {
	if d.renderErr != nil {
		return nil, d.renderErr
	}
	d.rendered = append(d.rendered, dpi)
	img := image.NewRGBA(image.Rect(0, 0, 100, 200))
	img.Set(0, 0, color.White)
	return img, nil
}

func (d *fakeDocument) Close() error {
	d.closed = true
	return nil
}

type fakeOpener struct {
	doc *fakeDocument
	err error
}

func (o *fakeOpener) Open(data []byte) (Document, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.doc, nil
}

type fakeRecognizer struct {
	text   string
	err    error
	calls  int
	bounds []image.Rectangle
}

func (r *fakeRecognizer) Recognize(ctx context.Context, img image.Image) (string, error) {
	r.calls++
	r.bounds = append(r.bounds, img.Bounds())
	if r.err != nil {
		return "", r.err
	}
	return r.text, nil
}

func (r *fakeRecognizer) Close() error { return nil }

var errFake = errors.New("boom")

func jsonDecode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
