// Package report builds the SD Bird's Eye View spreadsheet for a site.
//
// Layout and aggregation produce an immutable Grid describing every cell,
// merge and image. A serializer turns the Grid into xlsx bytes. The Generator
// interface ties the two together with chart rendering and the optional
// header logo.
package report

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/DukeRupert/sdview/internal/domain"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/singleflight"
)

// =============================================================================
// Generator Interface
// =============================================================================

// Generator composes a site's report. Generate writes the finished file to
// w and returns its size. Invalid input yields an EINVALID domain error;
// anything else is internal.
type Generator interface {
	Generate(ctx context.Context, data *domain.ReportData, w io.Writer) (int64, error)
	Format() domain.ReportFormat
}

// =============================================================================
// Brand Colors
// =============================================================================

// BrandColors is the report palette as hex RGB.
var BrandColors = struct {
	Navy       string // Title band and section headers
	Highlight  string // SD Progress shading
	TextDark   string // Primary text
	TextMuted  string // Secondary text
	Border     string // Cell borders
	Background string // Column header fill
	White      string
}{
	Navy:       "#1E3A5F",
	Highlight:  "#FDE68A",
	TextDark:   "#1F2937",
	TextMuted:  "#6B7280",
	Border:     "#9CA3AF",
	Background: "#F3F4F6",
	White:      "#FFFFFF",
}

// =============================================================================
// Header Image
// =============================================================================

// Header logo box in pixels, matching the A1:B3 anchor.
const (
	headerMaxWidth  = 135
	headerMaxHeight = 88

	maxHeaderImageBytes = 10 << 20
)

// ImageData is a fetched image before decoding.
type ImageData struct {
	Data        []byte
	ContentType string
}

// ImageDownloader fetches the header logo. A nil result with a nil error
// means there is no logo.
type ImageDownloader interface {
	Download(ctx context.Context, url string) (*ImageData, error)
}

// HTTPImageDownloader fetches images over HTTP. Concurrent downloads of the
// same URL share one request.
type HTTPImageDownloader struct {
	client *http.Client
	group  singleflight.Group
}

// NewHTTPImageDownloader returns a downloader with a 30s request timeout.
func NewHTTPImageDownloader() *HTTPImageDownloader {
	return &HTTPImageDownloader{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Download fetches url. An empty url returns nil, nil.
//
// The shared request is detached from ctx so one caller giving up does not
// fail the others; it stays bounded by the client timeout.
func (d *HTTPImageDownloader) Download(ctx context.Context, url string) (*ImageData, error) {
	if url == "" {
		return nil, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := d.group.DoChan(url, func() (any, error) {
		return d.fetch(shared, url)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*ImageData), nil
	}
}

func (d *HTTPImageDownloader) fetch(ctx context.Context, url string) (*ImageData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download image: unexpected status %d", resp.StatusCode)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(resp.Body, maxHeaderImageBytes)); err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(buf.Bytes())
	}
	return &ImageData{Data: buf.Bytes(), ContentType: ct}, nil
}

// PrepareHeaderImage decodes a downloaded logo, shrinks it to fit the header
// box and re-encodes it as PNG.
func PrepareHeaderImage(data []byte) (*Image, error) {
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode header image: %w", err)
	}

	var img image.Image = src
	b := src.Bounds()
	if b.Dx() > headerMaxWidth || b.Dy() > headerMaxHeight {
		img = imaging.Fit(src, headerMaxWidth, headerMaxHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode header image: %w", err)
	}
	return &Image{
		Name:   "Header",
		PNG:    buf.Bytes(),
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}
