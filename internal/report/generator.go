package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/DukeRupert/sdview/internal/chart"
	"github.com/DukeRupert/sdview/internal/domain"
)

// =============================================================================
// XLSX Generator
// =============================================================================

// XLSXGenerator composes the SD Bird's Eye View workbook.
type XLSXGenerator struct {
	images ImageDownloader
	logger *slog.Logger
}

// NewXLSXGenerator creates a generator. images may be nil, in which case the
// header logo is never embedded.
func NewXLSXGenerator(images ImageDownloader, logger *slog.Logger) *XLSXGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXGenerator{images: images, logger: logger}
}

// Format returns the output format of this generator.
func (g *XLSXGenerator) Format() domain.ReportFormat {
	return domain.ReportFormatXLSX
}

// Generate builds the workbook and writes it to w. Nothing is written to w
// unless the whole workbook was produced.
func (g *XLSXGenerator) Generate(ctx context.Context, data *domain.ReportData, w io.Writer) (int64, error) {
	grid, err := g.Compose(ctx, data)
	if err != nil {
		return 0, err
	}

	out, err := WriteXLSX(grid, WorkbookProps{
		Title:   Title(data.SiteName),
		Creator: "sdview",
		Created: data.ReportDate,
	})
	if err != nil {
		return 0, fmt.Errorf("xlsx output error: %w", err)
	}

	n, err := w.Write(out)
	return int64(n), err
}

// Compose renders the charts, fetches the optional header logo and lays out
// the grid.
func (g *XLSXGenerator) Compose(ctx context.Context, data *domain.ReportData) (*Grid, error) {
	if data == nil {
		return nil, domain.Invalid("XLSXGenerator.Compose", "report data is required")
	}

	shifts := data.Manpower.DateSpecificData.ShiftComparison
	pie, err := chart.RenderShiftPie(shifts.DayShift, shifts.NightShift)
	if err != nil {
		return nil, fmt.Errorf("render shift chart: %w", err)
	}

	bars, err := chart.RenderStatusBars(chart.GroupByType(data.Site.Devices))
	if err != nil {
		return nil, fmt.Errorf("render status chart: %w", err)
	}

	assets := Assets{
		Header: g.headerImage(ctx, data.HeaderImageURL),
		Pie:    Image{Name: "Shift Distribution", PNG: pie, Width: chart.PieWidth, Height: chart.PieHeight},
		Bars:   Image{Name: "Device Status by Type", PNG: bars, Width: chart.BarsWidth, Height: chart.BarsHeight},
	}

	grid, err := BuildLayout(data, assets)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}

	g.logger.Debug("report composed",
		"site_id", data.SiteID,
		"devices", len(data.Site.Devices),
		"sd_progress", FormatPercent(SDProgress(data.Site)),
		"header_image", assets.Header != nil,
	)
	return grid, nil
}

// headerImage returns the prepared header logo, or nil when there is none or
// it cannot be fetched.
func (g *XLSXGenerator) headerImage(ctx context.Context, url string) *Image {
	if url == "" || g.images == nil {
		return nil
	}

	data, err := g.images.Download(ctx, url)
	if err != nil {
		g.logger.Warn("header image unavailable", "url", url, "error", err)
		return nil
	}
	if data == nil {
		return nil
	}

	img, err := PrepareHeaderImage(data.Data)
	if err != nil {
		g.logger.Warn("header image unusable", "url", url, "error", err)
		return nil
	}
	return img
}
