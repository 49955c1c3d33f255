package report

import (
	"github.com/DukeRupert/sdview/internal/domain"
)

// SheetName is the name of the single worksheet in the export.
const SheetName = "SD Report"

// Grid bounds.
const (
	gridRows = 60
	gridCols = 12
)

// Column numbers (A = 1).
const (
	colA = iota + 1
	colB
	colC
	colD
	colE
	colF
	colG
	colH
	colI
	colJ
	colK
	colL
)

// Fixed row positions.
const (
	rowTitleTop        = 1
	rowTitleBottom     = 3
	rowProgress        = 5
	rowTableSection    = 7
	rowTableHeader     = 8
	rowTableFirst      = 9
	rowManpowerTotal   = rowTableFirst + ManpowerRowLimit
	rowPlanSection     = 24
	rowPlanFirst       = 25
	planRows           = 5
	rowSafetySection   = 31
	rowSafetyHeader    = 32
	rowSafetyFirst     = 33
	rowIncidentReport  = rowSafetyFirst + 5
	rowChartTitle      = 40
	rowChartTop        = 41
	rowChartBottom     = 58
	defaultRowHeightPt = 15.0
)

// Anchors of the embedded images.
var (
	HeaderAnchor = R(rowTitleTop, colA, rowTitleBottom, colB)
	PieAnchor    = R(rowChartTop, colA, rowChartBottom, colF)
	BarsAnchor   = R(rowChartTop, colG, rowChartBottom, colL)
)

var columnWidths = map[int]float64{
	colA: 7, colB: 12, colC: 12, colD: 14, colE: 14, colF: 14,
	colG: 4, colH: 7, colI: 12, colJ: 12, colK: 12, colL: 12,
}

// Styles used by the layout.
var (
	styleTitle = Style{
		Bold: true, FontSize: 18, FontColor: BrandColors.White, Fill: BrandColors.Navy,
		Align: HAlignCenter, Middle: true,
	}
	styleDate = Style{
		Bold: true, FontColor: BrandColors.TextDark, Align: HAlignRight, Middle: true,
	}
	styleLabel = Style{
		Bold: true, Fill: BrandColors.Background, Align: HAlignLeft, Middle: true, Border: true,
	}
	styleProgress = Style{
		Bold: true, FontSize: 12, Fill: BrandColors.Highlight, Align: HAlignCenter, Middle: true,
		Border: true, NumFmt: "0.0%",
	}
	styleSection = Style{
		Bold: true, FontSize: 12, FontColor: BrandColors.White, Fill: BrandColors.Navy,
		Align: HAlignCenter, Middle: true, Border: true,
	}
	styleHeader = Style{
		Bold: true, Fill: BrandColors.Background, Align: HAlignCenter, Middle: true, Border: true,
	}
	styleText = Style{
		Align: HAlignLeft, Middle: true, Wrap: true, Border: true,
	}
	styleNumber = Style{
		Align: HAlignCenter, Middle: true, Border: true,
	}
	styleTotal = Style{
		Bold: true, Fill: BrandColors.Background, Align: HAlignCenter, Middle: true, Border: true,
	}
	styleChartTitle = Style{
		Bold: true, Align: HAlignCenter, Middle: true,
	}
)

// Assets are the images placed on the sheet. Header is optional.
type Assets struct {
	Header *Image
	Pie    Image
	Bars   Image
}

// Title returns the title band text for a site.
func Title(siteName string) string {
	return "SD Bird's Eye View -  " + siteName
}

// FormatReportDate renders the report date as M/D/YYYY.
func FormatReportDate(data *domain.ReportData) string {
	return data.ReportDate.Format("1/2/2006")
}

// BuildLayout lays out the report for data on a fresh grid.
func BuildLayout(data *domain.ReportData, assets Assets) (*Grid, error) {
	b := NewGridBuilder(SheetName, gridRows, gridCols)
	b.HideGridLines()

	for col, w := range columnWidths {
		b.ColWidth(col, w)
	}
	for row := rowTitleTop; row <= rowTitleBottom; row++ {
		b.RowHeight(row, 22)
	}
	b.RowHeight(rowProgress, 20)
	for row := rowChartTop; row <= rowChartBottom; row++ {
		b.RowHeight(row, defaultRowHeightPt)
	}

	layoutHeader(b, data, assets.Header)
	layoutProgress(b, data)
	layoutConstraints(b, data)
	layoutManpower(b, data)
	layoutPlan(b)
	layoutSafety(b, data)
	layoutCharts(b, assets)

	return b.Build()
}

func layoutHeader(b *GridBuilder, data *domain.ReportData, header *Image) {
	if header != nil {
		b.Image(HeaderAnchor, *header)
	}
	b.Merge(R(rowTitleTop, colC, rowTitleBottom, colJ), Title(data.SiteName), styleTitle)
	b.Merge(R(rowTitleTop, colK, rowTitleTop, colL), FormatReportDate(data), styleDate)
}

func layoutProgress(b *GridBuilder, data *domain.ReportData) {
	b.Merge(R(rowProgress, colA, rowProgress, colB), "SD Progress", styleLabel)
	b.Set(rowProgress, colC, SDProgress(data.Site), styleProgress)
}

func layoutConstraints(b *GridBuilder, data *domain.ReportData) {
	b.Merge(R(rowTableSection, colA, rowTableSection, colF), "Constraints", styleSection)
	b.Set(rowTableHeader, colA, "S.No", styleHeader)
	b.Merge(R(rowTableHeader, colB, rowTableHeader, colC), "Tag", styleHeader)
	b.Merge(R(rowTableHeader, colD, rowTableHeader, colF), "Comment", styleHeader)

	rows := ConstraintRows(data.Site.Devices, ConstraintRowLimit)
	for i := 0; i < ConstraintRowLimit; i++ {
		row := rowTableFirst + i
		var sno, tag, comment any
		if i < len(rows) {
			sno, tag, comment = i+1, rows[i].Tag, rows[i].Comment
		}
		b.Set(row, colA, sno, styleNumber)
		b.Merge(R(row, colB, row, colC), tag, styleText)
		b.Merge(R(row, colD, row, colF), comment, styleText)
	}
}

func layoutManpower(b *GridBuilder, data *domain.ReportData) {
	entries := data.Manpower.DateSpecificData.DesignationData

	b.Merge(R(rowTableSection, colH, rowTableSection, colL), "Manpower", styleSection)
	b.Set(rowTableHeader, colH, "S.No", styleHeader)
	b.Merge(R(rowTableHeader, colI, rowTableHeader, colK), "Designation", styleHeader)
	b.Set(rowTableHeader, colL, "Count", styleHeader)

	rows := ManpowerRows(entries, ManpowerRowLimit)
	for i := 0; i < ManpowerRowLimit; i++ {
		row := rowTableFirst + i
		var sno, name, count any
		if i < len(rows) {
			sno, name, count = i+1, rows[i].Designation, rows[i].Count
		}
		b.Set(row, colH, sno, styleNumber)
		b.Merge(R(row, colI, row, colK), name, styleText)
		b.Set(row, colL, count, styleNumber)
	}

	b.Set(rowManpowerTotal, colH, nil, styleTotal)
	b.Merge(R(rowManpowerTotal, colI, rowManpowerTotal, colK), "Total", styleTotal)
	b.Set(rowManpowerTotal, colL, TotalManpower(entries), styleTotal)
}

// layoutPlan reserves bordered, empty rows that are filled in by hand after
// export.
func layoutPlan(b *GridBuilder) {
	b.Merge(R(rowPlanSection, colA, rowPlanSection, colF), "Progress Highlights", styleSection)
	b.Merge(R(rowPlanSection, colH, rowPlanSection, colL), "Look-Ahead Plan", styleSection)
	for i := 0; i < planRows; i++ {
		row := rowPlanFirst + i
		b.Set(row, colA, nil, styleNumber)
		b.Merge(R(row, colB, row, colF), nil, styleText)
		b.Set(row, colH, nil, styleNumber)
		b.Merge(R(row, colI, row, colL), nil, styleText)
	}
}

func layoutSafety(b *GridBuilder, data *domain.ReportData) {
	b.Merge(R(rowSafetySection, colA, rowSafetySection, colL), "Safety", styleSection)
	b.Merge(R(rowSafetyHeader, colA, rowSafetyHeader, colC), "TBT Topic", styleHeader)
	b.Merge(R(rowSafetyHeader, colD, rowSafetyHeader, colF), "Observation", styleHeader)
	b.Merge(R(rowSafetyHeader, colH, rowSafetyHeader, colK), "Safety Record", styleHeader)
	b.Set(rowSafetyHeader, colL, "Count", styleHeader)

	for i, r := range TBTRows(data.TBT) {
		row := rowSafetyFirst + i
		b.Merge(R(row, colA, row, colC), r.Topic, styleLabel)
		b.Merge(R(row, colD, row, colF), r.Observation, styleText)
	}
	for i, r := range SafetyRows(data.Safety) {
		row := rowSafetyFirst + i
		b.Merge(R(row, colH, row, colK), r.Label, styleLabel)
		b.Set(row, colL, r.Count, styleNumber)
	}
	b.Merge(R(rowIncidentReport, colH, rowIncidentReport, colK), "Incident Report", styleLabel)
	b.Set(rowIncidentReport, colL, IncidentReport(data.Safety), styleNumber)
}

func layoutCharts(b *GridBuilder, assets Assets) {
	b.Merge(R(rowChartTitle, colA, rowChartTitle, colF), "Shift Distribution", styleChartTitle)
	b.Merge(R(rowChartTitle, colG, rowChartTitle, colL), "Device Status by Type", styleChartTitle)
	b.Image(PieAnchor, assets.Pie)
	b.Image(BarsAnchor, assets.Bars)
}
