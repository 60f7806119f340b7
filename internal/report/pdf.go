package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/Eissaali11/nuzum/internal/domain"
	"github.com/Eissaali11/nuzum/internal/storage"
)

// =============================================================================
// Palette and Layout Constants
// =============================================================================

// Report color palette.
var (
	colorPrimary  = [3]int{41, 128, 185}
	colorDanger   = [3]int{231, 76, 60}
	colorWarning  = [3]int{243, 156, 18}
	colorSuccess  = [3]int{39, 174, 96}
	colorDark     = [3]int{44, 62, 80}
	colorLightGry = [3]int{236, 240, 241}
)

const (
	pageWidth     = 210.0
	contentLeft   = 15.0
	contentWidth  = 180.0
	halfCellWidth = 95.0

	badgeWidth  = 60.0
	badgeHeight = 10.0

	tileHeight = 50.0

	photoWidth    = 60.0
	photoHeight   = 45.0
	photosPerPage = 6
	galleryTop    = 50.0
	galleryRowGap = 60.0

	fontFamily = "Cairo"
)

// =============================================================================
// Composer
// =============================================================================

// Composer renders accident records into Arabic A4 PDF reports. Attachments
// are read from the object store by key; a missing blob degrades to a
// placeholder instead of failing the whole document.
type Composer struct {
	store          storage.Storage
	fontDir        string
	logoPath       string
	fontsAvailable bool
	logger         *slog.Logger
}

// NewComposer creates a report composer. The Cairo font files are looked up
// under fontDir; when absent the composer still runs on the built-in font,
// with degraded Arabic rendering.
func NewComposer(store storage.Storage, fontDir, logoPath string, logger *slog.Logger) *Composer {
	c := &Composer{
		store:    store,
		fontDir:  fontDir,
		logoPath: logoPath,
		logger:   logger,
	}

	c.fontsAvailable = fileExists(c.regularFont()) && fileExists(c.boldFont())
	if !c.fontsAvailable {
		logger.Warn("report fonts not found, falling back to built-in font", "dir", fontDir)
	}
	return c
}

func (c *Composer) regularFont() string { return filepath.Join(c.fontDir, "Cairo-Regular.ttf") }
func (c *Composer) boldFont() string    { return filepath.Join(c.fontDir, "Cairo-Bold.ttf") }

// FontsAvailable reports whether the Arabic fonts were found at construction.
func (c *Composer) FontsAvailable() bool {
	return c.fontsAvailable
}

// Compose renders the accident into a finished PDF.
func (c *Composer) Compose(ctx context.Context, accident *domain.Accident) ([]byte, error) {
	pdf := c.buildDocument(ctx, accident)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// buildDocument assembles the full document. Split from Compose so tests can
// inspect the page structure before serialization.
func (c *Composer) buildDocument(ctx context.Context, a *domain.Accident) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")

	family := "Helvetica"
	if c.fontsAvailable {
		pdf.AddUTF8Font(fontFamily, "", c.regularFont())
		pdf.AddUTF8Font(fontFamily, "B", c.boldFont())
		family = fontFamily
	}

	pdf.SetHeaderFunc(func() {
		if c.logoPath != "" && fileExists(c.logoPath) {
			pdf.ImageOptions(c.logoPath, 10, 8, 25, 0, false, fpdf.ImageOptions{}, 0, "")
		}
		pdf.SetY(10)
		pdf.SetFont(family, "B", 20)
		pdf.SetTextColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
		pdf.CellFormat(0, 12, ar("تقرير حادث مركبة"), "", 1, "C", false, 0, "")

		pdf.SetDrawColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
		pdf.SetLineWidth(0.5)
		pdf.Line(contentLeft, 30, pageWidth-contentLeft, 30)
		pdf.SetY(35)
	})

	printedAt := time.Now().Format("2006-01-02 15:04")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(family, "", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, ar(fmt.Sprintf("صفحة %d/{nb}", pdf.PageNo())), "", 0, "C", false, 0, "")
		pdf.SetX(contentLeft)
		pdf.CellFormat(0, 10, "printed at "+printedAt, "", 0, "L", false, 0, "")
	})

	c.addSummaryPage(pdf, family, a)
	c.addDocumentsPage(ctx, pdf, family, a)
	c.addPhotoPages(ctx, pdf, family, a)
	if a.IsReviewed() {
		c.addReviewPage(pdf, family, a)
	}

	return pdf
}

// =============================================================================
// Page 1: Summary
// =============================================================================

func (c *Composer) addSummaryPage(pdf *fpdf.Fpdf, family string, a *domain.Accident) {
	pdf.AddPage()

	pdf.SetFont(family, "", 11)
	pdf.SetTextColor(colorDark[0], colorDark[1], colorDark[2])
	pdf.CellFormat(0, 8, ar(fmt.Sprintf("رقم التقرير: %d", a.ID)), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 8, ar("حالة المراجعة:"), "", 1, "R", false, 0, "")

	c.addStatusBadge(pdf, family, a.ReviewStatus)
	pdf.Ln(6)

	c.addSectionHeader(pdf, family, "معلومات المركبة")
	c.addLabelValue(pdf, family, "رقم اللوحة", a.VehiclePlateNumber)
	c.addLabelValue(pdf, family, "رقم المركبة", fmt.Sprintf("%d", a.VehicleID))
	pdf.Ln(4)

	c.addSectionHeader(pdf, family, "معلومات السائق")
	c.addLabelValue(pdf, family, "اسم السائق", a.DriverName)
	c.addLabelValue(pdf, family, "رقم الجوال", a.DriverPhone)
	pdf.Ln(4)

	c.addSectionHeader(pdf, family, "تفاصيل الحادث")
	c.addLabelValue(pdf, family, "تاريخ الحادث", a.AccidentDate.Format("2006-01-02"))
	if a.AccidentTime != "" {
		c.addLabelValue(pdf, family, "وقت الحادث", a.AccidentTime)
	}
	c.addLabelValue(pdf, family, "الموقع", a.Location)
	severity := a.Severity
	if severity == "" {
		severity = "متوسط"
	}
	c.addLabelValue(pdf, family, "شدة الحادث", severity)
	c.addLabelValue(pdf, family, "حالة المركبة", a.VehicleCondition)

	if a.Description != "" {
		pdf.SetFont(family, "B", 11)
		pdf.CellFormat(0, 8, ar("وصف الحادث:"), "", 1, "R", false, 0, "")
		pdf.SetFont(family, "", 10)
		pdf.MultiCell(contentWidth, 6, ar(a.Description), "", "R", false)
	}

	if a.PoliceReport {
		c.addLabelValue(pdf, family, "بلاغ الشرطة", "نعم")
		if a.PoliceReportNumber != "" {
			c.addLabelValue(pdf, family, "رقم البلاغ", a.PoliceReportNumber)
		}
	}
}

// addStatusBadge draws the filled review-status rectangle with a centered
// white label.
func (c *Composer) addStatusBadge(pdf *fpdf.Fpdf, family string, status domain.ReviewStatus) {
	color, label := statusStyle(status)

	x := (pageWidth - badgeWidth) / 2
	y := pdf.GetY()

	pdf.SetFillColor(color[0], color[1], color[2])
	pdf.Rect(x, y, badgeWidth, badgeHeight, "F")

	pdf.SetXY(x, y)
	pdf.SetFont(family, "B", 12)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(badgeWidth, badgeHeight, ar(label), "", 1, "C", false, 0, "")
	pdf.SetTextColor(colorDark[0], colorDark[1], colorDark[2])
}

func statusStyle(status domain.ReviewStatus) ([3]int, string) {
	switch status {
	case domain.ReviewStatusUnderReview:
		return colorPrimary, "قيد المراجعة"
	case domain.ReviewStatusApproved:
		return colorSuccess, "معتمد"
	case domain.ReviewStatusRejected:
		return colorDanger, "مرفوض"
	default:
		return colorWarning, "قيد الانتظار"
	}
}

// =============================================================================
// Page 2: Documents
// =============================================================================

func (c *Composer) addDocumentsPage(ctx context.Context, pdf *fpdf.Fpdf, family string, a *domain.Accident) {
	pdf.AddPage()
	c.addSectionHeader(pdf, family, "وثائق الحادث")

	y := pdf.GetY() + 4
	c.addDocumentTile(ctx, pdf, family, contentLeft, y, 85, a.DriverIDImage, "هوية السائق")
	c.addDocumentTile(ctx, pdf, family, 110, y, 85, a.DriverLicenseImage, "رخصة القيادة")

	y += tileHeight + 14
	c.addDocumentTile(ctx, pdf, family, contentLeft, y, contentWidth, a.AccidentReportFile, "تقرير الحادث")
}

// addDocumentTile renders one attachment slot: an inset image, a linked PDF
// marker, or a gray placeholder when the key is empty.
func (c *Composer) addDocumentTile(ctx context.Context, pdf *fpdf.Fpdf, family string, x, y, w float64, key, label string) {
	pdf.SetXY(x, y)
	pdf.SetFont(family, "B", 10)
	pdf.SetTextColor(colorDark[0], colorDark[1], colorDark[2])
	pdf.CellFormat(w, 6, ar(label), "", 1, "C", false, 0, "")
	y += 6

	if key == "" {
		pdf.SetDrawColor(colorLightGry[0], colorLightGry[1], colorLightGry[2])
		pdf.Rect(x, y, w, tileHeight, "D")
		pdf.SetXY(x, y+tileHeight/2-4)
		pdf.SetFont(family, "", 10)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(w, 8, ar("غير متوفر"), "", 1, "C", false, 0, "")
		return
	}

	if storage.IsPDFKey(key) {
		pdf.SetDrawColor(colorDanger[0], colorDanger[1], colorDanger[2])
		pdf.SetFillColor(252, 235, 233)
		pdf.Rect(x, y, w, tileHeight, "FD")

		// Sheet-of-paper glyph
		gx, gy := x+w/2-6, y+6
		pdf.SetFillColor(255, 255, 255)
		pdf.Rect(gx, gy, 12, 16, "FD")

		pdf.SetXY(x, y+26)
		pdf.SetFont(family, "B", 10)
		pdf.SetTextColor(colorDanger[0], colorDanger[1], colorDanger[2])
		pdf.CellFormat(w, 6, ar("ملف PDF مرفق"), "", 1, "C", false, 0, "")

		pdf.SetX(x)
		pdf.SetFont(family, "", 8)
		pdf.SetTextColor(colorDark[0], colorDark[1], colorDark[2])
		pdf.CellFormat(w, 5, truncate(storage.Filename(key), 30), "", 1, "C", false, 0, "")

		pdf.LinkString(x, y, w, tileHeight, "/static/"+key)
		return
	}

	pdf.SetDrawColor(colorLightGry[0], colorLightGry[1], colorLightGry[2])
	pdf.Rect(x, y, w, tileHeight, "D")
	c.placeImage(ctx, pdf, key, x+2, y+2, w-4, tileHeight-4)
}

// =============================================================================
// Photo Gallery Pages
// =============================================================================

func (c *Composer) addPhotoPages(ctx context.Context, pdf *fpdf.Fpdf, family string, a *domain.Accident) {
	for i, photo := range a.Photos {
		if i%photosPerPage == 0 {
			pdf.AddPage()
			c.addSectionHeader(pdf, family, "صور الحادث")
		}

		x := contentLeft
		if i%2 == 1 {
			x = 110
		}
		row := (i / 2) % 3
		y := galleryTop + float64(row)*galleryRowGap

		pdf.SetDrawColor(colorLightGry[0], colorLightGry[1], colorLightGry[2])
		pdf.Rect(x, y, photoWidth, photoHeight, "D")
		c.placeImage(ctx, pdf, photo.ImagePath, x, y, photoWidth, photoHeight)

		caption := photo.Caption
		if caption == "" {
			caption = fmt.Sprintf("صورة %d", i+1)
		}
		pdf.SetXY(x, y+photoHeight+1)
		pdf.SetFont(family, "", 9)
		pdf.SetTextColor(colorDark[0], colorDark[1], colorDark[2])
		pdf.CellFormat(photoWidth, 5, ar(caption), "", 1, "C", false, 0, "")
	}
}

// =============================================================================
// Review Page
// =============================================================================

func (c *Composer) addReviewPage(pdf *fpdf.Fpdf, family string, a *domain.Accident) {
	pdf.AddPage()
	c.addSectionHeader(pdf, family, "معلومات المراجعة")

	c.addLabelValue(pdf, family, "تاريخ المراجعة", a.ReviewedAt.Format("2006-01-02 15:04"))
	c.addLabelValue(pdf, family, "نسبة التحمل", fmt.Sprintf("%v%%", a.LiabilityPercentage))
	c.addLabelValue(pdf, family, "مبلغ الخصم", ar(fmt.Sprintf("%v ريال", a.DeductionAmount)))

	if a.ReviewerNotes != "" {
		pdf.SetFont(family, "B", 11)
		pdf.CellFormat(0, 8, ar("ملاحظات المراجع:"), "", 1, "R", false, 0, "")
		pdf.SetFont(family, "", 10)
		pdf.MultiCell(contentWidth, 6, ar(a.ReviewerNotes), "", "R", false)
	}
}

// =============================================================================
// Shared Helpers
// =============================================================================

// addSectionHeader draws the full-width primary bar with a white bold title.
func (c *Composer) addSectionHeader(pdf *fpdf.Fpdf, family, title string) {
	pdf.SetX(contentLeft)
	pdf.SetFillColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont(family, "B", 14)
	pdf.CellFormat(contentWidth, 10, ar(title), "", 1, "R", true, 0, "")
	pdf.SetTextColor(colorDark[0], colorDark[1], colorDark[2])
	pdf.Ln(2)
}

// addLabelValue draws one two-column field row: value on the left, filled
// bold label on the right.
func (c *Composer) addLabelValue(pdf *fpdf.Fpdf, family, label, value string) {
	pdf.SetX(contentLeft)

	pdf.SetFont(family, "", 10)
	pdf.CellFormat(halfCellWidth-5, 8, ar(value), "1", 0, "R", false, 0, "")

	pdf.SetFont(family, "B", 10)
	pdf.SetFillColor(colorLightGry[0], colorLightGry[1], colorLightGry[2])
	pdf.CellFormat(halfCellWidth-5, 8, ar(label), "1", 1, "R", true, 0, "")
}

// placeImage fetches a stored image and renders it into the given box. A
// missing or undecodable blob leaves the box empty.
func (c *Composer) placeImage(ctx context.Context, pdf *fpdf.Fpdf, key string, x, y, w, h float64) {
	data := storage.Fetch(ctx, c.store, key)
	if data == nil {
		c.logger.Warn("report attachment missing", "key", key)
		return
	}

	imageType := sniffImageType(data)
	if imageType == "" {
		c.logger.Warn("report attachment has unsupported format", "key", key)
		return
	}

	opts := fpdf.ImageOptions{ImageType: imageType}
	pdf.RegisterImageOptionsReader(key, opts, bytes.NewReader(data))
	pdf.ImageOptions(key, x, y, w, h, false, opts, 0, "")
}

// sniffImageType maps sniffed content types onto fpdf image type tags.
func sniffImageType(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return "JPG"
	case "image/png":
		return "PNG"
	case "image/gif":
		return "GIF"
	default:
		return ""
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
