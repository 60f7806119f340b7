package report

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eissaali11/nuzum/internal/domain"
	"github.com/Eissaali11/nuzum/internal/storage"
)

// memStore serves pre-seeded blobs for attachment fetches.
type memStore struct {
	objects map[string][]byte
}

func (m *memStore) Put(_ context.Context, key string, data io.Reader, _ storage.PutOptions) error {
	b, _ := io.ReadAll(data)
	m.objects[key] = b
	return nil
}

func (m *memStore) Get(_ context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	b, ok := m.objects[key]
	if !ok {
		return nil, storage.ObjectInfo{}, &storage.StorageError{Op: "get", Key: key, Err: storage.ErrNotFound}
	}
	return io.NopCloser(bytes.NewReader(b)), storage.ObjectInfo{Key: key, Size: int64(len(b))}, nil
}

func (m *memStore) Delete(_ context.Context, key string) error { return nil }

func (m *memStore) List(_ context.Context, _ string) ([]string, error) { return nil, nil }

func (m *memStore) URL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "http://store.test/" + key, nil
}

func (m *memStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.objects[key]
	return ok, nil
}

func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 80, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 80; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG))
	return buf.Bytes()
}

func testComposer(t *testing.T, store storage.Storage) *Composer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	// Fonts directory intentionally empty, the composer must still run on the
	// built-in fallback font.
	return NewComposer(store, t.TempDir(), "", logger)
}

func testAccident(t *testing.T, photos int, reviewed bool) (*domain.Accident, *memStore) {
	t.Helper()
	store := &memStore{objects: make(map[string][]byte)}
	jpeg := testJPEG(t)

	a := &domain.Accident{
		ID:                 12,
		VehicleID:          3,
		VehiclePlateNumber: "أ ب ج 1234",
		DriverName:         "أحمد السالم",
		DriverPhone:        "0501234567",
		AccidentDate:       time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		AccidentTime:       "14:30",
		Location:           "طريق الملك فهد",
		VehicleCondition:   "أضرار في المقدمة",
		Description:        "اصطدام خلفي أثناء التوقف عند الإشارة",
		PoliceReport:       true,
		PoliceReportNumber: "RPT-5512",
		DriverIDImage:      "accidents/12/id.jpg",
		DriverLicenseImage: "accidents/12/license.jpg",
		AccidentReportFile: "accidents/12/police_report.pdf",
		ReviewStatus:       domain.ReviewStatusPending,
	}
	store.objects[a.DriverIDImage] = jpeg
	store.objects[a.DriverLicenseImage] = jpeg
	store.objects[a.AccidentReportFile] = []byte("%PDF-1.4 fake")

	for i := 0; i < photos; i++ {
		key := storage.Join(storage.AccidentsFolder, "12/photo"+string(rune('a'+i))+".jpg")
		store.objects[key] = jpeg
		a.Photos = append(a.Photos, domain.AccidentPhoto{ImagePath: key})
	}

	if reviewed {
		at := time.Date(2025, 3, 20, 10, 0, 0, 0, time.UTC)
		a.ReviewStatus = domain.ReviewStatusApproved
		a.ReviewedAt = &at
		a.ReviewerNotes = "تتحمل الشركة نصف قيمة الإصلاح"
		a.LiabilityPercentage = 50
		a.DeductionAmount = 1500
	}
	return a, store
}

func TestCompose_PageCount(t *testing.T) {
	tests := []struct {
		name      string
		photos    int
		reviewed  bool
		wantPages int
	}{
		{"no photos, not reviewed", 0, false, 2},
		{"one photo", 1, false, 3},
		{"full gallery page", 6, false, 3},
		{"gallery spills over", 7, false, 4},
		{"reviewed adds a page", 0, true, 3},
		{"seven photos reviewed", 7, true, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accident, store := testAccident(t, tt.photos, tt.reviewed)
			composer := testComposer(t, store)

			pdf := composer.buildDocument(context.Background(), accident)
			require.NoError(t, pdf.Error())
			assert.Equal(t, tt.wantPages, pdf.PageCount())
		})
	}
}

func TestCompose_ProducesValidPDF(t *testing.T) {
	accident, store := testAccident(t, 3, true)
	composer := testComposer(t, store)

	out, err := composer.Compose(context.Background(), accident)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.False(t, composer.FontsAvailable())
}

func TestCompose_SurvivesMissingAttachments(t *testing.T) {
	accident, _ := testAccident(t, 2, false)
	// Empty store: every attachment fetch misses
	store := &memStore{objects: make(map[string][]byte)}
	composer := testComposer(t, store)

	out, err := composer.Compose(context.Background(), accident)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestSniffImageType(t *testing.T) {
	assert.Equal(t, "JPG", sniffImageType(testJPEG(t)))
	assert.Equal(t, "", sniffImageType([]byte("plain text")))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short.pdf", truncate("short.pdf", 30))
	long := strings.Repeat("x", 40)
	assert.Len(t, truncate(long, 30), 30)
}
