package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eissaali11/nuzum/internal/domain"
	"github.com/Eissaali11/nuzum/internal/media"
	"github.com/Eissaali11/nuzum/internal/storage"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeVehicleRepo struct {
	vehicles map[int64]domain.Vehicle
}

func (f *fakeVehicleRepo) ListActiveVehicles(_ context.Context) ([]domain.Vehicle, error) {
	var out []domain.Vehicle
	for _, v := range f.vehicles {
		if v.IsActive() {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVehicleRepo) GetVehicleByID(_ context.Context, id int64) (*domain.Vehicle, error) {
	v, ok := f.vehicles[id]
	if !ok {
		return nil, domain.NotFound("vehicle.get", "vehicle", strconv.FormatInt(id, 10))
	}
	return &v, nil
}

type fakeCheckRepo struct {
	mu         sync.Mutex
	checks     map[int64]*domain.SafetyCheck
	images     map[int64]*domain.SafetyImage
	nextID     int64
	failInsert bool
}

func newFakeCheckRepo() *fakeCheckRepo {
	return &fakeCheckRepo{
		checks: make(map[int64]*domain.SafetyCheck),
		images: make(map[int64]*domain.SafetyImage),
	}
}

func (f *fakeCheckRepo) CreateCheck(_ context.Context, check *domain.SafetyCheck) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	check.ID = f.nextID
	cp := *check
	f.checks[check.ID] = &cp
	return nil
}

func (f *fakeCheckRepo) GetCheckByID(_ context.Context, id int64) (*domain.SafetyCheck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.checks[id]
	if !ok {
		return nil, domain.NotFound("check.get", "safety check", strconv.FormatInt(id, 10))
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCheckRepo) UpdateCheckStatus(_ context.Context, check *domain.SafetyCheck) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.checks[check.ID]; !ok {
		return domain.NotFound("check.update_status", "safety check", strconv.FormatInt(check.ID, 10))
	}
	cp := *check
	f.checks[check.ID] = &cp
	return nil
}

func (f *fakeCheckRepo) CreateImage(_ context.Context, img *domain.SafetyImage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsert {
		return domain.Internal(errors.New("boom"), "image.create", "database operation failed")
	}
	f.nextID++
	img.ID = f.nextID
	cp := *img
	f.images[img.ID] = &cp
	return nil
}

func (f *fakeCheckRepo) ListImagesByCheck(_ context.Context, checkID int64) ([]domain.SafetyImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.SafetyImage
	for _, img := range f.images {
		if img.SafetyCheckID == checkID {
			out = append(out, *img)
		}
	}
	return out, nil
}

func (f *fakeCheckRepo) GetImageByID(_ context.Context, id int64) (*domain.SafetyImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	img, ok := f.images[id]
	if !ok {
		return nil, domain.NotFound("image.get", "image", strconv.FormatInt(id, 10))
	}
	cp := *img
	return &cp, nil
}

func (f *fakeCheckRepo) DeleteImage(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.images[id]; !ok {
		return domain.NotFound("image.delete", "image", strconv.FormatInt(id, 10))
	}
	delete(f.images, id)
	return nil
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) Put(_ context.Context, key string, data io.Reader, _ storage.PutOptions) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = b
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[key]
	if !ok {
		return nil, storage.ObjectInfo{}, &storage.StorageError{Op: "get", Key: key, Err: storage.ErrNotFound}
	}
	return io.NopCloser(bytes.NewReader(b)), storage.ObjectInfo{Key: key, Size: int64(len(b))}, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) List(_ context.Context, folder string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, folder+"/") {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (f *fakeStore) URL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "http://store.test/" + key, nil
}

func (f *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// =============================================================================
// Setup
// =============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEmployee() *domain.Employee {
	return &domain.Employee{
		ID:             7,
		Name:           "أحمد السالم",
		NationalID:     "1234567890",
		DepartmentName: "الأسطول",
	}
}

func testService(t *testing.T) (SafetyService, *fakeVehicleRepo, *fakeCheckRepo, *fakeStore) {
	t.Helper()
	vehicles := &fakeVehicleRepo{vehicles: map[int64]domain.Vehicle{
		1: {ID: 1, PlateNumber: "أ ب ج 1234", Make: "Toyota", Model: "Hilux", Year: 2022, Status: domain.VehicleStatusActive},
		2: {ID: 2, PlateNumber: "د هـ و 5678", Make: "Isuzu", Model: "D-Max", Year: 2020, Status: domain.VehicleStatusInWorkshop},
	}}
	checks := newFakeCheckRepo()
	store := newFakeStore()
	normalizer := media.NewNormalizer(1920, 1920, media.DefaultQuality, testLogger())
	svc := NewSafetyService(vehicles, checks, store, normalizer, "https://nuzum.sa/storage", testLogger())
	return svc, vehicles, checks, store
}

// jpegUpload builds an in-memory JPEG upload of the given dimensions.
func jpegUpload(t *testing.T, w, h int) ImageUpload {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)))
	return ImageUpload{Filename: "photo.jpg", Data: &buf}
}

// =============================================================================
// CreateCheck
// =============================================================================

func TestCreateCheck_FreezesVehicleSnapshot(t *testing.T) {
	svc, _, _, _ := testService(t)

	check, err := svc.CreateCheck(context.Background(), testEmployee(), CreateCheckInput{VehicleID: 1})
	require.NoError(t, err)

	assert.NotZero(t, check.ID)
	assert.Equal(t, "أ ب ج 1234", check.VehiclePlateNumber)
	assert.Equal(t, "Toyota Hilux", check.VehicleMakeModel)
	assert.Equal(t, domain.ApprovalStatusPending, check.ApprovalStatus)
	assert.WithinDuration(t, time.Now(), check.InspectionDate, time.Minute)
}

func TestCreateCheck_EmployeeFallbacks(t *testing.T) {
	svc, _, _, _ := testService(t)

	check, err := svc.CreateCheck(context.Background(), testEmployee(), CreateCheckInput{VehicleID: 1})
	require.NoError(t, err)

	assert.Equal(t, "أحمد السالم", check.DriverName)
	assert.Equal(t, "1234567890", check.DriverNationalID)
	assert.Equal(t, "الأسطول", check.DriverDepartment)
	assert.Equal(t, domain.DefaultDriverCity, check.DriverCity)
}

func TestCreateCheck_DepartmentFallsBackToUnspecified(t *testing.T) {
	svc, _, _, _ := testService(t)

	emp := testEmployee()
	emp.DepartmentName = ""

	check, err := svc.CreateCheck(context.Background(), emp, CreateCheckInput{VehicleID: 1})
	require.NoError(t, err)
	assert.Equal(t, domain.UnspecifiedDepartment, check.DriverDepartment)
}

func TestCreateCheck_RequestFieldsWin(t *testing.T) {
	svc, _, _, _ := testService(t)

	check, err := svc.CreateCheck(context.Background(), testEmployee(), CreateCheckInput{
		VehicleID:        1,
		DriverName:       "سعيد القحطاني",
		DriverNationalID: "0987654321",
		DriverDepartment: "الصيانة",
		DriverCity:       "جدة",
	})
	require.NoError(t, err)

	assert.Equal(t, "سعيد القحطاني", check.DriverName)
	assert.Equal(t, "0987654321", check.DriverNationalID)
	assert.Equal(t, "الصيانة", check.DriverDepartment)
	assert.Equal(t, "جدة", check.DriverCity)
}

func TestCreateCheck_MissingVehicle(t *testing.T) {
	svc, _, _, _ := testService(t)

	_, err := svc.CreateCheck(context.Background(), testEmployee(), CreateCheckInput{VehicleID: 999})
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))

	_, err = svc.CreateCheck(context.Background(), testEmployee(), CreateCheckInput{})
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

// =============================================================================
// UploadImage
// =============================================================================

func TestUploadImage_FullPipeline(t *testing.T) {
	svc, _, checks, store := testService(t)

	check, err := svc.CreateCheck(context.Background(), testEmployee(), CreateCheckInput{VehicleID: 1})
	require.NoError(t, err)

	result, err := svc.UploadImage(context.Background(), check.ID, testEmployee(), jpegUpload(t, 2400, 1600))
	require.NoError(t, err)

	assert.NotZero(t, result.Image.ID)
	assert.True(t, strings.HasPrefix(result.Image.ImagePath, "safety_checks/"))
	assert.True(t, strings.HasSuffix(result.Image.ImagePath, ".jpg"))
	assert.Greater(t, result.FileSize, int64(0))

	// Blob landed in the store under the row's key
	data := storage.Fetch(context.Background(), store, result.Image.ImagePath)
	require.NotNil(t, data)
	assert.Equal(t, result.FileSize, int64(len(data)))

	// Normalized to the bounding box
	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1920, img.Bounds().Dx())
	assert.Equal(t, 1280, img.Bounds().Dy())

	// URL synthesized from the key's filename component
	assert.Equal(t, "https://nuzum.sa/storage/"+result.Image.ImagePath, result.Image.URL)

	// Default description mentions the uploader
	assert.Contains(t, result.Image.ImageDescription, "أحمد السالم")

	_, images, err := svc.GetCheck(context.Background(), check.ID)
	require.NoError(t, err)
	require.Len(t, images, 1)
	_ = checks
}

func TestUploadImage_RejectsBadExtension(t *testing.T) {
	svc, _, _, _ := testService(t)

	check, err := svc.CreateCheck(context.Background(), testEmployee(), CreateCheckInput{VehicleID: 1})
	require.NoError(t, err)

	upload := ImageUpload{Filename: "report.gif", Data: strings.NewReader("x")}
	_, err = svc.UploadImage(context.Background(), check.ID, testEmployee(), upload)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestUploadImage_UnknownCheck(t *testing.T) {
	svc, _, _, _ := testService(t)

	_, err := svc.UploadImage(context.Background(), 404, testEmployee(), jpegUpload(t, 100, 100))
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestUploadImage_CorruptImage(t *testing.T) {
	svc, _, _, store := testService(t)

	check, err := svc.CreateCheck(context.Background(), testEmployee(), CreateCheckInput{VehicleID: 1})
	require.NoError(t, err)

	upload := ImageUpload{Filename: "photo.jpg", Data: strings.NewReader("not a jpeg")}
	_, err = svc.UploadImage(context.Background(), check.ID, testEmployee(), upload)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Zero(t, store.count())
}

func TestUploadImage_CompensatesFailedInsert(t *testing.T) {
	svc, _, checks, store := testService(t)

	check, err := svc.CreateCheck(context.Background(), testEmployee(), CreateCheckInput{VehicleID: 1})
	require.NoError(t, err)

	checks.failInsert = true
	_, err = svc.UploadImage(context.Background(), check.ID, testEmployee(), jpegUpload(t, 200, 200))
	require.Error(t, err)

	// No orphan blob survives the failed database write
	assert.Zero(t, store.count())
}

// =============================================================================
// Approval transitions
// =============================================================================

func TestApproveCheck(t *testing.T) {
	svc, _, _, _ := testService(t)

	check, err := svc.CreateCheck(context.Background(), testEmployee(), CreateCheckInput{VehicleID: 1})
	require.NoError(t, err)

	approved, err := svc.ApproveCheck(context.Background(), check.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalStatusApproved, approved.ApprovalStatus)
	require.NotNil(t, approved.ApprovedAt)

	// Double approval is refused
	_, err = svc.ApproveCheck(context.Background(), check.ID)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
}

func TestRejectCheck_RequiresReason(t *testing.T) {
	svc, _, _, _ := testService(t)

	check, err := svc.CreateCheck(context.Background(), testEmployee(), CreateCheckInput{VehicleID: 1})
	require.NoError(t, err)

	_, err = svc.RejectCheck(context.Background(), check.ID, "")
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	rejected, err := svc.RejectCheck(context.Background(), check.ID, "صور غير واضحة")
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalStatusRejected, rejected.ApprovalStatus)
	assert.Equal(t, "صور غير واضحة", rejected.RejectionReason)
}

// =============================================================================
// DeleteImage
// =============================================================================

func TestDeleteImage_CascadesBlob(t *testing.T) {
	svc, _, _, store := testService(t)

	check, err := svc.CreateCheck(context.Background(), testEmployee(), CreateCheckInput{VehicleID: 1})
	require.NoError(t, err)

	result, err := svc.UploadImage(context.Background(), check.ID, testEmployee(), jpegUpload(t, 200, 200))
	require.NoError(t, err)
	require.Equal(t, 1, store.count())

	require.NoError(t, svc.DeleteImage(context.Background(), check.ID, result.Image.ID))
	assert.Zero(t, store.count())

	_, images, err := svc.GetCheck(context.Background(), check.ID)
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestDeleteImage_WrongCheck(t *testing.T) {
	svc, _, _, _ := testService(t)

	check, err := svc.CreateCheck(context.Background(), testEmployee(), CreateCheckInput{VehicleID: 1})
	require.NoError(t, err)

	result, err := svc.UploadImage(context.Background(), check.ID, testEmployee(), jpegUpload(t, 200, 200))
	require.NoError(t, err)

	err = svc.DeleteImage(context.Background(), check.ID+99, result.Image.ID)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}
