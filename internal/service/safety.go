// Package service implements the business logic of the safety pipeline,
// sitting between the HTTP handlers and the repository/storage layers.
package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Eissaali11/nuzum/internal/domain"
	"github.com/Eissaali11/nuzum/internal/media"
	"github.com/Eissaali11/nuzum/internal/metrics"
	"github.com/Eissaali11/nuzum/internal/storage"
)

// =============================================================================
// Dependencies
// =============================================================================

// VehicleRepository is the vehicle persistence surface the service needs.
type VehicleRepository interface {
	ListActiveVehicles(ctx context.Context) ([]domain.Vehicle, error)
	GetVehicleByID(ctx context.Context, id int64) (*domain.Vehicle, error)
}

// CheckRepository is the safety-check persistence surface the service needs.
type CheckRepository interface {
	CreateCheck(ctx context.Context, check *domain.SafetyCheck) error
	GetCheckByID(ctx context.Context, id int64) (*domain.SafetyCheck, error)
	UpdateCheckStatus(ctx context.Context, check *domain.SafetyCheck) error
	CreateImage(ctx context.Context, img *domain.SafetyImage) error
	ListImagesByCheck(ctx context.Context, checkID int64) ([]domain.SafetyImage, error)
	GetImageByID(ctx context.Context, id int64) (*domain.SafetyImage, error)
	DeleteImage(ctx context.Context, id int64) error
}

// ImageNormalizer rewrites an image file in place as a bounded optimized JPEG.
// Satisfied by media.Normalizer.
type ImageNormalizer interface {
	NormalizeFile(path string) (*media.Result, error)
}

// =============================================================================
// Inputs
// =============================================================================

// CreateCheckInput carries the request body of check creation. Empty driver
// fields fall back to the authenticated employee's record.
type CreateCheckInput struct {
	VehicleID        int64
	DriverName       string
	DriverNationalID string
	DriverDepartment string
	DriverCity       string
	CurrentDelegate  string
	Notes            string
}

// ImageUpload carries one multipart file destined for a safety check.
type ImageUpload struct {
	Filename    string
	Data        io.Reader
	Description string
}

// UploadResult is what the upload endpoint reports back to the client.
type UploadResult struct {
	Image    *domain.SafetyImage
	FileSize int64
}

// =============================================================================
// Service
// =============================================================================

// SafetyService exposes the safety-check operations of the external API.
type SafetyService interface {
	ListVehicles(ctx context.Context) ([]domain.Vehicle, error)
	CreateCheck(ctx context.Context, employee *domain.Employee, input CreateCheckInput) (*domain.SafetyCheck, error)
	GetCheck(ctx context.Context, id int64) (*domain.SafetyCheck, []domain.SafetyImage, error)
	UploadImage(ctx context.Context, checkID int64, employee *domain.Employee, upload ImageUpload) (*UploadResult, error)
	DeleteImage(ctx context.Context, checkID, imageID int64) error
	ApproveCheck(ctx context.Context, id int64) (*domain.SafetyCheck, error)
	RejectCheck(ctx context.Context, id int64, reason string) (*domain.SafetyCheck, error)
}

type safetyService struct {
	vehicles   VehicleRepository
	checks     CheckRepository
	store      storage.Storage
	normalizer ImageNormalizer
	publicURL  string
	tmpDir     string
	logger     *slog.Logger
}

// NewSafetyService creates the safety check service. publicURL is the base
// under which stored objects are served (e.g. "https://host/storage").
func NewSafetyService(
	vehicles VehicleRepository,
	checks CheckRepository,
	store storage.Storage,
	normalizer ImageNormalizer,
	publicURL string,
	logger *slog.Logger,
) SafetyService {
	return &safetyService{
		vehicles:   vehicles,
		checks:     checks,
		store:      store,
		normalizer: normalizer,
		publicURL:  strings.TrimSuffix(publicURL, "/"),
		tmpDir:     os.TempDir(),
		logger:     logger,
	}
}

func (s *safetyService) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	return s.vehicles.ListActiveVehicles(ctx)
}

// CreateCheck validates the input, applies employee fallbacks and freezes the
// vehicle snapshot fields onto the new check.
func (s *safetyService) CreateCheck(ctx context.Context, employee *domain.Employee, input CreateCheckInput) (*domain.SafetyCheck, error) {
	const op = "check.create"

	if input.VehicleID == 0 {
		return nil, domain.Invalid(op, "vehicle_id is required")
	}

	vehicle, err := s.vehicles.GetVehicleByID(ctx, input.VehicleID)
	if err != nil {
		return nil, err
	}

	check := &domain.SafetyCheck{
		VehicleID:          vehicle.ID,
		VehiclePlateNumber: vehicle.PlateNumber,
		VehicleMakeModel:   vehicle.MakeModel(),
		DriverName:         fallback(input.DriverName, employee.Name),
		DriverNationalID:   fallback(input.DriverNationalID, employee.NationalID),
		DriverDepartment:   fallback(input.DriverDepartment, employee.DepartmentName, domain.UnspecifiedDepartment),
		DriverCity:         fallback(input.DriverCity, domain.DefaultDriverCity),
		CurrentDelegate:    input.CurrentDelegate,
		Notes:              input.Notes,
		InspectionDate:     time.Now(),
		ApprovalStatus:     domain.ApprovalStatusPending,
	}

	if check.DriverName == "" || check.DriverNationalID == "" ||
		check.DriverDepartment == "" || check.DriverCity == "" {
		return nil, domain.Invalid(op, "driver fields are required")
	}

	if err := s.checks.CreateCheck(ctx, check); err != nil {
		return nil, err
	}

	metrics.ChecksCreated.Inc()
	s.logger.Info("safety check created",
		"check_id", check.ID,
		"vehicle_id", check.VehicleID,
		"plate", check.VehiclePlateNumber,
	)
	return check, nil
}

// GetCheck loads a check with its images, synthesizing public URLs.
func (s *safetyService) GetCheck(ctx context.Context, id int64) (*domain.SafetyCheck, []domain.SafetyImage, error) {
	check, err := s.checks.GetCheckByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	images, err := s.checks.ListImagesByCheck(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	for i := range images {
		images[i].URL = s.imageURL(images[i].ImagePath)
	}
	return check, images, nil
}

// UploadImage runs the full ingest pipeline: temp file, normalization, object
// store placement, then the database row. A failed database write removes the
// freshly stored blob so no orphan survives the request.
func (s *safetyService) UploadImage(ctx context.Context, checkID int64, employee *domain.Employee, upload ImageUpload) (*UploadResult, error) {
	const op = "image.upload"

	if _, err := s.checks.GetCheckByID(ctx, checkID); err != nil {
		return nil, err
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(upload.Filename), "."))
	if upload.Filename == "" {
		return nil, domain.Invalid(op, "filename is empty")
	}
	if !domain.IsAllowedUploadExtension(ext) {
		return nil, domain.Invalid(op, "unsupported file type: "+ext)
	}

	imageID := uuid.New()
	tmpPath := filepath.Join(s.tmpDir, imageID.String()+"."+ext)

	if err := writeTempFile(tmpPath, upload.Data); err != nil {
		return nil, domain.Internal(err, op, "could not buffer upload")
	}
	defer os.Remove(tmpPath)

	result, err := s.normalizer.NormalizeFile(tmpPath)
	if err != nil {
		metrics.ImagesNormalized.WithLabelValues("error").Inc()
		return nil, domain.Invalid(op, "could not process image")
	}
	metrics.ImagesNormalized.WithLabelValues("ok").Inc()
	if saved := result.Saved(); saved > 0 {
		metrics.NormalizeBytesSaved.Add(float64(saved))
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, domain.Internal(err, op, "could not read normalized image")
	}

	key := storage.SafetyImageKey(imageID)
	err = s.store.Put(ctx, key, bytes.NewReader(data), storage.PutOptions{
		ContentType: "image/jpeg",
		Overwrite:   true,
		Public:      true,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "could not store image")
	}

	description := upload.Description
	if description == "" {
		description = "uploaded from mobile — " + employee.Name
	}

	img := &domain.SafetyImage{
		SafetyCheckID:    checkID,
		ImagePath:        key,
		ImageDescription: description,
		UploadedAt:       time.Now(),
	}
	if err := s.checks.CreateImage(ctx, img); err != nil {
		// The blob is already placed; remove it so the failed request
		// leaves nothing behind.
		if !storage.Remove(ctx, s.store, key) {
			s.logger.Error("orphan blob left after failed image insert", "key", key)
		}
		return nil, err
	}

	img.URL = s.imageURL(key)
	metrics.ImagesUploaded.Inc()
	s.logger.Info("image uploaded",
		"check_id", checkID,
		"key", key,
		"size", len(data),
	)

	return &UploadResult{Image: img, FileSize: int64(len(data))}, nil
}

// DeleteImage removes an image row and its blob. The row must belong to the
// given check.
func (s *safetyService) DeleteImage(ctx context.Context, checkID, imageID int64) error {
	const op = "image.delete"

	img, err := s.checks.GetImageByID(ctx, imageID)
	if err != nil {
		return err
	}
	if img.SafetyCheckID != checkID {
		return domain.NotFound(op, "image", fmt.Sprintf("%d", imageID))
	}

	if err := s.checks.DeleteImage(ctx, imageID); err != nil {
		return err
	}
	if !storage.Remove(ctx, s.store, img.ImagePath) {
		s.logger.Warn("blob delete failed after row delete", "key", img.ImagePath)
	}
	return nil
}

func (s *safetyService) ApproveCheck(ctx context.Context, id int64) (*domain.SafetyCheck, error) {
	check, err := s.checks.GetCheckByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := check.Approve(time.Now()); err != nil {
		return nil, err
	}
	if err := s.checks.UpdateCheckStatus(ctx, check); err != nil {
		return nil, err
	}
	return check, nil
}

func (s *safetyService) RejectCheck(ctx context.Context, id int64, reason string) (*domain.SafetyCheck, error) {
	check, err := s.checks.GetCheckByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := check.Reject(reason); err != nil {
		return nil, err
	}
	if err := s.checks.UpdateCheckStatus(ctx, check); err != nil {
		return nil, err
	}
	return check, nil
}

// =============================================================================
// Helpers
// =============================================================================

// imageURL synthesizes the public URL for a stored image key from its
// filename component.
func (s *safetyService) imageURL(key string) string {
	return s.publicURL + "/" + storage.Join(storage.SafetyChecksFolder, storage.Filename(key))
}

// fallback returns the first non-empty value.
func fallback(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func writeTempFile(path string, data io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, data); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
