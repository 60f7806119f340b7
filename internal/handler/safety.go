package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Eissaali11/nuzum/internal/auth"
	"github.com/Eissaali11/nuzum/internal/domain"
	"github.com/Eissaali11/nuzum/internal/service"
)

// SafetyHandler serves the external safety-check endpoints.
type SafetyHandler struct {
	safety service.SafetyService
	logger *slog.Logger
}

// NewSafetyHandler creates the safety API handler.
func NewSafetyHandler(safety service.SafetyService, logger *slog.Logger) *SafetyHandler {
	return &SafetyHandler{safety: safety, logger: logger}
}

// =============================================================================
// Wire Types
// =============================================================================

type vehicleResponse struct {
	ID          int64  `json:"id"`
	PlateNumber string `json:"plate_number"`
	Make        string `json:"make"`
	Model       string `json:"model"`
	Year        int    `json:"year"`
	MakeModel   string `json:"make_model"`
}

type createCheckRequest struct {
	VehicleID        int64  `json:"vehicle_id"`
	DriverName       string `json:"driver_name"`
	DriverNationalID string `json:"driver_national_id"`
	DriverDepartment string `json:"driver_department"`
	DriverCity       string `json:"driver_city"`
	CurrentDelegate  string `json:"current_delegate"`
	Notes            string `json:"notes"`
}

type checkResponse struct {
	CheckID            int64   `json:"check_id"`
	VehicleID          int64   `json:"vehicle_id"`
	VehiclePlateNumber string  `json:"vehicle_plate_number"`
	VehicleMakeModel   string  `json:"vehicle_make_model"`
	DriverName         string  `json:"driver_name"`
	DriverNationalID   string  `json:"driver_national_id"`
	DriverDepartment   string  `json:"driver_department"`
	DriverCity         string  `json:"driver_city"`
	CurrentDelegate    string  `json:"current_delegate,omitempty"`
	Notes              string  `json:"notes,omitempty"`
	InspectionDate     string  `json:"inspection_date"`
	ApprovalStatus     string  `json:"approval_status"`
	ApprovedAt         *string `json:"approved_at,omitempty"`
	RejectionReason    string  `json:"rejection_reason,omitempty"`

	Images []imageResponse `json:"images,omitempty"`
}

type imageResponse struct {
	ImageID     int64  `json:"image_id"`
	ImageURL    string `json:"image_url"`
	ObjectKey   string `json:"object_key"`
	Description string `json:"description"`
	UploadedAt  string `json:"uploaded_at"`
}

type uploadResponse struct {
	ImageID     int64  `json:"image_id"`
	ImageURL    string `json:"image_url"`
	ObjectKey   string `json:"object_key"`
	FileSize    int64  `json:"file_size"`
	Description string `json:"description"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func toCheckResponse(check *domain.SafetyCheck, images []domain.SafetyImage) checkResponse {
	resp := checkResponse{
		CheckID:            check.ID,
		VehicleID:          check.VehicleID,
		VehiclePlateNumber: check.VehiclePlateNumber,
		VehicleMakeModel:   check.VehicleMakeModel,
		DriverName:         check.DriverName,
		DriverNationalID:   check.DriverNationalID,
		DriverDepartment:   check.DriverDepartment,
		DriverCity:         check.DriverCity,
		CurrentDelegate:    check.CurrentDelegate,
		Notes:              check.Notes,
		InspectionDate:     check.InspectionDate.Format(time.RFC3339),
		ApprovalStatus:     check.ApprovalStatus.String(),
		RejectionReason:    check.RejectionReason,
	}
	if check.ApprovedAt != nil {
		at := check.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &at
	}
	for _, img := range images {
		resp.Images = append(resp.Images, imageResponse{
			ImageID:     img.ID,
			ImageURL:    img.URL,
			ObjectKey:   img.ImagePath,
			Description: img.ImageDescription,
			UploadedAt:  img.UploadedAt.Format(time.RFC3339),
		})
	}
	return resp
}

// =============================================================================
// Endpoints
// =============================================================================

// ListVehicles handles GET /vehicles.
func (h *SafetyHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.safety.ListVehicles(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	resp := make([]vehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		resp = append(resp, vehicleResponse{
			ID:          v.ID,
			PlateNumber: v.PlateNumber,
			Make:        v.Make,
			Model:       v.Model,
			Year:        v.Year,
			MakeModel:   v.MakeModel(),
		})
	}
	respondList(w, resp, len(resp))
}

// CreateCheck handles POST /checks.
func (h *SafetyHandler) CreateCheck(w http.ResponseWriter, r *http.Request) {
	employee := auth.GetEmployeeFromRequest(r)

	var req createCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			respondErrorMessage(w, http.StatusBadRequest, "no data")
			return
		}
		respondErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	check, err := h.safety.CreateCheck(r.Context(), employee, service.CreateCheckInput{
		VehicleID:        req.VehicleID,
		DriverName:       req.DriverName,
		DriverNationalID: req.DriverNationalID,
		DriverDepartment: req.DriverDepartment,
		DriverCity:       req.DriverCity,
		CurrentDelegate:  req.CurrentDelegate,
		Notes:            req.Notes,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondData(w, http.StatusCreated, "safety check created", map[string]any{
		"check_id":             check.ID,
		"vehicle_plate_number": check.VehiclePlateNumber,
		"inspection_date":      check.InspectionDate.Format(time.RFC3339),
		"approval_status":      check.ApprovalStatus.String(),
	})
}

// GetCheck handles GET /checks/{id}.
func (h *SafetyHandler) GetCheck(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	check, images, err := h.safety.GetCheck(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, "", toCheckResponse(check, images))
}

// UploadImage handles POST /checks/{id}/upload-image.
func (h *SafetyHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	employee := auth.GetEmployeeFromRequest(r)

	r.Body = http.MaxBytesReader(w, r.Body, domain.MaxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "could not parse upload")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		respondErrorMessage(w, http.StatusBadRequest, "filename is empty")
		return
	}

	result, err := h.safety.UploadImage(r.Context(), id, employee, service.ImageUpload{
		Filename:    header.Filename,
		Data:        file,
		Description: r.FormValue("description"),
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondData(w, http.StatusOK, "image uploaded", uploadResponse{
		ImageID:     result.Image.ID,
		ImageURL:    result.Image.URL,
		ObjectKey:   result.Image.ImagePath,
		FileSize:    result.FileSize,
		Description: result.Image.ImageDescription,
	})
}

// DeleteImage handles DELETE /checks/{id}/images/{imageID}.
func (h *SafetyHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	checkID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	imageID, ok := h.pathID(w, r, "imageID")
	if !ok {
		return
	}

	if err := h.safety.DeleteImage(r.Context(), checkID, imageID); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, "image deleted", nil)
}

// ApproveCheck handles POST /checks/{id}/approve.
func (h *SafetyHandler) ApproveCheck(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	check, err := h.safety.ApproveCheck(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, "safety check approved", toCheckResponse(check, nil))
}

// RejectCheck handles POST /checks/{id}/reject.
func (h *SafetyHandler) RejectCheck(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	check, err := h.safety.RejectCheck(r.Context(), id, req.Reason)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondData(w, http.StatusOK, "safety check rejected", toCheckResponse(check, nil))
}

// pathID parses a numeric path parameter, writing a 400 on failure.
func (h *SafetyHandler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		respondErrorMessage(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
