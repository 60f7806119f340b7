package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Eissaali11/nuzum/internal/domain"
	"github.com/Eissaali11/nuzum/internal/metrics"
)

// AccidentRepository is the accident persistence surface the service needs.
type AccidentRepository interface {
	GetAccidentByID(ctx context.Context, id int64) (*domain.Accident, error)
}

// ReportComposer renders an accident into a finished PDF document.
// Satisfied by report.Composer.
type ReportComposer interface {
	Compose(ctx context.Context, accident *domain.Accident) ([]byte, error)
}

// AccidentService exposes accident report generation.
type AccidentService interface {
	// GenerateReport renders the accident PDF and returns its bytes together
	// with a download filename.
	GenerateReport(ctx context.Context, id int64) ([]byte, string, error)
}

type accidentService struct {
	accidents AccidentRepository
	composer  ReportComposer
	logger    *slog.Logger
}

// NewAccidentService creates the accident report service.
func NewAccidentService(accidents AccidentRepository, composer ReportComposer, logger *slog.Logger) AccidentService {
	return &accidentService{
		accidents: accidents,
		composer:  composer,
		logger:    logger,
	}
}

func (s *accidentService) GenerateReport(ctx context.Context, id int64) ([]byte, string, error) {
	accident, err := s.accidents.GetAccidentByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	pdf, err := s.composer.Compose(ctx, accident)
	if err != nil {
		return nil, "", domain.Internal(err, "accident.report", "could not compose report")
	}

	metrics.ReportsGenerated.Inc()
	s.logger.Info("accident report generated", "accident_id", id, "bytes", len(pdf))

	filename := fmt.Sprintf("accident_report_%d.pdf", id)
	return pdf, filename, nil
}
