package cases

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/IvanGD/engine-diagnostic-site/internal/application"
	domain "github.com/IvanGD/engine-diagnostic-site/internal/domain/cases"
	"github.com/IvanGD/engine-diagnostic-site/internal/domain/diagnosis"
)

// Allowed upload formats and the content type each maps to.
var allowedImageExts = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
}

// Service implements the case use-cases. Safe for concurrent use: the
// diagnoser is pure and id assignment serializes in the storage engine.
type Service struct {
	Repo   domain.Repository
	Diag   diagnosis.Diagnoser
	Images domain.ImageStore
	Clock  application.Clock
}

// Command to submit a case
type SubmitCaseCommand struct {
	OwnerID    int64
	EngineType string
	Symptoms   string
	ImageRef   string
}

// SubmitCase runs the diagnoser over the submitted symptoms and persists the
// resulting case. The only write operation: cases are immutable afterwards.
func (s *Service) SubmitCase(ctx context.Context, cmd SubmitCaseCommand) (*domain.Case, error) {
	symptoms := strings.TrimSpace(cmd.Symptoms)
	if symptoms == "" {
		return nil, &domain.ValidationError{Field: "symptoms", Reason: "must not be empty"}
	}

	report, err := s.Diag.Diagnose(ctx, cmd.EngineType, symptoms)
	if err != nil {
		return nil, fmt.Errorf("diagnose: %w", err)
	}

	c := &domain.Case{
		OwnerID:         cmd.OwnerID,
		EngineType:      strings.TrimSpace(cmd.EngineType),
		Symptoms:        symptoms,
		ImageRef:        cmd.ImageRef,
		DiagnosisReport: report.Render(),
		CreatedAt:       s.Clock.Now().UTC(),
	}

	id, err := s.Repo.Insert(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return c, nil
}

// GetCase returns the case only when it exists and belongs to ownerID.
// A foreign-owned case surfaces as ErrNotFound, same as an absent one.
func (s *Service) GetCase(ctx context.Context, id domain.CaseID, ownerID int64) (*domain.Case, error) {
	return s.Repo.GetByOwner(ctx, id, ownerID)
}

// ListCases returns all cases of the owner, most recent first (descending id).
// Recomputed fresh on every call.
func (s *Service) ListCases(ctx context.Context, ownerID int64) ([]*domain.Case, error) {
	return s.Repo.ListByOwner(ctx, ownerID)
}

// UploadImage stores raw image bytes under a fresh key in the owner's prefix
// and returns the opaque reference to attach to a case. Only the extension is
// checked; image content is never inspected.
func (s *Service) UploadImage(ctx context.Context, ownerID int64, filename string, r io.Reader, size int64) (string, error) {
	if s.Images == nil {
		return "", &domain.ValidationError{Field: "image", Reason: "image uploads are not enabled"}
	}
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := allowedImageExts[ext]
	if !ok {
		return "", &domain.ValidationError{Field: "image", Reason: "invalid image format (use png/jpg/jpeg/gif)"}
	}
	key := fmt.Sprintf("%d/%s%s", ownerID, uuid.New().String(), ext)
	return s.Images.Put(ctx, key, r, size, contentType)
}
