package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-freelance-backend/internal/domain"
	"go-freelance-backend/pkg/antivirus"
	"go-freelance-backend/pkg/apperror"
	"go-freelance-backend/pkg/logger"
	"go-freelance-backend/pkg/media"
	"go-freelance-backend/pkg/security"
)

type freelanceUsecase struct {
	freelanceRepo domain.FreelanceRepository
	storage       domain.ObjectStorage
	scanner       domain.MalwareScanner
}

// NewFreelanceUsecase accepts a nil storage, in which case uploads answer 503,
// and a nil scanner, in which case uploads are stored unscanned.
func NewFreelanceUsecase(freelanceRepo domain.FreelanceRepository, storage domain.ObjectStorage, scanner domain.MalwareScanner) domain.FreelanceUsecase {
	return &freelanceUsecase{freelanceRepo: freelanceRepo, storage: storage, scanner: scanner}
}

func (u *freelanceUsecase) List(ctx context.Context, page, pageSize int) ([]domain.Freelance, int64, error) {
	limit, offset := pageBounds(page, pageSize)
	freelances, total, err := u.freelanceRepo.Fetch(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return freelances, total, nil
}

func (u *freelanceUsecase) GetMine(ctx context.Context, userID string) (*domain.Freelance, error) {
	f, err := u.freelanceRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, MsgProfileMissing)
	}
	return f, nil
}

func (u *freelanceUsecase) UpsertMine(ctx context.Context, userID string, role domain.Role, patch domain.FreelancePatch) (*domain.Freelance, bool, error) {
	if err := requireRole(role, domain.RoleFreelance); err != nil {
		return nil, false, err
	}

	if patch.Nom != nil && blank(patch.Nom) {
		return nil, false, apperror.Validation([]string{"Nom : ce champ est obligatoire"})
	}
	if patch.Nom == nil {
		if _, err := u.freelanceRepo.GetByUserID(ctx, userID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, false, apperror.Validation([]string{"Nom : ce champ est obligatoire"})
			}
			return nil, false, apperror.Internal(err)
		}
	}

	f, created, err := u.freelanceRepo.Upsert(ctx, userID, patch)
	if err != nil {
		return nil, false, apperror.Internal(err)
	}
	return f, created, nil
}

func (u *freelanceUsecase) UploadPhoto(ctx context.Context, userID string, role domain.Role, data []byte) (*domain.Freelance, error) {
	if err := requireRole(role, domain.RoleFreelance); err != nil {
		return nil, err
	}
	if _, err := media.Validate(media.KindImage, data); err != nil {
		return nil, apperror.BadRequest("Photo invalide : formats acceptés JPEG, PNG, GIF, WebP")
	}
	if err := u.scan(ctx, userID, "photo", data); err != nil {
		return nil, err
	}
	compressed, err := media.CompressImage(data, media.PhotoMaxDimension, media.PhotoQuality)
	if err != nil {
		return nil, apperror.BadRequest("Photo illisible")
	}
	return u.storeMedia(ctx, userID, domain.MediaPhoto, compressed, "image/jpeg", "jpg")
}

func (u *freelanceUsecase) UploadCV(ctx context.Context, userID string, role domain.Role, data []byte) (*domain.Freelance, error) {
	if err := requireRole(role, domain.RoleFreelance); err != nil {
		return nil, err
	}
	if _, err := media.Validate(media.KindPDF, data); err != nil {
		if errors.Is(err, media.ErrTooLarge) {
			return nil, apperror.BadRequest("CV trop volumineux (5 Mo maximum)")
		}
		return nil, apperror.BadRequest("CV invalide : seul le format PDF est accepté")
	}
	if err := u.scan(ctx, userID, "cv", data); err != nil {
		return nil, err
	}
	return u.storeMedia(ctx, userID, domain.MediaCV, data, "application/pdf", "pdf")
}

// scan fails closed: an unreachable scanner rejects the upload
func (u *freelanceUsecase) scan(ctx context.Context, userID, name string, data []byte) error {
	if u.scanner == nil {
		return nil
	}
	err := u.scanner.Scan(ctx, name, data)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, antivirus.ErrInfected):
		logger.Log.Warn("Upload rejected by antivirus",
			zap.String("user_id", security.HashValue(userID)),
			zap.String("file", name),
			zap.Error(err),
		)
		return apperror.BadRequest("Fichier refusé par l'analyse antivirus")
	default:
		return apperror.New(http.StatusServiceUnavailable, "Analyse antivirus indisponible", err)
	}
}

func (u *freelanceUsecase) storeMedia(ctx context.Context, userID string, kind domain.FreelanceMedia, data []byte, contentType, ext string) (*domain.Freelance, error) {
	if u.storage == nil {
		return nil, apperror.New(http.StatusServiceUnavailable, "Stockage de fichiers indisponible", nil)
	}
	if _, err := u.freelanceRepo.GetByUserID(ctx, userID); err != nil {
		return nil, notFoundOr(err, MsgProfileMissing)
	}

	key := fmt.Sprintf("freelances/%s/%s-%s.%s", userID, kind, uuid.NewString(), ext)
	url, err := u.storage.Put(ctx, key, data, contentType)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	f, err := u.freelanceRepo.SetMediaURL(ctx, userID, kind, url)
	if err != nil {
		return nil, notFoundOr(err, MsgProfileMissing)
	}
	return f, nil
}
