package service

import (
	"bytes"
	"context"
	"database/sql"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/maheshrc27/listing-api/internal/models"
	"github.com/maheshrc27/listing-api/internal/repository"
	"github.com/maheshrc27/listing-api/pkg/utils"
)

const (
	UploadKindImage = "image"
	UploadKindVideo = "video"

	MaxImageSize = 10 * 1024 * 1024
	MaxVideoSize = 50 * 1024 * 1024
)

type UploadService interface {
	Upload(ctx context.Context, postID uuid.UUID, kind string, files []*multipart.FileHeader) ([]*models.Asset, error)
	DeleteAsset(ctx context.Context, id uuid.UUID) error
}

type uploadService struct {
	tr      repository.Transactor
	pr      repository.PostRepository
	ar      repository.AssetRepository
	storage StorageService
}

func NewUploadService(
	tr repository.Transactor,
	pr repository.PostRepository,
	ar repository.AssetRepository,
	storage StorageService) UploadService {
	return &uploadService{
		tr:      tr,
		pr:      pr,
		ar:      ar,
		storage: storage,
	}
}

type uploadedFile struct {
	name        string
	contentType string
	data        []byte
	width       *int
	height      *int
}

func (s *uploadService) Upload(ctx context.Context, postID uuid.UUID, kind string, files []*multipart.FileHeader) ([]*models.Asset, error) {
	if len(files) == 0 {
		return nil, validationError("No files provided")
	}
	if kind != UploadKindImage && kind != UploadKindVideo {
		return nil, validationError("type must be one of [image video]")
	}

	post, err := s.pr.GetByID(ctx, nil, postID)
	if err != nil {
		return nil, internalError("error getting post", err)
	}
	if post == nil {
		return nil, notFoundError("Post")
	}

	prepared := make([]*uploadedFile, 0, len(files))
	for _, fh := range files {
		f, err := readUpload(fh, kind)
		if err != nil {
			return nil, err
		}
		prepared = append(prepared, f)
	}

	assetType := models.AssetTypeImage
	if kind == UploadKindVideo {
		assetType = models.AssetTypeVideo
	}

	var urls []string
	assets := make([]*models.Asset, 0, len(prepared))
	for _, f := range prepared {
		key, err := utils.ObjectKey(postID.String(), f.name)
		if err != nil {
			s.cleanup(ctx, urls)
			return nil, internalError("error generating object key", err)
		}
		url, err := s.storage.Upload(ctx, key, f.data, f.contentType)
		if err != nil {
			s.cleanup(ctx, urls)
			return nil, internalError("Failed to upload files", err)
		}
		urls = append(urls, url)

		name := f.name
		size := int64(len(f.data))
		mime := f.contentType
		assets = append(assets, &models.Asset{
			PostID:           postID,
			URL:              url,
			Type:             assetType,
			Source:           models.AssetSourceManual,
			FileName:         &name,
			FileSize:         &size,
			MimeType:         &mime,
			Width:            f.width,
			Height:           f.height,
			ProcessingStatus: models.ProcessingCompleted,
		})
	}

	err = s.tr.WithinTx(ctx, func(tx *sql.Tx) error {
		maxOrder, err := s.ar.MaxOrder(ctx, tx, postID)
		if err != nil {
			return err
		}
		for i, a := range assets {
			a.Order = maxOrder + 1 + i
		}
		return s.ar.CreateMany(ctx, tx, assets)
	})
	if err != nil {
		s.cleanup(ctx, urls)
		return nil, internalError("error saving assets", err)
	}

	slog.Info("files uploaded", "post_id", postID, "count", len(assets), "type", kind)
	return assets, nil
}

// cleanup removes objects whose asset rows were never written.
func (s *uploadService) cleanup(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.storage.Delete(ctx, url); err != nil {
			slog.Error("failed to remove orphaned upload", "url", url, "error", err)
		}
	}
}

func readUpload(fh *multipart.FileHeader, kind string) (*uploadedFile, error) {
	maxSize := int64(MaxImageSize)
	label := "10MB"
	if kind == UploadKindVideo {
		maxSize = MaxVideoSize
		label = "50MB"
	}
	if fh.Size > maxSize {
		return nil, validationError("File %s is too large. Max size: %s", fh.Filename, label)
	}

	file, err := fh.Open()
	if err != nil {
		return nil, internalError("error opening file", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, internalError("error reading file content", err)
	}
	if int64(len(data)) > maxSize {
		return nil, validationError("File %s is too large. Max size: %s", fh.Filename, label)
	}

	contentType := fh.Header.Get("Content-Type")
	sniffed, _ := filetype.Match(data)
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = sniffed.MIME.Value
	}
	if !strings.HasPrefix(contentType, kind+"/") {
		return nil, validationError("File %s is not a%s %s", fh.Filename, article(kind), kind)
	}
	if sniffed != types.Unknown && sniffed.MIME.Type != kind {
		return nil, validationError("File %s content does not match its %s type", fh.Filename, kind)
	}

	f := &uploadedFile{name: fh.Filename, contentType: contentType, data: data}
	if kind == UploadKindImage {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			f.width, f.height = &cfg.Width, &cfg.Height
		}
	}
	return f, nil
}

func article(kind string) string {
	if kind == UploadKindImage {
		return "n"
	}
	return ""
}

func (s *uploadService) DeleteAsset(ctx context.Context, id uuid.UUID) error {
	asset, err := s.ar.GetByID(ctx, id)
	if err != nil {
		return internalError("error getting asset", err)
	}
	if asset == nil {
		return notFoundError("Asset")
	}

	if err := s.ar.Remove(ctx, id); err != nil {
		return internalError("error removing asset", err)
	}

	if err := s.storage.Delete(ctx, asset.URL); err != nil {
		slog.Error("failed to remove stored object", "asset_id", id, "url", asset.URL, "error", err)
	}
	return nil
}
