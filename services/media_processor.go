package services

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"artsstore/assetstore"
	"artsstore/config"
	"artsstore/models"
	"artsstore/queue"

	"github.com/disintegration/imaging"
)

// IsImageFile reports whether filename carries a configured image extension.
func IsImageFile(filename string) bool {
	return hasExtension(filename, config.AppConfig.Media.ImageExtensions)
}

// IsModelFile reports whether filename carries a configured 3D model extension.
func IsModelFile(filename string) bool {
	return hasExtension(filename, config.AppConfig.Media.ModelExtensions)
}

func hasExtension(filename string, allowed []string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range allowed {
		if ext == e {
			return true
		}
	}
	return false
}

func contentTypeFor(filename string) string {
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if ct == "" {
		ct = "application/octet-stream"
	}
	return ct
}

// ImageOptimizeProcessor shrinks an uploaded image to the configured bounding
// box and publishes the re-encoded result to the asset store. It reports the
// coarse milestones 10 (decoded), 90 (stored) and 100 (done).
type ImageOptimizeProcessor struct {
	store assetstore.Store
	cfg   *config.MediaConfig
}

func NewImageOptimizeProcessor(store assetstore.Store, cfg *config.MediaConfig) *ImageOptimizeProcessor {
	return &ImageOptimizeProcessor{store: store, cfg: cfg}
}

func (p *ImageOptimizeProcessor) Process(ctx context.Context, in queue.ProcessInput, report func(percent int)) (models.StoredAsset, error) {
	img, err := imaging.Decode(bytes.NewReader(in.Data), imaging.AutoOrientation(true))
	if err != nil {
		return models.StoredAsset{}, fmt.Errorf("failed to decode image %s: %w", in.FileName, err)
	}
	report(10)

	bounds := img.Bounds()
	if bounds.Dx() > p.cfg.MaxWidth || bounds.Dy() > p.cfg.MaxHeight {
		img = imaging.Fit(img, p.cfg.MaxWidth, p.cfg.MaxHeight, imaging.Lanczos)
		bounds = img.Bounds()
	}

	ext := strings.ToLower(filepath.Ext(in.FileName))
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		// Decodable but with an extension imaging cannot write back; JPEG it.
		format = imaging.JPEG
		ext = ".jpg"
	}

	var encoded bytes.Buffer
	if err := imaging.Encode(&encoded, img, format, imaging.JPEGQuality(p.cfg.Quality)); err != nil {
		return models.StoredAsset{}, fmt.Errorf("failed to encode image %s: %w", in.FileName, err)
	}

	folder := in.Folder
	if folder == "" {
		folder = "images"
	}
	name := in.TaskID + ext

	asset, err := p.store.Upload(ctx, assetstore.UploadInput{
		Folder:      folder,
		Name:        name,
		Data:        encoded.Bytes(),
		ContentType: contentTypeFor(name),
	})
	if err != nil {
		return models.StoredAsset{}, err
	}
	report(90)

	asset.Width = bounds.Dx()
	asset.Height = bounds.Dy()
	report(100)
	return asset, nil
}

// ModelIngestProcessor stores a 3D model file as-is. Model binaries are opaque
// here; no transcoding happens, only a put under the model prefix.
type ModelIngestProcessor struct {
	store assetstore.Store
}

func NewModelIngestProcessor(store assetstore.Store) *ModelIngestProcessor {
	return &ModelIngestProcessor{store: store}
}

func (p *ModelIngestProcessor) Process(ctx context.Context, in queue.ProcessInput, report func(percent int)) (models.StoredAsset, error) {
	report(10)

	folder := in.Folder
	if folder == "" {
		folder = "models"
	}
	ext := strings.ToLower(filepath.Ext(in.FileName))
	name := in.TaskID + ext

	contentType := "model/gltf-binary"
	if ext == ".gltf" {
		contentType = "model/gltf+json"
	}

	asset, err := p.store.Upload(ctx, assetstore.UploadInput{
		Folder:      folder,
		Name:        name,
		Data:        in.Data,
		ContentType: contentType,
	})
	if err != nil {
		return models.StoredAsset{}, err
	}
	report(90)

	report(100)
	return asset, nil
}
