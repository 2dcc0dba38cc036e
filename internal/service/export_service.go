package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"tunestream/internal/domain"
	"tunestream/internal/selector"
	"tunestream/internal/storage"
	"tunestream/internal/swarm"
)

// ExportResult reports where an exported track landed.
type ExportResult struct {
	Location string
	URL      string
	FileName string
	FileSize int64
}

// TrackExporter archives one audio file from a registered swarm handle
// to object storage.
type TrackExporter interface {
	Export(ctx context.Context, magnetURI, fileName string, progress func(int)) (*ExportResult, error)
}

type trackExporter struct {
	registry  *swarm.Registry
	storage   storage.Service
	bucket    string
	keyPrefix string
	logger    *logrus.Logger
}

func NewTrackExporter(registry *swarm.Registry, store storage.Service, bucket, keyPrefix string, logger *logrus.Logger) TrackExporter {
	if logger == nil {
		logger = logrus.New()
	}
	return &trackExporter{
		registry:  registry,
		storage:   store,
		bucket:    bucket,
		keyPrefix: strings.Trim(keyPrefix, "/"),
		logger:    logger,
	}
}

func (e *trackExporter) Export(ctx context.Context, magnetURI, fileName string, progress func(int)) (*ExportResult, error) {
	if progress == nil {
		progress = func(int) {}
	}

	handle, ok := e.registry.Get(magnetURI)
	if !ok {
		return nil, domain.ErrTorrentNotFound
	}

	var size int64 = -1
	for _, f := range handle.Files() {
		if f.Name == fileName {
			size = f.Size
			break
		}
	}
	if size < 0 {
		return nil, domain.ErrFileNotFound
	}

	reader, err := handle.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fileName, err)
	}
	defer reader.Close()
	progress(10)

	key := sanitizeKey(fileName)
	if e.keyPrefix != "" {
		key = e.keyPrefix + "/" + key
	}

	location, err := e.storage.UploadStream(ctx, reader, size, storage.UploadOptions{
		Bucket:      e.bucket,
		Key:         key,
		ContentType: selector.ContentType(fileName),
		ProgressCallback: func(done, total int64) {
			if total > 0 {
				// Upload spans the 10-90 band of the job.
				progress(10 + int(done*80/total))
			}
		},
	})
	if err != nil {
		return nil, fmt.Errorf("export track: %w", err)
	}

	url, err := e.storage.GetObjectURL(ctx, e.bucket, key, time.Hour)
	if err != nil {
		e.logger.Warnf("presign exported track: %v", err)
		url = ""
	}

	e.logger.WithField("file", fileName).Infof("track exported to %s", location)
	return &ExportResult{
		Location: location,
		URL:      url,
		FileName: fileName,
		FileSize: size,
	}, nil
}

func sanitizeKey(name string) string {
	r := strings.NewReplacer("\\", "/", "..", "", "//", "/")
	return strings.Trim(r.Replace(name), "/")
}

var _ TrackExporter = (*trackExporter)(nil)
