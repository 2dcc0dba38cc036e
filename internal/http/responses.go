package http

import (
	"time"

	"tunestream/internal/domain"
	"tunestream/internal/service"
	"tunestream/internal/swarm"
)

type RankedTorrentResponse struct {
	Title       string  `json:"title"`
	Size        int64   `json:"size"`
	Seeders     int     `json:"seeders"`
	Leechers    int     `json:"leechers"`
	PublishDate *string `json:"publish_date,omitempty"`
	Indexer     string  `json:"indexer"`
	DownloadRef string  `json:"download_ref"`
	Score       int     `json:"score"`
	TitleMatch  float64 `json:"title_match"`
	AgeDays     int     `json:"age_days"`
}

func rankedToResponse(r domain.RankedTorrent) RankedTorrentResponse {
	resp := RankedTorrentResponse{
		Title:       r.Title,
		Size:        r.Size,
		Seeders:     r.Seeders,
		Leechers:    r.Leechers,
		Indexer:     r.Indexer,
		DownloadRef: r.DownloadRef,
		Score:       r.Score,
		TitleMatch:  r.TitleMatch,
		AgeDays:     r.AgeDays,
	}
	if !r.PublishDate.IsZero() {
		v := r.PublishDate.Format(time.RFC3339)
		resp.PublishDate = &v
	}
	return resp
}

type FileResponse struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

func filesToResponse(files []swarm.File) []FileResponse {
	resp := make([]FileResponse, len(files))
	for i, f := range files {
		resp[i] = FileResponse{Name: f.Name, Size: f.Size}
	}
	return resp
}

type StreamInfoResponse struct {
	Magnet       string         `json:"magnet"`
	FileName     string         `json:"file_name"`
	FileSize     int64          `json:"file_size"`
	TrackListing []FileResponse `json:"track_listing"`
	StreamPath   string         `json:"stream_path"`
}

func streamInfoToResponse(info *service.StreamInfo) StreamInfoResponse {
	return StreamInfoResponse{
		Magnet:       info.MagnetURI,
		FileName:     info.FileName,
		FileSize:     info.FileSize,
		TrackListing: filesToResponse(info.TrackListing),
		StreamPath:   "/api/stream",
	}
}

type JobResponse struct {
	ID          string           `json:"id"`
	Kind        domain.JobKind   `json:"kind"`
	Status      domain.JobStatus `json:"status"`
	Progress    int              `json:"progress"`
	Result      any              `json:"result,omitempty"`
	Error       string           `json:"error,omitempty"`
	CreatedAt   string           `json:"created_at"`
	CompletedAt *string          `json:"completed_at,omitempty"`
}

func jobToResponse(job domain.Job) JobResponse {
	resp := JobResponse{
		ID:        job.ID,
		Kind:      job.Kind,
		Status:    job.Status,
		Progress:  job.Progress,
		Result:    job.Result,
		Error:     job.Error,
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
	}
	if job.CompletedAt != nil {
		v := job.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &v
	}
	return resp
}
