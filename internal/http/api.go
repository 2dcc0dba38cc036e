package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tunestream/internal/domain"
	"tunestream/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	music    service.MusicService
	torrents service.TorrentService
}

func NewHandler(music service.MusicService, torrents service.TorrentService) *Handler {
	return &Handler{
		music:    music,
		torrents: torrents,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.GET("/artists", h.searchArtists)
		api.GET("/artists/:id", h.artistDetail)
		api.GET("/artists/:id/torrents", h.artistTorrents)
		api.GET("/recordings", h.searchRecordings)

		api.POST("/magnet/resolve", h.resolveMagnet)
		api.GET("/torrents/search", h.findBestTorrent)
		api.POST("/stream/prepare", h.prepareStream)
		api.GET("/stream/listing", h.trackListing)
		api.GET("/stream", h.streamBytes)
		api.POST("/export", h.exportTrack)

		api.GET("/jobs/:id", h.jobStatus)
		api.GET("/swarm", h.swarmSnapshot)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Range")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Range, Content-Length, Accept-Ranges")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (h *Handler) searchArtists(c *gin.Context) {
	artists, err := h.music.SearchArtists(c.Request.Context(), c.Query("query"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, artists)
}

func (h *Handler) artistDetail(c *gin.Context) {
	artist, err := h.music.ArtistDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, artist)
}

func (h *Handler) artistTorrents(c *gin.Context) {
	entry, err := h.music.AlbumTorrents(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) searchRecordings(c *gin.Context) {
	recordings, err := h.music.SearchRecordings(c.Request.Context(), c.Query("query"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recordings)
}

type resolveMagnetRequest struct {
	Reference string `json:"reference" binding:"required"`
}

func (h *Handler) resolveMagnet(c *gin.Context) {
	var req resolveMagnetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resolved := h.torrents.ResolveMagnet(c.Request.Context(), req.Reference)
	c.JSON(http.StatusOK, gin.H{"resolved": resolved})
}

func (h *Handler) findBestTorrent(c *gin.Context) {
	target := domain.Target{
		TrackTitle: c.Query("track"),
		ArtistName: c.Query("artist"),
		AlbumTitle: c.Query("album"),
	}
	if target.TrackTitle == "" || target.ArtistName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "track and artist query parameters are required"})
		return
	}

	if isAsync(c) {
		jobID := h.torrents.FindBestTorrentAsync(target)
		c.JSON(http.StatusAccepted, gin.H{"jobId": jobID})
		return
	}

	best, err := h.torrents.FindBestTorrent(c.Request.Context(), target)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rankedToResponse(*best))
}

type prepareStreamRequest struct {
	Reference     string `json:"reference" binding:"required"`
	FileNameHint  string `json:"file_name_hint"`
	ExpectedCount int    `json:"expected_file_count"`
}

func (h *Handler) prepareStream(c *gin.Context) {
	var req prepareStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if isAsync(c) {
		jobID := h.torrents.PrepareStreamAsync(req.Reference, req.FileNameHint, req.ExpectedCount)
		c.JSON(http.StatusAccepted, gin.H{"jobId": jobID})
		return
	}

	info, err := h.torrents.PrepareStream(c.Request.Context(), req.Reference, req.FileNameHint, req.ExpectedCount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, streamInfoToResponse(info))
}

func (h *Handler) trackListing(c *gin.Context) {
	ref := c.Query("ref")
	if ref == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter ref is required"})
		return
	}
	resolved, files, err := h.torrents.TrackListing(c.Request.Context(), ref)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"magnet": resolved, "files": filesToResponse(files)})
}

type exportTrackRequest struct {
	Magnet   string `json:"magnet" binding:"required"`
	FileName string `json:"file_name" binding:"required"`
}

func (h *Handler) exportTrack(c *gin.Context) {
	var req exportTrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	jobID := h.torrents.ExportTrackAsync(req.Magnet, req.FileName)
	c.JSON(http.StatusAccepted, gin.H{"jobId": jobID})
}

func (h *Handler) jobStatus(c *gin.Context) {
	job, err := h.torrents.JobStatus(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobToResponse(job))
}

func (h *Handler) swarmSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.torrents.SwarmSnapshot())
}

func isAsync(c *gin.Context) bool {
	async, err := strconv.ParseBool(c.DefaultQuery("async", "false"))
	return err == nil && async
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrTorrentNotFound),
		errors.Is(err, domain.ErrFileNotFound),
		errors.Is(err, domain.ErrJobNotFound),
		errors.Is(err, domain.ErrArtistNotCached):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNoAudioFiles),
		errors.Is(err, domain.ErrFileCountMismatch):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNoPeers),
		errors.Is(err, domain.ErrNoCandidates):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
