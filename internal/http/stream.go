package http

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"tunestream/internal/selector"
)

// streamBytes serves a file from a registered swarm handle with
// standard range semantics. The magnet must already be registered;
// streaming never triggers handle creation.
func (h *Handler) streamBytes(c *gin.Context) {
	magnetURI := c.Query("magnet")
	fileName := c.Query("file")
	if magnetURI == "" || fileName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameters magnet and file are required"})
		return
	}

	reader, size, err := h.torrents.OpenStream(magnetURI, fileName)
	if err != nil {
		respondError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Type", selector.ContentType(fileName))
	c.Header("Accept-Ranges", "bytes")

	rangeHeader := c.GetHeader("Range")
	if rangeHeader == "" {
		c.Header("Content-Length", strconv.FormatInt(size, 10))
		c.Status(http.StatusOK)
		copyStream(c, reader, size)
		return
	}

	start, end, err := parseRange(rangeHeader, size)
	if err != nil {
		c.Header("Content-Range", fmt.Sprintf("bytes */%d", size))
		c.JSON(http.StatusRequestedRangeNotSatisfiable, gin.H{"error": err.Error()})
		return
	}

	if _, err := reader.Seek(start, io.SeekStart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("seek stream: %v", err)})
		return
	}

	length := end - start + 1
	c.Header("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, size))
	c.Header("Content-Length", strconv.FormatInt(length, 10))
	c.Status(http.StatusPartialContent)
	copyStream(c, reader, length)
}

func copyStream(c *gin.Context, reader io.Reader, length int64) {
	// Client disconnects mid-stream are routine for seeks; they are
	// not worth surfacing as errors.
	_, _ = io.CopyN(c.Writer, reader, length)
}

// parseRange handles single "bytes=start-end" ranges. The end defaults
// to the last byte when omitted.
func parseRange(header string, size int64) (int64, int64, error) {
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return 0, 0, fmt.Errorf("unsupported range unit in %q", header)
	}

	startStr, endStr, ok := strings.Cut(spec, "-")
	if !ok {
		return 0, 0, fmt.Errorf("malformed range %q", header)
	}

	var (
		start int64
		end   = size - 1
		err   error
	)
	if startStr == "" {
		// Suffix range: last N bytes.
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || n <= 0 {
			return 0, 0, fmt.Errorf("malformed suffix range %q", header)
		}
		if n > size {
			n = size
		}
		return size - n, size - 1, nil
	}

	start, err = strconv.ParseInt(startStr, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed range start %q", header)
	}
	if endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("malformed range end %q", header)
		}
	}

	if start < 0 || start > end || start >= size {
		return 0, 0, fmt.Errorf("range %q out of bounds for size %d", header, size)
	}
	if end >= size {
		end = size - 1
	}
	return start, end, nil
}
