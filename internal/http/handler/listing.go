package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"listingstudio.app/studio/internal/http/dto"
	"listingstudio.app/studio/internal/model"
	"listingstudio.app/studio/internal/service"
)

type ListingHandler struct {
	listingService service.ListingService
}

func NewListingHandler(listingService service.ListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

func (h *ListingHandler) CreateSession(c *gin.Context) {
	sess := h.listingService.CreateSession(c.Request.Context())
	c.JSON(http.StatusCreated, dto.CreateSessionResponse{
		SessionID: sess.ID,
		CreatedAt: sess.CreatedAt,
	})
}

// Submit accepts the listing form as multipart/form-data.
func (h *ListingHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := c.Param("session_id")

	snapshot, err := parseSnapshot(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.listingService.Submit(ctx, sessionID, snapshot)
	if err != nil {
		writeError(c, err, "generate listing")
		return
	}

	c.JSON(http.StatusOK, dto.ToSubmitResponse(result.Entry, result.Outcome))
}

func (h *ListingHandler) Get(c *gin.Context) {
	entry, err := h.listingService.Current(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		if errors.Is(err, service.ErrNoListing) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no listing has been generated yet"})
			return
		}
		writeError(c, err, "get listing")
		return
	}
	c.JSON(http.StatusOK, dto.ToListingResponse(*entry))
}

// RegenerateDescription optionally accepts the current form as
// multipart/form-data; without a body the cached form is used.
func (h *ListingHandler) RegenerateDescription(c *gin.Context) {
	var current *model.FormSnapshot
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		snapshot, err := parseSnapshot(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		current = &snapshot
	}

	entry, err := h.listingService.RegenerateDescription(c.Request.Context(), c.Param("session_id"), current)
	if err != nil {
		writeError(c, err, "regenerate description")
		return
	}
	c.JSON(http.StatusOK, dto.ToListingResponse(*entry))
}

func (h *ListingHandler) Reset(c *gin.Context) {
	if err := h.listingService.Reset(c.Request.Context(), c.Param("session_id")); err != nil {
		writeError(c, err, "reset session")
		return
	}
	c.Status(http.StatusNoContent)
}

// parseSnapshot reads the photos and property facts from the form. Each photo
// may carry a last_modified value, matched by position, as Unix milliseconds
// or RFC 3339.
func parseSnapshot(c *gin.Context) (model.FormSnapshot, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return model.FormSnapshot{}, fmt.Errorf("invalid multipart form: %w", err)
	}

	files := form.File["photos"]
	lastModified := form.Value["last_modified"]

	photos := make([]model.Photo, 0, len(files))
	for i, fh := range files {
		var modified time.Time
		if i < len(lastModified) {
			modified, err = parseLastModified(lastModified[i])
			if err != nil {
				return model.FormSnapshot{}, fmt.Errorf("invalid last_modified for %s: %w", fh.Filename, err)
			}
		}

		photo, err := readPhoto(fh, modified)
		if err != nil {
			return model.FormSnapshot{}, err
		}
		photos = append(photos, photo)
	}

	snapshot := model.FormSnapshot{
		Photos:     photos,
		Address:    c.PostForm("address"),
		Category:   model.PropertyCategory(strings.ToLower(strings.TrimSpace(c.PostForm("category")))),
		Layout:     optionalForm(c, "layout"),
		Highlights: optionalForm(c, "highlights"),
	}

	if raw := strings.TrimSpace(c.PostForm("size")); raw != "" {
		size, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil {
			return model.FormSnapshot{}, fmt.Errorf("invalid size %q", raw)
		}
		snapshot.Size = &size
	}

	return snapshot, nil
}

func readPhoto(fh *multipart.FileHeader, modified time.Time) (model.Photo, error) {
	f, err := fh.Open()
	if err != nil {
		return model.Photo{}, fmt.Errorf("opening %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return model.Photo{}, fmt.Errorf("reading %s: %w", fh.Filename, err)
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}

	return model.Photo{
		PhotoIdentity: model.PhotoIdentity{
			Name:         fh.Filename,
			Size:         fh.Size,
			LastModified: modified,
		},
		MimeType: mimeType,
		Data:     data,
	}, nil
}

func parseLastModified(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Parse(time.RFC3339Nano, raw)
}

func optionalForm(c *gin.Context, key string) *string {
	v, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	return &v
}
