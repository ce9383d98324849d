package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"listingstudio.app/studio/internal/http/dto"
	"listingstudio.app/studio/internal/service"
	"listingstudio.app/studio/internal/staging"
)

type StagingStatusHandler struct {
	stagingService service.StagingService
	redis          *redis.Client
	prefix         string
}

func NewStagingStatusHandler(stagingService service.StagingService, redisClient *redis.Client, streamPrefix string) *StagingStatusHandler {
	return &StagingStatusHandler{stagingService: stagingService, redis: redisClient, prefix: streamPrefix}
}

// Stream tails the session's status stream as server-sent events, one
// "status" event per task transition. Clients resume with ?last_id=<stream id>.
// Subscribing before the first staging run is allowed.
func (h *StagingStatusHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()

	sessionID := c.Param("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing session_id"})
		return
	}

	if _, err := h.stagingService.Status(ctx, sessionID); err != nil && !errors.Is(err, service.ErrNoStagingRun) {
		writeError(c, err, "stream staging status")
		return
	}

	if h.redis == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "redis not configured"})
		return
	}

	stream := staging.StreamName(h.prefix, sessionID)
	lastID := c.Query("last_id")
	if lastID == "" {
		lastID = "$"
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}

	setSSEHeaders(c.Writer)
	sseWrite(c.Writer, "ping", "ready")
	flusher.Flush()

	for {
		if ctx.Err() != nil {
			return
		}

		res, err := h.redis.XRead(ctx, &redis.XReadArgs{
			Streams: []string{stream, lastID},
			Block:   25 * time.Second,
			Count:   100,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				sseWrite(c.Writer, "ping", time.Now().UTC().Format(time.RFC3339Nano))
				flusher.Flush()
				continue
			}
			if ctx.Err() != nil {
				return
			}
			sseWrite(c.Writer, "error", map[string]string{"error": err.Error()})
			flusher.Flush()
			time.Sleep(time.Second)
			continue
		}

		for _, streamRes := range res {
			for _, msg := range streamRes.Messages {
				lastID = msg.ID
				event, err := dto.ToStagingStatusEvent(msg.ID, msg.Values, photosPath(sessionID))
				if err != nil {
					slog.WarnContext(ctx, "skipping malformed status entry", "stream", stream, "error", err)
					continue
				}
				sseWrite(c.Writer, "status", event)
				flusher.Flush()
			}
		}
	}
}

func setSSEHeaders(w http.ResponseWriter) {
	headers := w.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
}

func sseWrite(w http.ResponseWriter, event string, data any) {
	payload := marshalPayload(data)
	if event != "" {
		_, _ = fmt.Fprintf(w, "event: %s\n", event)
	}
	for _, line := range strings.Split(payload, "\n") {
		_, _ = fmt.Fprintf(w, "data: %s\n", line)
	}
	_, _ = fmt.Fprint(w, "\n")
}

func marshalPayload(data any) string {
	switch payload := data.(type) {
	case string:
		return payload
	case []byte:
		return string(payload)
	default:
		bytes, err := json.Marshal(payload)
		if err != nil {
			return fmt.Sprintf("%v", data)
		}
		return string(bytes)
	}
}
