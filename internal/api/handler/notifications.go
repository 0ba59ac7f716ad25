package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/albapepper/nudge/internal/api/respond"
	"github.com/albapepper/nudge/internal/auth"
	"github.com/albapepper/nudge/internal/cache"
	"github.com/albapepper/nudge/internal/maintenance"
	"github.com/albapepper/nudge/internal/notifications"
)

// RunResponse is returned by the batch sweep.
type RunResponse struct {
	OK                bool  `json:"ok"`
	Profiles          int   `json:"profiles"`
	Processed         int   `json:"processed"`
	NotificationsSent int   `json:"notificationsSent"`
	Skipped           int   `json:"skipped"`
	Failed            int   `json:"failed"`
	DurationMs        int64 `json:"durationMs"`
}

// CheckResponse is returned by the on-demand check.
type CheckResponse struct {
	OK                bool `json:"ok"`
	NotificationsSent int  `json:"notificationsSent"`
}

// RunNotifications sweeps every profile.
// @Summary Run notification sweep
// @Description Evaluates every profile and records due notifications. Called by the external scheduler; safe to call repeatedly.
// @Tags notifications
// @Produce json
// @Param X-Cron-Secret header string false "Shared cron secret (or Authorization: Bearer <secret>)"
// @Success 200 {object} RunResponse
// @Failure 401 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /notifications/run [post]
func (h *Handler) RunNotifications(w http.ResponseWriter, r *http.Request) {
	res, err := h.runner.RunAll(r.Context(), h.now())
	if err != nil {
		h.logger.Error("Notification sweep failed", "error", err)
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "RUN_FAILED", "Notification sweep failed", err.Error())
		return
	}

	maintenance.CacheLastRun(h.cache)(res)

	respond.WriteJSONObject(w, http.StatusOK, RunResponse{
		OK:                true,
		Profiles:          res.Profiles,
		Processed:         res.Processed,
		NotificationsSent: res.Sent,
		Skipped:           res.Skipped,
		Failed:            res.Failed,
		DurationMs:        res.Duration.Milliseconds(),
	})
}

// CheckNotifications evaluates the calling user only.
// @Summary Check my notifications
// @Description Evaluates the authenticated user now and records due notifications. Uses the same rules and deduplication as the sweep.
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} CheckResponse
// @Failure 401 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /notifications/check [post]
func (h *Handler) CheckNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFrom(r.Context())
	if !ok {
		respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid access token")
		return
	}

	ctx := r.Context()
	if h.cfg.UserTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.UserTimeout)
		defer cancel()
	}

	res, err := h.engine.CheckUser(ctx, userID, h.now())
	switch {
	case errors.Is(err, notifications.ErrProfileNotFound):
		respond.WriteError(w, http.StatusNotFound, "PROFILE_NOT_FOUND", "No profile for this user")
		return
	case err != nil:
		h.logger.Warn("On-demand check failed", "user_id", userID, "sent", res.Sent, "error", err)
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "CHECK_FAILED", "Notification check failed", err.Error())
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, CheckResponse{OK: true, NotificationsSent: res.Sent})
}

// LastRun serves the summary of the most recent sweep.
// @Summary Last sweep summary
// @Description Returns the result of the most recent sweep run by this instance. Supports ETag revalidation.
// @Tags notifications
// @Produce json
// @Param X-Cron-Secret header string false "Shared cron secret (or Authorization: Bearer <secret>)"
// @Success 200 {object} notifications.BatchResult
// @Success 304 "Not Modified"
// @Failure 404 {object} respond.ErrorResponse
// @Router /notifications/last-run [get]
func (h *Handler) LastRun(w http.ResponseWriter, r *http.Request) {
	data, etag, ok := h.cache.Get(cache.KeyLastRun)
	if !ok {
		respond.WriteError(w, http.StatusNotFound, "NO_RUN", "No sweep has completed on this instance")
		return
	}
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, cache.TTLPoll, true)
}
