package httpapi

import (
	"net/http"
	"strconv"
)

const defaultNotificationLimit = 50

type NotificationsHandler struct {
	Log NotificationLog
}

func (h NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultNotificationLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			WriteError(w, r, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = min(n, 500)
	}

	recs, err := h.Log.ListNotifications(r.Context(), limit)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, recs)
}
