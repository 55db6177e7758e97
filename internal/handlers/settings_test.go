package handlers

import (
	"net/http"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func newSettingsRouter(store *memSettingsStore) *mux.Router {
	handler := NewSettingsHandler(store, zap.NewNop())
	r := mux.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func TestGetSettingsReturnsDefaults(t *testing.T) {
	t.Parallel()

	router := newSettingsRouter(newMemSettingsStore())
	rec := doJSON(t, router, http.MethodGet, "/settings", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	data := envelopeData(t, rec)
	if data["pomodoro_work_minutes"] != float64(25) {
		t.Errorf("work minutes = %v, want 25", data["pomodoro_work_minutes"])
	}
	if data["daily_task_limit"] != float64(4) {
		t.Errorf("daily limit = %v, want 4", data["daily_task_limit"])
	}
	if data["auto_rollover"] != true {
		t.Error("auto_rollover should default to true")
	}
	if _, exposed := data["google_token"]; exposed {
		t.Error("google token must never appear in responses")
	}
}

func TestUpdateSettings(t *testing.T) {
	t.Parallel()

	store := newMemSettingsStore()
	router := newSettingsRouter(store)

	rec := doJSON(t, router, http.MethodPut, "/settings",
		`{"pomodoro_work_minutes": 50, "daily_task_limit": 6, "dark_mode": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	if store.settings.PomodoroWorkMinutes != 50 {
		t.Errorf("work minutes = %d, want 50", store.settings.PomodoroWorkMinutes)
	}
	if store.settings.DailyTaskLimit != 6 {
		t.Errorf("daily limit = %d, want 6", store.settings.DailyTaskLimit)
	}
	if !store.settings.DarkMode {
		t.Error("dark mode not applied")
	}
	// Untouched fields keep their values.
	if store.settings.PomodoroShortBreak != 5 {
		t.Errorf("short break = %d, want untouched 5", store.settings.PomodoroShortBreak)
	}
}

func TestUpdateSettingsValidation(t *testing.T) {
	t.Parallel()

	router := newSettingsRouter(newMemSettingsStore())

	tests := []struct {
		name string
		body string
	}{
		{"zero work minutes", `{"pomodoro_work_minutes": 0}`},
		{"excessive limit", `{"daily_task_limit": 100}`},
		{"token injection rejected", `{"google_token": "stolen"}`},
		{"connection flag injection rejected", `{"google_calendar_connected": true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := doJSON(t, router, http.MethodPut, "/settings", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (%s)", rec.Code, rec.Body.String())
			}
		})
	}
}
