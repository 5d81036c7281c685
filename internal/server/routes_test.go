package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"ddj/internal/apperr"
)

func TestClampLimit(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		def  int
		min  int
		max  int
		want int
	}{
		{"empty uses default", "", 20, 1, 100, 20},
		{"non-numeric uses default", "abc", 20, 1, 100, 20},
		{"within range", "50", 20, 1, 100, 50},
		{"clamped below min", "0", 20, 1, 100, 1},
		{"clamped above max", "500", 20, 1, 100, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := clampLimit(tc.raw, tc.def, tc.min, tc.max); got != tc.want {
				t.Errorf("clampLimit(%q) = %d, want %d", tc.raw, got, tc.want)
			}
		})
	}
}

func TestStatusForKind(t *testing.T) {
	cases := map[apperr.Kind]int{
		apperr.BadRequest:      fiber.StatusBadRequest,
		apperr.Unauthorized:    fiber.StatusUnauthorized,
		apperr.Forbidden:       fiber.StatusForbidden,
		apperr.NotFound:        fiber.StatusNotFound,
		apperr.Conflict:        fiber.StatusConflict,
		apperr.TooManyRequests: fiber.StatusTooManyRequests,
		apperr.ConfigError:     fiber.StatusInternalServerError,
		apperr.Internal:        fiber.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := statusForKind(kind); got != want {
			t.Errorf("statusForKind(%s) = %d, want %d", kind, got, want)
		}
	}
}

func TestWriteError(t *testing.T) {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return writeError(c, fiber.StatusBadRequest, "bad input")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if parsed["error"] != "bad input" {
		t.Errorf("error field = %v, want %q", parsed["error"], "bad input")
	}
}
