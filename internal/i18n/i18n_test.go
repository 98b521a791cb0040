package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func initBundle(t *testing.T) {
	t.Helper()
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}
}

func TestMiddlewareSelectsLanguage(t *testing.T) {
	initBundle(t)

	tests := []struct {
		name   string
		header string
		query  string
		want   string
	}{
		{"default english", "", "", "Profile saved."},
		{"accept-language hindi", "hi", "", "प्रोफ़ाइल सहेज ली गई।"},
		{"weighted header", "hi-IN,hi;q=0.9,en;q=0.8", "", "प्रोफ़ाइल सहेज ली गई।"},
		{"unknown falls back", "fr", "", "Profile saved."},
		{"query overrides header", "en", "hi", "प्रोफ़ाइल सहेज ली गई।"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = T(r.Context(), "profile.saved")
			}))
			url := "/api/profile"
			if tt.query != "" {
				url += "?lang=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, url, nil)
			if tt.header != "" {
				req.Header.Set("Accept-Language", tt.header)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("translation = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTdTemplateData(t *testing.T) {
	initBundle(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	got := Td(req.Context(), "error.mentor_not_found", map[string]any{"Query": "Alchemy"})
	if got != "No mentor found for Alchemy." {
		t.Errorf("Td = %q", got)
	}
}

func TestMissingIDReturnsID(t *testing.T) {
	initBundle(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := T(req.Context(), "error.does_not_exist"); got != "error.does_not_exist" {
		t.Errorf("T = %q, want the message ID back", got)
	}
}
