package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/capability-resolver/services/catalog"
	"go.uber.org/zap"
)

func TestCatalogHandler_Families(t *testing.T) {
	handler := NewCatalogHandler(nil, zap.NewNop())

	t.Run("lists every family", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.HandleListFamilies(w, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/providers", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Data []catalog.ProviderConfig `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

		families := make([]string, 0, len(response.Data))
		for _, cfg := range response.Data {
			families = append(families, cfg.Family)
		}
		assert.Equal(t, catalog.Default().Families(), families)
		assert.Contains(t, families, catalog.CustomFamily)
	})

	tests := []struct {
		name       string
		family     string
		wantFamily string
	}{
		{"known family", "anthropic", "anthropic"},
		{"case insensitive", "OpenAI", "openai"},
		{"unknown family falls back to custom", "acme", catalog.CustomFamily},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/v1/catalog/providers/"+tt.family, nil),
				map[string]string{"family": tt.family})
			w := httptest.NewRecorder()

			handler.HandleGetFamily(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantFamily, decodeData(t, w)["family"])
		})
	}
}

func TestCatalogHandler_ListModels(t *testing.T) {
	handler := NewCatalogHandler(catalog.Default(), zap.NewNop())

	list := func(family, query string) *httptest.ResponseRecorder {
		req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/v1/catalog/providers/"+family+"/models"+query, nil),
			map[string]string{"family": family})
		w := httptest.NewRecorder()
		handler.HandleListModels(w, req)
		return w
	}

	t.Run("all models sorted by id", func(t *testing.T) {
		w := list("openai", "")
		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Data []catalog.ModelDescriptor `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

		ids := make([]string, 0, len(response.Data))
		for _, m := range response.Data {
			ids = append(ids, m.ID)
		}
		assert.Equal(t, []string{"gpt-3.5-turbo", "gpt-4o", "gpt-4o-mini", "whisper-1"}, ids)
	})

	t.Run("filtered by capability", func(t *testing.T) {
		w := list("openai", "?capability=Audio")
		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Data []string `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, []string{"whisper-1"}, response.Data)
	})

	t.Run("no match is an empty list", func(t *testing.T) {
		w := list("anthropic", "?capability=video")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":[]}`, w.Body.String())
	})

	t.Run("unknown capability is rejected", func(t *testing.T) {
		w := list("openai", "?capability=smell")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		response := decodeError(t, w)
		assert.Equal(t, "bad_request", response.Error)
		assert.Equal(t, "smell", response.Details["capability"])
		assert.Equal(t, []interface{}{"text", "image", "video", "audio"}, response.Details["allowed"])
	})
}

func TestCatalogHandler_GetModel(t *testing.T) {
	handler := NewCatalogHandler(nil, zap.NewNop())

	tests := []struct {
		name           string
		family         string
		model          string
		expectedStatus int
	}{
		{"known model", "google", "gemini-1.5-flash", http.StatusOK},
		{"model of another family", "openai", "gemini-1.5-flash", http.StatusNotFound},
		{"unknown family", "acme", "gpt-4o", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil),
				map[string]string{"family": tt.family, "model": tt.model})
			w := httptest.NewRecorder()

			handler.HandleGetModel(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				data := decodeData(t, w)
				assert.Equal(t, tt.model, data["id"])
				assert.Equal(t, []interface{}{"text", "image", "video", "audio"}, data["capabilities"])
			}
		})
	}
}

func TestCatalogHandler_CheapestTextModel(t *testing.T) {
	handler := NewCatalogHandler(nil, zap.NewNop())

	cheapest := func(family string) *httptest.ResponseRecorder {
		req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"family": family})
		w := httptest.NewRecorder()
		handler.HandleCheapestTextModel(w, req)
		return w
	}

	t.Run("returns the lowest cost text model", func(t *testing.T) {
		w := cheapest("openai")
		assert.Equal(t, http.StatusOK, w.Code)

		data := decodeData(t, w)
		assert.Equal(t, "openai", data["family"])
		model := data["model"].(map[string]interface{})
		assert.Equal(t, "gpt-4o-mini", model["id"])
		assert.Equal(t, 0.00015, model["cost_per_unit"])
	})

	t.Run("family without text models", func(t *testing.T) {
		w := cheapest(catalog.CustomFamily)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "not_found", decodeError(t, w).Error)
	})
}

func TestCatalogHandler_Listings(t *testing.T) {
	handler := NewCatalogHandler(nil, zap.NewNop())

	t.Run("multimodal models", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.HandleMultimodalModels(w, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/multimodal", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Data map[string][]string `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, []string{"gemini-1.5-pro", "gemini-1.5-flash"}, response.Data["google"])
		assert.NotContains(t, response.Data, catalog.CustomFamily)
	})

	t.Run("capabilities in canonical order", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.HandleListCapabilities(w, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/capabilities", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":["text","image","video","audio"]}`, w.Body.String())
	})
}
