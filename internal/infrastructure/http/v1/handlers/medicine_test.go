package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apotheca/internal/domain/medicine"
	"apotheca/internal/infrastructure/http/v1/middleware"
)

type stubMedicineRepo struct {
	result []*medicine.Medicine
}

func (s *stubMedicineRepo) Search(context.Context, string, int) ([]*medicine.Medicine, error) {
	return s.result, nil
}

func medicineTestRouter(repo medicine.Repository) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.ErrorHandler())

	// Registered without any auth middleware, same as the live router.
	h := NewMedicineHandler(NewBaseHandler(), medicine.NewService(repo))
	h.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestMedicineSearch_NoTokenNeeded(t *testing.T) {
	router := medicineTestRouter(&stubMedicineRepo{result: []*medicine.Medicine{
		{Name: "Dolo 650 Tablet", Manufacturer: "Micro Labs Ltd"},
	}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/medicines/search?q=dolo", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Medicines []struct {
			Name string `json:"name"`
		} `json:"medicines"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Medicines, 1)
	assert.Equal(t, "Dolo 650 Tablet", body.Medicines[0].Name)
}

func TestMedicineSearch_ShortQueryRejected(t *testing.T) {
	router := medicineTestRouter(&stubMedicineRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/medicines/search?q=d", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
