package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestTaskHandler_Create_NonPositivePrice(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &TaskHandler{}
	r.POST("/tasks", handler.Create)

	body := `{"title":"Лендинг","price":-10,"customer_id":"a2b5e7c8-1111-4222-8333-444455556666"}`
	req, _ := http.NewRequest("POST", "/tasks", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskHandler_Get_InvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &TaskHandler{}
	r.GET("/tasks/:id", handler.Get)

	req, _ := http.NewRequest("GET", "/tasks/invalid-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWSHandler_MissingUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewWSHandler(nil)
	r.GET("/ws", handler.Handle)

	req, _ := http.NewRequest("GET", "/ws", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
