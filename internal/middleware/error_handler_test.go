package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{
			name:           "Validation Error",
			err:            &ValidationError{Message: "invalid input"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Auth Error",
			err:            &AuthError{Message: "unauthorized"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Not Found Error",
			err:            &NotFoundError{Message: "resource not found"},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Conflict Error",
			err:            &ConflictError{Message: "request already decided"},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Generic Error",
			err:            assert.AnError,
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(ErrorHandler())

			router.GET("/test", func(c *gin.Context) {
				c.Error(tt.err)
			})

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/test", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response ErrorResponse
			err := json.NewDecoder(w.Body).Decode(&response)
			assert.NoError(t, err)
			assert.Equal(t, tt.err.Error(), response.Error)
		})
	}
}
