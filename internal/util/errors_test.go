package util

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func statusFor(err error) int {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	FromError(c, err)
	return w.Code
}

func TestFromError_MapsKindsToStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(ErrSessionNotFound))
	assert.Equal(t, http.StatusNotFound, statusFor(ErrTemplateNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(ErrActiveSession))
	assert.Equal(t, http.StatusConflict, statusFor(ErrDuplicateAnswer))
	assert.Equal(t, http.StatusConflict, statusFor(ErrConcurrentUpdate))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(ErrSessionNotActive))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(ErrSessionFinished))
	assert.Equal(t, http.StatusBadRequest, statusFor(ValidationError("bad input")))
	assert.Equal(t, http.StatusForbidden, statusFor(ErrPermissionDenied))
	assert.Equal(t, http.StatusUnauthorized, statusFor(ErrInvalidCredential))
	assert.Equal(t, http.StatusInternalServerError, statusFor(StorageError(assert.AnError)))
}

func TestStorageError_NilPassthrough(t *testing.T) {
	assert.NoError(t, StorageError(nil))
}
