package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmagtibay/clinic-api/internal/model"
	"github.com/rmagtibay/clinic-api/pkg/auth"
)

func authTestRouter(t *testing.T) (*gin.Engine, auth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtSvc := auth.NewJWTService("access-secret", "refresh-secret", 1)
	mw := NewAuthMiddleware(jwtSvc)

	r := gin.New()
	r.GET("/staff", mw.Authenticate(), mw.RequireStaff(), func(c *gin.Context) {
		userID := c.MustGet("userID").(uuid.UUID)
		c.JSON(http.StatusOK, gin.H{"user_id": userID.String()})
	})
	return r, jwtSvc
}

func doRequest(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/staff", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticateRejectsMissingOrMalformedHeader(t *testing.T) {
	r, _ := authTestRouter(t)

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "Bearer not-a-token").Code)
}

func TestAuthenticateAcceptsStaffToken(t *testing.T) {
	r, jwtSvc := authTestRouter(t)

	staff := &model.User{Username: "reception", IsStaff: true}
	staff.ID = uuid.New()
	token, err := jwtSvc.GenerateAccessToken(staff)
	require.NoError(t, err)

	w := doRequest(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), staff.ID.String())
}

func TestRequireStaffRejectsPatientToken(t *testing.T) {
	r, jwtSvc := authTestRouter(t)

	patient := &model.User{Username: "juan.dc", IsStaff: false}
	patient.ID = uuid.New()
	token, err := jwtSvc.GenerateAccessToken(patient)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, doRequest(r, "Bearer "+token).Code)
}
