package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/trektales/trektalesbackend/config"
	"github.com/trektales/trektalesbackend/models"
	"github.com/trektales/trektalesbackend/repository"
	"github.com/trektales/trektalesbackend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setTestSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_ACCESS_SECRET", "test-access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "test-refresh-secret")
}

func performJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRegisterSuccess(t *testing.T) {
	setTestSecrets(t)

	users := new(MockUserRepository)
	users.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)
	users.On("SetRefreshToken", mock.Anything, mock.Anything, mock.AnythingOfType("string")).Return(nil)

	r := gin.New()
	r.POST("/auth/register", Register(users))

	w := performJSON(r, http.MethodPost, "/auth/register", gin.H{
		"name":     "Maya Trekker",
		"email":    "maya@example.com",
		"password": "supersecret",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.NotEmpty(t, body["accessToken"])
	assert.NotEmpty(t, body["refreshToken"])
	user, ok := body["user"].(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, "maya@example.com", user["email"])
	assert.Equal(t, "user", user["role"])
	assert.NotContains(t, user, "passwordHash")
	assert.NotContains(t, user, "refreshToken")
	users.AssertExpectations(t)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	setTestSecrets(t)

	users := new(MockUserRepository)
	users.On("Create", mock.Anything, mock.Anything).
		Return(errors.New("write exception: write errors: [E11000 duplicate key error collection: trektales.users index: email_1]"))

	r := gin.New()
	r.POST("/auth/register", Register(users))

	w := performJSON(r, http.MethodPost, "/auth/register", gin.H{
		"name":     "Maya Trekker",
		"email":    "maya@example.com",
		"password": "supersecret",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "email already registered", decodeBody(t, w)["message"])
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	users := new(MockUserRepository)

	r := gin.New()
	r.POST("/auth/register", Register(users))

	w := performJSON(r, http.MethodPost, "/auth/register", gin.H{
		"name":     "Maya Trekker",
		"email":    "maya@example.com",
		"password": "short",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLoginWrongPassword(t *testing.T) {
	setTestSecrets(t)

	hash, err := utils.HashPassword("the-right-password")
	assert.NoError(t, err)

	users := new(MockUserRepository)
	users.On("FindByEmail", mock.Anything, "maya@example.com").Return(&models.User{
		ID:           bson.NewObjectID(),
		Email:        "maya@example.com",
		PasswordHash: hash,
		Role:         models.RoleUser,
	}, nil)

	r := gin.New()
	r.POST("/auth/login", Login(users))

	w := performJSON(r, http.MethodPost, "/auth/login", gin.H{
		"email":    "maya@example.com",
		"password": "the-wrong-password",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid credentials", decodeBody(t, w)["message"])
	users.AssertNotCalled(t, "SetRefreshToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoginUnknownEmailSameResponse(t *testing.T) {
	setTestSecrets(t)

	users := new(MockUserRepository)
	users.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrNotFound)

	r := gin.New()
	r.POST("/auth/login", Login(users))

	w := performJSON(r, http.MethodPost, "/auth/login", gin.H{
		"email":    "ghost@example.com",
		"password": "whatever-password",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid credentials", decodeBody(t, w)["message"])
}

func TestGoogleAuthCreatesAccountOnFirstVisit(t *testing.T) {
	setTestSecrets(t)

	provider := new(MockIdentityProvider)
	provider.On("Exchange", mock.Anything, "auth-code").Return(&config.GoogleUserInfo{
		Email:   "maya@example.com",
		Name:    "Maya Trekker",
		Picture: "https://example.com/maya.png",
	}, nil)

	var created *models.User
	users := new(MockUserRepository)
	users.On("FindByEmail", mock.Anything, "maya@example.com").Return(nil, repository.ErrNotFound)
	users.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*models.User) }).
		Return(nil)
	users.On("SetRefreshToken", mock.Anything, mock.Anything, mock.AnythingOfType("string")).Return(nil)

	r := gin.New()
	r.POST("/auth/google", GoogleAuth(users, provider))

	w := performJSON(r, http.MethodPost, "/auth/google", gin.H{"code": "auth-code"})

	assert.Equal(t, http.StatusOK, w.Code)
	if assert.NotNil(t, created) {
		assert.True(t, created.IsGoogle)
		assert.Equal(t, "maya@example.com", created.Email)
		assert.Empty(t, created.PasswordHash)
	}
	body := decodeBody(t, w)
	assert.NotEmpty(t, body["accessToken"])
	assert.NotEmpty(t, body["refreshToken"])
}

func TestGoogleAuthRejectsBadCode(t *testing.T) {
	setTestSecrets(t)

	provider := new(MockIdentityProvider)
	provider.On("Exchange", mock.Anything, "bad-code").Return(nil, errors.New("oauth2: invalid_grant"))

	users := new(MockUserRepository)

	r := gin.New()
	r.POST("/auth/google", GoogleAuth(users, provider))

	w := performJSON(r, http.MethodPost, "/auth/google", gin.H{"code": "bad-code"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

func TestRefreshRotatesStoredToken(t *testing.T) {
	setTestSecrets(t)

	userID := bson.NewObjectID()
	stored, err := utils.GenerateRefreshToken(userID.Hex())
	assert.NoError(t, err)

	users := new(MockUserRepository)
	users.On("FindByID", mock.Anything, userID).Return(&models.User{
		ID:           userID,
		Email:        "maya@example.com",
		Role:         models.RoleUser,
		RefreshToken: stored,
	}, nil)

	var rotatedTo string
	users.On("SetRefreshToken", mock.Anything, userID, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { rotatedTo = args.String(2) }).
		Return(nil)

	r := gin.New()
	r.POST("/auth/refresh", Refresh(users))

	w := performJSON(r, http.MethodPost, "/auth/refresh", gin.H{"refreshToken": stored})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.NotEmpty(t, body["accessToken"])
	assert.Equal(t, rotatedTo, body["refreshToken"])
	assert.NotEmpty(t, rotatedTo)
	assert.NotEqual(t, stored, rotatedTo)
	users.AssertExpectations(t)
}

func TestRefreshImmediateReplayOfOldTokenFails(t *testing.T) {
	setTestSecrets(t)

	userID := bson.NewObjectID()
	r1, err := utils.GenerateRefreshToken(userID.Hex())
	assert.NoError(t, err)

	// the shared record plays the database: SetRefreshToken overwrites
	// the stored value, so the second request sees the rotated state
	record := &models.User{ID: userID, Role: models.RoleUser, RefreshToken: r1}

	users := new(MockUserRepository)
	users.On("FindByID", mock.Anything, userID).Return(record, nil)
	users.On("SetRefreshToken", mock.Anything, userID, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { record.RefreshToken = args.String(2) }).
		Return(nil)

	r := gin.New()
	r.POST("/auth/refresh", Refresh(users))

	w := performJSON(r, http.MethodPost, "/auth/refresh", gin.H{"refreshToken": r1})
	assert.Equal(t, http.StatusOK, w.Code)
	r2, _ := decodeBody(t, w)["refreshToken"].(string)
	assert.NotEqual(t, r1, r2)

	// replaying the rotated-out token in the same second must be refused
	w = performJSON(r, http.MethodPost, "/auth/refresh", gin.H{"refreshToken": r1})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "not authorized", decodeBody(t, w)["message"])

	// while the freshly issued one still rotates
	w = performJSON(r, http.MethodPost, "/auth/refresh", gin.H{"refreshToken": r2})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRefreshRejectsRotatedOutToken(t *testing.T) {
	setTestSecrets(t)

	userID := bson.NewObjectID()
	stale, err := utils.GenerateRefreshToken(userID.Hex())
	assert.NoError(t, err)

	// the record now holds a different token; the stale one still has a
	// valid signature but must be refused
	users := new(MockUserRepository)
	users.On("FindByID", mock.Anything, userID).Return(&models.User{
		ID:           userID,
		Role:         models.RoleUser,
		RefreshToken: "rotated-to-a-newer-token",
	}, nil)

	r := gin.New()
	r.POST("/auth/refresh", Refresh(users))

	w := performJSON(r, http.MethodPost, "/auth/refresh", gin.H{"refreshToken": stale})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "not authorized", decodeBody(t, w)["message"])
	users.AssertNotCalled(t, "SetRefreshToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	setTestSecrets(t)

	users := new(MockUserRepository)

	r := gin.New()
	r.POST("/auth/refresh", Refresh(users))

	w := performJSON(r, http.MethodPost, "/auth/refresh", gin.H{"refreshToken": "not-a-jwt"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "not authorized", decodeBody(t, w)["message"])
	users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestRefreshRejectsTokenForDeletedUser(t *testing.T) {
	setTestSecrets(t)

	userID := bson.NewObjectID()
	token, err := utils.GenerateRefreshToken(userID.Hex())
	assert.NoError(t, err)

	users := new(MockUserRepository)
	users.On("FindByID", mock.Anything, userID).Return(nil, repository.ErrNotFound)

	r := gin.New()
	r.POST("/auth/refresh", Refresh(users))

	w := performJSON(r, http.MethodPost, "/auth/refresh", gin.H{"refreshToken": token})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "not authorized", decodeBody(t, w)["message"])
}

func TestLogoutClearsStoredRefreshToken(t *testing.T) {
	userID := bson.NewObjectID()

	users := new(MockUserRepository)
	users.On("SetRefreshToken", mock.Anything, userID, "").Return(nil)

	r := gin.New()
	r.POST("/auth/logout", withIdentity(userID), Logout(users))

	w := performJSON(r, http.MethodPost, "/auth/logout", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	users.AssertExpectations(t)
}

// withIdentity stands in for the auth middleware in handler tests.
func withIdentity(id bson.ObjectID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", id.Hex())
		c.Next()
	}
}
