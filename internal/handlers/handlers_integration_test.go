package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"tradelink/internal/config"
	"tradelink/internal/database"
	"tradelink/internal/server"
	"tradelink/internal/storage"
	"tradelink/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR fake image payload")

type testEnv struct {
	app *fiber.App
	fs  afero.Fs
}

// setupApp builds the full application over an isolated in-memory SQLite database
// and an in-memory image store.
func setupApp(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		AppEnv:   "test",
		Database: config.DatabaseConfig{Driver: "sqlite", DSN: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())},
		Auth:     config.AuthConfig{JWTSecret: "test_jwt_secret", TokenTTL: time.Hour},
		Uploads:  config.UploadConfig{Dir: t.TempDir(), MaxBytes: 1 << 20},
		CORS:     config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Redis:    config.RedisConfig{TTL: time.Minute},
	}

	db, err := database.Open(cfg.Database)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	fs := afero.NewMemMapFs()
	app := server.New(cfg, server.Deps{
		DB:     db,
		Images: storage.NewFSImageStore(fs),
		Log:    logger.Nop(),
	})
	return &testEnv{app: app, fs: fs}
}

type response struct {
	status int
	body   map[string]interface{}
}

func (e *testEnv) do(t *testing.T, req *http.Request, token string) response {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	}
	return response{status: resp.StatusCode, body: body}
}

func jsonRequest(method, path string, payload interface{}) *http.Request {
	raw, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// multipartRequest sends fields as form values and, when imageField is set, a PNG under that name.
func multipartRequest(t *testing.T, method, path string, fields map[string]string, imageField string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if imageField != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="photo.png"`, imageField))
		h.Set("Content-Type", "image/png")
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(pngBytes)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func (e *testEnv) registerSeller(t *testing.T, email string) (string, string) {
	t.Helper()
	res := e.do(t, jsonRequest(http.MethodPost, "/api/sellers/register", map[string]string{
		"businessName":  "Acme",
		"email":         email,
		"password":      "secret123",
		"businessLevel": "small",
		"category":      "products",
		"phone":         "123",
	}), "")
	require.Equal(t, http.StatusCreated, res.status, res.body)
	user := res.body["user"].(map[string]interface{})
	return user["id"].(string), res.body["token"].(string)
}

func (e *testEnv) createChair(t *testing.T, token string) map[string]interface{} {
	t.Helper()
	res := e.do(t, multipartRequest(t, http.MethodPost, "/api/listings/upload", map[string]string{
		"name":         "Chair",
		"categoryType": "product",
		"category":     "home",
		"price":        "50",
		"stock":        "5",
	}, "image"), token)
	require.Equal(t, http.StatusCreated, res.status, res.body)
	return res.body["listing"].(map[string]interface{})
}

func TestSellerRegisterAndLogin(t *testing.T) {
	env := setupApp(t)

	sellerID, token := env.registerSeller(t, "a@x.com")
	assert.NotEmpty(t, token)

	res := env.do(t, jsonRequest(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "a@x.com", "password": "secret123", "role": "seller",
	}), "")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, sellerID, res.body["user"].(map[string]interface{})["id"])
	assert.NotContains(t, res.body["user"], "password")

	res = env.do(t, jsonRequest(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "a@x.com", "password": "wrong-password", "role": "seller",
	}), "")
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "Invalid credentials", res.body["message"])
	assert.Equal(t, false, res.body["success"])

	res = env.do(t, jsonRequest(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "a@x.com", "password": "secret123", "role": "admin",
	}), "")
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "Invalid role", res.body["message"])

	// Same email again within sellers is rejected.
	res = env.do(t, jsonRequest(http.MethodPost, "/api/sellers/register", map[string]string{
		"businessName": "Acme 2", "email": "a@x.com", "password": "secret123",
		"businessLevel": "small", "category": "products", "phone": "456",
	}), "")
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "Email already exists", res.body["message"])
}

func TestBuyerRegister(t *testing.T) {
	env := setupApp(t)

	res := env.do(t, jsonRequest(http.MethodPost, "/api/auth/register", map[string]string{
		"firstName": "Ada", "lastName": "Lovelace", "email": "a@x.com", "password": "secret123",
	}), "")
	require.Equal(t, http.StatusCreated, res.status, res.body)
	assert.Equal(t, "buyer", res.body["role"])
	assert.Equal(t, "buyer_avatar.jpeg", res.body["user"].(map[string]interface{})["buyerImage"])
	buyerToken := res.body["token"].(string)

	res = env.do(t, httptest.NewRequest(http.MethodGet, "/api/buyers/me", nil), buyerToken)
	assert.Equal(t, http.StatusOK, res.status)

	res = env.do(t, httptest.NewRequest(http.MethodGet, "/api/listings/my-products", nil), buyerToken)
	assert.Equal(t, http.StatusForbidden, res.status)

	res = env.do(t, jsonRequest(http.MethodPost, "/api/auth/register", map[string]string{
		"firstName": "Ada", "email": "not-an-email", "password": "secret123",
	}), "")
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "Validation failed", res.body["message"])
	assert.Contains(t, res.body["errors"], "email")
	assert.Contains(t, res.body["errors"], "lastName")

	// A buyer and a seller may share an email.
	_, sellerToken := env.registerSeller(t, "a@x.com")
	assert.NotEmpty(t, sellerToken)
}

func TestListingLifecycle(t *testing.T) {
	env := setupApp(t)
	_, token := env.registerSeller(t, "owner@x.com")

	listing := env.createChair(t, token)
	id := listing["id"].(string)
	assert.Equal(t, float64(5), listing["stock"])
	image := listing["image"].(string)
	exists, err := afero.Exists(env.fs, image)
	require.NoError(t, err)
	assert.True(t, exists)

	res := env.do(t, httptest.NewRequest(http.MethodGet, "/api/listings/my-products", nil), token)
	assert.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, float64(1), res.body["count"])

	// Switching to a service clears the stock and keeps omitted fields.
	res = env.do(t, jsonRequest(http.MethodPut, "/api/listings/"+id, map[string]string{"categoryType": "service"}), token)
	require.Equal(t, http.StatusOK, res.status, res.body)
	updated := res.body["listing"].(map[string]interface{})
	assert.Nil(t, updated["stock"])
	assert.Equal(t, "Chair", updated["name"])
	assert.Equal(t, float64(50), updated["price"])

	// A new image replaces the old file.
	res = env.do(t, multipartRequest(t, http.MethodPut, "/api/listings/"+id, map[string]string{"price": "20"}, "image"), token)
	require.Equal(t, http.StatusOK, res.status, res.body)
	replaced := res.body["listing"].(map[string]interface{})
	assert.Equal(t, float64(20), replaced["price"])
	assert.NotEqual(t, image, replaced["image"])
	exists, err = afero.Exists(env.fs, image)
	require.NoError(t, err)
	assert.False(t, exists)

	res = env.do(t, httptest.NewRequest(http.MethodGet, "/api/listings/get-by-type/service", nil), "")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, float64(1), res.body["count"])

	res = env.do(t, httptest.NewRequest(http.MethodDelete, "/api/listings/"+id, nil), token)
	assert.Equal(t, http.StatusOK, res.status)
	exists, err = afero.Exists(env.fs, replaced["image"].(string))
	require.NoError(t, err)
	assert.False(t, exists)

	res = env.do(t, httptest.NewRequest(http.MethodGet, "/api/listings/"+id, nil), token)
	assert.Equal(t, http.StatusNotFound, res.status)

	res = env.do(t, httptest.NewRequest(http.MethodDelete, "/api/listings/"+id, nil), token)
	assert.Equal(t, http.StatusNotFound, res.status)
}

func TestListingValidation(t *testing.T) {
	env := setupApp(t)
	_, token := env.registerSeller(t, "owner@x.com")

	res := env.do(t, multipartRequest(t, http.MethodPost, "/api/listings/upload", map[string]string{
		"name": "Chair", "categoryType": "product", "category": "home", "price": "50",
	}, "image"), token)
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "Stock is required for products", res.body["message"])

	res = env.do(t, multipartRequest(t, http.MethodPost, "/api/listings/upload", map[string]string{
		"name": "Chair", "categoryType": "product", "category": "home", "price": "50", "stock": "5",
	}, ""), token)
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "Image is required", res.body["message"])

	res = env.do(t, multipartRequest(t, http.MethodPost, "/api/listings/upload", map[string]string{
		"name": "Cleaning", "categoryType": "service", "category": "home", "price": "30", "stock": "9",
	}, "image"), token)
	require.Equal(t, http.StatusCreated, res.status, res.body)
	assert.Nil(t, res.body["listing"].(map[string]interface{})["stock"])

	res = env.do(t, httptest.NewRequest(http.MethodGet, "/api/listings/get-by-type/gadget", nil), "")
	assert.Equal(t, http.StatusBadRequest, res.status)
}

func TestListingOwnership(t *testing.T) {
	env := setupApp(t)
	_, ownerToken := env.registerSeller(t, "owner@x.com")
	_, otherToken := env.registerSeller(t, "other@x.com")

	id := env.createChair(t, ownerToken)["id"].(string)

	res := env.do(t, httptest.NewRequest(http.MethodGet, "/api/listings/"+id, nil), otherToken)
	assert.Equal(t, http.StatusForbidden, res.status)

	res = env.do(t, jsonRequest(http.MethodPut, "/api/listings/"+id, map[string]string{"name": "Stolen"}), otherToken)
	assert.Equal(t, http.StatusForbidden, res.status)

	res = env.do(t, httptest.NewRequest(http.MethodDelete, "/api/listings/"+id, nil), otherToken)
	assert.Equal(t, http.StatusForbidden, res.status)

	res = env.do(t, httptest.NewRequest(http.MethodGet, "/api/listings/"+id, nil), ownerToken)
	assert.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "Chair", res.body["listing"].(map[string]interface{})["name"])

	res = env.do(t, httptest.NewRequest(http.MethodGet, "/api/listings/my-products", nil), otherToken)
	assert.Equal(t, float64(0), res.body["count"])
}

func TestSellerAccountLifecycle(t *testing.T) {
	env := setupApp(t)
	_, token := env.registerSeller(t, "owner@x.com")
	env.createChair(t, token)

	res := env.do(t, jsonRequest(http.MethodPut, "/api/sellers/me", map[string]string{
		"businessName": "Acme Ltd", "currentPassword": "secret123",
	}), token)
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "All password fields are required to change password", res.body["message"])

	res = env.do(t, jsonRequest(http.MethodPut, "/api/sellers/me", map[string]string{
		"businessName":    "Acme Ltd",
		"currentPassword": "secret123",
		"newPassword":     "secret456",
		"confirmPassword": "secret456",
	}), token)
	require.Equal(t, http.StatusOK, res.status, res.body)
	seller := res.body["seller"].(map[string]interface{})
	assert.Equal(t, "Acme Ltd", seller["businessName"])
	assert.Equal(t, "123", seller["phone"])

	res = env.do(t, jsonRequest(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "owner@x.com", "password": "secret456", "role": "seller",
	}), "")
	assert.Equal(t, http.StatusOK, res.status)

	res = env.do(t, httptest.NewRequest(http.MethodPatch, "/api/sellers/deactivate", nil), token)
	assert.Equal(t, http.StatusOK, res.status)
	res = env.do(t, httptest.NewRequest(http.MethodGet, "/api/sellers/me", nil), token)
	assert.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, false, res.body["seller"].(map[string]interface{})["active"])

	res = env.do(t, httptest.NewRequest(http.MethodDelete, "/api/sellers/delete", nil), token)
	assert.Equal(t, http.StatusOK, res.status)

	res = env.do(t, httptest.NewRequest(http.MethodGet, "/api/listings/get-by-type/product", nil), "")
	assert.Equal(t, float64(0), res.body["count"])

	res = env.do(t, httptest.NewRequest(http.MethodGet, "/api/sellers/me", nil), token)
	assert.Equal(t, http.StatusUnauthorized, res.status)
	assert.Equal(t, "User not found", res.body["message"])
}

func TestProtectedRoutesWithoutToken(t *testing.T) {
	env := setupApp(t)

	res := env.do(t, httptest.NewRequest(http.MethodGet, "/api/sellers/me", nil), "")
	assert.Equal(t, http.StatusUnauthorized, res.status)
	assert.Equal(t, "Not authorized, no token", res.body["message"])

	res = env.do(t, httptest.NewRequest(http.MethodGet, "/api/sellers/me", nil), "not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, res.status)
	assert.Equal(t, "Not authorized, invalid token", res.body["message"])
}

func TestListingCategoryTypeCaseInsensitive(t *testing.T) {
	env := setupApp(t)
	_, token := env.registerSeller(t, "owner@x.com")

	res := env.do(t, multipartRequest(t, http.MethodPost, "/api/listings/upload", map[string]string{
		"name": "Cleaning", "categoryType": "Service", "category": "home", "price": "30",
	}, "image"), token)
	require.Equal(t, http.StatusCreated, res.status, res.body)
	id := res.body["listing"].(map[string]interface{})["id"].(string)

	// Switching to a product without stock keeps the prior (empty) stock.
	res = env.do(t, jsonRequest(http.MethodPut, "/api/listings/"+id, map[string]string{"categoryType": "Product"}), token)
	require.Equal(t, http.StatusOK, res.status, res.body)
	updated := res.body["listing"].(map[string]interface{})
	assert.Equal(t, "product", updated["categoryType"])
	assert.Nil(t, updated["stock"])

	res = env.do(t, jsonRequest(http.MethodPut, "/api/listings/"+id, map[string]string{"categoryType": "SERVICE"}), token)
	require.Equal(t, http.StatusOK, res.status, res.body)
	assert.Equal(t, "service", res.body["listing"].(map[string]interface{})["categoryType"])
}
