package cloudinary

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jantaller/swapta-api/internal/config"
)

func testService() *CloudinaryService {
	return NewCloudinaryService(&config.Config{
		JWTSecret: "test-secret",
		CloudinaryConfig: config.CloudinaryConfig{
			CloudName: "demo",
			APIKey:    "test-key",
			APISecret: "test-api-secret",
		},
	})
}

func TestGenerateUploadParams(t *testing.T) {
	s := testService()
	app := fiber.New()
	app.Get("/upload/params", s.GenerateUploadParams)

	resp, err := app.Test(httptest.NewRequest("GET", "/upload/params?folder=avatars", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var result map[string]string
	require.NoError(t, json.Unmarshal(body, &result))

	assert.Equal(t, "avatars", result["folder"])
	assert.Equal(t, "demo", result["cloud_name"])
	assert.Equal(t, "test-key", result["api_key"])
	assert.NotEmpty(t, result["timestamp"])
	assert.NotEmpty(t, result["signature"])
	assert.NotEmpty(t, result["listing_id"])
}

func TestGenerateUploadParamsDefaultFolder(t *testing.T) {
	s := testService()
	app := fiber.New()
	app.Get("/upload/params", s.GenerateUploadParams)

	resp, err := app.Test(httptest.NewRequest("GET", "/upload/params", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var result map[string]string
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, "listings", result["folder"])
}

func TestGenerateUploadParamsRejectsUnknownFolder(t *testing.T) {
	s := testService()
	app := fiber.New()
	app.Get("/upload/params", s.GenerateUploadParams)

	resp, err := app.Test(httptest.NewRequest("GET", "/upload/params?folder=../etc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
