package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Roshan7869/Didi-ki-rasoi/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, config.StoreMemory, cfg.Cart.Store)
	assert.Equal(t, time.Second, cfg.Checkout.SubmitDelay)
	assert.Equal(t, 3*time.Second, cfg.Checkout.SuccessWindow)
	assert.Equal(t, 5*time.Second, cfg.Checkout.FailureWindow)
	assert.Equal(t, 300*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, "7440683678", cfg.Order.Phone)
	assert.Equal(t, "https://wa.me", cfg.Order.MessagingBaseURL)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("APP_PORT=9191\nCHECKOUT_SUBMIT_DELAY=250ms\n"), 0o600))

	t.Cleanup(func() {
		os.Unsetenv("APP_PORT")
		os.Unsetenv("CHECKOUT_SUBMIT_DELAY")
	})

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9191", cfg.App.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Checkout.SubmitDelay)
}

func TestLoad_MissingEnvFileIsTolerated(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestLoad_PostgresRequiresConnectionSettings(t *testing.T) {
	t.Setenv("CART_STORE", "postgres")

	_, err := config.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_HOST")

	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_NAME", "rasoi")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.StorePostgres, cfg.Cart.Store)
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
}

func TestLoad_UnknownStore(t *testing.T) {
	t.Setenv("CART_STORE", "floppy")

	_, err := config.Load("")
	assert.EqualError(t, err, `unknown CART_STORE "floppy"`)
}
