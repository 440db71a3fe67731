package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/billable/internal/certs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestCallbackHandler(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantCode   string
		wantStatus int
		wantErr    bool
	}{
		{name: "success", query: "?state=abc&code=xyz", wantStatus: http.StatusOK, wantCode: "xyz"},
		{name: "missing code", query: "?state=abc", wantStatus: http.StatusOK, wantErr: true},
		{name: "state mismatch", query: "?state=evil&code=xyz", wantStatus: http.StatusBadRequest, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codeChan := make(chan string, 1)
			errorChan := make(chan error, 1)
			handler := callbackHandler("abc", codeChan, errorChan)

			rec := httptest.NewRecorder()
			handler(rec, httptest.NewRequest(http.MethodGet, "/callback"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantErr {
				assert.Len(t, errorChan, 1)
				assert.Empty(t, codeChan)
				return
			}
			require.Len(t, codeChan, 1)
			assert.Equal(t, tt.wantCode, <-codeChan)
			assert.Contains(t, rec.Body.String(), "Authentication Successful")
		})
	}
}

func TestSaveAndLoadToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, SaveToken(path, token))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "refresh", loaded.RefreshToken)
	assert.True(t, token.Expiry.Equal(loaded.Expiry))
}

func TestLoadTokenErrors(t *testing.T) {
	_, err := LoadToken(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o600))
	_, err = LoadToken(bad)
	assert.Error(t, err)
}

func TestGetOrCreateTokenUsesSavedToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, SaveToken(path, &oauth2.Token{RefreshToken: "saved"}))

	token, err := GetOrCreateToken(context.Background(), OAuth2Config{TokenFile: path})
	require.NoError(t, err)
	assert.Equal(t, "saved", token.RefreshToken)
}

func TestAuthenticateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := AuthenticateOAuth2Interactive(ctx, OAuth2Config{
		ClientID:     "id",
		ClientSecret: "secret",
		CallbackAddr: "127.0.0.1:0",
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAuthenticateCanceledWithTLS(t *testing.T) {
	tlsConfig, err := certs.NewFileManager(t.TempDir()).TLSConfig()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = AuthenticateOAuth2Interactive(ctx, OAuth2Config{
		ClientID:     "id",
		ClientSecret: "secret",
		CallbackAddr: "127.0.0.1:0",
		TLS:          tlsConfig,
	})
	assert.ErrorIs(t, err, context.Canceled)
}
