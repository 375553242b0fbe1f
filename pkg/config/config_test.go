package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, MappingsBackendFile, cfg.Storage.MappingsBackend)
	assert.Equal(t, 12*time.Hour, cfg.Session.IdleTTL)
	assert.Equal(t, []string{"http://localhost:4200"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "substring", cfg.Timetable.SubjectMatchMode)
	assert.Empty(t, cfg.Timetable.PlaceholderPhrases)
	assert.EqualValues(t, 20*1024*1024, cfg.Storage.MaxUploadBytes)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ALLOWED_ORIGINS", "http://a.test, https://*.railway.app ,")
	v.Set("PLACEHOLDER_PHRASES", "groupes auto | sous-groupes automatiques")
	v.Set("SESSION_IDLE_TTL", "not-a-duration")
	v.Set("MAPPINGS_BACKEND", "POSTGRES")
	v.Set("MAX_UPLOAD_BYTES", -1)

	cfg := fromViper(v)
	require.Len(t, cfg.CORS.AllowedOrigins, 2)
	assert.Equal(t, "https://*.railway.app", cfg.CORS.AllowedOrigins[1])
	assert.Equal(t, []string{"groupes auto", "sous-groupes automatiques"}, cfg.Timetable.PlaceholderPhrases)
	assert.Equal(t, 12*time.Hour, cfg.Session.IdleTTL)
	assert.Equal(t, MappingsBackendPostgres, cfg.Storage.MappingsBackend)
	assert.EqualValues(t, 20*1024*1024, cfg.Storage.MaxUploadBytes)
}
