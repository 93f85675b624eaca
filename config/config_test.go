package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "")
	t.Setenv("FRONTEND_URL", "http://front.test/")
	t.Setenv("SESSION_TTL", "not-a-duration")
	t.Setenv("SMTP_PORT", "2525")

	cfg, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "http://front.test", cfg.FrontendURL)
	assert.Equal(t, 14*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.NotEmpty(t, cfg.SecretKey)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, splitList(" http://a/, ,http://b"))
	assert.Nil(t, splitList(""))
}
