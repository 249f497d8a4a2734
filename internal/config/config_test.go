package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "resumes", cfg.Qdrant.Collection)
	assert.True(t, cfg.Qdrant.Enabled)
	assert.Equal(t, 8, cfg.Ranking.Concurrency)
	assert.Equal(t, 5*time.Second, cfg.Ranking.ScoringTimeout)
	assert.Equal(t, 10*time.Second, cfg.Worker.PollInterval)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_JSON", "true")
	t.Setenv("RESUME_INDEX_ENABLED", "false")
	t.Setenv("RANKING_CONCURRENCY", "2")
	t.Setenv("SCORING_TIMEOUT", "250ms")
	t.Setenv("MAX_FILE_SIZE", "1024")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.True(t, cfg.Log.JSON)
	assert.False(t, cfg.Qdrant.Enabled)
	assert.Equal(t, 2, cfg.Ranking.Concurrency)
	assert.Equal(t, 250*time.Millisecond, cfg.Ranking.ScoringTimeout)
	assert.Equal(t, int64(1024), cfg.Storage.MaxFileSize)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("WORKER_CONCURRENCY", "many")
	t.Setenv("LOG_DEBUG", "loud")
	t.Setenv("PARSER_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 2, cfg.Worker.Concurrency)
	assert.False(t, cfg.Log.Debug)
	assert.Equal(t, 60*time.Second, cfg.Ranking.ParserTimeout)
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Host: "db", Port: "5433", User: "u", Password: "p", DBName: "ranker"}}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=ranker sslmode=disable", cfg.GetDatabaseDSN())
}

func TestValidate(t *testing.T) {
	cfg := Load()
	assert.NoError(t, cfg.Validate())

	cfg.Ranking.Concurrency = 0
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.Qdrant.Collection = ""
	assert.Error(t, cfg.Validate())

	cfg.Qdrant.Enabled = false
	assert.NoError(t, cfg.Validate())

	cfg.Server.Port = "http"
	assert.Error(t, cfg.Validate())
}
