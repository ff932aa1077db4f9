package raftlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateDBIDFitsWithinDBIDLen(t *testing.T) {
	id := GenerateDBID()
	assert.LessOrEqual(t, len(id), DBIDLen)
	assert.NotEmpty(t, id)
}

func TestGenerateDBIDIsUnique(t *testing.T) {
	assert.NotEqual(t, GenerateDBID(), GenerateDBID())
}

func TestConfigCacheInitSizeDefault(t *testing.T) {
	var c Config
	assert.Equal(t, InitCacheSize, c.cacheInitSize())

	c.CacheInitSize = 16
	assert.Equal(t, 16, c.cacheInitSize())
}

func TestConfigLoggerDefaultsToNop(t *testing.T) {
	var c Config
	assert.NotNil(t, c.logger())
}
