package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestBytesMD5(t *testing.T) {
	require.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", BytesMD5(nil))
	require.Equal(t, "900150983cd24fb0d6963f7d28e17f72", BytesMD5([]byte("abc")))
	require.Equal(t, "abc:default:0.500:0.500:0.500", CacheKey("abc", "default", "0.500:0.500:0.500"))
}

func TestNewJobID(t *testing.T) {
	a, b := NewJobID(), NewJobID()
	require.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	require.NoError(t, err)
}

func TestInitLogger(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	require.NoError(t, InitLogger("release"))
	require.NotNil(t, Logger)
	Logger.Info("release logger ready")
	Sync()
}
