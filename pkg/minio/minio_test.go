package minio

import (
	"context"
	"strings"
	"testing"

	"ChatRoom/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOfflineStorage() *Storage {
	return &Storage{config: config.DefaultMinIOConfig()}
}

func TestAvatarObjectName(t *testing.T) {
	s := newOfflineStorage()
	name := s.avatarObjectName(42, "Me.PNG")
	assert.True(t, strings.HasPrefix(name, "avatars/42/"))
	assert.True(t, strings.HasSuffix(name, ".png"))
}

func TestObjectURLRoundTrip(t *testing.T) {
	s := newOfflineStorage()
	url := s.objectURL("avatars/42/a.png")
	assert.Equal(t, "http://localhost:9000/chat-room/avatars/42/a.png", url)
	assert.Equal(t, "avatars/42/a.png", s.ObjectNameFromURL(url))
	assert.Equal(t, "", s.ObjectNameFromURL("https://cdn.other.com/x.png"))
}

func TestUploadAvatarRejectsBeforeNetwork(t *testing.T) {
	s := newOfflineStorage()

	t.Run("too_large", func(t *testing.T) {
		_, err := s.UploadAvatar(context.Background(), 1, "a.png", strings.NewReader("x"), s.config.MaxFileSize+1)
		require.ErrorIs(t, err, ErrFileTooLarge)
	})

	t.Run("not_an_image", func(t *testing.T) {
		body := "plain text pretending to be a png"
		_, err := s.UploadAvatar(context.Background(), 1, "a.png", strings.NewReader(body), int64(len(body)))
		require.ErrorIs(t, err, ErrTypeNotAllowed)
	})
}

func TestBuildValidatesConfig(t *testing.T) {
	cfg := config.DefaultMinIOConfig()
	cfg.Endpoint = ""
	_, err := Build(cfg)
	require.Error(t, err)
}
