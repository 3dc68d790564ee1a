package converter

import (
	"encoding/json"
	"testing"
	"time"

	"ChatRoom/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserToPublicProfileOmitsPassword(t *testing.T) {
	user := &model.User{
		ID:         7,
		Username:   "alice",
		Password:   "$2a$10$secret",
		NickName:   "Alice",
		Email:      "alice@example.com",
		CreateTime: time.Unix(1700000000, 0),
	}

	profile := UserToPublicProfile(user)
	require.NotNil(t, profile)
	assert.Equal(t, int64(7), profile.ID)
	assert.Equal(t, "Alice", profile.NickName)

	raw, err := json.Marshal(profile)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
	assert.NotContains(t, string(raw), "password")
}

func TestUsersToPublicProfilesSkipsNil(t *testing.T) {
	got := UsersToPublicProfiles([]*model.User{{ID: 1}, nil, {ID: 2}})
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[1].ID)

	assert.Empty(t, UsersToPublicProfiles(nil))
	assert.Nil(t, UserToPublicProfile(nil))
}

func TestFriendRequestToItem(t *testing.T) {
	item := FriendRequestToItem(&model.FriendRequest{
		ID: 42, FromUserID: 1, ToUserID: 2, Reason: "hi", Status: model.FriendRequestRejected,
	})
	assert.Equal(t, int8(2), item.Status)
	assert.Nil(t, item.FromUser)
	assert.Nil(t, item.ToUser)
}
