package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"ChatRoom/apps/chat/internal/dto"
	"ChatRoom/apps/chat/internal/repository"
	"ChatRoom/consts"
	"ChatRoom/model"
	"ChatRoom/pkg/minio"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc/codes"
)

func TestUserServiceGetProfile(t *testing.T) {
	initServiceTestLogger()

	userRepo := &fakeUserRepository{
		getByIDFn: func(_ context.Context, id int64) (*model.User, error) {
			if id == 1 {
				return &model.User{ID: 1, Username: "alice", Password: "hash"}, nil
			}
			if id == 2 {
				return nil, errors.New("db down")
			}
			return nil, repository.ErrRecordNotFound
		},
	}
	svc := NewUserService(userRepo, nil)

	profile, err := svc.GetProfile(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)

	_, err = svc.GetProfile(context.Background(), 2)
	requireStatusBizCode(t, err, codes.Internal, consts.CodeInternalError)

	_, err = svc.GetProfile(context.Background(), 3)
	requireStatusBizCode(t, err, codes.NotFound, consts.CodeUserNotFound)
}

func TestUserServiceUpdateProfile(t *testing.T) {
	initServiceTestLogger()

	current := &model.User{ID: 1, Username: "alice", NickName: "Alice"}
	userRepo := &fakeUserRepository{
		updateProfileFn: func(_ context.Context, id int64, nickName, headPic string) error {
			if nickName != "" {
				current.NickName = nickName
			}
			return nil
		},
		getByIDFn: func(context.Context, int64) (*model.User, error) { return current, nil },
	}
	svc := NewUserService(userRepo, nil)

	profile, err := svc.UpdateProfile(context.Background(), 1, &dto.UpdateProfileRequest{NickName: "Ally"})
	require.NoError(t, err)
	assert.Equal(t, "Ally", profile.NickName)
}

func TestUserServiceChangePassword(t *testing.T) {
	initServiceTestLogger()

	hashed, err := bcrypt.GenerateFromPassword([]byte("old-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	var newHash string
	userRepo := &fakeUserRepository{
		getByIDFn: func(context.Context, int64) (*model.User, error) {
			return &model.User{ID: 1, Password: string(hashed)}, nil
		},
		updatePasswordFn: func(_ context.Context, id int64, h string) error {
			newHash = h
			return nil
		},
	}
	svc := NewUserService(userRepo, nil)

	t.Run("wrong_old_password", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), 1, &dto.ChangePasswordRequest{OldPassword: "nope", NewPassword: "new-pass"})
		requireStatusBizCode(t, err, codes.Unauthenticated, consts.CodePasswordError)
		assert.Empty(t, newHash)
	})

	t.Run("success", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), 1, &dto.ChangePasswordRequest{OldPassword: "old-pass", NewPassword: "new-pass"})
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(newHash), []byte("new-pass")))
	})
}

func TestUserServiceUploadAvatar(t *testing.T) {
	initServiceTestLogger()
	initAsyncPool(t)

	const prefix = "http://localhost:9000/chat-room/"
	userRepo := &fakeUserRepository{
		getByIDFn: func(context.Context, int64) (*model.User, error) {
			return &model.User{ID: 1, HeadPic: prefix + "avatars/1/old.png"}, nil
		},
	}

	t.Run("storage_disabled", func(t *testing.T) {
		svc := NewUserService(userRepo, nil)
		_, err := svc.UploadAvatar(context.Background(), 1, "a.png", strings.NewReader("x"), 1)
		requireStatusBizCode(t, err, codes.Unavailable, consts.CodeServiceUnavailable)
	})

	t.Run("rejected_file", func(t *testing.T) {
		storage := &fakeStorage{
			uploadFn: func(context.Context, int64, string, io.Reader, int64) (*minio.UploadResult, error) {
				return nil, minio.ErrTypeNotAllowed
			},
		}
		svc := NewUserService(userRepo, storage)
		_, err := svc.UploadAvatar(context.Background(), 1, "a.txt", strings.NewReader("x"), 1)
		requireStatusBizCode(t, err, codes.InvalidArgument, consts.CodeParamError)
	})

	t.Run("upload_failure", func(t *testing.T) {
		storage := &fakeStorage{
			uploadFn: func(context.Context, int64, string, io.Reader, int64) (*minio.UploadResult, error) {
				return nil, errors.New("minio down")
			},
		}
		svc := NewUserService(userRepo, storage)
		_, err := svc.UploadAvatar(context.Background(), 1, "a.png", strings.NewReader("x"), 1)
		requireStatusBizCode(t, err, codes.Internal, consts.CodeAvatarUploadError)
	})

	t.Run("success_replaces_and_deletes_old", func(t *testing.T) {
		var savedURL string
		repo := *userRepo
		repo.updateAvatarFn = func(_ context.Context, id int64, headPic string) error {
			savedURL = headPic
			return nil
		}
		storage := &fakeStorage{
			prefix:  prefix,
			deleted: make(chan string, 1),
			uploadFn: func(_ context.Context, accountID int64, fileName string, _ io.Reader, _ int64) (*minio.UploadResult, error) {
				assert.Equal(t, int64(1), accountID)
				return &minio.UploadResult{ObjectName: "avatars/1/new.png", URL: prefix + "avatars/1/new.png"}, nil
			},
		}
		svc := NewUserService(&repo, storage)

		resp, err := svc.UploadAvatar(context.Background(), 1, "new.png", strings.NewReader("x"), 1)
		require.NoError(t, err)
		assert.Equal(t, prefix+"avatars/1/new.png", resp.URL)
		assert.Equal(t, resp.URL, savedURL)

		select {
		case old := <-storage.deleted:
			assert.Equal(t, "avatars/1/old.png", old)
		case <-time.After(2 * time.Second):
			t.Fatal("old avatar not deleted")
		}
	})
}
