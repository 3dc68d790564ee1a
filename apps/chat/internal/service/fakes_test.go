package service

import (
	"context"
	"io"
	"strconv"
	"sync"
	"testing"
	"time"

	"ChatRoom/apps/chat/internal/repository"
	"ChatRoom/model"
	"ChatRoom/pkg/logger"
	"ChatRoom/pkg/mail"
	"ChatRoom/pkg/minio"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var serviceTestLoggerOnce sync.Once

func initServiceTestLogger() {
	serviceTestLoggerOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
	})
}

func requireStatusBizCode(t *testing.T, err error, wantGRPCCode codes.Code, wantBizCode int) {
	t.Helper()
	require.Error(t, err)

	st, ok := status.FromError(err)
	require.True(t, ok, "error should be grpc status")
	require.Equal(t, wantGRPCCode, st.Code())

	gotBizCode, convErr := strconv.Atoi(st.Message())
	require.NoError(t, convErr, "status message should be business code")
	require.Equal(t, wantBizCode, gotBizCode)
}

// ==================== fake repositories ====================

type fakeUserRepository struct {
	getByUsernameFn    func(ctx context.Context, username string) (*model.User, error)
	getByIDFn          func(ctx context.Context, id int64) (*model.User, error)
	batchGetByIDsFn    func(ctx context.Context, ids []int64) ([]*model.User, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
	createFn           func(ctx context.Context, user *model.User) (*model.User, error)
	updateProfileFn    func(ctx context.Context, id int64, nickName, headPic string) error
	updateAvatarFn     func(ctx context.Context, id int64, headPic string) error
	updatePasswordFn   func(ctx context.Context, id int64, hashed string) error
}

func (f *fakeUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if f.getByUsernameFn == nil {
		return nil, repository.ErrRecordNotFound
	}
	return f.getByUsernameFn(ctx, username)
}

func (f *fakeUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if f.getByIDFn == nil {
		return nil, repository.ErrRecordNotFound
	}
	return f.getByIDFn(ctx, id)
}

func (f *fakeUserRepository) BatchGetByIDs(ctx context.Context, ids []int64) ([]*model.User, error) {
	if f.batchGetByIDsFn == nil {
		return []*model.User{}, nil
	}
	return f.batchGetByIDsFn(ctx, ids)
}

func (f *fakeUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if f.existsByUsernameFn == nil {
		return false, nil
	}
	return f.existsByUsernameFn(ctx, username)
}

func (f *fakeUserRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	if f.createFn == nil {
		user.ID = 1
		return user, nil
	}
	return f.createFn(ctx, user)
}

func (f *fakeUserRepository) UpdateProfile(ctx context.Context, id int64, nickName, headPic string) error {
	if f.updateProfileFn == nil {
		return nil
	}
	return f.updateProfileFn(ctx, id, nickName, headPic)
}

func (f *fakeUserRepository) UpdateAvatar(ctx context.Context, id int64, headPic string) error {
	if f.updateAvatarFn == nil {
		return nil
	}
	return f.updateAvatarFn(ctx, id, headPic)
}

func (f *fakeUserRepository) UpdatePassword(ctx context.Context, id int64, hashed string) error {
	if f.updatePasswordFn == nil {
		return nil
	}
	return f.updatePasswordFn(ctx, id, hashed)
}

type fakeApplyRepository struct {
	findFn         func(ctx context.Context, filter repository.FriendRequestFilter) ([]*model.FriendRequest, error)
	createFn       func(ctx context.Context, req *model.FriendRequest) (*model.FriendRequest, error)
	updateStatusFn func(ctx context.Context, from, to int64, old, new model.FriendRequestStatus) (int64, error)
}

func (f *fakeApplyRepository) FindFriendRequests(ctx context.Context, filter repository.FriendRequestFilter) ([]*model.FriendRequest, error) {
	if f.findFn == nil {
		return nil, nil
	}
	return f.findFn(ctx, filter)
}

func (f *fakeApplyRepository) Create(ctx context.Context, req *model.FriendRequest) (*model.FriendRequest, error) {
	if f.createFn == nil {
		return req, nil
	}
	return f.createFn(ctx, req)
}

func (f *fakeApplyRepository) UpdateStatus(ctx context.Context, from, to int64, old, new model.FriendRequestStatus) (int64, error) {
	if f.updateStatusFn == nil {
		return 0, nil
	}
	return f.updateStatusFn(ctx, from, to, old, new)
}

type fakeFriendRepository struct {
	findFn          func(ctx context.Context, filter repository.FriendshipFilter) ([]*model.Friendship, error)
	existsBetweenFn func(ctx context.Context, a, b int64) (bool, error)
	createFn        func(ctx context.Context, userID, friendID int64) (bool, error)
	deleteFn        func(ctx context.Context, userID, friendID int64) (int64, error)
}

func (f *fakeFriendRepository) FindFriendships(ctx context.Context, filter repository.FriendshipFilter) ([]*model.Friendship, error) {
	if f.findFn == nil {
		return nil, nil
	}
	return f.findFn(ctx, filter)
}

func (f *fakeFriendRepository) ExistsBetween(ctx context.Context, a, b int64) (bool, error) {
	if f.existsBetweenFn == nil {
		return false, nil
	}
	return f.existsBetweenFn(ctx, a, b)
}

func (f *fakeFriendRepository) Create(ctx context.Context, userID, friendID int64) (bool, error) {
	if f.createFn == nil {
		return true, nil
	}
	return f.createFn(ctx, userID, friendID)
}

func (f *fakeFriendRepository) Delete(ctx context.Context, userID, friendID int64) (int64, error) {
	if f.deleteFn == nil {
		return 0, nil
	}
	return f.deleteFn(ctx, userID, friendID)
}

type fakeCaptchaRepository struct {
	storeFn   func(ctx context.Context, email, code string, ttl time.Duration) error
	getFn     func(ctx context.Context, email string) (string, error)
	deleteFn  func(ctx context.Context, email string) error
	acquireFn func(ctx context.Context, email string, ttl time.Duration) (bool, error)
}

func (f *fakeCaptchaRepository) Store(ctx context.Context, email, code string, ttl time.Duration) error {
	if f.storeFn == nil {
		return nil
	}
	return f.storeFn(ctx, email, code, ttl)
}

func (f *fakeCaptchaRepository) Get(ctx context.Context, email string) (string, error) {
	if f.getFn == nil {
		return "", repository.ErrRedisNil
	}
	return f.getFn(ctx, email)
}

func (f *fakeCaptchaRepository) Delete(ctx context.Context, email string) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, email)
}

func (f *fakeCaptchaRepository) AcquireSendLock(ctx context.Context, email string, ttl time.Duration) (bool, error) {
	if f.acquireFn == nil {
		return true, nil
	}
	return f.acquireFn(ctx, email, ttl)
}

// ==================== fake 外部依赖 ====================

type fakeMailer struct {
	sent chan mail.Message
	err  error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: make(chan mail.Message, 4)}
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	f.sent <- msg
	return f.err
}

type fakeIssuer struct {
	issueFn func(accountID int64, username string, ttl time.Duration) (string, error)
}

func (f *fakeIssuer) Issue(accountID int64, username string, ttl time.Duration) (string, error) {
	if f.issueFn == nil {
		return "token", nil
	}
	return f.issueFn(accountID, username, ttl)
}

type fakeStorage struct {
	uploadFn func(ctx context.Context, accountID int64, fileName string, reader io.Reader, size int64) (*minio.UploadResult, error)
	deleted  chan string
	prefix   string
}

func (f *fakeStorage) UploadAvatar(ctx context.Context, accountID int64, fileName string, reader io.Reader, size int64) (*minio.UploadResult, error) {
	return f.uploadFn(ctx, accountID, fileName, reader, size)
}

func (f *fakeStorage) Delete(_ context.Context, objectName string) error {
	if f.deleted != nil {
		f.deleted <- objectName
	}
	return nil
}

func (f *fakeStorage) ObjectNameFromURL(url string) string {
	if f.prefix == "" || len(url) <= len(f.prefix) || url[:len(f.prefix)] != f.prefix {
		return ""
	}
	return url[len(f.prefix):]
}

type notifiedEvent struct {
	accountID int64
	event     string
	payload   any
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notifiedEvent
}

func (f *fakeNotifier) Notify(_ context.Context, accountID int64, event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, notifiedEvent{accountID: accountID, event: event, payload: payload})
}

func (f *fakeNotifier) Events() []notifiedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notifiedEvent(nil), f.events...)
}
