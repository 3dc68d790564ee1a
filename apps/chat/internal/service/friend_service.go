package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"ChatRoom/apps/chat/internal/converter"
	"ChatRoom/apps/chat/internal/dto"
	"ChatRoom/apps/chat/internal/repository"
	"ChatRoom/apps/chat/internal/utils"
	"ChatRoom/consts"
	"ChatRoom/model"
	"ChatRoom/pkg/logger"
	"ChatRoom/pkg/metrics"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// friendServiceImpl 好友关系服务实现
type friendServiceImpl struct {
	userRepo   repository.IUserRepository
	friendRepo repository.IFriendRepository
	applyRepo  repository.IApplyRepository
	notifier   Notifier
}

// NewFriendService 创建好友服务实例，notifier 为 nil 时不推送实时事件
func NewFriendService(
	userRepo repository.IUserRepository,
	friendRepo repository.IFriendRepository,
	applyRepo repository.IApplyRepository,
	notifier Notifier,
) FriendService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &friendServiceImpl{
		userRepo:   userRepo,
		friendRepo: friendRepo,
		applyRepo:  applyRepo,
		notifier:   notifier,
	}
}

// SendRequest 发送好友申请
// 业务流程：
//  1. 按用户名查找目标账号
//  2. 不能添加自己
//  3. 任一方向已是好友则拒绝
//  4. 创建 Pending 申请并通知对方
//
// 错误码映射：
//   - codes.NotFound: 目标用户名不存在
//   - codes.InvalidArgument: 添加自己
//   - codes.AlreadyExists: 已经是好友
//   - codes.Internal: 存储错误
//
// 同一有序对重复的 Pending 申请不做拦截。
func (s *friendServiceImpl) SendRequest(ctx context.Context, requesterID int64, req *dto.AddFriendRequest) (err error) {
	defer func() { observe("send", err) }()

	if req == nil || strings.TrimSpace(req.Username) == "" {
		return status.Error(codes.InvalidArgument, strconv.Itoa(consts.CodeParamError))
	}

	// 1. 查找目标账号
	target, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return status.Error(codes.NotFound, strconv.Itoa(consts.CodeFriendTargetNotFound))
		}
		logger.Error(ctx, "查询目标用户失败",
			logger.String("username", req.Username),
			logger.ErrorField("error", err),
		)
		return status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}

	// 2. 不能添加自己
	if target.ID == requesterID {
		return status.Error(codes.InvalidArgument, strconv.Itoa(consts.CodeCannotAddSelf))
	}

	// 3. 好友关系检查（双向）
	isFriend, err := s.friendRepo.ExistsBetween(ctx, requesterID, target.ID)
	if err != nil {
		logger.Error(ctx, "检查好友关系失败",
			logger.Int64("target_id", target.ID),
			logger.ErrorField("error", err),
		)
		return status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}
	if isFriend {
		return status.Error(codes.AlreadyExists, strconv.Itoa(consts.CodeAlreadyFriend))
	}

	// 4. 创建申请
	created, err := s.applyRepo.Create(ctx, &model.FriendRequest{
		FromUserID: requesterID,
		ToUserID:   target.ID,
		Reason:     req.Reason,
		Status:     model.FriendRequestPending,
	})
	if err != nil {
		logger.Error(ctx, "创建好友申请失败",
			logger.Int64("target_id", target.ID),
			logger.ErrorField("error", err),
		)
		return status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}

	s.notifier.Notify(ctx, target.ID, EventFriendRequest, converter.FriendRequestToItem(created))
	return nil
}

// ListRequests 查询好友申请列表
// fromMe 附带接收方资料，toMe 附带申请方资料，双方资料一次批量查询。
func (s *friendServiceImpl) ListRequests(ctx context.Context, accountID int64) (*dto.FriendRequestListResponse, error) {
	// 1. 两个方向的申请
	sent, err := s.applyRepo.FindFriendRequests(ctx, repository.FriendRequestFilter{FromUserID: accountID})
	if err != nil {
		logger.Error(ctx, "查询发出的好友申请失败", logger.ErrorField("error", err))
		return nil, status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}
	received, err := s.applyRepo.FindFriendRequests(ctx, repository.FriendRequestFilter{ToUserID: accountID})
	if err != nil {
		logger.Error(ctx, "查询收到的好友申请失败", logger.ErrorField("error", err))
		return nil, status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}

	// 2. 收集对方 id
	peerIDs := newIDSet(len(sent) + len(received))
	for _, r := range sent {
		peerIDs.add(r.ToUserID)
	}
	for _, r := range received {
		peerIDs.add(r.FromUserID)
	}

	profiles, err := s.loadProfiles(ctx, peerIDs.ids)
	if err != nil {
		return nil, err
	}

	// 3. 组装
	resp := &dto.FriendRequestListResponse{
		FromMe: make([]*dto.FriendRequestItem, 0, len(sent)),
		ToMe:   make([]*dto.FriendRequestItem, 0, len(received)),
	}
	for _, r := range sent {
		item := converter.FriendRequestToItem(r)
		item.ToUser = profiles[r.ToUserID]
		resp.FromMe = append(resp.FromMe, item)
	}
	for _, r := range received {
		item := converter.FriendRequestToItem(r)
		item.FromUser = profiles[r.FromUserID]
		resp.ToMe = append(resp.ToMe, item)
	}
	return resp, nil
}

// AcceptRequest 同意好友申请
// 业务流程：
//  1. requester -> approver 之间所有 Pending 申请改为 Accepted
//  2. 没有被迁移的申请时，要求已存在 Accepted 的申请，否则拒绝
//  3. 两人之间任一方向都没有好友关系时，创建 (approver, requester)
//
// 重复调用结果一致；第 3 步失败不会回滚第 1 步，再次调用即可补齐好友关系。
func (s *friendServiceImpl) AcceptRequest(ctx context.Context, requesterID, approverID int64) (err error) {
	defer func() { observe("accept", err) }()

	if requesterID <= 0 {
		return status.Error(codes.InvalidArgument, strconv.Itoa(consts.CodeParamError))
	}
	if requesterID == approverID {
		return status.Error(codes.InvalidArgument, strconv.Itoa(consts.CodeCannotAddSelf))
	}

	// 1. 状态迁移
	affected, err := s.applyRepo.UpdateStatus(ctx, requesterID, approverID, model.FriendRequestPending, model.FriendRequestAccepted)
	if err != nil {
		logger.Error(ctx, "更新好友申请状态失败",
			logger.Int64("requester_id", requesterID),
			logger.ErrorField("error", err),
		)
		return status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}

	// 2. 必须有对应的申请
	if affected == 0 {
		accepted := model.FriendRequestAccepted
		prior, err := s.applyRepo.FindFriendRequests(ctx, repository.FriendRequestFilter{
			FromUserID: requesterID,
			ToUserID:   approverID,
			Status:     &accepted,
		})
		if err != nil {
			logger.Error(ctx, "查询已同意的好友申请失败",
				logger.Int64("requester_id", requesterID),
				logger.ErrorField("error", err),
			)
			return status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
		}
		if len(prior) == 0 {
			return status.Error(codes.NotFound, strconv.Itoa(consts.CodeFriendRequestMissing))
		}
	}

	// 3. 好友关系落库
	exists, err := s.friendRepo.ExistsBetween(ctx, approverID, requesterID)
	if err != nil {
		logger.Error(ctx, "检查好友关系失败",
			logger.Int64("requester_id", requesterID),
			logger.ErrorField("error", err),
		)
		return status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}
	if exists {
		return nil
	}

	created, err := s.friendRepo.Create(ctx, approverID, requesterID)
	if err != nil {
		logger.Error(ctx, "创建好友关系失败",
			logger.Int64("requester_id", requesterID),
			logger.Int64("accepted_requests", affected),
			logger.ErrorField("error", err),
		)
		return status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}

	if created {
		logger.Info(ctx, "好友关系已建立",
			logger.Int64("requester_id", requesterID),
			logger.Int64("accepted_requests", affected),
		)
		s.notifier.Notify(ctx, requesterID, EventFriendAccepted, map[string]int64{"friendId": approverID})
	}
	return nil
}

// RejectRequest 拒绝好友申请，只迁移状态
func (s *friendServiceImpl) RejectRequest(ctx context.Context, requesterID, approverID int64) (err error) {
	defer func() { observe("reject", err) }()

	if requesterID <= 0 || requesterID == approverID {
		return status.Error(codes.InvalidArgument, strconv.Itoa(consts.CodeParamError))
	}

	if _, err := s.applyRepo.UpdateStatus(ctx, requesterID, approverID, model.FriendRequestPending, model.FriendRequestRejected); err != nil {
		logger.Error(ctx, "拒绝好友申请失败",
			logger.Int64("requester_id", requesterID),
			logger.ErrorField("error", err),
		)
		return status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}
	return nil
}

// ListFriends 好友列表
// 好友关系无论落在哪一侧都算，对方 id 去重且排除自己，按关系建立顺序返回。
func (s *friendServiceImpl) ListFriends(ctx context.Context, accountID int64, nameFilter string) ([]*dto.PublicProfile, error) {
	rows, err := s.friendRepo.FindFriendships(ctx, repository.FriendshipFilter{Either: accountID})
	if err != nil {
		logger.Error(ctx, "查询好友关系失败", logger.ErrorField("error", err))
		return nil, status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}

	ids := newIDSet(len(rows))
	for _, row := range rows {
		if peer := row.Peer(accountID); peer != accountID {
			ids.add(peer)
		}
	}
	if len(ids.ids) == 0 {
		return []*dto.PublicProfile{}, nil
	}

	users, err := s.userRepo.BatchGetByIDs(ctx, ids.ids)
	if err != nil {
		logger.Error(ctx, "批量查询好友资料失败", logger.ErrorField("error", err))
		return nil, status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}

	matched := make([]*model.User, 0, len(users))
	for _, u := range users {
		// 区分大小写的子串匹配，空串匹配全部
		if u != nil && strings.Contains(u.NickName, nameFilter) {
			matched = append(matched, u)
		}
	}
	return converter.UsersToPublicProfiles(matched), nil
}

// RemoveFriend 删除好友
// 只删除 (accountID, friendID) 这一行。关系若是由对方同意建立的，行是 (friendID, accountID)，
// 此时删除不生效，双方仍互为好友。
func (s *friendServiceImpl) RemoveFriend(ctx context.Context, accountID, friendID int64) (err error) {
	defer func() { observe("remove", err) }()

	if friendID <= 0 {
		return status.Error(codes.InvalidArgument, strconv.Itoa(consts.CodeParamError))
	}

	affected, err := s.friendRepo.Delete(ctx, accountID, friendID)
	if err != nil {
		logger.Error(ctx, "删除好友失败",
			logger.Int64("friend_id", friendID),
			logger.ErrorField("error", err),
		)
		return status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}
	if affected == 0 {
		logger.Debug(ctx, "删除好友未命中任何记录", logger.Int64("friend_id", friendID))
	}
	return nil
}

// loadProfiles 批量加载资料，返回 id -> 资料
func (s *friendServiceImpl) loadProfiles(ctx context.Context, ids []int64) (map[int64]*dto.PublicProfile, error) {
	profiles := make(map[int64]*dto.PublicProfile, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}
	users, err := s.userRepo.BatchGetByIDs(ctx, ids)
	if err != nil {
		logger.Error(ctx, "批量查询用户资料失败", logger.ErrorField("error", err))
		return nil, status.Error(codes.Internal, strconv.Itoa(consts.CodeInternalError))
	}
	for _, u := range users {
		profiles[u.ID] = converter.UserToPublicProfile(u)
	}
	return profiles, nil
}

// idSet 保持插入顺序的去重集合
type idSet struct {
	seen map[int64]struct{}
	ids  []int64
}

func newIDSet(capacity int) *idSet {
	return &idSet{seen: make(map[int64]struct{}, capacity), ids: make([]int64, 0, capacity)}
}

func (s *idSet) add(id int64) {
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
}

// observe 记录好友写操作结果
func observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = strconv.Itoa(int(utils.ExtractErrorCode(err)))
	}
	metrics.FriendOperationsTotal.WithLabelValues(op, result).Inc()
}
