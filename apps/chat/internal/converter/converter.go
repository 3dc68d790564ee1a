package converter

import (
	"ChatRoom/apps/chat/internal/dto"
	"ChatRoom/model"
)

// ==================== User 转换函数 ====================

// UserToPublicProfile 将 User Model 转换为对外资料
// 注意：不包含 Password
func UserToPublicProfile(user *model.User) *dto.PublicProfile {
	if user == nil {
		return nil
	}
	return &dto.PublicProfile{
		ID:         user.ID,
		Username:   user.Username,
		NickName:   user.NickName,
		Email:      user.Email,
		HeadPic:    user.HeadPic,
		CreateTime: user.CreateTime,
	}
}

// UsersToPublicProfiles 批量转换
func UsersToPublicProfiles(users []*model.User) []*dto.PublicProfile {
	result := make([]*dto.PublicProfile, 0, len(users))
	for _, user := range users {
		if user == nil {
			continue
		}
		result = append(result, UserToPublicProfile(user))
	}
	return result
}

// ==================== FriendRequest 转换函数 ====================

// FriendRequestToItem 将 FriendRequest Model 转换为列表条目，不填充双方资料
func FriendRequestToItem(req *model.FriendRequest) *dto.FriendRequestItem {
	if req == nil {
		return nil
	}
	return &dto.FriendRequestItem{
		ID:         req.ID,
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		Reason:     req.Reason,
		Status:     int8(req.Status),
		CreateTime: req.CreateTime,
	}
}
