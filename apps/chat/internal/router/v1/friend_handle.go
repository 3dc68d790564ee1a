package v1

import (
	"ChatRoom/apps/chat/internal/dto"
	"ChatRoom/apps/chat/internal/middleware"
	"ChatRoom/apps/chat/internal/service"
	"ChatRoom/consts"
	"ChatRoom/pkg/result"

	"github.com/gin-gonic/gin"
)

// FriendHandler 好友关系处理器
type FriendHandler struct {
	friendService service.FriendService
}

// NewFriendHandler 创建好友关系处理器
func NewFriendHandler(friendService service.FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

// Add 发送好友申请
// @Router /api/v1/friendship/add [post]
func (h *FriendHandler) Add(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	accountID, ok := mustAccountID(c)
	if !ok {
		return
	}

	var req dto.AddFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	if err := h.friendService.SendRequest(ctx, accountID, &req); err != nil {
		failWithError(ctx, c, err, "发送好友申请服务内部错误")
		return
	}
	result.SuccessWithMessage(c, nil, "申请已发送")
}

// RequestList 我发出的和我收到的好友申请
// @Router /api/v1/friendship/request-list [get]
func (h *FriendHandler) RequestList(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	accountID, ok := mustAccountID(c)
	if !ok {
		return
	}

	resp, err := h.friendService.ListRequests(ctx, accountID)
	if err != nil {
		failWithError(ctx, c, err, "查询好友申请服务内部错误")
		return
	}
	result.Success(c, resp)
}

// Agree 同意 :id 发来的好友申请
// @Router /api/v1/friendship/agree/{id} [post]
func (h *FriendHandler) Agree(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	accountID, ok := mustAccountID(c)
	if !ok {
		return
	}
	requesterID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.friendService.AcceptRequest(ctx, requesterID, accountID); err != nil {
		failWithError(ctx, c, err, "同意好友申请服务内部错误")
		return
	}
	result.SuccessWithMessage(c, nil, "已同意")
}

// Reject 拒绝 :id 发来的好友申请
// @Router /api/v1/friendship/reject/{id} [post]
func (h *FriendHandler) Reject(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	accountID, ok := mustAccountID(c)
	if !ok {
		return
	}
	requesterID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.friendService.RejectRequest(ctx, requesterID, accountID); err != nil {
		failWithError(ctx, c, err, "拒绝好友申请服务内部错误")
		return
	}
	result.SuccessWithMessage(c, nil, "已拒绝")
}

// List 好友列表，?name= 按昵称子串过滤
// @Router /api/v1/friendship/list [get]
func (h *FriendHandler) List(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	accountID, ok := mustAccountID(c)
	if !ok {
		return
	}

	var req dto.FriendListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	friends, err := h.friendService.ListFriends(ctx, accountID, req.Name)
	if err != nil {
		failWithError(ctx, c, err, "查询好友列表服务内部错误")
		return
	}
	result.Success(c, friends)
}

// Remove 删除好友
// 只删除当前账号一侧的好友记录。
// @Router /api/v1/friendship/{id} [delete]
func (h *FriendHandler) Remove(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)
	accountID, ok := mustAccountID(c)
	if !ok {
		return
	}
	friendID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.friendService.RemoveFriend(ctx, accountID, friendID); err != nil {
		failWithError(ctx, c, err, "删除好友服务内部错误")
		return
	}
	result.SuccessWithMessage(c, nil, "删除成功")
}
