package model

import "time"

// Friendship 好友关系
// 一段好友关系只落一行 (user_id, friend_id)，语义上是对称的：
// 判断 X 与 Y 是否为好友需要同时查 (X, Y) 和 (Y, X)。联合主键保证同一有序对不会重复。
type Friendship struct {
	UserID     int64     `gorm:"column:user_id;primaryKey;autoIncrement:false;comment:用户id"`
	FriendID   int64     `gorm:"column:friend_id;primaryKey;autoIncrement:false;index:idx_friend_id;comment:好友id"`
	CreateTime time.Time `gorm:"column:create_time;autoCreateTime"`
}

func (Friendship) TableName() string { return "friendships" }

// Peer 返回这一行里与 accountID 相对的另一方
func (f *Friendship) Peer(accountID int64) int64 {
	if f.UserID == accountID {
		return f.FriendID
	}
	return f.UserID
}

// AllModels 返回需要 AutoMigrate 的全部模型
func AllModels() []any {
	return []any{&User{}, &FriendRequest{}, &Friendship{}}
}
