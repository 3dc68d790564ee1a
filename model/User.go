package model

import "time"

// User 账号信息
// 约束：username 全局唯一；password 只存 bcrypt 哈希，任何对外结构都不应包含该字段。
type User struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement;comment:自增id"`
	Username   string    `gorm:"column:username;type:varchar(50);not null;uniqueIndex:uidx_username;comment:用户名"`
	Password   string    `gorm:"column:password;type:varchar(100);not null;comment:密码哈希"`
	NickName   string    `gorm:"column:nick_name;type:varchar(50);not null;default:'';comment:昵称"`
	Email      string    `gorm:"column:email;type:varchar(50);not null;default:'';comment:邮箱"`
	HeadPic    string    `gorm:"column:head_pic;type:varchar(255);not null;default:'';comment:头像地址"`
	CreateTime time.Time `gorm:"column:create_time;autoCreateTime"`
	UpdateTime time.Time `gorm:"column:update_time;autoUpdateTime"`
}

func (User) TableName() string { return "users" }
