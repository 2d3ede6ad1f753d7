package domain

import "time"

// Admin 管理员账号领域模型（对应 admins 表）
// 原系统把管理员口令硬编码在端点里；这里统一落库并使用 bcrypt。
type Admin struct {
	AdminID      string    `db:"admin_id"`
	Username     string    `db:"username"` // UNIQUE NOT NULL
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}
