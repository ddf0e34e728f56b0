package model

// User is the record stored for everyone who sent /start.
// The primary key is the Telegram user id, so writes are upserts.
type User struct {
	ID        int64   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Username  *string `json:"username"`
	FirstName string  `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// TableName pins the table to "users" for both gorm and Supabase.
func (User) TableName() string {
	return "users"
}
