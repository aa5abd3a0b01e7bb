package models

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User keeps the bcrypt hash in Password; it is serialized as-is.
type User struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"not null"                 json:"name"`
	Email    string `gorm:"uniqueIndex;not null"     json:"email"`
	Password string `gorm:"not null"                 json:"password"`
	Role     Role   `gorm:"not null;default:user"    json:"role"`
}

// Category rows are provisioned outside of this service.
type Category struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"uniqueIndex;not null"     json:"name"`
}

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"         json:"id"`
	Name        string    `gorm:"not null"                         json:"name"`
	Price       float64   `gorm:"type:numeric(10,2);not null"      json:"price"`
	Description string    `gorm:"not null"                         json:"description"`
	Stock       int       `gorm:"not null;default:0"               json:"stock"`
	ImageURL    string    `gorm:"column:image_url"                 json:"image_url"`
	CategoryID  uint      `gorm:"not null;index"                   json:"category_id"`
	PublicID    *string   `gorm:"column:public_id"                 json:"public_id"`
	Category    *Category `gorm:"foreignKey:CategoryID"            json:"-"`
}

// ProductView is a product joined with its category name.
type ProductView struct {
	Product
	CategoryName string `json:"category_name"`
}
