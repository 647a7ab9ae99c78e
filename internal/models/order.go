package models

// Order statuses.
const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

type Order struct {
	Meta          `bson:",inline"`
	UserID        string     `bson:"userId" json:"userId"`
	CustomerName  string     `bson:"customerName" json:"customerName" validate:"required"`
	Email         string     `bson:"email" json:"email" validate:"required,email"`
	Phone         string     `bson:"phone" json:"phone" validate:"required"`
	Address       string     `bson:"address" json:"address" validate:"required"`
	Items         []CartItem `bson:"items" json:"items" validate:"required,min=1,dive"`
	Total         float64    `bson:"total" json:"total"`
	Status        string     `bson:"status" json:"status"`
	PaymentMethod string     `bson:"paymentMethod" json:"paymentMethod"`
	Notes         string     `bson:"notes" json:"notes"`
}
