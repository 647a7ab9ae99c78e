package models

// Blog is a marketing article.
type Blog struct {
	Meta    `bson:",inline"`
	Title   string `bson:"title" json:"title" schema:"title" validate:"required"`
	Author  string `bson:"author" json:"author" schema:"author"`
	Summary string `bson:"summary" json:"summary" schema:"summary"`
	Content string `bson:"content" json:"content" schema:"content" validate:"required"`
	Image   string `bson:"image" json:"image" schema:"-"`
}

// Service is an offered installation/consulting service.
type Service struct {
	Meta        `bson:",inline"`
	Title       string `bson:"title" json:"title" schema:"title" validate:"required"`
	Description string `bson:"description" json:"description" schema:"description" validate:"required"`
	Image       string `bson:"image" json:"image" schema:"-"`
}

type TeamMember struct {
	Meta        `bson:",inline"`
	Name        string `bson:"name" json:"name" schema:"name" validate:"required"`
	Designation string `bson:"designation" json:"designation" schema:"designation" validate:"required"`
	Bio         string `bson:"bio" json:"bio" schema:"bio"`
	LinkedIn    string `bson:"linkedin" json:"linkedin" schema:"linkedin"`
	Image       string `bson:"image" json:"image" schema:"-"`
}

type Testimonial struct {
	Meta    `bson:",inline"`
	Name    string `bson:"name" json:"name" validate:"required"`
	Company string `bson:"company" json:"company"`
	Message string `bson:"message" json:"message" validate:"required"`
	Rating  int    `bson:"rating" json:"rating" validate:"gte=0,lte=5"`
}

// Offer is a promotional deal shown on the storefront.
type Offer struct {
	Meta        `bson:",inline"`
	Title       string  `bson:"title" json:"title" validate:"required"`
	Description string  `bson:"description" json:"description"`
	Discount    float64 `bson:"discount" json:"discount" validate:"gte=0,lte=100"`
	Code        string  `bson:"code" json:"code"`
	ValidUntil  string  `bson:"validUntil" json:"validUntil"`
}

// OfferBanner is the hero image advertising current offers.
type OfferBanner struct {
	Meta   `bson:",inline"`
	Title  string `bson:"title" json:"title" schema:"title" validate:"required"`
	Link   string `bson:"link" json:"link" schema:"link"`
	Active bool   `bson:"active" json:"active" schema:"active"`
	Image  string `bson:"image" json:"image" schema:"-"`
}

// Lead is a contact-form submission.
type Lead struct {
	Meta    `bson:",inline"`
	Name    string `bson:"name" json:"name" validate:"required"`
	Email   string `bson:"email" json:"email" validate:"required,email"`
	Phone   string `bson:"phone" json:"phone"`
	Subject string `bson:"subject" json:"subject"`
	Message string `bson:"message" json:"message" validate:"required"`
	Status  string `bson:"status" json:"status"`
}
