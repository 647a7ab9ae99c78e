package models

type Job struct {
	Meta         `bson:",inline"`
	Title        string `bson:"title" json:"title" validate:"required"`
	Department   string `bson:"department" json:"department"`
	Location     string `bson:"location" json:"location"`
	Type         string `bson:"type" json:"type"`
	Experience   string `bson:"experience" json:"experience"`
	Description  string `bson:"description" json:"description" validate:"required"`
	Requirements string `bson:"requirements" json:"requirements"`
	Open         bool   `bson:"open" json:"open"`
}

type JobApplication struct {
	Meta        `bson:",inline"`
	JobID       string `bson:"jobId" json:"jobId" schema:"jobId" validate:"required"`
	JobTitle    string `bson:"jobTitle" json:"jobTitle" schema:"jobTitle"`
	Name        string `bson:"name" json:"name" schema:"name" validate:"required"`
	Email       string `bson:"email" json:"email" schema:"email" validate:"required,email"`
	Phone       string `bson:"phone" json:"phone" schema:"phone" validate:"required"`
	CoverLetter string `bson:"coverLetter" json:"coverLetter" schema:"coverLetter"`
	Resume      string `bson:"resume" json:"resume" schema:"-"`
	Status      string `bson:"status" json:"status" schema:"-"`
}
