package dto

// RegisterStudentRequest represents student registration data
type RegisterStudentRequest struct {
	Username string `json:"username" binding:"required,max=255" example:"alice"`
	Password string `json:"password" binding:"required,maxbytes=72" example:"pw1"` // bcrypt rejects longer input
	Name     string `json:"name" binding:"required,max=255" example:"Alice A"`
}

// MatricPathParams binds the matric number path segment
type MatricPathParams struct {
	MatricNumber string `uri:"matric_number" binding:"required"`
}

// UsernamePathParams binds the username path segment
type UsernamePathParams struct {
	Username string `uri:"username" binding:"required"`
}
