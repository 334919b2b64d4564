package request_models

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type CreateUserRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=6"`
	DisplayName  string `json:"displayName" binding:"max=80"`
	MobileNumber string `json:"mobileNumber"`
	Role         string `json:"role" binding:"omitempty,oneof=admin manager user"`
	Status       string `json:"status"`
	Country      string `json:"country"`
}

type DeleteUserRequest struct {
	UID           string `json:"uid" binding:"required"`
	DeleteUserDoc bool   `json:"deleteUserDoc"`
}
