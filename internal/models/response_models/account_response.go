package response_models

type LoginResponse struct {
	Token string `json:"token"`
}

type CreateUserResponse struct {
	OK  bool   `json:"ok"`
	UID string `json:"uid"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type UserResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	Role         string `json:"role"`
	Status       string `json:"status"`
	Country      string `json:"country,omitempty"`
	MobileNumber string `json:"mobileNumber,omitempty"`
	CreatedAt    int64  `json:"createdAt"`
}
