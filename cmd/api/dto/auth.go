package dto

type UserDTO struct {
	ID string `json:"id" example:"dev-user-id"`
}

type ValidateTokenResponseDTO struct {
	Valid bool    `json:"valid" example:"true"`
	User  UserDTO `json:"user"`
}
