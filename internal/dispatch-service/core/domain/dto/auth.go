package dto

type RegisterRequestDto struct {
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	Password     *string `json:"password"`
	Role         *string `json:"role"`
	VehicleClass *string `json:"vehicle_class,omitempty"`
}

type RegisterResponseDto struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type LoginRequestDto struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type LoginResponseDto struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}
