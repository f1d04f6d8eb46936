package domain

// SignupRequest is the JSON body of POST /signup.
type SignupRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	ImageURL *string `json:"image_url"`
	Bio      *string `json:"bio"`
}

// LoginRequest is the JSON body of POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserProfile is a user together with the recipes they own.
type UserProfile struct {
	User    User
	Recipes []Recipe
}
