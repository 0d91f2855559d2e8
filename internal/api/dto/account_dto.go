package dto

// CreateAccountRequest payload for registering an account.
type CreateAccountRequest struct {
	FirstName            string `json:"firstName" validate:"required"`
	LastName             string `json:"lastName" validate:"required"`
	Password             string `json:"password" validate:"required,min=6"`
	PasswordConfirmation string `json:"passwordConfirmation" validate:"required,eqfield=Password"`
	Email                string `json:"email" validate:"required,email"`
}

// VerifyAccountParams are the path parameters of the verification link.
type VerifyAccountParams struct {
	ID               string `params:"id" validate:"required"`
	VerificationCode string `params:"verificationCode" validate:"required"`
}

// ForgotPasswordRequest payload for requesting a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// MessageResponse is the success body of the account endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}
