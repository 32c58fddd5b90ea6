package service

import "errors"

var (
	ErrUnauthorized       = errors.New("could not validate credentials")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInactiveUser       = errors.New("inactive user")
	ErrEmailTaken         = errors.New("a user with this email already exists")
	ErrForbidden          = errors.New("not enough permissions")
	ErrBusinessNotFound   = errors.New("business not found")
	ErrAlreadyRegistered  = errors.New("user is already registered in a business")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrIndustryNotFound   = errors.New("business industry not found")
	ErrInviteInvalid      = errors.New("invalid invitation token")
	ErrInviteExpired      = errors.New("invitation has expired")
	ErrAvatarTooLarge     = errors.New("avatar file is too large")
)
