package domain

import "errors"

var ErrRecordNotFound = errors.New("Record not found")
var ErrInsufficientBalance = errors.New("Insufficient balance")
var ErrDuplicateEmail = errors.New("Email already registered")
var ErrInvalidCredentials = errors.New("Invalid credentials")
var ErrInvalidCounterparty = errors.New("Recipient account not found")
