package domain

import "errors"

var (
	// ErrNotFound distinguishes a missing row from a store failure.
	ErrNotFound = errors.New("record not found")
	// ErrNotRegistered is returned when an operation requires a user row that does not exist.
	ErrNotRegistered = errors.New("user not registered")
	// ErrAlreadyRegistered is returned when a registered user tries to sign up again.
	ErrAlreadyRegistered = errors.New("user already registered")
	// ErrNotInGroup is returned when an operation requires a group membership that does not exist.
	ErrNotInGroup = errors.New("user not in a group")
	// ErrInvalidHandle indicates the LeetCode username does not exist.
	ErrInvalidHandle = errors.New("invalid leetcode username")
	// ErrGuildUnavailable indicates the target Discord guild is not configured or reachable.
	ErrGuildUnavailable = errors.New("guild unavailable")
	// ErrSourceExhausted indicates no eligible question was found within the retry budget.
	ErrSourceExhausted = errors.New("question source exhausted")
	// ErrGroupFull signals a lost capacity race on a conditional membership insert.
	ErrGroupFull = errors.New("group at capacity")
	// ErrSignupExpired indicates the registration session timed out.
	ErrSignupExpired = errors.New("signup session expired")
)
