package services

import "jobboard_backend/internal/email"

// ServiceContainer bundles every service the app wires at startup.
type ServiceContainer struct {
	AuthService       AuthService
	UserService       UserService
	JobService        JobService
	AggregatorService AggregatorService
	EmailService      email.Provider
}
