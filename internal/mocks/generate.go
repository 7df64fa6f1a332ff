// Package mocks provides mock implementations for testing the connect service.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockDir := mocks.NewMockEmployeeDirectory(ctrl)
//	mockDir.EXPECT().CheckEmployeeStatus(gomock.Any(), "jane@acme.com").Return(status, nil)
package mocks

// Generate mock for EmployeeDirectory interface from internal/ports.
// This creates MockEmployeeDirectory with CheckEmployeeStatus.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=employee_directory_mock.go github.com/leanchem/connect-api/internal/ports EmployeeDirectory

// Generate mock for TokenVerifier interface from internal/ports.
// This creates MockTokenVerifier with Verify.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=token_verifier_mock.go github.com/leanchem/connect-api/internal/ports TokenVerifier
