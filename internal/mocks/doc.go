// Package mocks provides shared test doubles for the interfaces used across
// the application.
//
// Store, limiter and service mocks embed testify's mock.Mock and are driven
// with On/Return expectations. The token and password doubles use function
// fields with fixed defaults, which keeps handler and service tests short
// when only one call needs custom behavior:
//
//	tokens := &mocks.MockJWTService{Token: "signed"}
//	users := new(mocks.UserStore)
//	users.On("GetIDByEmail", mock.Anything, "user@example.com").Return(id, nil)
package mocks
