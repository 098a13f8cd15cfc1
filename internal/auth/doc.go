// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

// Package auth provides speaker authentication and credential lifecycle
// operations for the CCAW registration site.
//
// # Domain Types
//
// Domain types should be created using their constructors:
//   - NewSpeaker - creates a Speaker with a validated email and password hash
//   - NewWebSession - creates a WebSession bound to a speaker with an expiry
//
// Direct struct initialization bypasses validation and may create invalid state.
//
// # Services
//
// Service types coordinate domain operations:
//   - SessionService - login, logout, session lookup
//   - SignupService - self-service and delegated (copresenter) signup
//   - PasswordService - change password and forgot password
//   - PrivilegeService - admin flag grant and revoke
//   - RedactionService - bulk clearing of uploaded documents
//
// Services are created with New*Service constructors that validate dependencies.
//
// # Errors
//
// Every service failure carries exactly one oops code from the Code* constants.
// Repositories and collaborators return uncoded errors (wrapping ErrNotFound,
// ErrDuplicateEmail or ErrVersionConflict where relevant) so the service code is
// the one callers observe.
package auth
