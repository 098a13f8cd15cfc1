// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

package auth

import (
	"crypto/rand"
)

// SharedSpeakerPassword is the password handed out on printed speaker packets.
// Accounts created with it are flagged to change their password at next login.
//
// Migration note: once every packet-created account has rotated its password this
// constant and the branch in SignupService can go, and self-service signup will
// never set the change-password flag.
//
//nolint:gosec // G101: published shared password, not a secret.
const SharedSpeakerPassword = "ccawspeakerpassword"

// GeneratedPasswordLength is the length of passwords produced by GeneratePassword.
const GeneratedPasswordLength = 10

// passwordAlphabet excludes 0 so generated passwords are never confused with "o".
const passwordAlphabet = "abcdefghijklmnopqrstuvwxyz123456789"

// rejectAbove is the largest multiple of len(passwordAlphabet) that fits a byte;
// bytes at or above it are discarded to keep the draw uniform.
const rejectAbove = 256 - 256%len(passwordAlphabet)

// GeneratePassword returns a random, human-typable password of
// GeneratedPasswordLength characters from passwordAlphabet.
func GeneratePassword() string {
	out := make([]byte, 0, GeneratedPasswordLength)
	buf := make([]byte, GeneratedPasswordLength*2)
	for len(out) < GeneratedPasswordLength {
		// crypto/rand.Read aborts the process instead of returning an error.
		_, _ = rand.Read(buf) //nolint:errcheck // see above
		for _, b := range buf {
			if int(b) >= rejectAbove {
				continue
			}
			out = append(out, passwordAlphabet[int(b)%len(passwordAlphabet)])
			if len(out) == GeneratedPasswordLength {
				break
			}
		}
	}
	return string(out)
}
