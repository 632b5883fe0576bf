// ABOUTME: Helpers shared by the hand-rolled service descriptors
// ABOUTME: Keeps Unimplemented defaults aligned with generated-code behavior

package tnc

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func errUnimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}
