/*
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package p4rtclient

import (
	"fmt"
	"reflect"

	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ClientError wraps a failed P4Runtime RPC: the gRPC status it returned,
// plus (for Write) the per-update error detail list the server packs into
// the status's Details.
type ClientError struct {
	Status  *status.Status
	Details []*p4v1.Error
}

func (e *ClientError) Error() string {
	if len(e.Details) == 0 {
		return e.Status.Err().Error()
	}
	return fmt.Sprintf("%s (%d update errors)", e.Status.Err(), countFailed(e.Details))
}

func (e *ClientError) Unwrap() error {
	return e.Status.Err()
}

// GRPCStatus lets status.FromError/status.Code recover the gRPC status
// from a wrapped *ClientError.
func (e *ClientError) GRPCStatus() *status.Status {
	return e.Status
}

// Code returns the gRPC status code of the underlying error.
func (e *ClientError) Code() codes.Code {
	return e.Status.Code()
}

func countFailed(details []*p4v1.Error) int {
	n := 0
	for _, d := range details {
		if d.GetCanonicalCode() != int32(codes.OK) {
			n++
		}
	}
	return n
}

// newClientError builds a ClientError from a failed unary RPC, parsing the
// per-update []*p4v1.Error detail list out of the status (the shape the
// P4Runtime server uses to report partial Write failures).
func newClientError(err error) *ClientError {
	st := status.Convert(err)
	var details []*p4v1.Error
	for _, d := range st.Details() {
		if pe, ok := d.(*p4v1.Error); ok {
			details = append(details, pe)
			continue
		}
		// Unexpected detail type; ignore rather than panic, since a
		// future P4Runtime server version may add new detail kinds.
		_ = reflect.TypeOf(d)
	}
	return &ClientError{Status: st, Details: details}
}

// IsNotFoundOnly reports whether every failed update in a Write's error
// details is NOT_FOUND — the common "already deleted"/"never inserted"
// case a caller may want to treat as success during cleanup.
func IsNotFoundOnly(err error) bool {
	ce, ok := asClientError(err)
	if !ok || len(ce.Details) == 0 {
		return false
	}
	for _, d := range ce.Details {
		if d.GetCanonicalCode() == int32(codes.OK) {
			continue
		}
		if d.GetCanonicalCode() != int32(codes.NotFound) {
			return false
		}
	}
	return true
}

// IsElectionIDUsed reports whether the error has an ALREADY_EXISTS or
// FAILED_PRECONDITION status, the codes returned when another client is
// already using the requested election ID.
func IsElectionIDUsed(err error) bool {
	ce, ok := asClientError(err)
	if !ok {
		return false
	}
	return ce.Code() == codes.AlreadyExists || ce.Code() == codes.FailedPrecondition
}

// IsNoPipelineConfigured reports whether the error indicates the switch has
// no forwarding-pipeline config installed yet.
func IsNoPipelineConfigured(err error) bool {
	ce, ok := asClientError(err)
	if !ok {
		return false
	}
	return ce.Code() == codes.FailedPrecondition
}

func asClientError(err error) (*ClientError, bool) {
	ce, ok := err.(*ClientError)
	if ok {
		return ce, true
	}
	type unwrapper interface{ Unwrap() error }
	if u, ok := err.(unwrapper); ok {
		return asClientError(u.Unwrap())
	}
	return nil, false
}
