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
	"testing"

	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestIsNotFoundOnly(t *testing.T) {
	err := &ClientError{
		Status: status.New(codes.Unknown, "write failed"),
		Details: []*p4v1.Error{
			{CanonicalCode: int32(codes.OK)},
			{CanonicalCode: int32(codes.NotFound)},
		},
	}
	assert.True(t, IsNotFoundOnly(err))

	err.Details = append(err.Details, &p4v1.Error{CanonicalCode: int32(codes.Internal)})
	assert.False(t, IsNotFoundOnly(err))
}

func TestIsElectionIDUsed(t *testing.T) {
	err := &ClientError{Status: status.New(codes.FailedPrecondition, "election id in use")}
	assert.True(t, IsElectionIDUsed(err))

	err2 := &ClientError{Status: status.New(codes.Internal, "boom")}
	assert.False(t, IsElectionIDUsed(err2))
}

func TestClientErrorUnwrap(t *testing.T) {
	err := &ClientError{Status: status.New(codes.NotFound, "missing")}
	assert.Equal(t, codes.NotFound, status.Code(err))
}
