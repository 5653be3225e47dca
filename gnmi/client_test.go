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

package gnmi

import (
	"testing"

	"github.com/byllyfish/finsy/gnmipath"
	gnmipb "github.com/openconfig/gnmi/proto/gnmi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func assertGRPCNotFound() error {
	return status.New(codes.NotFound, "not found").Err()
}

func TestReadUpdates(t *testing.T) {
	path, err := gnmipath.Parse("/interfaces/interface[name=eth0]/state/oper-status")
	require.NoError(t, err)

	n := &gnmipb.Notification{
		Timestamp: 1234,
		Update: []*gnmipb.Update{
			{Path: path.Proto(), Val: StringValue("UP")},
		},
		Delete: []*gnmipb.Path{path.Proto()},
	}

	updates := readUpdates(n)
	require.Len(t, updates, 2)

	assert.Equal(t, int64(1234), updates[0].Timestamp)
	assert.Equal(t, "UP", updates[0].Value.GetStringVal())
	assert.True(t, updates[0].Path.Equal(path))

	assert.Nil(t, updates[1].Value)
	assert.True(t, updates[1].Path.Equal(path))
}

func TestTypedValueConstructors(t *testing.T) {
	assert.True(t, BoolValue(true).GetBoolVal())
	assert.Equal(t, int64(-5), IntValue(-5).GetIntVal())
	assert.Equal(t, uint64(7), UintValue(7).GetUintVal())
	assert.Equal(t, "hi", StringValue("hi").GetStringVal())
	assert.Equal(t, []byte("hi"), BytesValue([]byte("hi")).GetBytesVal())
}

func TestClientErrorFormatting(t *testing.T) {
	err := newClientError(assertGRPCNotFound())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gnmi:")
}
