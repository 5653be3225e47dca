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

package finsy

import (
	"testing"

	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"
	"github.com/stretchr/testify/assert"
)

func TestCompareUint128(t *testing.T) {
	assert.Equal(t, 0, compareUint128(&p4v1.Uint128{Low: 5}, &p4v1.Uint128{Low: 5}))
	assert.Equal(t, -1, compareUint128(&p4v1.Uint128{Low: 4}, &p4v1.Uint128{Low: 5}))
	assert.Equal(t, 1, compareUint128(&p4v1.Uint128{Low: 6}, &p4v1.Uint128{Low: 5}))
	assert.Equal(t, -1, compareUint128(&p4v1.Uint128{High: 1, Low: 0}, &p4v1.Uint128{High: 2, Low: 0}))
}

func TestArbitratorReset(t *testing.T) {
	initial := &p4v1.Uint128{Low: 10}
	a := newArbitrator(1, initial, nil)
	a.isPrimary = true
	a.electionID = &p4v1.Uint128{Low: 99}
	a.primaryID = &p4v1.Uint128{Low: 99}

	a.reset()

	assert.False(t, a.isPrimary)
	assert.Nil(t, a.primaryID)
	assert.Equal(t, initial, a.electionID)
}

func TestArbitratorCompleteRequestStampsRoleAndElectionID(t *testing.T) {
	a := newArbitrator(1, &p4v1.Uint128{Low: 10}, &p4v1.Role{Name: "reader"})

	read := &p4v1.ReadRequest{}
	a.completeRequest(read)
	assert.Equal(t, "reader", read.Role)

	write := &p4v1.WriteRequest{}
	a.completeRequest(write)
	assert.Equal(t, "reader", write.Role)
	assert.Equal(t, a.electionID, write.ElectionId)

	setCfg := &p4v1.SetForwardingPipelineConfigRequest{}
	a.completeRequest(setCfg)
	assert.Equal(t, "reader", setCfg.Role)
	assert.Equal(t, a.electionID, setCfg.ElectionId)
}

func TestArbitratorCompleteRequestDefaultRole(t *testing.T) {
	a := newArbitrator(1, &p4v1.Uint128{Low: 10}, nil)
	write := &p4v1.WriteRequest{}
	a.completeRequest(write)
	assert.Equal(t, "", write.Role)
}
