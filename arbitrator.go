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
	"context"
	"fmt"

	"github.com/byllyfish/finsy/p4rtclient"
	"github.com/golang/glog"
	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"
	"google.golang.org/grpc/codes"
)

// arbitrator manages the client/role arbitration state machine for one
// Switch connection. It tracks the election ID we're bidding with, whether
// we currently hold primary status, and the highest election ID any client
// has claimed.
type arbitrator struct {
	deviceID          uint64
	initialElectionID *p4v1.Uint128
	electionID        *p4v1.Uint128
	primaryID         *p4v1.Uint128 // nil until a primary is observed
	isPrimary         bool
	role              *p4v1.Role
}

func newArbitrator(deviceID uint64, initialElectionID *p4v1.Uint128, role *p4v1.Role) *arbitrator {
	return &arbitrator{
		deviceID:          deviceID,
		initialElectionID: initialElectionID,
		electionID:        initialElectionID,
		role:              role,
	}
}

// reset restores the arbitrator to its starting state. It is called
// whenever the stream disconnects and arbitration must be redone.
func (a *arbitrator) reset() {
	a.electionID = a.initialElectionID
	a.isPrimary = false
	a.primaryID = nil
}

// arbitrationUpdate reports a primary/backup transition detected while
// handling a MasterArbitrationUpdate.
type arbitrationUpdate struct {
	becamePrimary bool
	becameBackup  bool
}

// handshake performs the initial client arbitration exchange over stream.
func (a *arbitrator) handshake(ctx context.Context, stream *p4rtclient.Stream) error {
	if err := a.send(stream); err != nil {
		return err
	}

	for {
		arb, err := a.receive(ctx, stream)
		if err != nil {
			return err
		}

		code := codes.Code(arb.GetStatus().GetCode())
		primaryID := arb.GetElectionId()

		if code == codes.NotFound {
			// The switch told us who the primary is; adopt that election
			// ID and retry so we converge on a value it will accept.
			a.electionID = primaryID
			if err := a.send(stream); err != nil {
				return err
			}
			continue
		}
		if code != codes.OK && code != codes.AlreadyExists {
			return newStreamError(fmt.Errorf("arbitration handshake failed: %v", code))
		}

		a.primaryID = primaryID
		a.isPrimary = code == codes.OK
		return nil
	}
}

// update processes a subsequent MasterArbitrationUpdate pushed by the
// switch (e.g. another client connected, disconnected, or was promoted).
func (a *arbitrator) update(stream *p4rtclient.Stream, msg *p4v1.MasterArbitrationUpdate) (arbitrationUpdate, error) {
	code := codes.Code(msg.GetStatus().GetCode())
	newPrimaryID := msg.GetElectionId()

	if a.primaryID == nil || compareUint128(newPrimaryID, a.primaryID) >= 0 {
		a.primaryID = newPrimaryID
	} else {
		// Some implementations report OK with a decreased election_id to
		// signal that the next backup should become primary.
		glog.Warningf("finsy: arbitration election_id decreased to %v", newPrimaryID)
		if code == codes.OK && !a.isPrimary && compareUint128(newPrimaryID, a.electionID) == 0 {
			code = codes.NotFound
		}
	}

	var result arbitrationUpdate
	switch code {
	case codes.OK:
		if !a.isPrimary {
			a.isPrimary = true
			result.becamePrimary = true
		}
	case codes.AlreadyExists:
		if a.isPrimary {
			a.isPrimary = false
			result.becameBackup = true
		}
	case codes.NotFound:
		a.isPrimary = false
		a.electionID = a.primaryID
		if err := a.send(stream); err != nil {
			return result, err
		}
	default:
		return result, newStreamError(fmt.Errorf("unexpected arbitration status: %v", code))
	}
	return result, nil
}

// completeRequest stamps msg with the arbitrator's role and (for
// Write/SetForwardingPipelineConfig) election ID, as every outgoing
// P4Runtime request other than a Read with no role must be before it's sent.
func (a *arbitrator) completeRequest(msg any) {
	roleName := ""
	if a.role != nil {
		roleName = a.role.GetName()
	}

	switch req := msg.(type) {
	case *p4v1.ReadRequest:
		req.Role = roleName
	case *p4v1.WriteRequest:
		req.Role = roleName
		req.ElectionId = a.electionID
	case *p4v1.SetForwardingPipelineConfigRequest:
		req.Role = roleName
		req.ElectionId = a.electionID
	}
}

func (a *arbitrator) send(stream *p4rtclient.Stream) error {
	req := &p4v1.StreamMessageRequest{
		Update: &p4v1.StreamMessageRequest_Arbitration{
			Arbitration: &p4v1.MasterArbitrationUpdate{
				DeviceId:   a.deviceID,
				Role:       a.role,
				ElectionId: a.electionID,
			},
		},
	}
	return stream.Send(req)
}

// receive waits for the next MasterArbitrationUpdate on stream.
func (a *arbitrator) receive(ctx context.Context, stream *p4rtclient.Stream) (*p4v1.MasterArbitrationUpdate, error) {
	select {
	case resp, ok := <-stream.Recv():
		if !ok {
			return nil, newStreamError(stream.Err())
		}
		arb := resp.GetArbitration()
		if arb == nil {
			return nil, newStreamError(fmt.Errorf("unexpected stream response while arbitrating: %T", resp.GetUpdate()))
		}
		return arb, nil
	case <-stream.Done():
		return nil, newStreamError(stream.Err())
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// compareUint128 returns -1, 0, or 1 as a is less than, equal to, or
// greater than b.
func compareUint128(a, b *p4v1.Uint128) int {
	switch {
	case a.GetHigh() != b.GetHigh():
		if a.GetHigh() < b.GetHigh() {
			return -1
		}
		return 1
	case a.GetLow() != b.GetLow():
		if a.GetLow() < b.GetLow() {
			return -1
		}
		return 1
	default:
		return 0
	}
}
