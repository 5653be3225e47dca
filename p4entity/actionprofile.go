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

package p4entity

import (
	"github.com/byllyfish/finsy/p4schema"
	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"
)

// ActionProfileMember is one member of an action-profile's shared pool of
// indirect actions, referenced from table entries by member ID.
type ActionProfileMember struct {
	ActionProfile string
	MemberID      uint32
	Action        *TableAction
}

func (e ActionProfileMember) EncodeEntity(schema *p4schema.Schema) (*p4v1.Entity, error) {
	if e.ActionProfile == "" {
		return &p4v1.Entity{Entity: &p4v1.Entity_ActionProfileMember{ActionProfileMember: &p4v1.ActionProfileMember{}}}, nil
	}
	profile, err := schema.ActionProfiles().Get(e.ActionProfile)
	if err != nil {
		return nil, err
	}
	entry := &p4v1.ActionProfileMember{
		ActionProfileId: profile.ID(),
		MemberId:        e.MemberID,
	}
	if e.Action != nil {
		act, err := e.Action.encodeAction(schema.Actions())
		if err != nil {
			return nil, err
		}
		entry.Action = act
	}
	return &p4v1.Entity{Entity: &p4v1.Entity_ActionProfileMember{ActionProfileMember: entry}}, nil
}

// DecodeActionProfileMember decodes a wire ActionProfileMember.
func DecodeActionProfileMember(msg *p4v1.ActionProfileMember, schema *p4schema.Schema) (ActionProfileMember, error) {
	if msg.GetActionProfileId() == 0 {
		return ActionProfileMember{}, nil
	}
	profile, err := schema.ActionProfiles().Get(msg.GetActionProfileId())
	if err != nil {
		return ActionProfileMember{}, err
	}
	entry := ActionProfileMember{ActionProfile: profile.Alias(), MemberID: msg.GetMemberId()}
	if msg.GetAction() != nil {
		act, err := decodeAction(msg.GetAction(), schema.Actions())
		if err != nil {
			return ActionProfileMember{}, err
		}
		entry.Action = &act
	}
	return entry, nil
}

// Member is one weighted member of an action-profile group.
type Member struct {
	MemberID  uint32
	Weight    int32
	WatchPort []byte
}

func (m Member) encode() *p4v1.ActionProfileGroup_Member {
	out := &p4v1.ActionProfileGroup_Member{MemberId: m.MemberID, Weight: m.Weight}
	if m.WatchPort != nil {
		out.WatchKind = &p4v1.ActionProfileGroup_Member_WatchPort{WatchPort: m.WatchPort}
	}
	return out
}

func decodeMember(msg *p4v1.ActionProfileGroup_Member) Member {
	m := Member{MemberID: msg.GetMemberId(), Weight: msg.GetWeight()}
	if wp, ok := msg.GetWatchKind().(*p4v1.ActionProfileGroup_Member_WatchPort); ok {
		m.WatchPort = wp.WatchPort
	}
	return m
}

// ActionProfileGroup is a load-balanced group of action-profile members,
// referenced from table entries by group ID.
type ActionProfileGroup struct {
	ActionProfile string
	GroupID       uint32
	MaxSize       int32
	Members       []Member
}

func (e ActionProfileGroup) EncodeEntity(schema *p4schema.Schema) (*p4v1.Entity, error) {
	if e.ActionProfile == "" {
		return &p4v1.Entity{Entity: &p4v1.Entity_ActionProfileGroup{ActionProfileGroup: &p4v1.ActionProfileGroup{}}}, nil
	}
	profile, err := schema.ActionProfiles().Get(e.ActionProfile)
	if err != nil {
		return nil, err
	}
	entry := &p4v1.ActionProfileGroup{
		ActionProfileId: profile.ID(),
		GroupId:         e.GroupID,
		MaxSize:         e.MaxSize,
	}
	if e.Members != nil {
		members := make([]*p4v1.ActionProfileGroup_Member, 0, len(e.Members))
		for _, m := range e.Members {
			members = append(members, m.encode())
		}
		entry.Members = members
	}
	return &p4v1.Entity{Entity: &p4v1.Entity_ActionProfileGroup{ActionProfileGroup: entry}}, nil
}

// DecodeActionProfileGroup decodes a wire ActionProfileGroup.
func DecodeActionProfileGroup(msg *p4v1.ActionProfileGroup, schema *p4schema.Schema) (ActionProfileGroup, error) {
	if msg.GetActionProfileId() == 0 {
		return ActionProfileGroup{}, nil
	}
	profile, err := schema.ActionProfiles().Get(msg.GetActionProfileId())
	if err != nil {
		return ActionProfileGroup{}, err
	}
	entry := ActionProfileGroup{
		ActionProfile: profile.Alias(),
		GroupID:       msg.GetGroupId(),
		MaxSize:       msg.GetMaxSize(),
	}
	if len(msg.GetMembers()) > 0 {
		members := make([]Member, 0, len(msg.GetMembers()))
		for _, m := range msg.GetMembers() {
			members = append(members, decodeMember(m))
		}
		entry.Members = members
	}
	return entry, nil
}
