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

// Package gnmi is a small async-to-sync-context client for the gNMI
// Capabilities/Get/Set/Subscribe RPCs, used to read interface state and
// push configuration alongside a switch's P4Runtime connection.
package gnmi

import (
	"context"
	"fmt"

	"github.com/byllyfish/finsy/fscreds"
	"github.com/byllyfish/finsy/gnmipath"
	"github.com/golang/glog"
	gnmipb "github.com/openconfig/gnmi/proto/gnmi"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// Update is a single path/value pair read from a GetResponse or a
// SubscribeResponse update notification.
type Update struct {
	Timestamp int64
	Path      gnmipath.Path
	Value     *gnmipb.TypedValue
}

// ClientError wraps a failed gNMI RPC's status.
type ClientError struct {
	Status *status.Status
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("gnmi: %s: %s", e.Status.Code(), e.Status.Message())
}

func (e *ClientError) GRPCStatus() *status.Status { return e.Status }

func newClientError(err error) error {
	if err == nil {
		return nil
	}
	return &ClientError{Status: status.Convert(err)}
}

// Client is a gNMI client over a single gRPC connection.
type Client struct {
	target string
	conn   *grpc.ClientConn
	rpc    gnmipb.GNMIClient
}

// Dial connects to a gNMI server at target ("host:port") using the given
// credential bundle (zero-value Bundle dials insecure).
func Dial(ctx context.Context, target string, creds fscreds.Bundle) (*Client, error) {
	transportCreds, err := creds.TransportCredentials()
	if err != nil {
		return nil, fmt.Errorf("gnmi: %w", err)
	}
	if transportCreds == nil {
		transportCreds = insecure.NewCredentials()
	}

	if glog.V(1) {
		glog.Infof("gnmi: dialing %s", target)
	}
	conn, err := grpc.DialContext(ctx, target, grpc.WithTransportCredentials(transportCreds))
	if err != nil {
		return nil, fmt.Errorf("gnmi: dial %s: %w", target, err)
	}

	return &Client{
		target: target,
		conn:   conn,
		rpc:    gnmipb.NewGNMIClient(conn),
	}, nil
}

// Target returns the dial target this Client connects to.
func (c *Client) Target() string { return c.target }

// Close tears down the underlying gRPC connection.
func (c *Client) Close() error { return c.conn.Close() }

// GetOption customizes a Get call.
type GetOption func(*gnmipb.GetRequest)

// WithPrefix sets the GetRequest/SetRequest prefix path.
func WithPrefix(prefix gnmipath.Path) GetOption {
	return func(r *gnmipb.GetRequest) { r.Prefix = prefix.Proto() }
}

// WithConfigOnly restricts a Get to configuration data.
func WithConfigOnly() GetOption {
	return func(r *gnmipb.GetRequest) { r.Type = gnmipb.GetRequest_CONFIG }
}

// Get retrieves the current value(s) at one or more paths.
func (c *Client) Get(ctx context.Context, paths []gnmipath.Path, opts ...GetOption) ([]Update, error) {
	req := &gnmipb.GetRequest{Encoding: gnmipb.Encoding_PROTO}
	for _, p := range paths {
		req.Path = append(req.Path, p.Proto())
	}
	for _, opt := range opts {
		opt(req)
	}

	if glog.V(2) {
		glog.Infof("gnmi(%s): Get: %s", c.target, req)
	}
	resp, err := c.rpc.Get(ctx, req)
	if err != nil {
		return nil, newClientError(err)
	}

	var updates []Update
	for _, n := range resp.GetNotification() {
		updates = append(updates, readUpdates(n)...)
	}
	return updates, nil
}

// Capabilities issues a CapabilityRequest.
func (c *Client) Capabilities(ctx context.Context) (*gnmipb.CapabilityResponse, error) {
	resp, err := c.rpc.Capabilities(ctx, &gnmipb.CapabilityRequest{})
	if err != nil {
		return nil, newClientError(err)
	}
	return resp, nil
}

// SetValue is a (path, value) pair for a Set update or replace operation.
type SetValue struct {
	Path  gnmipath.Path
	Value *gnmipb.TypedValue
}

// BoolValue, IntValue, UintValue, StringValue, and BytesValue build a
// *gnmi.TypedValue from a Go value, mirroring the teacher's gnmi_update
// value dispatch.
func BoolValue(v bool) *gnmipb.TypedValue { return &gnmipb.TypedValue{Value: &gnmipb.TypedValue_BoolVal{BoolVal: v}} }
func IntValue(v int64) *gnmipb.TypedValue {
	return &gnmipb.TypedValue{Value: &gnmipb.TypedValue_IntVal{IntVal: v}}
}
func UintValue(v uint64) *gnmipb.TypedValue {
	return &gnmipb.TypedValue{Value: &gnmipb.TypedValue_UintVal{UintVal: v}}
}
func StringValue(v string) *gnmipb.TypedValue {
	return &gnmipb.TypedValue{Value: &gnmipb.TypedValue_StringVal{StringVal: v}}
}
func BytesValue(v []byte) *gnmipb.TypedValue {
	return &gnmipb.TypedValue{Value: &gnmipb.TypedValue_BytesVal{BytesVal: v}}
}

// Set issues a SetRequest with the given update, replace, and delete
// operations, and returns the response timestamp.
func (c *Client) Set(ctx context.Context, update, replace []SetValue, deletePaths []gnmipath.Path, opts ...GetOption) (int64, error) {
	req := &gnmipb.SetRequest{}
	for _, u := range update {
		req.Update = append(req.Update, &gnmipb.Update{Path: u.Path.Proto(), Val: u.Value})
	}
	for _, r := range replace {
		req.Replace = append(req.Replace, &gnmipb.Update{Path: r.Path.Proto(), Val: r.Value})
	}
	for _, d := range deletePaths {
		req.Delete = append(req.Delete, d.Proto())
	}
	genReq := &gnmipb.GetRequest{}
	for _, opt := range opts {
		opt(genReq)
	}
	if genReq.Prefix != nil {
		req.Prefix = genReq.Prefix
	}

	if glog.V(2) {
		glog.Infof("gnmi(%s): Set: %s", c.target, req)
	}
	resp, err := c.rpc.Set(ctx, req)
	if err != nil {
		return 0, newClientError(err)
	}

	if resp.GetMessage() != nil {
		return 0, fmt.Errorf("gnmi: set failed: %s", resp.GetMessage().GetMessage())
	}
	for _, result := range resp.GetResponse() {
		if result.GetMessage() != nil {
			return 0, fmt.Errorf("gnmi: set failed for %s: %s", result.GetPath(), result.GetMessage().GetMessage())
		}
	}
	return resp.GetTimestamp(), nil
}

func readUpdates(n *gnmipb.Notification) []Update {
	var updates []Update
	for _, u := range n.GetUpdate() {
		updates = append(updates, Update{
			Timestamp: n.GetTimestamp(),
			Path:      gnmipath.FromProto(u.GetPath()),
			Value:     u.GetVal(),
		})
	}
	for _, d := range n.GetDelete() {
		updates = append(updates, Update{
			Timestamp: n.GetTimestamp(),
			Path:      gnmipath.FromProto(d),
			Value:     nil,
		})
	}
	return updates
}
