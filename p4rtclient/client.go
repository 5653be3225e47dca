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

// Package p4rtclient is a thin, typed wrapper around the generated
// P4Runtime gRPC client: one connection and one bidirectional
// StreamChannel per switch, with the inbound stream delivered on a single
// channel instead of the teacher's polling queues.
package p4rtclient

import (
	"context"
	"fmt"
	"time"

	"github.com/byllyfish/finsy/fscreds"
	"github.com/golang/glog"
	grpc_retry "github.com/grpc-ecosystem/go-grpc-middleware/retry"
	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// Client manages a single gRPC connection to a P4Runtime server. Unlike
// the teacher's P4RTClient, it carries at most one StreamChannel at a
// time: Finsy gives each switch its own Client.
type Client struct {
	target string
	conn   *grpc.ClientConn
	rpc    p4v1.P4RuntimeClient
}

// DialOption customizes how Dial connects to a server.
type DialOption func(*dialConfig)

type dialConfig struct {
	grpcOpts    []grpc.DialOption
	retryPolicy grpc_retry.CallOption
	hasCreds    bool
	credErr     error
}

// WithTransportCredentials sets the gRPC transport credentials to dial
// with (TLS, mTLS, or insecure). If omitted, Dial uses insecure credentials.
func WithTransportCredentials(creds credentials.TransportCredentials) DialOption {
	return func(c *dialConfig) {
		c.grpcOpts = append(c.grpcOpts, grpc.WithTransportCredentials(creds))
		c.hasCreds = true
	}
}

// WithCredentials sets the dial's transport security from an fscreds.Bundle
// (insecure, server-TLS, or mutual-TLS).
func WithCredentials(bundle fscreds.Bundle) DialOption {
	return func(c *dialConfig) {
		creds, err := bundle.TransportCredentials()
		if err != nil {
			c.credErr = err
			return
		}
		c.grpcOpts = append(c.grpcOpts, grpc.WithTransportCredentials(creds))
		c.hasCreds = true
	}
}

// WithPerRetryTimeout bounds each individual retry attempt of a unary RPC,
// following the teacher's grpc_retry.WithPerRetryTimeout dial option.
func WithPerRetryTimeout(d time.Duration) DialOption {
	return func(c *dialConfig) {
		c.retryPolicy = grpc_retry.WithPerRetryTimeout(d)
	}
}

// WithDialOption passes through an arbitrary grpc.DialOption.
func WithDialOption(opt grpc.DialOption) DialOption {
	return func(c *dialConfig) {
		c.grpcOpts = append(c.grpcOpts, opt)
	}
}

// Dial connects to a P4Runtime server at target ("host:port").
func Dial(ctx context.Context, target string, opts ...DialOption) (*Client, error) {
	cfg := &dialConfig{retryPolicy: grpc_retry.WithPerRetryTimeout(5 * time.Second)}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.credErr != nil {
		return nil, fmt.Errorf("p4rtclient: %w", cfg.credErr)
	}

	dialOpts := append([]grpc.DialOption{}, cfg.grpcOpts...)
	dialOpts = append(dialOpts,
		grpc.WithStreamInterceptor(grpc_retry.StreamClientInterceptor(cfg.retryPolicy)),
		grpc.WithUnaryInterceptor(grpc_retry.UnaryClientInterceptor(cfg.retryPolicy)),
	)
	if !cfg.hasCreds {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	if glog.V(1) {
		glog.Infof("p4rtclient: dialing %s", target)
	}
	conn, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("p4rtclient: dial %s: %w", target, err)
	}

	return &Client{
		target: target,
		conn:   conn,
		rpc:    p4v1.NewP4RuntimeClient(conn),
	}, nil
}

// Target returns the dial target this Client connects to.
func (c *Client) Target() string { return c.target }

// Close tears down the underlying gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// StreamChannel opens the bidirectional arbitration/packet/digest stream.
func (c *Client) StreamChannel(ctx context.Context) (*Stream, error) {
	ctx, cancel := context.WithCancel(ctx)
	raw, err := c.rpc.StreamChannel(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("p4rtclient: StreamChannel: %w", err)
	}
	return newStream(raw, cancel), nil
}

// Write sends a WriteRequest and translates a failure into a *ClientError.
func (c *Client) Write(ctx context.Context, req *p4v1.WriteRequest) error {
	if glog.V(2) {
		glog.Infof("p4rtclient(%s): Write: %s", c.target, req)
	}
	_, err := c.rpc.Write(ctx, req)
	if err != nil {
		return newClientError(err)
	}
	return nil
}

// Read issues a ReadRequest and returns the server-streaming response
// iterator.
func (c *Client) Read(ctx context.Context, req *p4v1.ReadRequest) (p4v1.P4Runtime_ReadClient, error) {
	if glog.V(2) {
		glog.Infof("p4rtclient(%s): Read: %s", c.target, req)
	}
	stream, err := c.rpc.Read(ctx, req)
	if err != nil {
		return nil, newClientError(err)
	}
	return stream, nil
}

// SetForwardingPipelineConfig installs or verifies a P4 pipeline config.
func (c *Client) SetForwardingPipelineConfig(ctx context.Context, req *p4v1.SetForwardingPipelineConfigRequest) error {
	if glog.V(2) {
		glog.Infof("p4rtclient(%s): SetForwardingPipelineConfig", c.target)
	}
	_, err := c.rpc.SetForwardingPipelineConfig(ctx, req)
	if err != nil {
		return newClientError(err)
	}
	return nil
}

// GetForwardingPipelineConfig retrieves the currently installed pipeline config.
func (c *Client) GetForwardingPipelineConfig(ctx context.Context, req *p4v1.GetForwardingPipelineConfigRequest) (*p4v1.GetForwardingPipelineConfigResponse, error) {
	if glog.V(2) {
		glog.Infof("p4rtclient(%s): GetForwardingPipelineConfig", c.target)
	}
	resp, err := c.rpc.GetForwardingPipelineConfig(ctx, req)
	if err != nil {
		return nil, newClientError(err)
	}
	return resp, nil
}

// Capabilities retrieves the server's P4Runtime API version.
func (c *Client) Capabilities(ctx context.Context, req *p4v1.CapabilitiesRequest) (*p4v1.CapabilitiesResponse, error) {
	resp, err := c.rpc.Capabilities(ctx, req)
	if err != nil {
		return nil, newClientError(err)
	}
	return resp, nil
}
