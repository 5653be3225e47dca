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
	"context"
	"fmt"
	"io"

	"github.com/byllyfish/finsy/gnmipath"
	"github.com/golang/glog"
	gnmipb "github.com/openconfig/gnmi/proto/gnmi"
)

// Subscription represents a single gNMI Subscribe stream. Build it with
// Client.Subscribe, add paths with OnChange/Sample/Once, then drain
// Synchronize followed by Updates.
type Subscription struct {
	client  *Client
	sublist *gnmipb.SubscriptionList
	stream  gnmipb.GNMI_SubscribeClient
}

// Subscribe creates a new Subscription in STREAM mode. Call OnChange,
// Sample, or Once to add paths before reading from it.
func (c *Client) Subscribe(prefix gnmipath.Path) *Subscription {
	sublist := &gnmipb.SubscriptionList{Mode: gnmipb.SubscriptionList_STREAM}
	if !prefix.IsEmpty() {
		sublist.Prefix = prefix.Proto()
	}
	return &Subscription{client: c, sublist: sublist}
}

// Once switches the subscription to ONCE mode and adds paths to it.
func (s *Subscription) Once(paths ...gnmipath.Path) {
	s.sublist.Mode = gnmipb.SubscriptionList_ONCE
	for _, p := range paths {
		s.sublist.Subscription = append(s.sublist.Subscription, &gnmipb.Subscription{Path: p.Proto()})
	}
}

// OnChange subscribes to the given paths in ON_CHANGE mode. The
// subscription must still be in STREAM mode.
func (s *Subscription) OnChange(paths ...gnmipath.Path) {
	for _, p := range paths {
		s.sublist.Subscription = append(s.sublist.Subscription, &gnmipb.Subscription{
			Path: p.Proto(),
			Mode: gnmipb.SubscriptionMode_ON_CHANGE,
		})
	}
}

// SampleOption customizes a Sample subscription.
type SampleOption func(*gnmipb.Subscription)

// WithSuppressRedundant suppresses unchanged values between samples.
func WithSuppressRedundant() SampleOption {
	return func(s *gnmipb.Subscription) { s.SuppressRedundant = true }
}

// WithHeartbeatInterval forces an update every interval even if unchanged.
func WithHeartbeatInterval(interval uint64) SampleOption {
	return func(s *gnmipb.Subscription) { s.HeartbeatInterval = interval }
}

// Sample subscribes to the given paths in SAMPLE mode at sampleInterval
// nanoseconds.
func (s *Subscription) Sample(sampleInterval uint64, opts []SampleOption, paths ...gnmipath.Path) {
	for _, p := range paths {
		sub := &gnmipb.Subscription{
			Path:           p.Proto(),
			Mode:           gnmipb.SubscriptionMode_SAMPLE,
			SampleInterval: sampleInterval,
		}
		for _, opt := range opts {
			opt(sub)
		}
		s.sublist.Subscription = append(s.sublist.Subscription, sub)
	}
}

func (s *Subscription) isOnce() bool {
	return s.sublist.GetMode() == gnmipb.SubscriptionList_ONCE
}

func (s *Subscription) open(ctx context.Context) error {
	if s.stream != nil {
		return nil
	}
	stream, err := s.client.rpc.Subscribe(ctx)
	if err != nil {
		return newClientError(err)
	}
	req := &gnmipb.SubscribeRequest{Request: &gnmipb.SubscribeRequest_Subscribe{Subscribe: s.sublist}}
	if glog.V(2) {
		glog.Infof("gnmi(%s): Subscribe: %s", s.client.target, req)
	}
	if err := stream.Send(req); err != nil {
		return newClientError(err)
	}
	s.stream = stream
	return nil
}

// Cancel ends the subscription stream. A canceled Subscription cannot be
// reused.
func (s *Subscription) Cancel() {
	if s.stream != nil {
		_ = s.stream.CloseSend()
		s.stream = nil
	}
}

// Synchronize reads updates up to and including the sync_response
// message, and sends them on the returned channel. The channel is closed
// once synchronization completes or the stream ends; a stream error is
// logged, not reported to the caller.
func (s *Subscription) Synchronize(ctx context.Context) (<-chan Update, error) {
	return s.read(ctx, true)
}

// Updates reads all updates after synchronization, until the stream ends
// or ctx is canceled.
func (s *Subscription) Updates(ctx context.Context) (<-chan Update, error) {
	return s.read(ctx, false)
}

func (s *Subscription) read(ctx context.Context, stopAtSync bool) (<-chan Update, error) {
	if err := s.open(ctx); err != nil {
		return nil, err
	}

	out := make(chan Update)
	go func() {
		defer close(out)
		for {
			msg, err := s.stream.Recv()
			if err == io.EOF {
				glog.Warning("gnmi: Subscribe: unexpected EOF")
				return
			}
			if err != nil {
				if glog.V(1) {
					glog.Infof("gnmi: Subscribe: %v", err)
				}
				return
			}

			if glog.V(2) {
				glog.Infof("gnmi(%s): Subscribe recv: %s", s.client.target, msg)
			}

			switch resp := msg.GetResponse().(type) {
			case *gnmipb.SubscribeResponse_Update:
				for _, u := range readUpdates(resp.Update) {
					select {
					case out <- u:
					case <-ctx.Done():
						return
					}
				}
			case *gnmipb.SubscribeResponse_SyncResponse:
				if stopAtSync {
					if s.isOnce() {
						s.Cancel()
					}
					return
				}
				glog.V(1).Info("gnmi: Subscribe: ignored sync_response")
			default:
				glog.Warningf("gnmi: Subscribe: unexpected response %v", fmt.Sprintf("%T", resp))
			}
		}
	}()
	return out, nil
}
