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
	"context"
	"fmt"
	"sync"

	"github.com/golang/glog"
	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"
)

const outboundQueueSize = 100

// Stream is one P4Runtime bidirectional StreamChannel RPC. Where the
// teacher's P4RTClientStream makes callers poll bounded queues by sequence
// number, Stream demultiplexes the inbound flow onto a single typed channel
// and lets the outbound side run through a single writer goroutine fed by
// a buffered channel, so sends never race each other on the underlying
// grpc.ClientStream.
type Stream struct {
	raw        p4v1.P4Runtime_StreamChannelClient
	cancelFunc context.CancelFunc

	outbound chan *p4v1.StreamMessageRequest
	inbound  chan *p4v1.StreamMessageResponse
	done     chan struct{}

	closeOnce sync.Once
	closeErr  error
	errMu     sync.Mutex
}

func newStream(raw p4v1.P4Runtime_StreamChannelClient, cancel context.CancelFunc) *Stream {
	s := &Stream{
		raw:        raw,
		cancelFunc: cancel,
		outbound:   make(chan *p4v1.StreamMessageRequest, outboundQueueSize),
		inbound:    make(chan *p4v1.StreamMessageResponse, outboundQueueSize),
		done:       make(chan struct{}),
	}
	go s.writeLoop()
	go s.readLoop()
	return s
}

// Send enqueues a StreamMessageRequest for the writer goroutine. It never
// blocks on the network; it only blocks if the outbound queue is full,
// which signals a caller that isn't draining Recv fast enough upstream.
func (s *Stream) Send(msg *p4v1.StreamMessageRequest) error {
	select {
	case s.outbound <- msg:
		return nil
	case <-s.done:
		return s.err()
	}
}

// Recv returns the channel of inbound StreamMessageResponses. It is
// closed when the stream terminates; a subsequent call to Err reports why.
func (s *Stream) Recv() <-chan *p4v1.StreamMessageResponse {
	return s.inbound
}

// Done is closed when the stream has terminated, for select-based callers.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Err returns the reason the stream terminated, once Done is closed.
func (s *Stream) Err() error {
	return s.err()
}

func (s *Stream) err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.closeErr
}

func (s *Stream) setErr(err error) {
	s.errMu.Lock()
	if s.closeErr == nil {
		s.closeErr = err
	}
	s.errMu.Unlock()
}

// Close terminates the stream and releases its goroutines.
func (s *Stream) Close() {
	s.closeOnce.Do(func() {
		s.setErr(fmt.Errorf("p4rtclient: stream closed"))
		close(s.done)
		s.cancelFunc()
	})
}

func (s *Stream) writeLoop() {
	for {
		select {
		case msg := <-s.outbound:
			if err := s.raw.Send(msg); err != nil {
				if glog.V(1) {
					glog.Warningf("p4rtclient: stream send error: %v", err)
				}
				s.setErr(err)
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *Stream) readLoop() {
	defer close(s.inbound)
	for {
		resp, err := s.raw.Recv()
		if err != nil {
			if glog.V(1) {
				glog.Warningf("p4rtclient: stream recv error: %v", err)
			}
			s.setErr(err)
			s.Close()
			return
		}
		select {
		case s.inbound <- resp:
		case <-s.done:
			return
		}
	}
}
