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

// Package fscreds builds gRPC transport credentials for a P4Runtime or
// gNMI connection: insecure, server-TLS, or mutual-TLS, generalizing the
// teacher's ServerConnectWithOptions dial-option construction into a
// reusable, file-or-bytes credential bundle.
package fscreds

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// ByteSource supplies PEM-encoded certificate/key material, either
// in-memory or read from a file, so a Bundle can be built from bytes a
// caller already has (e.g. fetched from a secret store) or from paths on
// disk — whichever the teacher's flag-driven CLI or an embedding
// application prefers.
type ByteSource struct {
	Bytes []byte
	Path  string
}

// FileSource builds a ByteSource that reads from a file path.
func FileSource(path string) ByteSource { return ByteSource{Path: path} }

// BytesSource builds a ByteSource backed by in-memory PEM bytes.
func BytesSource(b []byte) ByteSource { return ByteSource{Bytes: b} }

func (s ByteSource) empty() bool {
	return len(s.Bytes) == 0 && s.Path == ""
}

func (s ByteSource) load() ([]byte, error) {
	if len(s.Bytes) > 0 {
		return s.Bytes, nil
	}
	if s.Path == "" {
		return nil, fmt.Errorf("fscreds: empty byte source")
	}
	return os.ReadFile(s.Path)
}

// Bundle describes the TLS material for a connection. The zero value
// (every field empty) builds insecure credentials.
type Bundle struct {
	// CACert, if set, is used to verify the server's certificate instead
	// of the system root pool.
	CACert ByteSource
	// ClientCert/ClientKey, if both set, enable mutual TLS.
	ClientCert ByteSource
	ClientKey  ByteSource
	// TargetNameOverride overrides the server name used during the TLS
	// handshake, for connecting by IP to a cert issued for a hostname.
	TargetNameOverride string
	// Insecure skips verification of the server's certificate chain and
	// host name. Only meant for development against a self-signed server.
	Insecure bool
}

// Insecure builds a Bundle with no transport security at all (plaintext).
func Insecure() Bundle {
	return Bundle{}
}

// TransportCredentials builds the grpc.DialOption-ready credentials this
// Bundle describes.
func (b Bundle) TransportCredentials() (credentials.TransportCredentials, error) {
	if b.CACert.empty() && b.ClientCert.empty() && b.ClientKey.empty() && !b.Insecure {
		return insecure.NewCredentials(), nil
	}

	tlsConfig := &tls.Config{
		ServerName:         b.TargetNameOverride,
		InsecureSkipVerify: b.Insecure, //nolint:gosec // explicit opt-in, mirrors teacher's skipVerify flag
	}

	if !b.CACert.empty() {
		pem, err := b.CACert.load()
		if err != nil {
			return nil, fmt.Errorf("fscreds: CA cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("fscreds: CA cert: no certificates found")
		}
		tlsConfig.RootCAs = pool
	}

	if !b.ClientCert.empty() || !b.ClientKey.empty() {
		certPEM, err := b.ClientCert.load()
		if err != nil {
			return nil, fmt.Errorf("fscreds: client cert: %w", err)
		}
		keyPEM, err := b.ClientKey.load()
		if err != nil {
			return nil, fmt.Errorf("fscreds: client key: %w", err)
		}
		cert, err := tls.X509KeyPair(certPEM, keyPEM)
		if err != nil {
			return nil, fmt.Errorf("fscreds: client key pair: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return credentials.NewTLS(tlsConfig), nil
}
