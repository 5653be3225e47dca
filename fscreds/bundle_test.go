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

package fscreds

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func selfSignedPEM(t *testing.T) (certPEM, keyPEM []byte) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "finsy-test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})

	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	return certPEM, keyPEM
}

func TestInsecureBundle(t *testing.T) {
	creds, err := Insecure().TransportCredentials()
	require.NoError(t, err)
	require.Equal(t, "insecure", creds.Info().SecurityProtocol)
}

func TestTLSBundleWithCACert(t *testing.T) {
	certPEM, _ := selfSignedPEM(t)
	bundle := Bundle{CACert: BytesSource(certPEM), TargetNameOverride: "switch1"}

	creds, err := bundle.TransportCredentials()
	require.NoError(t, err)
	require.NotEqual(t, "insecure", creds.Info().SecurityProtocol)
}

func TestMutualTLSBundle(t *testing.T) {
	certPEM, keyPEM := selfSignedPEM(t)
	bundle := Bundle{
		ClientCert: BytesSource(certPEM),
		ClientKey:  BytesSource(keyPEM),
	}

	creds, err := bundle.TransportCredentials()
	require.NoError(t, err)
	require.NotEqual(t, "insecure", creds.Info().SecurityProtocol)
}

func TestBadCACertErrors(t *testing.T) {
	bundle := Bundle{CACert: BytesSource([]byte("not a cert"))}
	_, err := bundle.TransportCredentials()
	require.Error(t, err)
}
