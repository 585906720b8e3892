// Package mtls builds TLS configurations for C2's secure transport: mutual
// TLS authenticated not by a CA chain but by pinning the peer leaf
// certificate's SHA-256 fingerprint (§6), with client identities loaded
// from a PKCS#12 bundle.
package mtls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/pkcs12"

	"github.com/edenriquez/inputshare/internal/logging"
)

var log = logging.L("mtls")

// Identity is a host's TLS client/server certificate and key, parsed from a
// PKCS#12 bundle.
type Identity struct {
	Certificate tls.Certificate
}

// LoadIdentity reads and decrypts a PKCS#12 bundle at path, returning the
// leaf certificate, its private key, and any intermediate chain it carries.
func LoadIdentity(path, passphrase string) (*Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mtls: read identity bundle %s: %w", path, err)
	}

	key, leaf, caCerts, err := pkcs12.DecodeChain(data, passphrase)
	if err != nil {
		return nil, fmt.Errorf("mtls: decode identity bundle %s: %w", path, err)
	}

	chain := make([][]byte, 0, 1+len(caCerts))
	chain = append(chain, leaf.Raw)
	for _, ca := range caCerts {
		chain = append(chain, ca.Raw)
	}

	return &Identity{Certificate: tls.Certificate{
		Certificate: chain,
		PrivateKey:  key,
		Leaf:        leaf,
	}}, nil
}

// Fingerprint returns the lowercase-hex SHA-256 digest of a DER-encoded
// certificate, the form a --pin-sha256 flag carries.
func Fingerprint(der []byte) string {
	sum := sha256.Sum256(der)
	return hex.EncodeToString(sum[:])
}

// ErrFingerprintMismatch is returned by the pinning verifier when the peer's
// leaf certificate does not match the configured pin.
var ErrFingerprintMismatch = errors.New("mtls: peer certificate fingerprint mismatch")

// verifyPinned builds a tls.Config.VerifyPeerCertificate callback that
// accepts exactly one leaf fingerprint, independent of any CA chain.
func verifyPinned(pinnedHex string) func([][]byte, [][]*x509.Certificate) error {
	pinnedHex = strings.ToLower(strings.TrimSpace(pinnedHex))
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		if len(rawCerts) == 0 {
			return errors.New("mtls: peer presented no certificate")
		}
		got := Fingerprint(rawCerts[0])
		if got != pinnedHex {
			log.Warn("peer certificate fingerprint mismatch", "want", pinnedHex, "got", got)
			return ErrFingerprintMismatch
		}
		return nil
	}
}

// ClientConfig builds a dial-side TLS config: presents identity, and trusts
// the peer only if its leaf fingerprint equals pinnedHex. Chain validation
// is bypassed (InsecureSkipVerify) since the pin itself is the trust
// anchor — there is no CA in this system.
func ClientConfig(identity *Identity, pinnedHex string) *tls.Config {
	return &tls.Config{
		Certificates:          []tls.Certificate{identity.Certificate},
		InsecureSkipVerify:    true,
		VerifyPeerCertificate: verifyPinned(pinnedHex),
		MinVersion:            tls.VersionTLS12,
	}
}

// ServerConfig builds an accept-side TLS config requiring and pinning the
// client certificate the same way ClientConfig pins the server's.
func ServerConfig(identity *Identity, pinnedHex string) *tls.Config {
	return &tls.Config{
		Certificates:          []tls.Certificate{identity.Certificate},
		ClientAuth:            tls.RequireAnyClientCert,
		InsecureSkipVerify:    true,
		VerifyPeerCertificate: verifyPinned(pinnedHex),
		MinVersion:            tls.VersionTLS12,
	}
}

// DevServerConfig builds an accept-side TLS config for `mock-receive`
// (§6: "a development-only mode that accepts any peer"): an ephemeral,
// self-signed identity with no fingerprint pin and no client certificate
// requirement. Never used by `send`/`receive`, which always pin.
func DevServerConfig() (*tls.Config, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("mtls: generate dev key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("mtls: generate dev serial: %w", err)
	}

	template := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: "inputshare-mock-receive"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("mtls: self-sign dev cert: %w", err)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{{
			Certificate: [][]byte{der},
			PrivateKey:  key,
		}},
		ClientAuth: tls.NoClientCert,
		MinVersion: tls.VersionTLS12,
	}, nil
}
