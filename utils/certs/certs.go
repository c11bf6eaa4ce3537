package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

// SelfSignedCertManager generates and caches a self-signed server
// certificate, optionally persisting it under CertDir so restarts present
// the same certificate.
type SelfSignedCertManager struct {
	Host     string
	CertDir  string
	certPath string
	keyPath  string
	certDER  []byte
}

func NewSelfSignedCertManager(host, certDir string) *SelfSignedCertManager {
	cm := &SelfSignedCertManager{Host: host, CertDir: certDir}
	if certDir != "" {
		cm.certPath = filepath.Join(certDir, fmt.Sprintf("%s_cert.pem", host))
		cm.keyPath = filepath.Join(certDir, fmt.Sprintf("%s_key.pem", host))
	}
	return cm
}

// GetTLSConfig returns a server tls.Config backed by the managed
// certificate.
func (cm *SelfSignedCertManager) GetTLSConfig() (*tls.Config, error) {
	cert, err := cm.certificate()
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{*cert},
		MinVersion:   tls.VersionTLS13,
	}, nil
}

// GetCertHash returns the SHA-256 fingerprint of the certificate, for
// out-of-band pinning by dialers.
func (cm *SelfSignedCertManager) GetCertHash() ([]byte, error) {
	if cm.certDER == nil {
		if _, err := cm.certificate(); err != nil {
			return nil, err
		}
	}
	fingerprint := sha256.Sum256(cm.certDER)
	return fingerprint[:], nil
}

func (cm *SelfSignedCertManager) certificate() (*tls.Certificate, error) {
	if cm.certPath != "" {
		if cert, err := tls.LoadX509KeyPair(cm.certPath, cm.keyPath); err == nil {
			if block, _ := pem.Decode(mustRead(cm.certPath)); block != nil {
				cm.certDER = block.Bytes
			}
			return &cert, nil
		}
	}
	return cm.generate()
}

func (cm *SelfSignedCertManager) generate() (*tls.Certificate, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, err
	}

	notBefore := time.Now()
	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject:      pkix.Name{CommonName: cm.Host},
		DNSNames:     []string{cm.Host, "localhost"},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1"), net.ParseIP("::1")},
		NotBefore:    notBefore,
		NotAfter:     notBefore.Add(365 * 24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},

		BasicConstraintsValid: true,
	}

	cm.certDER, err = x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return nil, err
	}

	keyDER, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		return nil, err
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cm.certDER})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})

	if cm.certPath != "" {
		if err := os.MkdirAll(cm.CertDir, 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(cm.certPath, certPEM, 0o644); err != nil {
			return nil, err
		}
		if err := os.WriteFile(cm.keyPath, keyPEM, 0o600); err != nil {
			return nil, err
		}
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func mustRead(path string) []byte {
	data, _ := os.ReadFile(path)
	return data
}
