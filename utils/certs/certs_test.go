package certs

import (
	"bytes"
	"testing"
)

func TestSelfSignedInMemory(t *testing.T) {
	cm := NewSelfSignedCertManager("quicpoll", "")

	conf, err := cm.GetTLSConfig()
	if err != nil {
		t.Fatalf("GetTLSConfig: %v", err)
	}
	if len(conf.Certificates) != 1 {
		t.Fatalf("got %d certificates, want 1", len(conf.Certificates))
	}

	hash, err := cm.GetCertHash()
	if err != nil {
		t.Fatalf("GetCertHash: %v", err)
	}
	if len(hash) != 32 {
		t.Fatalf("hash length = %d, want 32", len(hash))
	}
}

func TestSelfSignedPersistence(t *testing.T) {
	dir := t.TempDir()

	first := NewSelfSignedCertManager("quicpoll", dir)
	if _, err := first.GetTLSConfig(); err != nil {
		t.Fatalf("first GetTLSConfig: %v", err)
	}
	firstHash, err := first.GetCertHash()
	if err != nil {
		t.Fatalf("first GetCertHash: %v", err)
	}

	// A second manager over the same directory must present the same
	// certificate.
	second := NewSelfSignedCertManager("quicpoll", dir)
	if _, err := second.GetTLSConfig(); err != nil {
		t.Fatalf("second GetTLSConfig: %v", err)
	}
	secondHash, err := second.GetCertHash()
	if err != nil {
		t.Fatalf("second GetCertHash: %v", err)
	}

	if !bytes.Equal(firstHash, secondHash) {
		t.Fatalf("certificate fingerprints differ: %x vs %x", firstHash, secondHash)
	}
}
