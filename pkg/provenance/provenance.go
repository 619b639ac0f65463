package provenance

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

const (
	privateKeyFile = "private_key.pem"
	publicKeyFile  = "public_key.pem"
	keyBits        = 2048
)

// Attestation is the signed provenance record attached to every audit.
type Attestation struct {
	Timestamp   string `json:"timestamp"`
	Fingerprint string `json:"fingerprint"`
	Signature   string `json:"signature"`
	Algorithm   string `json:"algorithm"`
	Verified    bool   `json:"verified"`
}

// Service signs audit records with an RSA-PSS keypair persisted as PEM
// files under the key directory. Keys are generated on first start.
type Service struct {
	privateKey *rsa.PrivateKey
}

func NewService(keyDir string) (*Service, error) {
	if err := os.MkdirAll(keyDir, 0700); err != nil {
		return nil, fmt.Errorf("create key dir: %w", err)
	}

	privPath := filepath.Join(keyDir, privateKeyFile)
	pubPath := filepath.Join(keyDir, publicKeyFile)

	if _, err := os.Stat(privPath); os.IsNotExist(err) {
		log.Println("Generating new RSA key pair for attestation...")
		if err := generateKeyPair(privPath, pubPath); err != nil {
			return nil, err
		}
	}

	privateKey, err := loadPrivateKey(privPath)
	if err != nil {
		return nil, err
	}

	return &Service{privateKey: privateKey}, nil
}

// ComputeFingerprint computes a persistent SHA-256 content hash of any
// JSON-serializable value. Map keys marshal in sorted order, so the digest
// is deterministic.
func (s *Service) ComputeFingerprint(v interface{}) (string, error) {
	canonical, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("canonicalize record: %w", err)
	}
	digest := sha256.Sum256(canonical)
	return hex.EncodeToString(digest[:]), nil
}

// SignRecord fingerprints the record and signs "timestamp|fingerprint"
// with RSA-PSS.
func (s *Service) SignRecord(v interface{}) (*Attestation, error) {
	fingerprint, err := s.ComputeFingerprint(v)
	if err != nil {
		return nil, err
	}
	timestamp := time.Now().UTC().Format(time.RFC3339)

	payload := []byte(timestamp + "|" + fingerprint)
	hashed := sha256.Sum256(payload)

	signature, err := rsa.SignPSS(rand.Reader, s.privateKey, crypto.SHA256, hashed[:], &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthAuto,
	})
	if err != nil {
		return nil, fmt.Errorf("sign record: %w", err)
	}

	return &Attestation{
		Timestamp:   timestamp,
		Fingerprint: fingerprint,
		Signature:   base64.StdEncoding.EncodeToString(signature),
		Algorithm:   "RSA-SHA256",
		Verified:    true,
	}, nil
}

// Verify checks an attestation signature against the service's public key.
func (s *Service) Verify(a *Attestation) bool {
	signature, err := base64.StdEncoding.DecodeString(a.Signature)
	if err != nil {
		return false
	}
	hashed := sha256.Sum256([]byte(a.Timestamp + "|" + a.Fingerprint))
	err = rsa.VerifyPSS(&s.privateKey.PublicKey, crypto.SHA256, hashed[:], signature, &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthAuto,
	})
	return err == nil
}

func generateKeyPair(privPath, pubPath string) error {
	privateKey, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}

	privBytes, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return fmt.Errorf("marshal private key: %w", err)
	}
	privPem := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privBytes})
	if err := os.WriteFile(privPath, privPem, 0600); err != nil {
		return fmt.Errorf("write private key: %w", err)
	}

	pubBytes, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return fmt.Errorf("marshal public key: %w", err)
	}
	pubPem := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	if err := os.WriteFile(pubPath, pubPem, 0644); err != nil {
		return fmt.Errorf("write public key: %w", err)
	}

	return nil
}

func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("invalid PEM in %s", path)
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("key in %s is not RSA", path)
	}
	return rsaKey, nil
}
