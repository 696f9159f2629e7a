package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	fileEncrKey = []byte("Sp4rk!fy-dwh#c0nn3ct10ns$st0re&k") // 32 bytes for AES-256
)

// EncryptedFile stores bytes sealed with AES-GCM and base64 encoded.
type EncryptedFile struct {
	Dirname  string
	FileName string
	FullPath string
	mu       sync.Mutex
}

func NewEncryptedFile(dirName string, filename string) *EncryptedFile {
	return &EncryptedFile{
		Dirname:  dirName,
		FileName: filename,
		FullPath: filepath.Join(dirName, filename),
	}
}

func (f *EncryptedFile) Set(text []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, err := aes.NewCipher(fileEncrKey)
	if err != nil {
		return err
	}
	gcm, err := cipher.NewGCM(c)
	if err != nil {
		return err
	}
	// The nonce is random per write and stored in front of the sealed bytes.
	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return err
	}
	sealedBytes := gcm.Seal(nonce, nonce, text, nil)
	b64 := base64.StdEncoding.EncodeToString(sealedBytes)
	if err := makeDir(f.Dirname); err != nil {
		return err
	}
	return os.WriteFile(f.FullPath, []byte(b64), 0600)
}

func (f *EncryptedFile) Get() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !fileExists(f.FullPath) {
		return nil, FileNotFoundError{f.FullPath}
	}
	b64, err := os.ReadFile(f.FullPath)
	if err != nil {
		return nil, err
	}
	cipherText, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(b64)))
	if err != nil {
		return nil, fmt.Errorf("config file %v is not encoded correctly: %w", f.FullPath, err)
	}
	return Decrypt(cipherText, fileEncrKey)
}

func Decrypt(text []byte, key []byte) ([]byte, error) {
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(c)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(text) < nonceSize {
		return nil, fmt.Errorf("encrypted text is too short")
	}
	nonce, cipherText := text[:nonceSize], text[nonceSize:]
	return gcm.Open(nil, nonce, cipherText, nil)
}
