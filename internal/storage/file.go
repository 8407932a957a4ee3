package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/pbkdf2"

	"github.com/felixgeelhaar/studydash/internal/errors"
)

const (
	fileVersion      = 1
	encryptedPrefix  = "enc:v1:"
	pbkdf2Iterations = 100000
	saltSize         = 16
)

// fileContents is the on-disk layout of a FileStore
type fileContents struct {
	Version int               `json:"version"`
	Salt    string            `json:"salt,omitempty"`
	Entries map[string]string `json:"entries"`
}

// FileStore persists entries in a single JSON file.
//
// The file is re-read on every operation so that separate processes sharing
// the same path observe each other's writes. Writes go through a temp file and
// rename. When a passphrase is configured, values are sealed with AES-GCM
// under a PBKDF2-derived key; keys stay in clear text.
type FileStore struct {
	mu         sync.Mutex
	path       string
	passphrase string
}

// NewFileStore creates a store at path. An empty passphrase stores values in clear text.
func NewFileStore(path, passphrase string) *FileStore {
	return &FileStore{path: path, passphrase: passphrase}
}

// Path returns the backing file path
func (f *FileStore) Path() string {
	return f.path
}

// Get returns the value for key
func (f *FileStore) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	contents, err := f.load()
	if err != nil {
		return "", false, err
	}

	raw, ok := contents.Entries[key]
	if !ok {
		return "", false, nil
	}

	value, err := f.open(contents, raw)
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set stores value under key
func (f *FileStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	contents, err := f.load()
	if err != nil {
		return err
	}

	sealed, err := f.seal(contents, value)
	if err != nil {
		return err
	}
	contents.Entries[key] = sealed

	return f.save(contents)
}

// Remove deletes keys. The file itself is removed once it holds no entries.
func (f *FileStore) Remove(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	contents, err := f.load()
	if err != nil {
		// A corrupt file is cleared rather than left behind.
		if errors.HasCode(err, errors.ErrCodeStoreCorrupt) {
			return f.removeFile()
		}
		return err
	}

	for _, k := range keys {
		delete(contents.Entries, k)
	}

	if len(contents.Entries) == 0 {
		return f.removeFile()
	}
	return f.save(contents)
}

func (f *FileStore) removeFile() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeStoreWrite, "failed to remove store file", err)
	}
	return nil
}

func (f *FileStore) load() (*fileContents, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return &fileContents{Version: fileVersion, Entries: map[string]string{}}, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreRead, "failed to read store file", err)
	}

	var contents fileContents
	if err := json.Unmarshal(data, &contents); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreCorrupt, fmt.Sprintf("store file %s is not valid JSON", f.path), err)
	}
	if contents.Entries == nil {
		contents.Entries = map[string]string{}
	}
	return &contents, nil
}

func (f *FileStore) save(contents *fileContents) error {
	contents.Version = fileVersion

	data, err := json.MarshalIndent(contents, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreWrite, "failed to encode store file", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(errors.ErrCodeStoreWrite, "failed to create store directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreWrite, "failed to create temp file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeStoreWrite, "failed to set file mode", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeStoreWrite, "failed to write store file", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeStoreWrite, "failed to flush store file", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		return errors.Wrap(errors.ErrCodeStoreWrite, "failed to replace store file", err)
	}
	return nil
}

func (f *FileStore) seal(contents *fileContents, value string) (string, error) {
	if f.passphrase == "" {
		return value, nil
	}

	if contents.Salt == "" {
		salt := make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return "", errors.Wrap(errors.ErrCodeStoreCrypto, "failed to generate salt", err)
		}
		contents.Salt = base64.StdEncoding.EncodeToString(salt)
	}

	gcm, err := f.cipher(contents.Salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Wrap(errors.ErrCodeStoreCrypto, "failed to generate nonce", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(value), nil)
	return encryptedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

func (f *FileStore) open(contents *fileContents, raw string) (string, error) {
	if !strings.HasPrefix(raw, encryptedPrefix) {
		return raw, nil
	}
	if f.passphrase == "" {
		return "", errors.New(errors.ErrCodeStoreCrypto, "stored value is encrypted but no passphrase is configured").
			WithSuggestion("Set session.passphrase or STUDYDASH_SESSION_PASSPHRASE")
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(raw, encryptedPrefix))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeStoreCorrupt, "failed to decode stored value", err)
	}

	gcm, err := f.cipher(contents.Salt)
	if err != nil {
		return "", err
	}
	if len(data) < gcm.NonceSize() {
		return "", errors.New(errors.ErrCodeStoreCorrupt, "stored value is truncated")
	}

	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeStoreCrypto, "failed to decrypt stored value", err).
			WithSuggestion("Check that the configured passphrase matches the one used to log in")
	}
	return string(plaintext), nil
}

func (f *FileStore) cipher(encodedSalt string) (cipher.AEAD, error) {
	salt, err := base64.StdEncoding.DecodeString(encodedSalt)
	if err != nil || len(salt) == 0 {
		return nil, errors.New(errors.ErrCodeStoreCorrupt, "store file has an invalid salt")
	}

	key := pbkdf2.Key([]byte(f.passphrase), salt, pbkdf2Iterations, 32, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreCrypto, "failed to create cipher", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreCrypto, "failed to create GCM", err)
	}
	return gcm, nil
}
