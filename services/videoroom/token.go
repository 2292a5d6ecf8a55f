package videoroom

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/goccy/go-json"
)

const tokenVersion = "04"

var (
	ErrTokenNotConfigured = errors.New("room tokens are not configured")
	ErrInvalidSecret      = errors.New("server secret must be 32 bytes")
)

type tokenInfo struct {
	AppID   uint32 `json:"app_id"`
	UserID  string `json:"user_id"`
	Nonce   int32  `json:"nonce"`
	Ctime   int64  `json:"ctime"`
	Expire  int64  `json:"expire"`
	Payload string `json:"payload"`
}

// TokenIssuer mints version 04 room tokens for the hosted call UI.
type TokenIssuer struct {
	appID  uint32
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(appID uint32, secret string, ttl time.Duration) (*TokenIssuer, error) {
	if appID == 0 || secret == "" {
		return nil, ErrTokenNotConfigured
	}
	if len(secret) != 32 {
		return nil, ErrInvalidSecret
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenIssuer{appID: appID, secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (t *TokenIssuer) AppID() uint32 {
	return t.appID
}

// Issue returns a token for userID and its expiry.
func (t *TokenIssuer) Issue(userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("user id is required")
	}
	now := t.now()
	expire := now.Add(t.ttl)

	nonce, err := rand.Int(rand.Reader, big.NewInt(1<<31-1))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate nonce: %w", err)
	}
	plain, err := json.Marshal(tokenInfo{
		AppID:  t.appID,
		UserID: userID,
		Nonce:  int32(nonce.Int64()),
		Ctime:  now.Unix(),
		Expire: expire.Unix(),
	})
	if err != nil {
		return "", time.Time{}, err
	}

	iv, err := randomIV()
	if err != nil {
		return "", time.Time{}, err
	}
	ct, err := encrypt(t.secret, iv, plain)
	if err != nil {
		return "", time.Time{}, err
	}

	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.BigEndian, expire.Unix())
	_ = binary.Write(&buf, binary.BigEndian, uint16(len(iv)))
	buf.Write(iv)
	_ = binary.Write(&buf, binary.BigEndian, uint16(len(ct)))
	buf.Write(ct)

	return tokenVersion + base64.StdEncoding.EncodeToString(buf.Bytes()), expire, nil
}

const ivAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func randomIV() ([]byte, error) {
	iv := make([]byte, aes.BlockSize)
	max := big.NewInt(int64(len(ivAlphabet)))
	for i := range iv {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return nil, fmt.Errorf("failed to generate iv: %w", err)
		}
		iv[i] = ivAlphabet[n.Int64()]
	}
	return iv, nil
}

func encrypt(key, iv, plain []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	pad := aes.BlockSize - len(plain)%aes.BlockSize
	padded := append(append([]byte{}, plain...), bytes.Repeat([]byte{byte(pad)}, pad)...)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return out, nil
}

func decrypt(key, iv, ct []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return nil, errors.New("ciphertext is not block aligned")
	}
	out := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ct)
	pad := int(out[len(out)-1])
	if pad == 0 || pad > aes.BlockSize || pad > len(out) {
		return nil, errors.New("bad padding")
	}
	return out[:len(out)-pad], nil
}
