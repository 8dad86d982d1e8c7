// Package auth identifies callers by EIP-191 signatures over the request.
package auth

import (
	"crypto/ecdsa"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

const (
	HeaderAddress   = "X-TF-Address"
	HeaderSignature = "X-TF-Signature"
	HeaderTimestamp = "X-TF-Timestamp"
	HeaderNonce     = "X-TF-Nonce"

	MaxNonceLength = 128

	messagePrefix = "token-factory:"
)

var (
	ErrMissingHeaders   = errors.New("auth: missing signature headers")
	ErrBadTimestamp     = errors.New("auth: timestamp outside the accepted window")
	ErrBadSignature     = errors.New("auth: signature does not match address")
	ErrMalformedRequest = errors.New("auth: malformed signature headers")
	ErrReplayed         = errors.New("auth: nonce already used")
)

// Message is the text a caller signs: the method, path, body digest, unix
// timestamp and nonce, one per line after the application prefix.
func Message(method, path string, body []byte, ts int64, nonce string) []byte {
	var b strings.Builder
	b.WriteString(messagePrefix)
	b.WriteString(strings.ToUpper(method))
	b.WriteByte(' ')
	b.WriteString(path)
	b.WriteByte('\n')
	b.WriteString(crypto.Keccak256Hash(body).Hex())
	b.WriteByte('\n')
	b.WriteString(strconv.FormatInt(ts, 10))
	b.WriteByte('\n')
	b.WriteString(nonce)
	return []byte(b.String())
}

// Sign produces a 65-byte personal_sign signature with V in {27, 28}.
func Sign(key *ecdsa.PrivateKey, msg []byte) ([]byte, error) {
	sig, err := crypto.Sign(accounts.TextHash(msg), key)
	if err != nil {
		return nil, errors.Wrap(err, "auth: sign")
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}

// Recover returns the address that produced sig over msg.
func Recover(msg, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, ErrMalformedRequest
	}
	s := append([]byte(nil), sig...)
	if s[crypto.RecoveryIDOffset] >= 27 {
		s[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(accounts.TextHash(msg), s)
	if err != nil {
		return common.Address{}, errors.Wrap(ErrBadSignature, err.Error())
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Headers signs a request under a fresh nonce and returns the headers that
// carry it. Every call yields a request that verifies once.
func Headers(key *ecdsa.PrivateKey, method, path string, body []byte, now time.Time) (map[string]string, error) {
	ts := now.Unix()
	nonce := uuid.NewString()
	sig, err := Sign(key, Message(method, path, body, ts, nonce))
	if err != nil {
		return nil, err
	}
	return map[string]string{
		HeaderAddress:   crypto.PubkeyToAddress(key.PublicKey).Hex(),
		HeaderSignature: hexutil.Encode(sig),
		HeaderTimestamp: strconv.FormatInt(ts, 10),
		HeaderNonce:     nonce,
	}, nil
}

// Verifier checks signed requests against a clock and accepts each
// (address, nonce) pair once. A nonce is remembered until its timestamp
// leaves the window, after which the clock check rejects it anyway.
type Verifier struct {
	Window time.Duration
	Now    func() time.Time

	mu   sync.Mutex
	seen map[nonceKey]int64
}

type nonceKey struct {
	addr  common.Address
	nonce string
}

func NewVerifier(window time.Duration) *Verifier {
	return &Verifier{Window: window, Now: time.Now}
}

// Verify authenticates one request from its raw header values and consumes
// its nonce.
func (v *Verifier) Verify(method, path string, body []byte, address, signature, timestamp, nonce string) (common.Address, error) {
	if address == "" || signature == "" || timestamp == "" || nonce == "" {
		return common.Address{}, ErrMissingHeaders
	}
	if !common.IsHexAddress(address) || len(nonce) > MaxNonceLength {
		return common.Address{}, ErrMalformedRequest
	}
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return common.Address{}, ErrMalformedRequest
	}
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	at := now()
	skew := at.Sub(time.Unix(ts, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > v.Window {
		return common.Address{}, ErrBadTimestamp
	}

	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, ErrMalformedRequest
	}
	signer, err := Recover(Message(method, path, body, ts, nonce), sig)
	if err != nil {
		return common.Address{}, err
	}
	if signer != common.HexToAddress(address) {
		return common.Address{}, ErrBadSignature
	}
	if !v.consume(nonceKey{addr: signer, nonce: nonce}, ts, at) {
		return common.Address{}, ErrReplayed
	}
	return signer, nil
}

// consume records key and reports whether it was unused. Entries whose
// timestamp is older than the window are dropped first.
func (v *Verifier) consume(key nonceKey, ts int64, at time.Time) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.seen == nil {
		v.seen = make(map[nonceKey]int64)
	}
	oldest := at.Add(-v.Window).Unix()
	for k, t := range v.seen {
		if t < oldest {
			delete(v.seen, k)
		}
	}
	if _, used := v.seen[key]; used {
		return false
	}
	v.seen[key] = ts
	return true
}
