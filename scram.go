package mqtt

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// ScramMethod is the authentication method name for SCRAM-SHA-256, as
// registered for use with v5 enhanced authentication.
const ScramMethod = "SCRAM-SHA-256"

// SCRAM exchange errors.
var (
	ErrScramExchangeDone  = errors.New("mqtt: scram: exchange already complete")
	ErrScramBadChallenge  = errors.New("mqtt: scram: malformed server message")
	ErrScramNonceMismatch = errors.New("mqtt: scram: server nonce does not extend client nonce")
	ErrScramBadSignature  = errors.New("mqtt: scram: server signature verification failed")
)

const scramNonceLen = 18

// scramStep is the client's position in the four-message exchange.
type scramStep int

const (
	scramStepFirst scramStep = iota
	scramStepFinal
	scramStepVerify
	scramStepDone
)

// ScramAuth is a client-side SCRAM-SHA-256 authenticator (RFC 7677) for
// v5 enhanced authentication. Each instance drives one exchange; create
// a fresh one per connection attempt.
type ScramAuth struct {
	username string
	password []byte

	step        scramStep
	clientNonce string
	firstBare   string
	saltedPass  []byte
	authMessage string
}

// NewScramAuth creates an authenticator for the given credentials.
func NewScramAuth(username string, password []byte) *ScramAuth {
	return &ScramAuth{username: username, password: password}
}

// Method returns the authentication method name.
func (s *ScramAuth) Method() string { return ScramMethod }

// InitialData produces the client-first message for CONNECT.
func (s *ScramAuth) InitialData() ([]byte, error) {
	if s.step != scramStepFirst {
		return nil, ErrScramExchangeDone
	}

	raw := make([]byte, scramNonceLen)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	s.clientNonce = base64.StdEncoding.EncodeToString(raw)

	s.firstBare = "n=" + escapeScramName(s.username) + ",r=" + s.clientNonce
	s.step = scramStepFinal

	return []byte("n,," + s.firstBare), nil
}

// Continue consumes a server challenge and produces the next client
// message. The first call answers the server-first message with the
// client proof; the second verifies the server signature and returns no
// data.
func (s *ScramAuth) Continue(challenge []byte) ([]byte, error) {
	switch s.step {
	case scramStepFinal:
		return s.clientFinal(string(challenge))
	case scramStepVerify:
		return nil, s.verifyServerFinal(string(challenge))
	default:
		return nil, ErrScramExchangeDone
	}
}

func (s *ScramAuth) clientFinal(serverFirst string) ([]byte, error) {
	fields, err := parseScramFields(serverFirst)
	if err != nil {
		return nil, err
	}

	nonce := fields["r"]
	if !strings.HasPrefix(nonce, s.clientNonce) || nonce == s.clientNonce {
		return nil, ErrScramNonceMismatch
	}

	salt, err := base64.StdEncoding.DecodeString(fields["s"])
	if err != nil {
		return nil, fmt.Errorf("%w: bad salt: %v", ErrScramBadChallenge, err)
	}

	iters, err := strconv.Atoi(fields["i"])
	if err != nil || iters < 1 {
		return nil, fmt.Errorf("%w: bad iteration count", ErrScramBadChallenge)
	}

	s.saltedPass = pbkdf2.Key(s.password, salt, iters, sha256.Size, sha256.New)

	clientKey := hmacSHA256(s.saltedPass, "Client Key")
	storedKey := sha256.Sum256(clientKey)

	withoutProof := "c=biws,r=" + nonce
	s.authMessage = s.firstBare + "," + serverFirst + "," + withoutProof

	signature := hmacSHA256(storedKey[:], s.authMessage)
	proof := make([]byte, len(clientKey))
	for i := range clientKey {
		proof[i] = clientKey[i] ^ signature[i]
	}

	s.step = scramStepVerify
	return []byte(withoutProof + ",p=" + base64.StdEncoding.EncodeToString(proof)), nil
}

func (s *ScramAuth) verifyServerFinal(serverFinal string) error {
	fields, err := parseScramFields(serverFinal)
	if err != nil {
		return err
	}

	expected, err := base64.StdEncoding.DecodeString(fields["v"])
	if err != nil {
		return fmt.Errorf("%w: bad verifier: %v", ErrScramBadChallenge, err)
	}

	serverKey := hmacSHA256(s.saltedPass, "Server Key")
	signature := hmacSHA256(serverKey, s.authMessage)
	if !hmac.Equal(signature, expected) {
		return ErrScramBadSignature
	}

	s.step = scramStepDone
	return nil
}

// Done reports whether the exchange completed with a verified server
// signature.
func (s *ScramAuth) Done() bool { return s.step == scramStepDone }

func hmacSHA256(key []byte, msg string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(msg))
	return h.Sum(nil)
}

// parseScramFields splits "k=v,k=v" attribute lists.
func parseScramFields(msg string) (map[string]string, error) {
	fields := make(map[string]string)
	for _, part := range strings.Split(msg, ",") {
		k, v, ok := strings.Cut(part, "=")
		if !ok || len(k) != 1 {
			return nil, ErrScramBadChallenge
		}
		fields[k] = v
	}
	return fields, nil
}

// escapeScramName applies the =2C / =3D escaping required for names.
func escapeScramName(name string) string {
	name = strings.ReplaceAll(name, "=", "=3D")
	return strings.ReplaceAll(name, ",", "=2C")
}
