package wireproto

import (
	"crypto/rand"
	"crypto/sha1"
	"fmt"
	"net"
	"time"

	"github.com/thyth/mudcore/internal/muderr"
)

const authTimeout = 5 * time.Second

// ServerAuth performs the server side of the challenge/response handshake
// over conn: send a fresh random seed, verify the client's computed secret,
// and reply Ok or Err. Grounded on original_source/src/auth.rs's
// server_auth.
func ServerAuth(conn net.Conn, pass string) error {
	return withAuthDeadline(conn, func() error {
		seed, secret, err := genSecret([]byte(pass))
		if err != nil {
			return err
		}
		if err := AuthReq(seed).WriteTo(conn); err != nil {
			return err
		}
		resp, err := ReadFrom(conn)
		if err != nil {
			return err
		}
		ok := resp.Kind == KindAuthResp && bytesEqual(resp.Bytes, secret)
		if !ok {
			_ = ErrPacket("authentication failed").WriteTo(conn)
			return muderr.ErrAuth
		}
		return Ok().WriteTo(conn)
	})
}

// ClientAuth performs the client side of the handshake: receive the
// server's seed, compute and send the matching secret, and confirm the
// server replies Ok. Grounded on original_source/src/auth.rs's client_auth.
func ClientAuth(conn net.Conn, pass string) error {
	return withAuthDeadline(conn, func() error {
		req, err := ReadFrom(conn)
		if err != nil {
			return err
		}
		if req.Kind != KindAuthReq {
			return fmt.Errorf("wireproto: %w: expected AuthReq, got kind %x", muderr.ErrMalformedPacket, req.Kind)
		}
		secret, err := calcSecret([]byte(pass), req.Bytes)
		if err != nil {
			return err
		}
		if err := AuthResp(secret).WriteTo(conn); err != nil {
			return err
		}
		msg, err := ReadFrom(conn)
		if err != nil {
			return err
		}
		if msg.Kind != KindOk {
			return muderr.ErrAuth
		}
		return nil
	})
}

// withAuthDeadline applies the 5s handshake deadline, runs fn, and then
// clears the deadline regardless of fn's outcome. A deadline set on conn
// before the call is not kept.
func withAuthDeadline(conn net.Conn, fn func() error) error {
	_ = conn.SetDeadline(time.Now().Add(authTimeout))
	err := fn()
	_ = conn.SetDeadline(time.Time{})
	return err
}

// genSecret produces a fresh random 20-byte seed and the secret a correct
// password would compute for it.
func genSecret(pass []byte) (seed, secret []byte, err error) {
	seed = make([]byte, 20)
	if _, err = rand.Read(seed); err != nil {
		return nil, nil, fmt.Errorf("wireproto: generate seed: %w", err)
	}
	secret, err = calcSecret(pass, seed)
	return seed, secret, err
}

// calcSecret computes stage1 = SHA1(password), stage2 = SHA1(stage1),
// seedHash = SHA1(seed || stage2), and returns seedHash XOR stage1.
func calcSecret(password, seed []byte) ([]byte, error) {
	stage1 := sha1.Sum(password)
	stage2 := sha1.Sum(stage1[:])
	h := sha1.New()
	h.Write(seed)
	h.Write(stage2[:])
	seedHash := h.Sum(nil)

	out := make([]byte, len(seedHash))
	for i := range out {
		out[i] = seedHash[i] ^ stage1[i]
	}
	return out, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
