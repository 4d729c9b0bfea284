// Package session keeps the codec key of every browser session.
package session

import (
	"math"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/pkg/errors"
	"github.com/presto-relay/presto/internal/codec"
)

const (
	cookieName = "____presto"
	keyField   = "codec_key"
)

// Keys hands out per-session codec keys and encodes IDs with them.
type Keys struct {
	store sessions.Store
}

func NewKeys(store sessions.Store) *Keys {
	return &Keys{store}
}

// Key returns the codec key of the session, starting one when the request
// has no valid session yet.
func (k *Keys) Key(w http.ResponseWriter, r *http.Request) (string, error) {
	// an undecodable cookie still yields a fresh session
	sess, err := k.store.Get(r, cookieName)
	if sess == nil {
		return "", errors.Errorf("unable to get session: %v", err)
	}
	if key, ok := sess.Values[keyField].(string); ok && codec.ValidKey(key) {
		return key, nil
	}
	return k.save(w, r, sess)
}

// Rotate gives the session a new key. Tokens issued under the old key then
// fail to decode with codec.ErrStaleOrWrongKey.
func (k *Keys) Rotate(w http.ResponseWriter, r *http.Request) (string, error) {
	sess, err := k.store.Get(r, cookieName)
	if sess == nil {
		return "", errors.Errorf("unable to get session: %v", err)
	}
	return k.save(w, r, sess)
}

func (k *Keys) save(w http.ResponseWriter, r *http.Request, sess *sessions.Session) (string, error) {
	key := codec.NewKey()
	sess.Values[keyField] = key
	if err := sess.Save(r, w); err != nil {
		return "", errors.Wrap(err, "unable to save session")
	}
	return key, nil
}

// EncodeID returns a token for id under the session key.
func (k *Keys) EncodeID(w http.ResponseWriter, r *http.Request, id int) (string, error) {
	if id < 0 {
		return "", errors.Errorf("negative id %d", id)
	}
	key, err := k.Key(w, r)
	if err != nil {
		return "", err
	}
	return codec.Encode(uint64(id), key, false)
}

// DecodeID reverses EncodeID. Codec errors are returned unwrapped so callers
// can tell stale links from broken ones.
func (k *Keys) DecodeID(w http.ResponseWriter, r *http.Request, token string) (int, error) {
	key, err := k.Key(w, r)
	if err != nil {
		return 0, err
	}
	n, err := codec.Decode(token, key)
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt32 {
		return 0, errors.Errorf("id %d out of range", n)
	}
	return int(n), nil
}
