package badge

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"io/ioutil"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned by a Store when no badge has the requested ID.
var ErrNotFound = errors.New("badge not found")

// maxUploadSize bounds the PNG files VerifyPNG reads.
const maxUploadSize = 5 * 1024 * 1024

// FaceCache keeps rendered faces as PNG bytes. bigcache.BigCache satisfies it.
type FaceCache interface {
	Get(key string) ([]byte, error)
	Set(key string, entry []byte) error
}

// Engine certifies badges into images and verifies images against the store.
type Engine struct {
	store  Store
	hasher Hasher
	cache  FaceCache
	logger zerolog.Logger
	now    func() time.Time
}

// NewEngine returns an engine. cache may be nil.
func NewEngine(store Store, hasher Hasher, cache FaceCache, logger zerolog.Logger) *Engine {
	return &Engine{
		store:  store,
		hasher: hasher,
		cache:  cache,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Certify renders badge id with its signed payload embedded and records the
// rendering.
func (e *Engine) Certify(id int) (*image.NRGBA, error) {
	rec, err := e.store.GetBadge(id)
	if err != nil {
		return nil, errors.Wrapf(err, "get badge %d", id)
	}
	payload, err := rec.Payload().Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "marshal payload")
	}
	if len(payload) > MaxPayloadBytes {
		return nil, reject(PayloadTooLarge, "%d bytes > %d", len(payload), MaxPayloadBytes)
	}
	img := e.face(rec.Face())
	if err := Embed(img, payload, e.hasher); err != nil {
		return nil, err
	}
	if err := e.store.MarkRendered(id, e.now()); err != nil {
		return nil, errors.Wrapf(err, "mark badge %d rendered", id)
	}
	e.logger.Debug().Int("badge", id).Int("payload_bytes", len(payload)).Msg("badge certified")
	return img, nil
}

// CertifyPNG is Certify encoded as PNG.
func (e *Engine) CertifyPNG(id int) ([]byte, error) {
	img, err := e.Certify(id)
	if err != nil {
		return nil, err
	}
	return EncodePNG(img)
}

// CertifyThumbnailPNG renders the gallery variant of badge id. Thumbnails
// are too small to carry a payload and are not verifiable.
func (e *Engine) CertifyThumbnailPNG(id int) ([]byte, error) {
	img, err := e.Certify(id)
	if err != nil {
		return nil, err
	}
	return EncodePNG(Thumbnail(img))
}

// Inspect extracts and parses the payload of img without consulting the store.
func (e *Engine) Inspect(img image.Image) (Payload, error) {
	data, err := Extract(img, e.hasher)
	if err != nil {
		return Payload{}, err
	}
	return ParsePayload(data)
}

// Verify checks img and cross-checks its payload with the live badge record.
// Rejections are *Error values; store failures are returned wrapped.
func (e *Engine) Verify(img image.Image) (Record, error) {
	p, err := e.Inspect(img)
	if err != nil {
		return Record{}, err
	}
	rec, err := e.store.GetBadge(p.BadgeID)
	if errors.Is(err, ErrNotFound) {
		return Record{}, reject(UnmatchedID, "%d", p.BadgeID)
	}
	if err != nil {
		return Record{}, errors.Wrapf(err, "get badge %d", p.BadgeID)
	}
	if err := p.check(rec.Payload()); err != nil {
		return Record{}, err
	}
	at := e.now()
	if err := e.store.MarkVerified(rec.ID, at); err != nil {
		return Record{}, errors.Wrapf(err, "mark badge %d verified", rec.ID)
	}
	rec.VerifyCount++
	rec.LastVerifiedAt.Time, rec.LastVerifiedAt.Valid = at, true
	return rec, nil
}

// VerifyPNG reads a PNG file and verifies it. The header is checked before
// any pixel data is decoded.
func (e *Engine) VerifyPNG(r io.Reader) (Record, error) {
	data, err := ioutil.ReadAll(io.LimitReader(r, maxUploadSize))
	if err != nil {
		return Record{}, errors.Wrap(err, "read badge image")
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Record{}, reject(NotPNG, "%v", err)
	}
	if cfg.Width != Size || cfg.Height != Size {
		return Record{}, reject(WrongDimensions, "%dx%d", cfg.Width, cfg.Height)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return Record{}, reject(NotPNG, "%v", err)
	}
	return e.Verify(img)
}

// IsValid verifies img and reports the outcome as a bool, logging the cause
// of any failure.
func (e *Engine) IsValid(img image.Image) bool {
	rec, err := e.Verify(img)
	if err == nil {
		e.logger.Info().Int("badge", rec.ID).Msg("badge verified")
		return true
	}
	var rejection *Error
	if errors.As(err, &rejection) {
		e.logger.Warn().Str("cause", rejection.Error()).Msg("badge rejected")
	} else {
		e.logger.Error().Err(err).Msg("badge verification failed")
	}
	return false
}

func (e *Engine) face(f Face) *image.NRGBA {
	if e.cache == nil {
		return f.Render()
	}
	key := f.cacheKey()
	if cached, err := e.cache.Get(key); err == nil {
		if img, err := png.Decode(bytes.NewReader(cached)); err == nil {
			return toNRGBA(img)
		}
	}
	img := f.Render()
	if encoded, err := EncodePNG(img); err == nil {
		if err := e.cache.Set(key, encoded); err != nil {
			e.logger.Debug().Err(err).Str("key", key).Msg("unable to cache badge face")
		}
	}
	return img
}
