package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/presto-relay/presto/internal/badge"
	"github.com/presto-relay/presto/internal/codec"
	"github.com/presto-relay/presto/internal/server"
)

// limits badge uploads to 5mb
const maxMediaFileSize = 5 * 1024 * 1024

// decodeToken resolves a token from the URL under the session key and writes
// the error response when that fails.
func decodeToken(svr server.Server, w http.ResponseWriter, r *http.Request) (int, bool) {
	token := mux.Vars(r)["token"]
	id, err := svr.Keys.DecodeID(w, r, token)
	switch {
	case err == nil:
		return id, true
	case errors.Is(err, codec.ErrStaleOrWrongKey):
		svr.JSON(w, http.StatusGone, map[string]string{"status": "error", "reason": "session expired"})
	case errors.Is(err, codec.ErrIncorrectFormat), errors.Is(err, codec.ErrInconsistentChecksum):
		svr.JSON(w, http.StatusBadRequest, map[string]string{"status": "error", "reason": "invalid link"})
	default:
		svr.Log(err, fmt.Sprintf("unable to decode token %s", token))
		svr.JSON(w, http.StatusBadRequest, map[string]string{"status": "error", "reason": "invalid link"})
	}
	return 0, false
}

func certify(svr server.Server, w http.ResponseWriter, id int, render func(int) ([]byte, error)) {
	media, err := render(id)
	if errors.Is(err, badge.ErrNotFound) {
		svr.JSON(w, http.StatusNotFound, map[string]string{"status": "error"})
		return
	}
	if err != nil {
		svr.Log(err, fmt.Sprintf("unable to certify badge %d", id))
		svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
		return
	}
	svr.MEDIA(w, http.StatusOK, media, "image/png")
}

func BadgeImageHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := decodeToken(svr, w, r)
		if !ok {
			return
		}
		certify(svr, w, id, svr.Badges.CertifyPNG)
	}
}

func BadgeThumbnailHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := decodeToken(svr, w, r)
		if !ok {
			return
		}
		certify(svr, w, id, svr.Badges.CertifyThumbnailPNG)
	}
}

func VerifyBadgeHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, int64(maxMediaFileSize))
		imageFile, _, err := r.FormFile("image")
		if err != nil {
			svr.Log(err, "unable to read badge file")
			svr.JSON(w, http.StatusBadRequest, map[string]string{"status": "error"})
			return
		}
		defer imageFile.Close()

		rec, err := svr.Badges.VerifyPNG(imageFile)
		var rejection *badge.Error
		if errors.As(err, &rejection) {
			svr.Logger.Warn().Str("cause", rejection.Error()).Msg("badge rejected")
			svr.JSON(w, http.StatusOK, map[string]interface{}{
				"valid":  false,
				"reason": rejection.Kind.String(),
			})
			return
		}
		if err != nil {
			svr.Log(err, "unable to verify badge")
			svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
			return
		}
		p := rec.Payload()
		res := map[string]interface{}{
			"valid":        true,
			"holder":       p.Name,
			"course_code":  p.CourseCode,
			"course_name":  p.CourseName,
			"program":      p.Program,
			"level":        p.Level,
			"verification": humanize.Ordinal(rec.VerifyCount),
		}
		if rec.LastRenderedAt.Valid {
			res["issued"] = humanize.Time(rec.LastRenderedAt.Time)
		}
		svr.JSON(w, http.StatusOK, res)
	}
}

// IssueTokenHandler hands out a badge link for an ID under the caller's
// session key. Only registered in dev.
func IssueTokenHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(mux.Vars(r)["id"])
		if err != nil {
			svr.JSON(w, http.StatusBadRequest, map[string]string{"status": "error"})
			return
		}
		token, err := svr.Keys.EncodeID(w, r, id)
		if err != nil {
			svr.Log(err, fmt.Sprintf("unable to encode id %d", id))
			svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
			return
		}
		svr.JSON(w, http.StatusOK, map[string]string{
			"token": token,
			"badge": fmt.Sprintf("/badge/%s.png", token),
			"thumb": fmt.Sprintf("/badge/%s/thumb.png", token),
		})
	}
}

func RotateSessionKeyHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := svr.Keys.Rotate(w, r); err != nil {
			svr.Log(err, "unable to rotate session key")
			svr.JSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
			return
		}
		svr.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func StatusHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svr.JSON(w, http.StatusOK, map[string]interface{}{
			"status":       "ok",
			"site":         svr.GetConfig().SiteName,
			"cached_faces": svr.CacheLen(),
		})
	}
}
