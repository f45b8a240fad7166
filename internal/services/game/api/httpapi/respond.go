package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"google.golang.org/protobuf/encoding/protojson"

	apperrors "github.com/louisbranch/warroom/internal/platform/errors"
	"github.com/louisbranch/warroom/internal/platform/errors/i18n"
)

var supportedLocales = []language.Tag{
	language.AmericanEnglish,
	language.BrazilianPortuguese,
}

var localeMatcher = language.NewMatcher(supportedLocales)

// requestLocale resolves the response language from Accept-Language. Unknown
// or missing preferences fall back to the catalog default.
func requestLocale(r *http.Request) string {
	if r == nil {
		return ""
	}
	accept := strings.TrimSpace(r.Header.Get("Accept-Language"))
	if accept == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return ""
	}
	_, idx, _ := localeMatcher.Match(tags...)
	return supportedLocales[idx].String()
}

// decodeJSON parses the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.Wrap(apperrors.CodeRequestInvalid, "decode request body", err)
	}
	return nil
}

// writeJSON writes a JSON response with the provided status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError renders err as a google.rpc.Status JSON body. The status carries
// ErrorInfo with the machine code and a LocalizedMessage formatted for the
// request's Accept-Language.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		appErr = apperrors.Wrap(apperrors.CodeUnknown, "unexpected error", err)
	}
	httpStatus := appErr.Code.HTTPStatus()
	if httpStatus >= http.StatusInternalServerError {
		s.logger.Printf("request failed method=%s path=%s code=%s err=%v",
			r.Method, r.URL.Path, appErr.Code, err)
	}

	catalog := i18n.GetCatalog(requestLocale(r))
	userMessage := catalog.Format(string(appErr.Code), appErr.Metadata)
	st := appErr.ToStatus(catalog.Locale(), userMessage)

	body, marshalErr := protojson.Marshal(st.Proto())
	if marshalErr != nil {
		http.Error(w, userMessage, httpStatus)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(httpStatus)
	_, _ = w.Write(body)
}
