package web

import (
	"errors"
	"net/http"

	"github.com/nconklindev/gopdon/internal/logging"
	"github.com/nconklindev/gopdon/internal/merger"
	"github.com/nconklindev/gopdon/internal/sheetio"
	"github.com/nconklindev/gopdon/internal/types"
)

var (
	errNoFiles      = errors.New("no file provided")
	errTooManyFiles = errors.New("too many files")
	errFileTooLarge = errors.New("file too large")
)

// ErrorResponse carries a support code next to the message shown to users.
//
//	MERGE001  no valid rows in any file
//	FILE001   a file is not a readable workbook
//	FILE002   more files than allowed in one merge
//	FILE003   a file exceeds the size limit
//	FILE004   no file uploaded
//	REQ001    unknown platform
//	SRV001    anything else
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func classify(err error) (status int, resp ErrorResponse) {
	switch {
	case errors.Is(err, merger.ErrNoValidData):
		return http.StatusUnprocessableEntity, ErrorResponse{"Không tìm thấy dữ liệu hợp lệ.", "MERGE001"}
	case errors.Is(err, merger.ErrParseFailure), errors.Is(err, sheetio.ErrUnsupportedFormat):
		return http.StatusBadRequest, ErrorResponse{"Chỉ chấp nhận file Excel (.xlsx, .xls).", "FILE001"}
	case errors.Is(err, errTooManyFiles):
		return http.StatusBadRequest, ErrorResponse{"Quá số file cho phép mỗi lần.", "FILE002"}
	case errors.Is(err, errFileTooLarge):
		return http.StatusRequestEntityTooLarge, ErrorResponse{"File quá lớn.", "FILE003"}
	case errors.Is(err, errNoFiles):
		return http.StatusBadRequest, ErrorResponse{"Chưa chọn file nào.", "FILE004"}
	case errors.Is(err, types.ErrUnknownPlatform):
		return http.StatusBadRequest, ErrorResponse{"Nền tảng không hợp lệ (shopee, tiktok).", "REQ001"}
	default:
		return http.StatusInternalServerError, ErrorResponse{"Đã xảy ra lỗi, vui lòng thử lại.", "SRV001"}
	}
}

// respondError logs the technical error and returns the user-facing one.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := classify(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"status", status,
		"code", resp.Code,
		"error", err.Error(),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	writeJSONBody(w, resp)
}
