package domain

import "errors"

// Бизнес-ошибки (маппятся на HTTP коды в transport/web/v1)
var (
	ErrBadParams           = errors.New("bad_params")            // 400
	ErrUnauth              = errors.New("unauthorized")          // 401
	ErrNotFound            = errors.New("not_found")             // 404
	ErrMethodNotAllowed    = errors.New("method_not_allowed")    // 405
	ErrDuplicateValidation = errors.New("duplicate_validation")  // 409
	ErrUnsupportedMedia    = errors.New("unsupported_media")     // 415
	ErrRangeNotSatisfiable = errors.New("range_not_satisfiable") // 416
	ErrStorageUnavailable  = errors.New("storage_unavailable")   // 503
	ErrUnexpected          = errors.New("unexpected")            // 500
)

// Коды для конверта ответа
const (
	ErrCodeBadParams           = 1000
	ErrCodeUnauth              = 1001
	ErrCodeNotFound            = 1002
	ErrCodeDuplicateValidation = 1003
	ErrCodeUnsupportedMedia    = 1004
	ErrCodeStorageUnavailable  = 1005
	ErrCodeRangeNotSatisfiable = 1006
	ErrCodeMethodNotAllowed    = 1007
	ErrCodeUnexpected          = 1999
)
